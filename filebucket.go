// filebucket.go
// -------------
// File storage operations. Downloads exercise the transport's binary,
// range, and raw pass-through paths; everything else is shaping glue.
package baas

import (
	"context"
	"io"
	"net/url"
)

// FileBucket accesses one file bucket.
type FileBucket struct {
	service *Service
	name    string
}

// NewFileBucket returns a handle on the named file bucket.
func NewFileBucket(s *Service, name string) *FileBucket {
	return &FileBucket{service: s, name: name}
}

// Name returns the bucket name.
func (b *FileBucket) Name() string { return b.name }

// FileMetadata describes one stored file.
type FileMetadata struct {
	Filename    string `json:"filename,omitempty" mapstructure:"filename"`
	ContentType string `json:"contentType,omitempty" mapstructure:"contentType"`
	Length      int64  `json:"length,omitempty" mapstructure:"length"`
	ACL         *Acl   `json:"ACL,omitempty" mapstructure:"ACL"`
	Created     string `json:"createdAt,omitempty" mapstructure:"createdAt"`
	Updated     string `json:"updatedAt,omitempty" mapstructure:"updatedAt"`
	MetaETag    string `json:"metaETag,omitempty" mapstructure:"metaETag"`
	FileETag    string `json:"fileETag,omitempty" mapstructure:"fileETag"`
}

func (b *FileBucket) path(fileName, sub string) string {
	p := "/files/" + url.PathEscape(b.name)
	if fileName != "" {
		p += "/" + url.PathEscape(fileName)
	}
	if sub != "" {
		p += "/" + sub
	}
	return p
}

// Upload stores data as a new file and returns its metadata.
func (b *FileBucket) Upload(ctx context.Context, fileName string, data any, contentType string) (*FileMetadata, error) {
	resp, err := b.service.NewRequest(b.path(fileName, "")).
		SetMethod("POST").
		SetContentType(contentType).
		SetData(data).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return decodeFileMetadataResponse(resp)
}

// UpdateFile replaces the file content. A non-empty etag makes the write
// conditional on the stored version via If-Match.
func (b *FileBucket) UpdateFile(ctx context.Context, fileName string, data any, contentType, etag string) (*FileMetadata, error) {
	req := b.service.NewRequest(b.path(fileName, "")).
		SetMethod("PUT").
		SetContentType(contentType).
		SetData(data).
		SetResponseKind(ResponseJSON)
	if etag != "" {
		req.SetIfMatch(etag)
	}
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	return decodeFileMetadataResponse(resp)
}

// Download fetches the whole file content.
func (b *FileBucket) Download(ctx context.Context, fileName string) ([]byte, error) {
	resp, err := b.service.NewRequest(b.path(fileName, "")).
		SetResponseKind(ResponseBinary).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// DownloadRange fetches the requested byte range. Either bound may be
// nil; ifRange, when non-empty, makes the range conditional on the etag.
func (b *FileBucket) DownloadRange(ctx context.Context, fileName string, start, end *int64, ifRange string) ([]byte, error) {
	req := b.service.NewRequest(b.path(fileName, "")).
		SetResponseKind(ResponseBinary).
		SetRange(start, end)
	if ifRange != "" {
		req.SetIfRange(ifRange)
	}
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// DownloadStream hands back the live response stream without buffering.
// The caller owns the returned reader and must close it.
func (b *FileBucket) DownloadStream(ctx context.Context, fileName string) (io.ReadCloser, error) {
	resp, err := b.service.NewRequest(b.path(fileName, "")).
		SetRawMessage(true).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Raw, nil
}

// GetMetadata fetches the file's metadata.
func (b *FileBucket) GetMetadata(ctx context.Context, fileName string) (*FileMetadata, error) {
	resp, err := b.service.NewRequest(b.path(fileName, "meta")).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return decodeFileMetadataResponse(resp)
}

// UpdateMetadata rewrites the file's metadata (ACL, content type).
func (b *FileBucket) UpdateMetadata(ctx context.Context, fileName string, meta *FileMetadata) (*FileMetadata, error) {
	body := map[string]any{}
	if meta.ContentType != "" {
		body["contentType"] = meta.ContentType
	}
	if meta.ACL != nil {
		body["ACL"] = meta.ACL
	}
	if meta.Filename != "" && meta.Filename != fileName {
		body["filename"] = meta.Filename
	}
	resp, err := b.service.NewRequest(b.path(fileName, "meta")).
		SetMethod("PUT").
		SetData(body).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return decodeFileMetadataResponse(resp)
}

// Delete removes the file. A non-empty etag makes the delete conditional.
func (b *FileBucket) Delete(ctx context.Context, fileName, etag string) error {
	req := b.service.NewRequest(b.path(fileName, "")).SetMethod("DELETE")
	if etag != "" {
		req.SetIfMatch(etag)
	}
	_, err := req.Do(ctx)
	return err
}

// List returns metadata for every file in the bucket.
func (b *FileBucket) List(ctx context.Context) ([]*FileMetadata, error) {
	resp, err := b.service.NewRequest(b.path("", "")).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	envelope, err := asObject(resp)
	if err != nil {
		return nil, err
	}
	files := make([]*FileMetadata, 0)
	for _, obj := range asObjectList(envelope["results"]) {
		m, err := decodeFileMetadata(obj)
		if err != nil {
			return nil, err
		}
		files = append(files, m)
	}
	return files, nil
}

func decodeFileMetadataResponse(resp *Response) (*FileMetadata, error) {
	obj, err := asObject(resp)
	if err != nil {
		return nil, err
	}
	return decodeFileMetadata(obj)
}

func decodeFileMetadata(obj map[string]any) (*FileMetadata, error) {
	var m FileMetadata
	if err := decodeEntity(obj, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
