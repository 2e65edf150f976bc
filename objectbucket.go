// objectbucket.go
// ---------------
// Typed CRUD over JSON object buckets. All methods are thin shaping glue:
// build a path/body/query, run the request, interpret the parsed JSON.
package baas

import (
	"context"
	"net/url"
)

// ObjectBucket accesses one JSON object bucket.
type ObjectBucket struct {
	service *Service
	name    string
}

// NewObjectBucket returns a handle on the named bucket.
func NewObjectBucket(s *Service, name string) *ObjectBucket {
	return &ObjectBucket{service: s, name: name}
}

// Name returns the bucket name.
func (b *ObjectBucket) Name() string { return b.name }

func (b *ObjectBucket) path(sub string) string {
	p := "/objects/" + url.PathEscape(b.name)
	if sub != "" {
		p += "/" + url.PathEscape(sub)
	}
	return p
}

// Save stores obj as a new object and returns the stored representation
// (with server-assigned _id, timestamps, and etag).
func (b *ObjectBucket) Save(ctx context.Context, obj map[string]any) (map[string]any, error) {
	resp, err := b.service.NewRequest(b.path("")).
		SetMethod("POST").
		SetData(obj).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return asObject(resp)
}

// Get fetches one object by ID.
func (b *ObjectBucket) Get(ctx context.Context, id string) (map[string]any, error) {
	resp, err := b.service.NewRequest(b.path(id)).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	return asObject(resp)
}

// Update replaces the object's fields. A non-empty etag makes the update
// conditional on the stored version.
func (b *ObjectBucket) Update(ctx context.Context, id string, obj map[string]any, etag string) (map[string]any, error) {
	req := b.service.NewRequest(b.path(id)).
		SetMethod("PUT").
		SetData(obj).
		SetResponseKind(ResponseJSON)
	if etag != "" {
		req.SetQueryParam("etag", etag)
	}
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	return asObject(resp)
}

// Delete removes the object. A non-empty etag makes the delete conditional.
func (b *ObjectBucket) Delete(ctx context.Context, id, etag string) error {
	req := b.service.NewRequest(b.path(id)).SetMethod("DELETE")
	if etag != "" {
		req.SetQueryParam("etag", etag)
	}
	_, err := req.Do(ctx)
	return err
}

// Query runs q and returns the matching objects.
func (b *ObjectBucket) Query(ctx context.Context, q *ObjectQuery) ([]map[string]any, error) {
	results, _, err := b.query(ctx, q)
	return results, err
}

// QueryWithCount runs q with the total match count requested.
func (b *ObjectBucket) QueryWithCount(ctx context.Context, q *ObjectQuery) ([]map[string]any, int, error) {
	if q == nil {
		q = &ObjectQuery{}
	}
	withCount := *q
	withCount.CountRequest = true
	return b.query(ctx, &withCount)
}

func (b *ObjectBucket) query(ctx context.Context, q *ObjectQuery) ([]map[string]any, int, error) {
	params, err := q.queryParams()
	if err != nil {
		return nil, 0, err
	}
	resp, err := b.service.NewRequest(b.path("")).
		SetQueryParams(params).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, 0, err
	}
	envelope, err := asObject(resp)
	if err != nil {
		return nil, 0, err
	}
	results := asObjectList(envelope["results"])
	count := 0
	if c, ok := envelope["count"].(float64); ok {
		count = int(c)
	}
	return results, count, nil
}

// BatchOp names one operation inside a batch request.
type BatchOp string

const (
	BatchInsert BatchOp = "insert"
	BatchUpdate BatchOp = "update"
	BatchDelete BatchOp = "delete"
)

// BatchRequest is one entry of a batch. ID and ETag apply to update and
// delete; Data to insert and update.
type BatchRequest struct {
	Op   BatchOp        `json:"op"`
	ID   string         `json:"_id,omitempty"`
	ETag string         `json:"etag,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// Batch applies the requests in order in one round trip and returns the
// per-entry results in the same order.
func (b *ObjectBucket) Batch(ctx context.Context, requests []BatchRequest) ([]map[string]any, error) {
	resp, err := b.service.NewRequest(b.path("_batch")).
		SetMethod("POST").
		SetData(map[string]any{"requests": requests}).
		SetResponseKind(ResponseJSON).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	envelope, err := asObject(resp)
	if err != nil {
		return nil, err
	}
	return asObjectList(envelope["results"]), nil
}

// asObject interprets a success value as one JSON object.
func asObject(resp *Response) (map[string]any, error) {
	if m, ok := resp.JSON.(map[string]any); ok {
		return m, nil
	}
	return nil, &Error{
		StatusCode:   0,
		StatusText:   statusTextParseFailure,
		ResponseText: resp.Text(),
	}
}

func asObjectList(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
