package baas

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest captures what the handler saw so tests can assert on
// the wire shape.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

// newHTTPTestService spins up a scripted backend and a Service pointed
// at it. The handler's reply body is served verbatim with the given
// status.
func newHTTPTestService(t *testing.T, status int, reply string) (*Service, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Query = map[string]string{}
		for k, v := range r.URL.Query() {
			rec.Query[k] = v[0]
		}
		rec.Header = r.Header.Clone()
		rec.Body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)

	s, err := NewService(&Config{
		BaseURI:  server.URL,
		TenantID: "tenant1",
		AppID:    "app1",
		AppKey:   "key1",
	})
	require.NoError(t, err)
	return s, rec
}

func TestObjectBucketSave(t *testing.T) {
	s, rec := newHTTPTestService(t, 200,
		`{"_id":"abc","title":"Go","etag":"e1","createdAt":"2024-01-01T00:00:00.000Z"}`)

	bucket := NewObjectBucket(s, "books")
	obj, err := bucket.Save(context.Background(), map[string]any{"title": "Go"})
	require.NoError(t, err)

	assert.Equal(t, "POST", rec.Method)
	assert.Equal(t, "/1/tenant1/objects/books", rec.Path)
	assert.Equal(t, "app1", rec.Header.Get(HeaderAppID))
	assert.JSONEq(t, `{"title":"Go"}`, string(rec.Body))
	assert.Equal(t, "abc", obj["_id"])
	assert.Equal(t, "e1", obj["etag"])
}

func TestObjectBucketGetAndDelete(t *testing.T) {
	s, rec := newHTTPTestService(t, 200, `{"_id":"abc","title":"Go"}`)
	bucket := NewObjectBucket(s, "books")

	obj, err := bucket.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "GET", rec.Method)
	assert.Equal(t, "/1/tenant1/objects/books/abc", rec.Path)
	assert.Equal(t, "Go", obj["title"])

	require.NoError(t, bucket.Delete(context.Background(), "abc", "e1"))
	assert.Equal(t, "DELETE", rec.Method)
	assert.Equal(t, "e1", rec.Query["etag"])
}

func TestObjectBucketUpdateConditional(t *testing.T) {
	s, rec := newHTTPTestService(t, 200, `{"_id":"abc","title":"Go 2","etag":"e2"}`)
	bucket := NewObjectBucket(s, "books")

	obj, err := bucket.Update(context.Background(), "abc", map[string]any{"title": "Go 2"}, "e1")
	require.NoError(t, err)
	assert.Equal(t, "PUT", rec.Method)
	assert.Equal(t, "e1", rec.Query["etag"])
	assert.Equal(t, "e2", obj["etag"])
}

func TestObjectBucketQuery(t *testing.T) {
	s, rec := newHTTPTestService(t, 200, `{"results":[{"_id":"a"},{"_id":"b"}],"count":12}`)
	bucket := NewObjectBucket(s, "books")

	q := &ObjectQuery{
		Where: EqualTo("genre", "sf"),
		Sort:  []string{"-year"},
		Limit: 2,
	}
	results, count, err := bucket.QueryWithCount(context.Background(), q)
	require.NoError(t, err)

	assert.JSONEq(t, `{"genre":"sf"}`, rec.Query["where"])
	assert.Equal(t, "-year", rec.Query["order"])
	assert.Equal(t, "2", rec.Query["limit"])
	assert.Equal(t, "1", rec.Query["count"])
	require.Len(t, results, 2)
	assert.Equal(t, 12, count)

	// The caller's query is not mutated by the count request.
	assert.False(t, q.CountRequest)
}

func TestObjectBucketQueryEscapedName(t *testing.T) {
	s, rec := newHTTPTestService(t, 200, `{"results":[]}`)
	bucket := NewObjectBucket(s, "my bucket")

	_, err := bucket.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/1/tenant1/objects/my bucket", rec.Path)
}

func TestObjectBucketBatch(t *testing.T) {
	s, rec := newHTTPTestService(t, 200,
		`{"results":[{"result":"ok","_id":"a"},{"result":"conflict","_id":"b"}]}`)
	bucket := NewObjectBucket(s, "books")

	results, err := bucket.Batch(context.Background(), []BatchRequest{
		{Op: BatchInsert, Data: map[string]any{"title": "Go"}},
		{Op: BatchDelete, ID: "b", ETag: "e1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "POST", rec.Method)
	assert.Equal(t, "/1/tenant1/objects/books/_batch", rec.Path)
	assert.JSONEq(t,
		`{"requests":[{"op":"insert","data":{"title":"Go"}},{"op":"delete","_id":"b","etag":"e1"}]}`,
		string(rec.Body))
	require.Len(t, results, 2)
	assert.Equal(t, "conflict", results[1]["result"])
}

func TestObjectBucketServerError(t *testing.T) {
	s, _ := newHTTPTestService(t, 404, `{"error":"no such bucket"}`)
	bucket := NewObjectBucket(s, "books")

	_, err := bucket.Get(context.Background(), "missing")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Contains(t, apiErr.ResponseText, "no such bucket")
}

func TestObjectBucketNonObjectResponse(t *testing.T) {
	s, _ := newHTTPTestService(t, 200, `[1,2,3]`)
	bucket := NewObjectBucket(s, "books")

	_, err := bucket.Get(context.Background(), "abc")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, statusTextParseFailure, apiErr.StatusText)
}

func TestAclRoundTrip(t *testing.T) {
	acl := NewAcl()
	acl.Add(PermissionRead, GroupAuthenticated)
	acl.Add(PermissionRead, GroupAuthenticated) // dedup
	acl.Add(PermissionWrite, "user1")
	acl.Add(PermissionAdmin, "user1")
	acl.Remove(PermissionWrite, "user1")

	data, err := json.Marshal(acl)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"r":["g:authenticated"],"w":[],"c":[],"u":[],"d":[],"admin":["user1"]}`,
		string(data))
}
