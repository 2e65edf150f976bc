// descriptor.go
// -------------
// The value object handed to an executor: everything one exchange needs,
// fixed at build time. Constructed fresh per call and never reused.
package baas

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"time"
)

// ResponseKind selects how a buffered response body is decoded.
type ResponseKind int

const (
	// ResponseText decodes the body as UTF-8 text.
	ResponseText ResponseKind = iota
	// ResponseJSON parses the body as JSON, falling back to text when the
	// body is not valid JSON.
	ResponseJSON
	// ResponseBinary leaves the body as raw bytes.
	ResponseBinary
)

// Descriptor captures one outbound exchange. Immutable once handed to an
// executor.
type Descriptor struct {
	Method  string
	URL     string
	Headers map[string]string

	// Body is the serialized request body; BodyStream takes precedence when
	// set and is consumed exactly once.
	Body       []byte
	BodyStream io.Reader

	Timeout      time.Duration
	ResponseKind ResponseKind

	// ReceiveResponse asks for the status and response headers to be
	// captured alongside the body.
	ReceiveResponse bool

	// RawMessage asks for the live response stream instead of a buffered
	// body. Consumption ownership transfers to the caller on success.
	RawMessage bool

	// UseHTTP2 routes the exchange over a pooled multiplexed session.
	UseHTTP2 bool
}

// serializeBody applies the body serialization rule: strings and byte
// slices pass through untouched, readers are streamed, everything else is
// JSON-serialized.
func serializeBody(data any) (body []byte, stream io.Reader, err error) {
	switch v := data.(type) {
	case nil:
		return nil, nil, nil
	case string:
		return []byte(v), nil, nil
	case []byte:
		return v, nil, nil
	case io.Reader:
		return nil, v, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, nil, ErrConfiguration.Wrap(err)
		}
		return b, nil, nil
	}
}

// encodeQuery percent-encodes params as key=value pairs joined with "&".
// Keys are emitted in sorted order so descriptors are reproducible.
func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := ""
	for i, k := range keys {
		if i > 0 {
			q += "&"
		}
		q += url.QueryEscape(k) + "=" + url.QueryEscape(params[k])
	}
	return q
}

// rangeValue builds an RFC 7233 byte-range value. Both ends given yields
// "start-end", only start "start-", only end "-end"; with neither the
// header is omitted. Bounds are not reordered. Negative bounds fail before
// any network I/O.
func rangeValue(start, end *int64) (string, error) {
	if start == nil && end == nil {
		return "", nil
	}
	if start != nil && *start < 0 {
		return "", ErrConfiguration.New("range start must be non-negative: %d", *start)
	}
	if end != nil && *end < 0 {
		return "", ErrConfiguration.New("range end must be non-negative: %d", *end)
	}
	switch {
	case start != nil && end != nil:
		return fmt.Sprintf("bytes=%d-%d", *start, *end), nil
	case start != nil:
		return fmt.Sprintf("bytes=%d-", *start), nil
	default:
		return fmt.Sprintf("bytes=-%d", *end), nil
	}
}

// quoteETag wraps an entity tag in double quotes unless already quoted.
func quoteETag(tag string) string {
	if len(tag) >= 2 && tag[0] == '"' && tag[len(tag)-1] == '"' {
		return tag
	}
	return `"` + tag + `"`
}
