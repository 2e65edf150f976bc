package baas

import (
	"encoding/json"
	"io"
)

// Response is the success value of one logical request.
//
// With ReceiveResponse unset only Body (or Raw, or JSON) is meaningful and
// the shape of the success value never changes. With ReceiveResponse set,
// Status and the captured headers are populated as well. The two executors
// capture headers differently and the divergence is part of the contract:
// the buffered executor fills HeaderBlock with a single CRLF-joined
// header-block string, the stream executor fills Header with a key-value
// map. Exactly one of the two is ever populated.
type Response struct {
	Status int

	// Body is the buffered response body. Nil in raw pass-through mode.
	Body []byte

	// JSON is the parsed body when ResponseJSON was requested and the body
	// parsed cleanly; otherwise nil and Body holds the text fallback.
	JSON any

	// Raw is the live response stream in raw pass-through mode. The caller
	// owns consumption and closing.
	Raw io.ReadCloser

	HeaderBlock string
	Header      map[string]string
}

// Text returns the buffered body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// decodeBody interprets a fully-accumulated body per kind. JSON parse
// failures fall back to text rather than failing the request.
func decodeBody(kind ResponseKind, body []byte) (parsed any) {
	if kind != ResponseJSON || len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil
	}
	return v
}
