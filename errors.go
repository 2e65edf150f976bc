// errors.go
// ---------
// Unified error shape for everything delivered through a Promise, plus the
// error classes used for failures that are detected before any I/O happens.
//
// The split matters: configuration problems (bad URL, disallowed TLS option
// key, negative range bound) are returned synchronously from Execute and
// never travel through the Promise. Transport and protocol failures always
// travel through the Promise as an *Error.
package baas

import (
	"fmt"

	"github.com/zeebo/errs"
)

// ErrConfiguration wraps errors raised while building a request, before any
// network I/O. These are never delivered asynchronously.
var ErrConfiguration = errs.Class("configuration")

// Status texts used for failures that never produced a real HTTP status.
const (
	statusTextTimeout      = "Timeout"
	statusTextConnection   = "Connection Error"
	statusTextNoResponse   = "Unable to get proper response"
	statusTextParseFailure = "Parse Error"
)

// Error is the unified failure shape for one logical request.
//
// StatusCode 0 is reserved for transport-level failures (connect error,
// timeout, abort, stream error); HTTP-level failures carry the real status
// code. ResponseText holds the server's raw body when it was decodable and
// the response kind was not binary.
type Error struct {
	StatusCode   int
	StatusText   string
	ResponseText string
	Data         any
}

func (e *Error) Error() string {
	if e.ResponseText != "" {
		return fmt.Sprintf("baas: %d %s: %s", e.StatusCode, e.StatusText, e.ResponseText)
	}
	return fmt.Sprintf("baas: %d %s", e.StatusCode, e.StatusText)
}

// newTransportError builds a status-0 Error from a failure that happened
// below the HTTP layer.
func newTransportError(statusText string, cause error) *Error {
	e := &Error{StatusCode: 0, StatusText: statusText}
	if cause != nil {
		e.ResponseText = cause.Error()
	}
	return e
}

// isSuccessStatus reports whether s is treated as a success. Everything
// outside [200,300), including 0, takes the failure path.
func isSuccessStatus(s int) bool {
	return s >= 200 && s < 300
}
