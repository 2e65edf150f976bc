// executor_buffered.go
// --------------------
// The buffered execution strategy. It leans on a fully-buffering client
// object that owns its own connection handling and body accumulation; this
// executor only opens the exchange, waits for the terminal state, and
// translates status, timeout, and abort into the unified error shape.
//
// Header capture here produces a single concatenated header-block string,
// not a map. The stream executor captures a map instead; the divergence is
// part of the Response contract.
package baas

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// BufferedExecutor executes descriptors through an *http.Client.
type BufferedExecutor struct {
	client *http.Client
	log    hclog.Logger
}

// NewBufferedExecutor wraps client, or a default client when nil.
func NewBufferedExecutor(client *http.Client, log hclog.Logger) *BufferedExecutor {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &BufferedExecutor{client: client, log: log}
}

// Execute performs one exchange. One-shot: failures are never retried here.
func (e *BufferedExecutor) Execute(ctx context.Context, d *Descriptor) (*Response, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL, bodyReader(d))
	if err != nil {
		return nil, ErrConfiguration.Wrap(err)
	}
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	e.log.Debug("buffered exchange", "method", d.Method, "url", d.URL)
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if !isSuccessStatus(resp.StatusCode) {
		apiErr := &Error{StatusCode: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
		if d.ResponseKind != ResponseBinary {
			apiErr.ResponseText = string(body)
		}
		return nil, apiErr
	}

	out := &Response{
		Status: resp.StatusCode,
		Body:   body,
		JSON:   decodeBody(d.ResponseKind, body),
	}
	if d.ReceiveResponse {
		out.HeaderBlock = headerBlock(resp.Header)
	}
	return out, nil
}

func bodyReader(d *Descriptor) io.Reader {
	if d.BodyStream != nil {
		return d.BodyStream
	}
	if d.Body != nil {
		return bytes.NewReader(d.Body)
	}
	return nil
}

// headerBlock joins all response headers into one CRLF-separated string,
// the way a host object that exposes only the raw header block would.
func headerBlock(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		for _, v := range h[k] {
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

// classifyTransportError maps a below-HTTP failure onto the status-0 error
// shape. Timeouts get their own status text; every other cause keeps its
// own message rather than one catch-all label.
func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newTransportError(statusTextTimeout, nil)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTransportError(statusTextTimeout, nil)
	}
	return newTransportError(statusTextConnection, err)
}
