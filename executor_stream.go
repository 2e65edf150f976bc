// executor_stream.go
// ------------------
// The stream execution strategy. Unlike the buffered executor it manages
// the exchange at the connection level: it accumulates body chunks itself,
// can hand the live response stream to the caller instead of buffering,
// and speaks two sub-protocols — one connection per request over the
// shared agents, or a pooled multiplexed session per authority.
package baas

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
)

// StreamExecutor executes descriptors over manually-managed connections.
type StreamExecutor struct {
	cfg      *Config
	log      hclog.Logger
	plain    *http.Transport
	tls      *http.Transport
	sessions *sessionPool
}

// NewStreamExecutor builds the executor from the configuration context.
// The agents and the session pool are created once here and shared by
// every request this executor runs.
func NewStreamExecutor(cfg *Config, log hclog.Logger) (*StreamExecutor, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	tlsCfg, err := cfg.TLSOptions.tlsConfig()
	if err != nil {
		return nil, err
	}

	plain := cfg.PlainAgent
	if plain == nil {
		plain = &http.Transport{}
	}
	tlsAgent := cfg.TLSAgent
	if tlsAgent == nil {
		tlsAgent = &http.Transport{TLSClientConfig: tlsCfg}
	}
	if cfg.Proxy != nil {
		proxy := http.ProxyURL(cfg.Proxy)
		if plain.Proxy == nil {
			plain.Proxy = proxy
		}
		if tlsAgent.Proxy == nil {
			tlsAgent.Proxy = proxy
		}
	}
	// These agents carry sub-protocol A only; multiplexing goes through
	// the session pool.
	plain.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	tlsAgent.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}

	return &StreamExecutor{
		cfg:      cfg,
		log:      log,
		plain:    plain,
		tls:      tlsAgent,
		sessions: newSessionPool(tlsCfg, cfg.Proxy, log),
	}, nil
}

// Execute performs one exchange, choosing the sub-protocol from the
// descriptor. Exactly one outcome, no retries.
func (e *StreamExecutor) Execute(ctx context.Context, d *Descriptor) (*Response, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, ErrConfiguration.Wrap(err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrConfiguration.New("unsupported scheme %q", u.Scheme)
	}
	if d.UseHTTP2 {
		resp, err := e.executeH2(ctx, d, u)
		if !errors.Is(err, errH2Unavailable) {
			return resp, err
		}
		// Peer negotiated down; fall through to one connection per request.
		e.log.Debug("peer does not multiplex, downgrading", "authority", authorityOf(u))
	}
	return e.executeH1(ctx, d, u)
}

// Sessions lists the authorities with a pooled session.
func (e *StreamExecutor) Sessions() []string { return e.sessions.authorities() }

// Session returns the pooled session for authority, if any.
func (e *StreamExecutor) Session(authority string) (*Session, bool) {
	return e.sessions.lookup(authority)
}

// CloseSession gracefully shuts down and evicts the session for authority.
func (e *StreamExecutor) CloseSession(authority string) error {
	return e.sessions.close(authority)
}

// CloseAllSessions gracefully shuts down and evicts every pooled session.
func (e *StreamExecutor) CloseAllSessions() error { return e.sessions.closeAll() }

func (e *StreamExecutor) executeH1(ctx context.Context, d *Descriptor, u *url.URL) (*Response, error) {
	agent := e.plain
	if u.Scheme == "https" {
		agent = e.tls
	}

	ex := newExchange(ctx, d.Timeout)
	defer ex.finish()

	req, err := http.NewRequestWithContext(ex.ctx, d.Method, d.URL, bodyReader(d))
	if err != nil {
		return nil, ErrConfiguration.Wrap(err)
	}
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	e.log.Debug("stream exchange", "method", d.Method, "url", d.URL)
	resp, err := agent.RoundTrip(req)
	if err != nil {
		return nil, ex.classify(err)
	}
	return e.consume(d, resp, ex)
}

// consume implements the raw-passthrough / buffering duality shared by
// both sub-protocols. resp.Body is owned by this call except in raw mode,
// where ownership transfers to the caller on success.
func (e *StreamExecutor) consume(d *Descriptor, resp *http.Response, ex *exchange) (*Response, error) {
	if !isSuccessStatus(resp.StatusCode) {
		apiErr := &Error{StatusCode: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
		if d.ResponseKind != ResponseBinary {
			if body, err := ex.accumulate(resp.Body); err == nil {
				apiErr.ResponseText = string(body)
			}
		}
		resp.Body.Close()
		return nil, apiErr
	}

	if d.RawMessage {
		// Headers are in; the timeout no longer applies and the caller
		// drives consumption from here.
		ex.detach()
		out := &Response{Status: resp.StatusCode, Raw: &rawBody{ReadCloser: resp.Body, cancel: ex.cancel}}
		if d.ReceiveResponse {
			out.Header = headerMap(resp.Header)
		}
		return out, nil
	}

	body, err := ex.accumulate(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, ex.classify(err)
	}

	out := &Response{
		Status: resp.StatusCode,
		Body:   body,
		JSON:   decodeBody(d.ResponseKind, body),
	}
	if d.ReceiveResponse {
		out.Header = headerMap(resp.Header)
	}
	return out, nil
}

// exchange tracks the abort-on-timeout state of one in-flight request.
type exchange struct {
	ctx      context.Context
	cancel   context.CancelFunc
	timer    *time.Timer
	timedOut atomic.Bool
	detached atomic.Bool
}

func newExchange(ctx context.Context, timeout time.Duration) *exchange {
	ex := &exchange{}
	ex.ctx, ex.cancel = context.WithCancel(ctx)
	if timeout > 0 {
		ex.timer = time.AfterFunc(timeout, func() {
			ex.timedOut.Store(true)
			ex.cancel()
		})
	}
	return ex
}

// accumulate reads body chunks strictly in arrival order into one buffer.
// Decoding only ever sees the fully-concatenated result.
func (ex *exchange) accumulate(body io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	for {
		n, err := body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// detach hands lifecycle control to the caller: the timer stops and cancel
// is deferred to the raw body's Close.
func (ex *exchange) detach() {
	ex.detached.Store(true)
	if ex.timer != nil {
		ex.timer.Stop()
	}
}

// finish releases the exchange unless the caller took over via detach.
func (ex *exchange) finish() {
	if ex.detached.Load() {
		return
	}
	if ex.timer != nil {
		ex.timer.Stop()
	}
	ex.cancel()
}

// classify maps a stream-level failure onto the status-0 error shape,
// reporting the synthesized timeout distinctly from other causes.
func (ex *exchange) classify(err error) *Error {
	if ex.timedOut.Load() || errors.Is(err, context.DeadlineExceeded) {
		return newTransportError(statusTextTimeout, nil)
	}
	return newTransportError(statusTextConnection, err)
}

// rawBody ties the exchange's cancel function to the stream handed to the
// caller so abandoning the stream releases the connection.
type rawBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *rawBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// headerMap flattens response headers to a lower-cased key-value map, the
// stream-side header capture shape.
func headerMap(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		if len(vals) > 0 {
			out[strings.ToLower(k)] = vals[0]
		}
	}
	return out
}
