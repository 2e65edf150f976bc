// http2_sessions.go
// -----------------
// Sub-protocol B of the stream executor: one long-lived multiplexed
// session per authority, reused across requests and across façade
// instances for as long as the owning executor lives.
//
// Pool rules: sessions are created lazily on first use; before every
// request the pool is swept and sessions reporting closed or closing are
// evicted; explicit close attempts a graceful drain before destroying and
// always deregisters the authority. A dead session for an authority that
// is never requested again stays in the map until the process exits —
// eviction is opportunistic, not timer-driven.
package baas

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/zeebo/errs"
	"golang.org/x/net/http2"
)

// errH2Unavailable reports that the peer did not negotiate a multiplexed
// session; the executor downgrades to one connection per request.
var errH2Unavailable = errs.New("peer did not negotiate h2")

// sessionShutdownGrace bounds the graceful drain before a session is
// destroyed outright.
const sessionShutdownGrace = 5 * time.Second

// Session is one pooled multiplexed connection to an authority.
type Session struct {
	Authority string
	conn      net.Conn
	cc        *http2.ClientConn
}

// Alive reports whether the session can still carry new streams.
func (s *Session) Alive() bool {
	state := s.cc.State()
	return !state.Closed && !state.Closing
}

func (s *Session) destroy() error {
	err := s.cc.Close()
	return errs.Combine(err, s.conn.Close())
}

// shutdown drains in-flight streams within the grace period, then forces
// the session closed either way. A successful drain already closes the
// underlying connection, so only the forced path touches it.
func (s *Session) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sessionShutdownGrace)
	defer cancel()
	if err := s.cc.Shutdown(ctx); err != nil {
		return errs.Combine(err, s.destroy())
	}
	return nil
}

type sessionPool struct {
	mu       sync.Mutex
	sessions map[string]*Session
	t        *http2.Transport
	tlsCfg   *tls.Config
	proxy    *url.URL
	log      hclog.Logger
}

func newSessionPool(tlsCfg *tls.Config, proxy *url.URL, log hclog.Logger) *sessionPool {
	return &sessionPool{
		sessions: make(map[string]*Session),
		t:        &http2.Transport{AllowHTTP: true},
		tlsCfg:   tlsCfg,
		proxy:    proxy,
		log:      log,
	}
}

// authorityOf resolves the pool key for a target URL: scheme://host with
// an explicit port.
func authorityOf(u *url.URL) string {
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host = net.JoinHostPort(u.Hostname(), "443")
		} else {
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	return u.Scheme + "://" + host
}

// acquire returns the live session for the target's authority, creating
// and registering one if needed. The pre-request sweep happens here.
func (p *sessionPool) acquire(ctx context.Context, u *url.URL) (*Session, error) {
	authority := authorityOf(u)

	p.mu.Lock()
	p.sweepLocked()
	if s, ok := p.sessions[authority]; ok {
		p.mu.Unlock()
		p.log.Debug("session reused", "authority", authority)
		return s, nil
	}
	p.mu.Unlock()

	s, err := p.open(ctx, u, authority)
	if err != nil {
		return nil, err
	}
	return p.register(s), nil
}

// register installs a freshly-opened session, resolving the race against
// concurrent opens for the same authority. A live entry that won the race
// is kept and the newcomer destroyed; a dead entry is destroyed before it
// is replaced so its connection is released.
func (p *sessionPool) register(s *Session) *Session {
	p.mu.Lock()
	if existing, ok := p.sessions[s.Authority]; ok {
		if existing.Alive() {
			p.mu.Unlock()
			_ = s.destroy()
			return existing
		}
		_ = existing.destroy()
	}
	p.sessions[s.Authority] = s
	p.mu.Unlock()
	p.log.Debug("session opened", "authority", s.Authority)
	return s
}

func (p *sessionPool) open(ctx context.Context, u *url.URL, authority string) (*Session, error) {
	conn, err := p.dial(ctx, u)
	if err != nil {
		return nil, err
	}
	if tlsConn, ok := conn.(*tls.Conn); ok {
		if tlsConn.ConnectionState().NegotiatedProtocol != "h2" {
			conn.Close()
			return nil, errH2Unavailable
		}
	}
	cc, err := p.t.NewClientConn(conn)
	if err != nil {
		conn.Close()
		return nil, newTransportError(statusTextConnection, err)
	}
	return &Session{Authority: authority, conn: conn, cc: cc}, nil
}

// dial opens the underlying connection, tunneling through the configured
// proxy when set and negotiating TLS with h2 preferred but not required.
func (p *sessionPool) dial(ctx context.Context, u *url.URL) (net.Conn, error) {
	hostport := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		hostport = net.JoinHostPort(u.Hostname(), port)
	}

	var conn net.Conn
	var err error
	if p.proxy != nil {
		conn, err = connectTunnel(ctx, p.proxy, hostport)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", hostport)
	}
	if err != nil {
		return nil, newTransportError(statusTextConnection, err)
	}

	if u.Scheme != "https" {
		return conn, nil
	}

	cfg := p.tlsCfg.Clone()
	if cfg == nil {
		cfg = &tls.Config{}
	}
	cfg.ServerName = u.Hostname()
	cfg.NextProtos = []string{"h2", "http/1.1"}
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, newTransportError(statusTextConnection, err)
	}
	return tlsConn, nil
}

// connectTunnel establishes an HTTP CONNECT tunnel to hostport through the
// proxy.
func connectTunnel(ctx context.Context, proxy *url.URL, hostport string) (net.Conn, error) {
	proxyHost := proxy.Host
	if proxy.Port() == "" {
		proxyHost = net.JoinHostPort(proxy.Hostname(), "80")
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", proxyHost)
	if err != nil {
		return nil, err
	}

	connect := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: hostport},
		Host:   hostport,
		Header: http.Header{},
	}
	if proxy.User != nil {
		if pass, ok := proxy.User.Password(); ok {
			connect.SetBasicAuth(proxy.User.Username(), pass)
		}
	}
	if err := connect.Write(conn); err != nil {
		conn.Close()
		return nil, err
	}
	resp, err := http.ReadResponse(bufio.NewReader(conn), connect)
	if err != nil {
		conn.Close()
		return nil, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, errs.New("proxy refused tunnel: %s", resp.Status)
	}
	return conn, nil
}

func (p *sessionPool) sweepLocked() {
	for authority, s := range p.sessions {
		if !s.Alive() {
			delete(p.sessions, authority)
			_ = s.destroy()
			p.log.Debug("session evicted", "authority", authority)
		}
	}
}

func (p *sessionPool) authorities() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sessions))
	for authority := range p.sessions {
		out = append(out, authority)
	}
	sort.Strings(out)
	return out
}

func (p *sessionPool) lookup(authority string) (*Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[authority]
	return s, ok
}

// close deregisters the authority and shuts its session down. Always
// removes the pool entry, even when shutdown reports an error.
func (p *sessionPool) close(authority string) error {
	p.mu.Lock()
	s, ok := p.sessions[authority]
	delete(p.sessions, authority)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	return s.shutdown()
}

func (p *sessionPool) closeAll() error {
	p.mu.Lock()
	all := make([]*Session, 0, len(p.sessions))
	for authority, s := range p.sessions {
		all = append(all, s)
		delete(p.sessions, authority)
	}
	p.mu.Unlock()

	var group errs.Group
	for _, s := range all {
		group.Add(s.shutdown())
	}
	return group.Err()
}

// executeH2 runs one exchange as a stream on the pooled session for the
// target authority. Method and path pseudo-headers are set by the
// underlying framing layer from the request line.
func (e *StreamExecutor) executeH2(ctx context.Context, d *Descriptor, u *url.URL) (*Response, error) {
	sess, err := e.sessions.acquire(ctx, u)
	if err != nil {
		return nil, err
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

	e.log.Debug("multiplexed exchange", "method", d.Method, "url", d.URL, "authority", sess.Authority)
	resp, err := sess.cc.RoundTrip(req)
	if err != nil {
		if ex.timedOut.Load() {
			return nil, newTransportError(statusTextTimeout, nil)
		}
		// The stream ended without usable response metadata.
		return nil, newTransportError(statusTextNoResponse, err)
	}
	return e.consume(d, resp, ex)
}
