// sdk.go
// ------
// The sdk.go file contains the core Service struct and its methods. This
// is the main entry point of the SDK for users.
//
// Key functionalities include:
// - Initializing the SDK with NewService()
// - Building requests via Service.NewRequest()
// - Holding the session token shared by every request of the service
// - Selecting the execution strategy (buffered, stream, or offline)
//
// The Service owns one configuration context and both executors; the
// executors read shared transport settings from that context at
// request-build time rather than duplicating them per request.
package baas

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Fixed identification headers carried by every request, plus the
// optional session-token header.
const (
	HeaderAppID        = "X-Application-Id"
	HeaderAppKey       = "X-Application-Key"
	HeaderSessionToken = "X-Session-Token"
)

// Service is a configured connection to one tenant of the backend.
type Service struct {
	mu  sync.Mutex
	cfg *Config
	log hclog.Logger

	buffered *BufferedExecutor
	stream   *StreamExecutor
	offline  OfflineProvider

	sessionToken  string
	sessionExpire int64
}

// NewService validates cfg and builds a Service with both execution
// strategies ready.
func NewService(cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level := hclog.Info
	if cfg.Debug {
		level = hclog.Debug
	}
	log := hclog.New(&hclog.LoggerOptions{Name: "baas", Level: level})

	stream, err := NewStreamExecutor(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:      cfg,
		log:      log,
		buffered: NewBufferedExecutor(nil, log),
		stream:   stream,
	}, nil
}

// SetDebug toggles debug logging for the service.
func (s *Service) SetDebug(enabled bool) {
	if enabled {
		s.log.SetLevel(hclog.Debug)
	} else {
		s.log.SetLevel(hclog.Info)
	}
}

// NewRequest starts a request builder for an API path such as
// "/objects/books". The path is resolved against the service base URI and
// tenant.
func (s *Service) NewRequest(path string) *Request {
	return newRequest(s, path)
}

// SetSessionToken installs the session token (and its expiry, unix
// seconds) sent with subsequent requests. An empty token clears it.
func (s *Service) SetSessionToken(token string, expire int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionToken = token
	s.sessionExpire = expire
}

// SessionToken returns the current session token, or "" when none is set.
func (s *Service) SessionToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionToken
}

// SessionExpire returns the unix-seconds expiry of the current session
// token, 0 when unknown.
func (s *Service) SessionExpire() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionExpire
}

// SetOfflineProvider installs the offline bridge. While set, every request
// of this service is exchanged through it instead of the network.
func (s *Service) SetOfflineProvider(p OfflineProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = p
}

// StreamExecutor exposes the stream strategy, mainly for its session
// management surface (Sessions, CloseSession, CloseAllSessions).
func (s *Service) StreamExecutor() *StreamExecutor { return s.stream }

// executorFor picks the strategy for one descriptor. The offline bridge
// wins outright; the stream executor handles anything needing streaming
// capability or stream-level configuration; the buffered executor covers
// the rest.
func (s *Service) executorFor(d *Descriptor) RequestExecutor {
	s.mu.Lock()
	offline := s.offline
	s.mu.Unlock()
	if offline != nil {
		return offlineExecutor{offline}
	}
	if d.UseHTTP2 || d.RawMessage || s.streamConfigured() {
		return s.stream
	}
	return s.buffered
}

func (s *Service) streamConfigured() bool {
	return s.cfg.Proxy != nil || s.cfg.TLSOptions != nil ||
		s.cfg.PlainAgent != nil || s.cfg.TLSAgent != nil
}

// offlineExecutor adapts an OfflineProvider to the executor strategy.
type offlineExecutor struct {
	p OfflineProvider
}

func (o offlineExecutor) Execute(ctx context.Context, d *Descriptor) (*Response, error) {
	return o.p.Exchange(ctx, d)
}
