// config.go
// ---------
// This file defines the Config structure, the single configuration context
// read by both executors at request-build time. It covers the service
// identity (base URI, tenant, app credentials), the default timeout, and
// the stream-level transport settings: connection agents, proxy, and
// client-certificate options.
//
// The whole Config is scoped to one Service. Two Services that want
// different proxies simply hold different Configs; within one Service the
// one-session-per-authority invariant of the HTTP/2 pool holds.
package baas

import (
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// DefaultTimeout applies when a request does not set its own timeout.
const DefaultTimeout = 30 * time.Second

// Config carries the per-service configuration context.
type Config struct {
	// BaseURI is the API endpoint root, e.g. "https://api.example.com/api".
	BaseURI string

	// TenantID selects the tenant path segment of every request URL.
	TenantID string

	// AppID and AppKey are sent on every request as the fixed
	// identification headers.
	AppID  string
	AppKey string

	// Timeout is the default per-request timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// Proxy, when set, routes stream-executor exchanges through an HTTP
	// proxy tunnel.
	Proxy *url.URL

	// PlainAgent and TLSAgent are the shared connection agents for the
	// stream executor's one-connection-per-request protocol. Nil fields get
	// default agents built from the rest of the Config.
	PlainAgent *http.Transport
	TLSAgent   *http.Transport

	// TLSOptions carries client-certificate material for TLS exchanges.
	// Built via TLSOptionsFromMap which enforces the option allow-list.
	TLSOptions *TLSOptions

	// EnableHTTP2 opts every request of this service into the multiplexed
	// session protocol. Individual requests may also opt in.
	EnableHTTP2 bool

	// Debug enables debug logging on the service logger.
	Debug bool
}

// Validate checks the fields required before any request can be built.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURI, validation.Required, is.URL),
		validation.Field(&c.TenantID, validation.Required),
		validation.Field(&c.AppID, validation.Required),
		validation.Field(&c.AppKey, validation.Required),
	)
	if err != nil {
		return ErrConfiguration.Wrap(err)
	}
	return nil
}

func (c *Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}
