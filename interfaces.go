package baas

import "context"

// RequestExecutor is the strategy interface both transports implement.
// Execute performs exactly one exchange for the descriptor and returns
// exactly one outcome; it never retries. Transport-level failures are
// returned as a status-0 *Error, protocol-level failures as an *Error
// carrying the real status code.
type RequestExecutor interface {
	Execute(ctx context.Context, d *Descriptor) (*Response, error)
}

// OfflineProvider is the narrow hook for the offline bridge mode: an
// opaque request/response exchange with an external native runtime. When
// installed on a Service it replaces both network executors. The exchange
// semantics beyond this signature belong to the runtime, not to this SDK.
type OfflineProvider interface {
	Exchange(ctx context.Context, d *Descriptor) (*Response, error)
}
