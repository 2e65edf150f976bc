package mock

import (
	"context"
	"sync"

	baas "github.com/nec-baas/baas-client-go"
)

// Executor is a scripted baas.RequestExecutor for tests. Each Execute call
// consumes the next scripted outcome; once the script is exhausted it
// keeps returning a plain 200 with a small JSON body.
type Executor struct {
	mu        sync.Mutex
	Responses []*baas.Response
	Errors    []error

	// Descriptors records every descriptor seen, in order.
	Descriptors []*baas.Descriptor

	calls int
}

// Execute returns the next scripted outcome and records the descriptor.
func (m *Executor) Execute(_ context.Context, d *baas.Descriptor) (*baas.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Descriptors = append(m.Descriptors, d)
	i := m.calls
	m.calls++
	if i < len(m.Errors) && m.Errors[i] != nil {
		return nil, m.Errors[i]
	}
	if i < len(m.Responses) && m.Responses[i] != nil {
		return m.Responses[i], nil
	}
	return &baas.Response{Status: 200, Body: []byte(`{"success":true}`)}, nil
}

// Exchange lets the Executor double as a baas.OfflineProvider, so it can
// be installed on a Service with SetOfflineProvider.
func (m *Executor) Exchange(ctx context.Context, d *baas.Descriptor) (*baas.Response, error) {
	return m.Execute(ctx, d)
}

// Calls reports how many times Execute ran.
func (m *Executor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
