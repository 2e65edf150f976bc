// promise.go
// ----------
// The single place where a pending request is completed exactly once,
// regardless of which executor produced the outcome and regardless of
// whether the caller awaits or supplies a callback pair.
package baas

import (
	"context"
	"sync"
)

// Promise carries the eventual outcome of one logical request. It is
// created together with the request's descriptor and discarded after
// completion; executors only ever hold a reference, never ownership.
//
// Completion is at-most-once: after either resolve or reject fires, every
// further completion attempt is ignored.
type Promise struct {
	once sync.Once
	done chan struct{}
	resp *Response
	err  error
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

func (p *Promise) resolve(resp *Response) {
	p.once.Do(func() {
		p.resp = resp
		close(p.done)
	})
}

func (p *Promise) reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Await blocks until the request completes or ctx is done. A ctx error only
// abandons the wait; it does not complete the Promise.
func (p *Promise) Await(ctx context.Context) (*Response, error) {
	select {
	case <-p.done:
		return p.resp, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then funnels the eventual outcome into a callback pair. Either callback
// may be nil. This adapter performs no logic of its own; it is the only
// place that knows callbacks were supplied at all.
func (p *Promise) Then(success func(*Response), failure func(error)) {
	go func() {
		<-p.done
		if p.err != nil {
			if failure != nil {
				failure(p.err)
			}
			return
		}
		if success != nil {
			success(p.resp)
		}
	}()
}
