package baas

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromiseResolve(t *testing.T) {
	p := newPromise()
	want := &Response{Status: 200, Body: []byte("ok")}
	p.resolve(want)

	got, err := p.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPromiseReject(t *testing.T) {
	p := newPromise()
	p.reject(&Error{StatusCode: 404, StatusText: "Not Found"})

	_, err := p.Await(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
}

// Racing completions must produce exactly one observable outcome, and the
// outcome must not change after it is first observed.
func TestPromiseAtMostOnce(t *testing.T) {
	for i := 0; i < 200; i++ {
		p := newPromise()
		resp := &Response{Status: 200}
		rejection := errors.New("boom")

		completions := []func(){
			func() { p.resolve(resp) },
			func() { p.reject(rejection) },
			func() { p.resolve(&Response{Status: 201}) },
			func() { p.reject(errors.New("later")) },
		}
		rand.Shuffle(len(completions), func(a, b int) {
			completions[a], completions[b] = completions[b], completions[a]
		})

		var wg sync.WaitGroup
		for _, complete := range completions {
			wg.Add(1)
			go func(f func()) {
				defer wg.Done()
				f()
			}(complete)
		}
		wg.Wait()

		first, firstErr := p.Await(context.Background())
		second, secondErr := p.Await(context.Background())
		assert.Equal(t, first, second)
		assert.Equal(t, firstErr, secondErr)
		if firstErr == nil {
			assert.NotNil(t, first)
		} else {
			assert.Nil(t, first)
		}
	}
}

func TestPromiseAwaitContextCancel(t *testing.T) {
	p := newPromise()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The promise itself is still pending and completes normally.
	p.resolve(&Response{Status: 200})
	got, err := p.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, got.Status)
}

func TestPromiseThenSuccess(t *testing.T) {
	p := newPromise()
	done := make(chan *Response, 1)
	p.Then(func(r *Response) { done <- r }, func(error) { t.Error("failure callback fired") })

	p.resolve(&Response{Status: 204})
	select {
	case r := <-done:
		assert.Equal(t, 204, r.Status)
	case <-time.After(time.Second):
		t.Fatal("success callback never fired")
	}
}

func TestPromiseThenFailure(t *testing.T) {
	p := newPromise()
	done := make(chan error, 1)
	p.Then(func(*Response) { t.Error("success callback fired") }, func(err error) { done <- err })

	p.reject(&Error{StatusCode: 500, StatusText: "Internal Server Error"})
	select {
	case err := <-done:
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 500, apiErr.StatusCode)
	case <-time.After(time.Second):
		t.Fatal("failure callback never fired")
	}
}
