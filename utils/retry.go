// Package utils provides optional helpers layered on top of the SDK. The
// transport layer itself never retries; retry policy belongs to the
// caller, and this package is one ready-made policy.
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	baas "github.com/nec-baas/baas-client-go"
)

// Retry runs op with exponential backoff until it succeeds, maxElapsed
// passes, or ctx is done. Only transport-level failures (status 0) and
// server-side 5xx are retried; every other failure is permanent and
// returned as-is.
func Retry(ctx context.Context, maxElapsed time.Duration, op func(ctx context.Context) (*baas.Response, error)) (*baas.Response, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed

	var resp *baas.Response
	err := backoff.Retry(func() error {
		r, err := op(ctx)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func retryable(err error) bool {
	var apiErr *baas.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == 0 || apiErr.StatusCode >= 500
}
