package baas

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSuccessStatus(t *testing.T) {
	for s := -10; s <= 600; s++ {
		want := s >= 200 && s < 300
		assert.Equalf(t, want, isSuccessStatus(s), "status %d", s)
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{StatusCode: 404, StatusText: "Not Found", ResponseText: `{"error":"no such object"}`}
	assert.Equal(t, `baas: 404 Not Found: {"error":"no such object"}`, err.Error())

	err = &Error{StatusCode: 0, StatusText: statusTextTimeout}
	assert.Equal(t, "baas: 0 Timeout", err.Error())
}

func TestClassifyTransportError(t *testing.T) {
	err := classifyTransportError(context.DeadlineExceeded)
	assert.Equal(t, 0, err.StatusCode)
	assert.Equal(t, statusTextTimeout, err.StatusText)

	err = classifyTransportError(errors.New("connection refused"))
	assert.Equal(t, 0, err.StatusCode)
	assert.Equal(t, statusTextConnection, err.StatusText)
	assert.Contains(t, err.ResponseText, "connection refused")
}
