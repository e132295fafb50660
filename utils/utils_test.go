package utils

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(8)
	require.NoError(t, err)

	assert.Len(t, code, 16)
	assert.Equal(t, strings.ToUpper(code), code)
	_, err = hex.DecodeString(code)
	assert.NoError(t, err)

	other, err := GenerateCode(8)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestCircuitBreaker_PassesThrough(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()

	err := cb.Do(ctx, func(context.Context) error { return nil })
	assert.NoError(t, err)

	err = cb.Do(ctx, func(context.Context) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_ = cb.Do(ctx, func(context.Context) error { return assert.AnError })
	}
	assert.Equal(t, BreakerOpen, cb.State())

	err := cb.Do(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
}
