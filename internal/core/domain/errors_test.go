package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		sentinel error
	}{
		{"validation", Validation("bad", "fix it"), ErrInvalidInput},
		{"not found", NotFound("gone", ""), ErrNotFound},
		{"policy", PolicyDenied(DenyHost, "host x not allowed"), ErrPolicyDenied},
		{"upstream", Upstream("search failed", errors.New("502")), ErrUpstream},
		{"timeout", Timeout("fetch timed out", context.DeadlineExceeded), ErrTimeout},
		{"overloaded", Overloaded("busy"), ErrOverloaded},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.sentinel)
			assert.NotErrorIs(t, tc.err, ErrUnsupportedType)

			wrapped := fmt.Errorf("tool call: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.sentinel)
			got, ok := AsError(wrapped)
			require.True(t, ok)
			assert.Same(t, tc.err, got)
		})
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	err := Timeout("fetch timed out", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "timeout: fetch timed out: context deadline exceeded", err.Error())
	assert.Equal(t, "validation: bad", Validation("bad", "").Error())
}

func TestError_Retryable(t *testing.T) {
	assert.False(t, Validation("x", "").Retryable())
	assert.False(t, NotFound("x", "").Retryable())
	assert.False(t, PolicyDenied(DenyScheme, "x").Retryable())
	assert.True(t, Upstream("x", nil).Retryable())
	assert.True(t, Timeout("x", nil).Retryable())
	assert.True(t, Overloaded("x").Retryable())
}

func TestPolicyDenied_CarriesReasonAndHint(t *testing.T) {
	err := PolicyDenied(DenyPrivateNetwork, "10.0.0.5 is private")
	assert.Equal(t, DenyPrivateNetwork, err.Reason)
	assert.Contains(t, err.Hint, "allowPrivateNetworkTargets")

	assert.Contains(t, PolicyDenied(DenyHost, "").Hint, "allowedHostAllowlist")
	assert.Contains(t, PolicyDenied(DenyDisabled, "").Hint, "disabled")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrap: %w", NotFound("x", ""))))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Decision{Allowed: true}.Err())

	err := Decision{Reason: DenyScheme, Detail: "scheme ftp is not allowed"}.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPolicyDenied)
	derr, _ := AsError(err)
	assert.Equal(t, DenyScheme, derr.Reason)
	assert.Equal(t, "scheme ftp is not allowed", derr.Message)
}
