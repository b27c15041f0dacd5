package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{name: "nil", err: nil, expected: KindUnknown},
		{name: "plain error", err: errors.New("boom"), expected: KindProviderFailure},
		{name: "not found", err: NotFound("resolve", "no place"), expected: KindNotFound},
		{name: "wrapped permission", err: fmt.Errorf("location: %w", PermissionDenied("request once")), expected: KindPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetKind(tt.err))
		})
	}
}

func TestError_Message(t *testing.T) {
	err := ProviderFailure("directions", errors.New("timeout"))
	assert.Equal(t, "directions: timeout", err.Error())
	assert.True(t, Is(err, KindProviderFailure))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "provider_failure", err.Kind.String())

	err = &Error{Kind: KindDecode, Message: "truncated", Err: errors.New("offset 3")}
	assert.Equal(t, "truncated: offset 3", err.Error())
}
