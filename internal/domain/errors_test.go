package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisputeError(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
		details string
		err     error
	}{
		{
			name:    "Not found",
			code:    CodeNotFound,
			message: "reason code not found",
			details: "visa 99.9",
			err:     ErrNotFound,
		},
		{
			name:    "Not ready",
			code:    CodeNotReady,
			message: "catalog still loading",
			err:     ErrNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDisputeError(tt.code, tt.message, tt.details, tt.err)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.details, err.Details)
			assert.WithinDuration(t, time.Now(), err.Timestamp, time.Minute)
			assert.Equal(t, tt.code+": "+tt.message, err.Error())
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("scenario", "scenario text is required", "")

	assert.Equal(t, "validation error for field 'scenario': scenario text is required", err.Error())
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"wrapped not found", fmt.Errorf("reason visa/99.9: %w", ErrNotFound), CodeNotFound},
		{"malformed", fmt.Errorf("keywords: %w", ErrMalformedInput), CodeMalformedInput},
		{"not ready", ErrNotReady, CodeNotReady},
		{"catalog unavailable", ErrCatalogUnavailable, CodeCatalogUnavailable},
		{"store unavailable", fmt.Errorf("redis: %w", ErrStoreUnavailable), CodeStoreUnavailable},
		{"validation", NewValidationError("bin", "must be 6 digits", "12"), CodeValidation},
		{"dispute error", NewDisputeError(CodeRateLimit, "slow down", "", nil), CodeRateLimit},
		{"unknown", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}
