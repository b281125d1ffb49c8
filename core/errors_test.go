package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	errMissing := errors.New("not found")

	tests := []struct {
		name    string
		err     error
		message string
		fields  map[string]string
	}{
		{"plain", NewValidationError(errors.New("bad input")), "bad input", nil},
		{"field", NewFieldError("assignment_id", errMissing), "not found", map[string]string{"assignment_id": "not found"}},
		{"fields only", NewValidationError(nil, FieldError{"score", "too high"}), "score: too high", map[string]string{"score": "too high"}},
		{"empty", NewValidationError(nil), "validation failed", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			require.True(t, errors.As(tt.err, &verr))
			assert.Equal(t, tt.message, verr.Error())
			assert.Equal(t, tt.fields, verr.FieldMap())
		})
	}

	assert.True(t, errors.Is(NewFieldError("assignment_id", errMissing), errMissing))
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("stop"), "serving")))
	assert.False(t, IsShutdown(errors.New("stop")))
}
