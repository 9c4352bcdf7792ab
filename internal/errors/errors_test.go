package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		checkFn  func(error) bool
		expected bool
	}{
		{"ErrNotFound is recognized", ErrNotFound, IsNotFound, true},
		{"Wrapped ErrNotFound is recognized", fmt.Errorf("lookup: %w", ErrNotFound), IsNotFound, true},
		{"ErrNoDataset is a not-found condition", ErrNoDataset, IsNotFound, true},
		{"Wrapped ErrNoDataset is recognized", fmt.Errorf("search: %w", ErrNoDataset), IsNoDataset, true},
		{"ErrNotFound is not ErrNoDataset", ErrNotFound, IsNoDataset, false},
		{"ErrInvalidInput is recognized", ErrInvalidInput, IsInvalidInput, true},
		{"ValidationError counts as invalid input", NewValidationError("limit", "must be positive"), IsInvalidInput, true},
		{"Timeout is not invalid input", ErrTimeout, IsInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.checkFn(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("limit", "must be positive")

	assert.Equal(t, "limit", err.Field)
	assert.Equal(t, "must be positive", err.Message)
	assert.Equal(t, "validation failed on limit: must be positive", err.Error())
}

func TestSourceError(t *testing.T) {
	baseErr := errors.New("permission denied")
	err := NewSourceError("data/all_courses_1141.csv", baseErr)

	assert.Equal(t, "snapshot source error (source=data/all_courses_1141.csv): permission denied", err.Error())
	assert.ErrorIs(t, err, baseErr)
}
