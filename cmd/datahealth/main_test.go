package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdError(t *testing.T) {
	err := &ThresholdError{
		Message: "overall status RED meets the --fail-on=red threshold",
	}

	assert.Equal(t, "overall status RED meets the --fail-on=red threshold", err.Error())
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{
			name:     "ThresholdError",
			err:      &ThresholdError{Message: "threshold met"},
			wantType: "ThresholdError",
		},
		{
			name:     "regular error",
			err:      errors.New("config error"),
			wantType: "other",
		},
		{
			name:     "wrapped ThresholdError",
			err:      fmt.Errorf("run: %w", &ThresholdError{Message: "threshold met"}),
			wantType: "ThresholdError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var thresholdErr *ThresholdError
			isThreshold := errors.As(tt.err, &thresholdErr)

			if tt.wantType == "ThresholdError" {
				assert.True(t, isThreshold, "expected error to be detected as ThresholdError")
			} else {
				assert.False(t, isThreshold, "expected error NOT to be detected as ThresholdError")
			}
		})
	}
}
