package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestHTTPTimeouts verifies server timeout constants
func TestHTTPTimeouts(t *testing.T) {
	tests := []struct {
		name     string
		got      time.Duration
		expected time.Duration
	}{
		{"HTTPRead", HTTPRead, 10 * time.Second},
		{"HTTPWrite", HTTPWrite, 30 * time.Second},
		{"HTTPIdle", HTTPIdle, 120 * time.Second},
		{"GracefulShutdown", GracefulShutdown, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

// TestTimeoutRelationships verifies logical relationships between timeouts
func TestTimeoutRelationships(t *testing.T) {
	assert.Greater(t, HTTPWrite, HTTPRead, "write timeout should exceed read timeout")
	assert.Greater(t, HTTPIdle, HTTPWrite, "idle timeout should exceed write timeout")
	assert.Greater(t, R2Download, DatasetLoad, "remote download should allow more time than a local load")
}

func TestEngineLimits(t *testing.T) {
	assert.Equal(t, 50, MaxRecommendations)
	assert.Equal(t, 20, DefaultTargetCredits)
	assert.Equal(t, "通識", DefaultCategory)
	assert.Equal(t, 50, DefaultSearchLimit)
	assert.Equal(t, 100, DefaultHistoryLimit)
	assert.Equal(t, 10, TopDepartments)
}
