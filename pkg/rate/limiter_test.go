package rate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestNoLimiter(t *testing.T) {
	l := &NoLimiter{}
	for i := 0; i < 10000; i++ {
		assert.True(t, l.Allow("getBalance"))
	}
}

func TestLocalRateLimiter(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(2))

	for i := 0; i < 2; i++ {
		assert.True(t, l.Allow("getBalance"))
	}
	assert.False(t, l.Allow("getBalance"))

	// Ensure key partitioning is valid
	for i := 0; i < 2; i++ {
		assert.True(t, l.Allow("sendTransaction"))
	}
	assert.False(t, l.Allow("sendTransaction"))
}

func TestLocalRateLimiter_FractionalLimit(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(0.5))

	assert.True(t, l.Allow("getBalance"))
	assert.False(t, l.Allow("getBalance"))
}
