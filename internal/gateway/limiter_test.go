package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestNewLimiter(t *testing.T) {
	off := NewLimiter(0)
	assert.Equal(t, rate.Inf, off.Limit())

	assert.Equal(t, rate.Inf, NewLimiter(-1).Limit())

	slow := NewLimiter(0.5)
	assert.Equal(t, rate.Limit(0.5), slow.Limit())
	assert.Equal(t, 1, slow.Burst(), "fractional rates still allow one request")

	fast := NewLimiter(10)
	assert.Equal(t, rate.Limit(10), fast.Limit())
	assert.Equal(t, 10, fast.Burst())
}
