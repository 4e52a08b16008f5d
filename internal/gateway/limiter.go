package gateway

import "golang.org/x/time/rate"

// NewLimiter returns a limiter allowing rps requests per second with a burst of
// one second's worth. A non-positive rps never blocks.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
}
