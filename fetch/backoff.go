package fetch

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff tuning.
const (
	backoffBase  = 0.6
	backoffFloor = 0.3
	jitterSpread = 0.15
)

// Backoff returns the delay before retrying after the given 1-based attempt:
// 0.6s doubled per attempt, plus jitter seconds, never below 0.3s.
func Backoff(attempt int, jitter float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	secs := math.Pow(2, float64(attempt-1))*backoffBase + jitter
	if secs < backoffFloor {
		secs = backoffFloor
	}
	return time.Duration(math.Round(secs * float64(time.Second)))
}

// Jitter returns a uniform random offset in [-0.15, 0.15] seconds.
func Jitter() float64 {
	return (rand.Float64()*2 - 1) * jitterSpread
}
