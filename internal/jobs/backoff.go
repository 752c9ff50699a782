package jobs

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default retry policy: base=30s, cap=1h, max_retries=3.
const (
	backoffBase       = 30 * time.Second
	backoffCap        = 1 * time.Hour
	DefaultMaxRetries = 3
)

// NextBackoff returns the delay before the (retryCount+1)th attempt:
// base · 2^retryCount, capped at backoffCap, with the library's randomized
// jitter applied. retryCount is 0 for the first retry after an initial
// failure.
func NextBackoff(retryCount int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backoffBase
	b.Multiplier = 2.0
	b.MaxInterval = backoffCap
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0 // never stop offering intervals
	b.Reset()

	var d time.Duration
	for i := 0; i <= retryCount; i++ {
		d = b.NextBackOff()
	}
	return d
}
