package engine

import "golang.org/x/time/rate"

// bwLimiter creates a rate.Limiter that caps aggregate throughput across all
// slice workers to bytesPerSec. The burst is set to one buffer chunk so
// natural read sizes pass without unnecessary blocking. Returns nil when
// unlimited.
func bwLimiter(bytesPerSec int64) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	burst := bufferSize
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}
