// Package backoff provides delay schedules for retries
package backoff

import (
	"math"
	"time"
)

// Strategy returns the delay before the next attempt. attempts starts at 1.
type Strategy func(attempts uint) time.Duration

// Constant waits interval between every attempt
func Constant(interval time.Duration) Strategy {
	return func(uint) time.Duration {
		return interval
	}
}

// Linear waits baseDelay * attempts, for example 2s, 4s, 6s, ...
func Linear(baseDelay time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		return scale(baseDelay, float64(attempts))
	}
}

// Exponential waits baseDelay * base^(attempts-1). Exponential(2s, 3) waits
// 2s, 6s, 18s, ...
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		return scale(baseDelay, math.Pow(base, float64(attempts)-1))
	}
}

// BinaryExponential is Exponential with a base of 2
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}

// scale multiplies d by factor, saturating at the max duration
func scale(d time.Duration, factor float64) time.Duration {
	scaled := float64(d) * factor
	if scaled >= math.MaxInt64 || scaled < 0 {
		return math.MaxInt64
	}
	return time.Duration(scaled)
}
