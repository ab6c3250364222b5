package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/metaverf/metaverf-ledger/pkg/retry/backoff"
)

// Strategy decides whether a failed action should run again. attempts counts
// the executions so far, starting at 1. Strategies may block, which is how
// backoff is implemented.
type Strategy func(attempts uint, err error) bool

// Limit stops once the action has executed maxAttempts times
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// Context stops once ctx is done
func Context(ctx context.Context) Strategy {
	return func(_ uint, _ error) bool {
		return ctx.Err() == nil
	}
}

// If retries only the errors for which retriable returns true
func If(retriable func(error) bool) Strategy {
	return func(_ uint, err error) bool {
		return retriable(err)
	}
}

// RetriableErrors retries only errors matching one of the targets, as
// determined by errors.Is.
func RetriableErrors(targets ...error) Strategy {
	return If(func(err error) bool {
		return matchesAny(err, targets)
	})
}

// NonRetriableErrors retries everything except errors matching one of the
// targets, as determined by errors.Is.
func NonRetriableErrors(targets ...error) Strategy {
	return If(func(err error) bool {
		return !matchesAny(err, targets)
	})
}

// Backoff sleeps for the delay given by strategy, capped at maxBackoff, and
// always allows the retry.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return BackoffWithJitter(strategy, maxBackoff, 0)
}

// BackoffWithJitter is Backoff with the capped delay randomly adjusted by up
// to +/- jitter of itself. A capped delay of 100ms with a jitter of 0.1 sleeps
// somewhere within [90ms, 110ms].
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := min(strategy(attempts), maxBackoff)
		if jitter > 0 {
			delay = time.Duration(float64(delay) * (1 + jitter*(2*rand.Float64()-1)))
		}

		sleeperImpl.Sleep(delay)
		return true
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (r *realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = &realSleeper{}
