package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/code-payments/code-minter/pkg/retry/backoff"
)

// Strategy decides whether a failed action gets another attempt. attempts
// counts the attempts made so far. Strategies may sleep.
type Strategy func(attempts uint, err error) bool

// Limit allows at most maxAttempts attempts in total.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of errs.
func RetriableErrors(errs ...error) Strategy {
	return func(_ uint, err error) bool {
		return matchesAny(err, errs)
	}
}

// NonRetriableErrors retries everything except errors matching one of errs.
func NonRetriableErrors(errs ...error) Strategy {
	return func(_ uint, err error) bool {
		return !matchesAny(err, errs)
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

// Backoff sleeps for the strategy's delay, capped at maxBackoff, and always
// allows another attempt.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return BackoffWithJitter(strategy, maxBackoff, 0)
}

// BackoffWithJitter is Backoff with the capped delay scattered by up to
// jitter (a fraction) in either direction. A 100ms delay with a jitter of 0.1
// sleeps between 90ms and 110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := strategy(attempts)
		if delay > maxBackoff {
			delay = maxBackoff
		}
		if jitter > 0 {
			delay = time.Duration(float64(delay) * (1 + jitter*(2*rand.Float64()-1)))
		}

		sleeperImpl.Sleep(delay)
		return true
	}
}

// Context returns a strategy that stops retrying once ctx is done. It should
// be specified before any backoff strategy, so that a cancelled context does
// not incur one more delay.
func Context(ctx context.Context) Strategy {
	return func(attempts uint, err error) bool {
		return ctx.Err() == nil
	}
}

type sleeper interface {
	Sleep(time.Duration)
}

// realSleeper uses the time package to perform actual sleeps
type realSleeper struct{}

func (r *realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = &realSleeper{}
