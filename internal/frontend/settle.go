package frontend

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

var errNotReady = errors.New("frontend not ready")

// Settle controls the wait between an adapter appearing and its enumeration.
//
// With Interval > 0 the manager polls the adapter every Interval and stops
// once frontend0 is a character device and the number of frontends found
// is the same on two consecutive polls, or after Timeout. With
// Interval == 0 it sleeps for Timeout unconditionally. A zero Timeout
// disables waiting.
type Settle struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultSettle polls every 100ms for up to one second
func DefaultSettle() Settle {
	return Settle{
		Interval: 100 * time.Millisecond,
		Timeout:  time.Second,
	}
}

// FixedSettle reproduces the plain sleep used before polling existed
func FixedSettle(d time.Duration) Settle {
	return Settle{Timeout: d}
}

// Polling reports whether the policy polls rather than sleeps
func (s Settle) Polling() bool {
	return s.Interval > 0 && s.Timeout > 0
}

// wait blocks according to the policy. present reports how many frontends
// are visible, 0 while frontend0 is missing. It returns false only when
// polling gave up before the count settled.
func (s Settle) wait(present func() int) bool {
	if s.Timeout <= 0 {
		return true
	}

	if !s.Polling() {
		time.Sleep(s.Timeout)
		return true
	}

	last := 0
	backoff := retry.WithMaxDuration(s.Timeout, retry.NewConstant(s.Interval))
	err := retry.Do(context.Background(), backoff, func(_ context.Context) error {
		n := present()
		if n > 0 && n == last {
			return nil
		}
		last = n
		return retry.RetryableError(errNotReady)
	})
	return err == nil
}
