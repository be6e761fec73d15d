package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimited is matched by a StatusError carrying HTTP 429.
var ErrRateLimited = errors.New("rate limited")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// Policy decides whether a failed attempt is retried and how long to wait first.
//
//   - 429: wait RateLimitBase × (attempt+1)
//   - transport errors (timeouts, resets, DNS): wait NetworkBackoff
//   - any other HTTP status: give up immediately
//
// Attempts bounds the total number of requests, including the first.
type Policy struct {
	Attempts       int
	RateLimitBase  time.Duration
	NetworkBackoff time.Duration
}

// DefaultPolicy derives the backoff from the inter-request delay.
func DefaultPolicy(requestDelay time.Duration) Policy {
	return Policy{
		Attempts:       3,
		RateLimitBase:  10 * time.Second,
		NetworkBackoff: 2 * requestDelay,
	}
}

// Next is called after attempt (0-based) failed with err. Callers handle
// their own context cancellation before consulting the policy.
func (p Policy) Next(attempt int, err error) (time.Duration, bool) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	if attempt+1 >= attempts {
		return 0, false
	}
	if errors.Is(err, ErrRateLimited) {
		return p.RateLimitBase * time.Duration(attempt+1), true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return 0, false
	}
	return p.NetworkBackoff, true
}

// Sleeper pauses between requests. Implementations must return early with
// ctx.Err() when ctx is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// WallClock sleeps on real timers.
var WallClock Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})
