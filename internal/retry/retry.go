// Package retry implements bounded exponential backoff for network
// operations. Policies are plain values so each caller can carry its own
// preset without shared mutable state.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Policy describes a retry schedule. Delays grow as MinDelay*Multiplier^n,
// capped at MaxDelay. A nil Retryable retries every error.
type Policy struct {
	MaxAttempts int
	Multiplier  float64
	MinDelay    time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool

	// Sleep waits out the backoff between attempts. Nil uses a real
	// timer; callers that centralize their pauses inject their own.
	Sleep func(context.Context, time.Duration) error
}

// ── Presets ──────────────────────────────────────────────────────────

// FeedFetch retries transient feed-download failures: 5 attempts with a
// flat 4s..30s backoff, only for network-shaped errors.
var FeedFetch = Policy{
	MaxAttempts: 5,
	Multiplier:  1,
	MinDelay:    4 * time.Second,
	MaxDelay:    30 * time.Second,
	Retryable:   IsTransientNetErr,
}

// Analysis retries whole-source LLM analysis: 5 attempts doubling from 4s
// up to 120s. Any error counts; the model side gives no reliable signal to
// discriminate on.
var Analysis = Policy{
	MaxAttempts: 5,
	Multiplier:  2,
	MinDelay:    4 * time.Second,
	MaxDelay:    120 * time.Second,
}

// KeyCheck retries the API-key verification ping: 3 quick attempts.
var KeyCheck = Policy{
	MaxAttempts: 3,
	Multiplier:  1,
	MinDelay:    time.Second,
	MaxDelay:    10 * time.Second,
}

// Do runs op under the policy, sleeping between attempts. It stops early
// when ctx is cancelled, when op succeeds, or when the policy deems an
// error non-retryable. The last error is returned wrapped with the attempt
// count.
func Do(ctx context.Context, p Policy, op func(context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	var lastErr error
	delay := p.MinDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}
		if p.Sleep != nil {
			if err := p.Sleep(ctx, delay); err != nil {
				return err
			}
		} else {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if p.Multiplier > 1 {
			delay = time.Duration(float64(delay) * p.Multiplier)
		}
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return fmt.Errorf("after %d attempts: %w", p.MaxAttempts, lastErr)
}

// IsTransientNetErr reports whether err looks like a transient network
// failure worth retrying: timeouts, DNS failures, malformed-response URL
// errors, and reset connections.
func IsTransientNetErr(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF")
}
