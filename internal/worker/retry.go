package worker

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// retrySleepFunc is the sleep function used between retries (injectable for tests)
var retrySleepFunc = sleepWithContext

// Retrier retries rate-limited collaborator calls with exponential backoff
// and jitter. Non-rate-limit errors are returned immediately: transient
// overload is the only failure class worth waiting out.
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxBackoff time.Duration
}

// NewRetrier creates a retrier with the given policy
func NewRetrier(maxRetries int, baseDelay, maxBackoff time.Duration) *Retrier {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	return &Retrier{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxBackoff: maxBackoff,
	}
}

// Do invokes fn, retrying on rate-limit-class errors until the retry budget
// is exhausted. The last error is returned once retries run out.
func (r *Retrier) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsRateLimitError(err) {
			return err
		}
		if attempt >= r.MaxRetries {
			break
		}
		if sleepErr := retrySleepFunc(ctx, r.backoff(attempt, err)); sleepErr != nil {
			return sleepErr
		}
	}
	return fmt.Errorf("rate limit retries exhausted after %d attempts: %w", r.MaxRetries+1, err)
}

// backoff computes the delay before the next attempt. A provider-supplied
// "retry after N seconds" hint wins over the computed exponential delay.
func (r *Retrier) backoff(attempt int, err error) time.Duration {
	if hint, ok := RetryAfterHint(err.Error()); ok {
		if hint > r.MaxBackoff {
			return r.MaxBackoff
		}
		return hint
	}

	delay := r.BaseDelay << uint(attempt)
	if delay > r.MaxBackoff || delay <= 0 {
		delay = r.MaxBackoff
	}

	// Up to 25% jitter to avoid thundering herds
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}

// rateLimitMarkers are substrings that classify an error as rate-limiting
var rateLimitMarkers = []string{
	"rate limit",
	"rate_limit",
	"too many requests",
	"429",
	"quota exceeded",
	"resource exhausted",
}

// IsRateLimitError reports whether the error looks like provider throttling
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

var retryAfterPattern = regexp.MustCompile(`(?i)(?:retry|try)\s+(?:again\s+)?(?:after|in)\s+(\d+(?:\.\d+)?)\s*s`)

// RetryAfterHint extracts a provider-supplied "retry after N seconds" hint
// from error text, if present
func RetryAfterHint(msg string) (time.Duration, bool) {
	matches := retryAfterPattern.FindStringSubmatch(msg)
	if len(matches) < 2 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
