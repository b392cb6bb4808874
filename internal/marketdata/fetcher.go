package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// FetchFunc performs exactly one upstream call for a resource kind and
// translates the response into typed records. Implementations never retry;
// the retry policy is the resolver's fallback chain.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Common upstream errors.
var (
	ErrRateLimited     = errors.New("rate limited by upstream")
	ErrInvalidResponse = errors.New("structurally invalid upstream response")
)

// UpstreamError wraps a fetch failure with the upstream and resource kind
// it came from. Transport failures, non-2xx statuses and structurally
// invalid payloads are all reported through it.
type UpstreamError struct {
	Upstream string
	Kind     string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream=%s kind=%s: %v", e.Upstream, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates an upstream error with context.
func NewUpstreamError(upstream, kind string, err error) error {
	return &UpstreamError{
		Upstream: upstream,
		Kind:     kind,
		Err:      err,
	}
}

// SharedHTTPClient returns an HTTP client with a bounded per-call timeout,
// so a hung upstream cannot stall the resolver chain.
func SharedHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// DefaultUserAgent returns the User-Agent sent to upstream APIs.
func DefaultUserAgent() string {
	return "finnow-bot/1.0"
}
