// Package transport provides HTTP client middleware for generation backends.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// RateLimitedTransport honors retry-after headers on 429 responses before handing
// the response back to the client. Generation-level failures are still surfaced to
// the caller after a single pass; this only smooths provider-side rate limits.
type RateLimitedTransport struct {
	base   http.RoundTripper
	logger zerolog.Logger
}

func WithRateLimiting(base http.RoundTripper, logger zerolog.Logger) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RateLimitedTransport{base: base, logger: logger}
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Preserve the original request body for retries
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		err = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close request body: %w", err)
		}
	}

	for {
		// Restore the request body for each attempt
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return resp, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := parseRetryAfter(resp.Header.Get("retry-after"))
			if waitDuration > 0 {
				err = resp.Body.Close()
				if err != nil {
					return nil, fmt.Errorf("failed to close response body: %w", err)
				}

				t.logger.Warn().Dur("wait", waitDuration).Msg("rate limited, waiting")
				select {
				case <-req.Context().Done():
					return nil, req.Context().Err()
				case <-time.After(waitDuration):
					continue
				}
			}
		}

		return resp, err
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if retryTime, err := time.Parse(time.RFC1123, header); err == nil {
		return time.Until(retryTime)
	}
	return 0
}
