// Package fetch retrieves the raw CSV text for a load, from an http(s)
// URL or a local file.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ritzau/graph-explorer/pkg/logging"
)

var (
	// ErrInvalidSource marks sources rejected before any I/O.
	ErrInvalidSource = errors.New("invalid source")

	// ErrFetch marks network or file read failures after validation.
	ErrFetch = errors.New("fetch failed")
)

const maxAttempts = 3

// retryDelay is the first backoff step between attempts; it doubles
// after every retried failure. Tests shrink it.
var retryDelay = time.Second

// Validate checks that the source names a CSV document. It runs before
// any network access; a failing source never starts a load.
func Validate(source string) error {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return fmt.Errorf("%w: no source configured", ErrInvalidSource)
	}
	if !strings.HasSuffix(strings.ToLower(trimmed), ".csv") {
		return fmt.Errorf("%w: %q does not end in .csv", ErrInvalidSource, source)
	}
	return nil
}

// IsLocal reports whether the source is a local file path rather than a
// URL. Local sources can be watched for changes.
func IsLocal(source string) bool {
	return !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://")
}

// Fetch validates the source and retrieves its content. HTTP sources
// are retried with exponential backoff on transient failures; client
// errors (4xx) fail immediately.
func Fetch(ctx context.Context, source string) ([]byte, error) {
	if err := Validate(source); err != nil {
		return nil, err
	}

	if IsLocal(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		return data, nil
	}
	return fetchURL(ctx, source)
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	delay := retryDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}

		data, retryable, err := get(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		logging.Warn("fetch attempt failed", "url", url, "attempt", attempt, "error", err)
	}

	return nil, fmt.Errorf("%w: %v", ErrFetch, lastErr)
}

// get performs one GET. The second return value reports whether the
// failure is worth retrying (transport errors and 5xx responses).
func get(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("server returned %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		return nil, false, fmt.Errorf("server returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return data, false, nil
}
