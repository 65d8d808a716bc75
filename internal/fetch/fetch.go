// Package fetch reads the JSON files the admin depends on (the bundled
// default document and the admin list) from either a local path or a URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// MaxBodyBytes bounds how much of a response is read.
const MaxBodyBytes = 16 << 20

// Error represents an error while reading a location.
type Error struct {
	Location string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.Location, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsURL reports whether location is an http(s) URL rather than a file path.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Read returns the bytes at location: a file path, or an http(s) URL fetched
// without caching.
func Read(ctx context.Context, location string, timeout time.Duration) ([]byte, error) {
	if !IsURL(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, &Error{Location: location, Message: "failed to read file", Cause: err}
		}
		return data, nil
	}
	return URL(ctx, location, timeout)
}

// URL performs a GET and returns the body of a 2xx response.
func URL(ctx context.Context, urlStr string, timeout time.Duration) ([]byte, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{Location: urlStr, Message: "invalid URL", Cause: err}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{Location: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Location: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, &Error{Location: urlStr, Message: "failed to read response body", Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Location: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return body, nil
}
