// Package publish is the client for the external publish endpoint, which
// writes the document to assets/content.json on the site's host.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/portfolio-admin/internal/types"
)

// DefaultEndpoint is where the publisher listens unless configured otherwise.
const DefaultEndpoint = "http://127.0.0.1:5050/publish"

// DefaultTimeout bounds a publish round trip.
const DefaultTimeout = 30 * time.Second

// Client posts documents to a publish endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a client for endpoint. A zero timeout means DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

// Endpoint returns the URL documents are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Publish sends doc as {"content": doc}. Any failure, including a reply with
// ok:false, is returned as *Error.
func (c *Client) Publish(ctx context.Context, doc *types.Document) (*types.PublishResponse, error) {
	body, err := json.Marshal(types.PublishRequest{Content: doc})
	if err != nil {
		return nil, &Error{Endpoint: c.endpoint, Message: "failed to encode document", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Endpoint: c.endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Endpoint: c.endpoint, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &Error{
			Endpoint: c.endpoint,
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("Publish failed (%d)", resp.StatusCode),
		}
	}

	var out types.PublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Endpoint: c.endpoint, Status: resp.StatusCode, Message: "invalid response", Cause: err}
	}
	if !out.OK {
		msg := out.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, &Error{Endpoint: c.endpoint, Status: resp.StatusCode, Message: msg}
	}
	return &out, nil
}
