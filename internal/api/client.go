// Package api provides the HTTP gateway client for the quill chat service.
// Every network call in the application goes through this single chokepoint:
// it attaches bearer credentials, normalizes error shapes, and signals
// session invalidation when the server rejects the credential.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseSize caps the response body read. Responses at or above this
// size are treated as errors rather than truncated.
const maxResponseSize = 10 * 1024 * 1024

// TokenSource returns the current access token, or "" when no session exists.
type TokenSource func() string

// Client is the gateway for all requests to the chat service.
//
// The client never retries and never refreshes tokens; a rejected credential
// results in exactly one invalidation callback followed by an *AuthError.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	token       TokenSource
	onAuthError func()
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetTokenSource registers the provider of the current access token.
// When the source returns a non-empty token, every request carries
// "Authorization: Bearer <token>".
func (c *Client) SetTokenSource(fn TokenSource) {
	c.token = fn
}

// OnAuthError registers a callback invoked synchronously before any
// *AuthError is returned to a caller. After the callback runs the session
// is guaranteed to be gone, so callers never observe a half-torn-down state.
func (c *Client) OnAuthError(fn func()) {
	c.onAuthError = fn
}

// Get issues a GET request to path.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete issues a DELETE request to path.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// errorResponse is the error envelope the service returns for non-2xx statuses.
type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := readBody(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if c.onAuthError != nil {
			c.onAuthError()
		}
		return nil, &AuthError{Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	return json.RawMessage(data), nil
}

// readBody reads the response body with a size limit.
func readBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) == maxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", maxResponseSize)
	}
	return data, nil
}

// errorMessage extracts the server's error field, falling back to a generic
// message when the body is not the expected envelope.
func errorMessage(data []byte) string {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return "request failed"
}
