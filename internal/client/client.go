// Package client talks to the taxdesk HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"taxdesk/internal/types"
)

const DefaultBaseURL = "http://localhost:5001"

// TransportError means the server could not be reached at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Status  int
	Message string
	Details string
}

func (e *StatusError) Error() string {
	if e.Details != "" {
		return e.Details
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default cookie-carrying client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for baseURL. The default transport keeps cookies
// between calls and has no timeout.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "cookie jar")
	}
	c := &Client{baseURL: baseURL, http: &http.Client{Jar: jar}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// Query sends one question and returns the generated answer.
func (c *Client) Query(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(types.QueryRequest{Prompt: prompt})
	if err != nil {
		return "", errors.Wrap(err, "encode query")
	}
	var out types.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/api/query", bytes.NewReader(body), &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// Prompts fetches the example question catalogue.
func (c *Client) Prompts(ctx context.Context) ([]string, error) {
	var out types.PromptsResponse
	if err := c.do(ctx, http.MethodGet, "/api/prompts", nil, &out); err != nil {
		return nil, err
	}
	return out.Prompts, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env types.ErrorResponse
		if err := json.Unmarshal(data, &env); err != nil {
			return errors.Wrapf(err, "decode %d response", resp.StatusCode)
		}
		return &StatusError{Status: resp.StatusCode, Message: env.Error, Details: env.Details}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
