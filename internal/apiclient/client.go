package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/models"
)

// TokenSource supplies the bearer token attached to each request. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// Client issues REST calls against the fleet API and normalizes the
// {data, pagination} / {message} envelope.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
}

// New creates a client for baseURL with the given request timeout.
func New(baseURL string, timeout time.Duration, tokens TokenSource) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}, nil
}

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// Get fetches path and decodes data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) (*models.Pagination, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body to path and decodes data into out.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.Do(ctx, http.MethodPost, path, nil, body, out)
	return err
}

// Put sends body to path and decodes data into out.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.Do(ctx, http.MethodPut, path, nil, body, out)
	return err
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

// Do performs a request. A nil out discards the response data. Every failure is
// returned as *Error; there is no retry.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*models.Pagination, error) {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, &Error{Message: "failed to build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, &Error{Message: "failed to read session token", Err: err}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, &Error{Message: "request cancelled", Err: err}
		}
		log.WithError(err).WithFields(log.Fields{"method": method, "path": path}).Warn("API request failed")
		return nil, &Error{Message: "network error: unable to reach the server", Err: err}
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("API request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return env.Pagination, &Error{Status: resp.StatusCode, Message: "malformed response: missing data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return env.Pagination, nil
}

func newStatusError(status int, raw []byte) *Error {
	var env envelope
	msg := ""
	if err := json.Unmarshal(raw, &env); err == nil {
		msg = env.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Message: msg}
}
