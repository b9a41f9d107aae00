// Package notion provides a minimal client for the Notion REST API.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Notion API root.
	DefaultBaseURL = "https://api.notion.com/v1"
	// DefaultVersion is sent as the Notion-Version header.
	DefaultVersion = "2022-06-28"
	// DefaultTimeout matches the official SDK's request timeout.
	DefaultTimeout = 60 * time.Second
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL string
	APIKey  string
	Version string
	HTTP    *http.Client
	Logger  *slog.Logger
}

// Client issues authenticated requests against the Notion API. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	version string
	http    *http.Client
	logger  *slog.Logger
}

// New returns a new client. If opts.HTTP is nil, a default with a 60s timeout is used.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  opts.APIKey,
		version: version,
		http:    httpClient,
		logger:  logger,
	}
}

// APIError is an error object returned by Notion for a non-2xx response.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

// do makes an authenticated request and returns the raw response body.
func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("notion request failed", "method", method, "path", path, "duration", time.Since(start), "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("notion request", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody), "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, respBody)
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("invalid JSON in response (status %d)", resp.StatusCode)
	}
	return respBody, nil
}

// decodeError turns an error response into an *APIError, falling back to
// the raw body when it is not a Notion error object.
func decodeError(status int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		return &APIError{
			Status:  status,
			Message: fmt.Sprintf("API error %d: %s", status, strings.TrimSpace(string(body))),
		}
	}
	if apiErr.Status == 0 {
		apiErr.Status = status
	}
	return &apiErr
}
