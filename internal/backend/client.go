// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend is the client for the remote analysis service that
// explains equations, summarizes pages, and answers questions about them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/paperlens/internal/httputil"
	"github.com/pdiddy/paperlens/pkg/types"
)

const (
	explainPath = "/api/explain-equation"
	analyzePath = "/api/analyze"
	askPath     = "/api/ask"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 4 << 10
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Client calls the analysis backend over HTTP.
type Client struct {
	HTTP       *http.Client
	BaseURL    string
	APIKey     string
	UserAgent  string
	MaxRetries int
}

// NewClient returns a client for cfg. The HTTP timeout comes from
// cfg.Timeout.
func NewClient(cfg types.BackendConfig) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Explain asks for a plain-language explanation of one equation.
func (c *Client) Explain(ctx context.Context, req types.ExplainRequest) (types.ExplainResponse, error) {
	var resp types.ExplainResponse
	err := c.post(ctx, explainPath, req, &resp)
	return resp, err
}

// Analyze asks for a summary and key points of a page.
func (c *Client) Analyze(ctx context.Context, req types.AnalyzeRequest) (types.AnalyzeResponse, error) {
	var resp types.AnalyzeResponse
	err := c.post(ctx, analyzePath, req, &resp)
	return resp, err
}

// Ask forwards a question about a page.
func (c *Client) Ask(ctx context.Context, req types.QuestionRequest) (types.QuestionResponse, error) {
	var resp types.QuestionResponse
	err := c.post(ctx, askPath, req, &resp)
	return resp, err
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, httpClient, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("backend request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

// errorMessage extracts a message from an error body. JSON bodies of the
// form {"detail": ...} or {"error": ...} yield the field; anything else is
// returned trimmed.
func errorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		for _, m := range []string{payload.Detail, payload.Error, payload.Message} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(data))
}
