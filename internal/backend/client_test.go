// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperlens/internal/httputil"
	"github.com/pdiddy/paperlens/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	cfg := types.DefaultAppConfig().Backend
	cfg.BaseURL = ts.URL + "/"
	cfg.APIKey = "sk-test"
	return NewClient(cfg)
}

func TestClient_Explain(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/explain-equation", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "paperlens/0.1", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req types.ExplainRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, `\nabla f`, req.Equation)
		assert.Equal(t, types.FormatLaTeX, req.Format)

		json.NewEncoder(w).Encode(types.ExplainResponse{
			Readable:   "∇ f",
			Meaning:    "gradient of f",
			Variables:  []types.VariableMeaning{{Symbol: "f", Meaning: "objective"}},
			Importance: "drives the update",
		})
	})

	resp, err := c.Explain(context.Background(), types.ExplainRequest{
		Equation: `\nabla f`,
		Context:  "update rule",
		Format:   types.FormatLaTeX,
	})
	require.NoError(t, err)
	assert.Equal(t, "gradient of f", resp.Meaning)
	require.Len(t, resp.Variables, 1)
	assert.Equal(t, "objective", resp.Variables[0].Meaning)
}

func TestClient_Analyze(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analyze", r.URL.Path)
		var req types.AnalyzeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Attention", req.Title)
		w.Write([]byte(`{"summary":"short","keyPoints":["a","b"]}`))
	})

	resp, err := c.Analyze(context.Background(), types.AnalyzeRequest{Title: "Attention"})
	require.NoError(t, err)
	assert.Equal(t, "short", resp.Summary)
	assert.Equal(t, []string{"a", "b"}, resp.KeyPoints)
}

func TestClient_Ask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ask", r.URL.Path)
		w.Write([]byte(`{"answer":"42","sources":["sec 2"]}`))
	})

	resp, err := c.Ask(context.Background(), types.QuestionRequest{Question: "why?"})
	require.NoError(t, err)
	assert.Equal(t, "42", resp.Answer)
	assert.Equal(t, []string{"sec 2"}, resp.Sources)
}

func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json detail", http.StatusBadRequest, `{"detail":"equation is required"}`, "equation is required"},
		{"json error", http.StatusUnauthorized, `{"error":"bad key"}`, "bad key"},
		{"plain text", http.StatusInternalServerError, "boom\n", "boom"},
		{"empty", http.StatusBadGateway, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Explain(context.Background(), types.ExplainRequest{})
			require.Error(t, err)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req types.QuestionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "again?", req.Question)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"answer":"yes"}`))
	})

	resp, err := c.Ask(context.Background(), types.QuestionRequest{Question: "again?"})
	require.NoError(t, err)
	assert.Equal(t, "yes", resp.Answer)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := c.Analyze(context.Background(), types.AnalyzeRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing /api/analyze response")
}
