package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntrava/assistant-gateway/internal/config"
	"github.com/syntrava/assistant-gateway/internal/domain"
)

type chatReq struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		OpenRouterAPIKey:  "test-key",
		OpenRouterBaseURL: baseURL,
		OpenRouterReferer: "https://bot-demo-2.vercel.app",
		OpenRouterTitle:   "Assistant IA Démo",
		ChatModel:         "mistralai/mistral-7b-instruct",
		ChatTemperature:   0.5,
		ChatMaxTokens:     512,
		UpstreamTimeout:   2 * time.Second,
	}
}

var sampleRequest = domain.CompletionRequest{Messages: []domain.Message{
	{Role: domain.RoleSystem, Content: "sys"},
	{Role: domain.RoleAssistant, Content: "earlier"},
	{Role: domain.RoleUser, Content: "Bonjour"},
}}

func TestComplete_SendsContractAndReturnsContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "https://bot-demo-2.vercel.app", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Assistant IA Démo", r.Header.Get("X-Title"))

		var cr chatReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cr))
		assert.Equal(t, "mistralai/mistral-7b-instruct", cr.Model)
		assert.InDelta(t, 0.5, cr.Temperature, 1e-9)
		assert.Equal(t, 512, cr.MaxTokens)
		assert.Equal(t, sampleRequest.Messages, cr.Messages)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "mistralai/mistral-7b-instruct",
			"choices": []map[string]any{{"message": map[string]any{"content": "<s> Bonjour ! </s>"}}},
		})
	}))
	defer server.Close()

	out, err := New(testConfig(server.URL)).Complete(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, "<s> Bonjour ! </s>", out, "raw text is returned untouched")
}

func TestComplete_NoRetryOnFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"provider overloaded"}}`))
	}))
	defer server.Close()

	_, err := New(testConfig(server.URL)).Complete(context.Background(), sampleRequest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))

	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusServiceUnavailable, ue.StatusCode)
	assert.Contains(t, ue.Body, "provider overloaded")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestComplete_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "client error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "rate limited upstream",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			status: http.StatusTooManyRequests,
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>gateway</html>"))
			},
			status: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := New(testConfig(server.URL)).Complete(context.Background(), sampleRequest)
			var ue *domain.UpstreamError
			require.True(t, errors.As(err, &ue), "got %v", err)
			assert.Equal(t, tt.status, ue.StatusCode)
			assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
		})
	}
}

func TestComplete_LongBodySnippetIsBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer server.Close()

	_, err := New(testConfig(server.URL)).Complete(context.Background(), sampleRequest)
	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Len(t, ue.Body, bodySnippetLimit)
}

func TestComplete_MissingAPIKeyMakesNoCall(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.OpenRouterAPIKey = ""
	_, err := New(cfg).Complete(context.Background(), sampleRequest)
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorIs(t, err, errMissingAPIKey)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestComplete_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(testConfig(url)).Complete(context.Background(), sampleRequest)
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testConfig(server.URL)
	cfg.UpstreamTimeout = 50 * time.Millisecond
	start := time.Now()
	_, err := New(cfg).Complete(context.Background(), sampleRequest)
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExtractContent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message content", `{"choices":[{"message":{"content":"Salut"}}]}`, "Salut"},
		{"text completion", `{"choices":[{"text":"Salut"}]}`, "Salut"},
		{"null content falls back to text", `{"choices":[{"message":{"content":null},"text":"T"}]}`, "T"},
		{"empty content does not fall back", `{"choices":[{"message":{"content":""},"text":"T"}]}`, ""},
		{"no choices", `{"choices":[]}`, ""},
		{"no choices field", `{"id":"x"}`, ""},
		{"only first choice", `{"choices":[{"message":{"content":"A"}},{"message":{"content":"B"}}]}`, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractContent([]byte(tt.body)))
		})
	}
}
