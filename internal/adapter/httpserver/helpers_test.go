package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syntrava/assistant-gateway/internal/config"
	"github.com/syntrava/assistant-gateway/internal/domain"
	"github.com/syntrava/assistant-gateway/internal/i18n"
	"github.com/syntrava/assistant-gateway/internal/service/ratelimiter"
	"github.com/syntrava/assistant-gateway/internal/usecase"
)

const (
	testTag    = "syntrava-vitrine-1"
	testOrigin = "http://localhost:3000"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:               "test",
		ClientTagHeader:      "X-Syntrava-Client",
		ClientTag:            testTag,
		ClientTagEnforced:    true,
		CORSMode:             config.CORSModeAllowlist,
		CORSAllowOrigins:     "https://syntrava-ai-assistant.vercel.app/, http://localhost:3000",
		CORSEnforceOrigin:    true,
		RateLimitMaxRequests: 20,
		TrustForwardedFor:    true,
		MaxBodyBytes:         1024,
		Language:             "fr",
	}
}

type fakeChat struct {
	mu    sync.Mutex
	calls []domain.ChatInput
	out   usecase.ChatReply
	err   error
}

func (f *fakeChat) Reply(_ context.Context, in domain.ChatInput) (usecase.ChatReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	return f.out, f.err
}

func (f *fakeChat) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestServer(t *testing.T, cfg config.Config, chat ChatReplier, limiter ratelimiter.Limiter) *Server {
	t.Helper()
	msgs, err := i18n.NewLocalizer(cfg.Language)
	require.NoError(t, err)
	return NewServer(cfg, chat, msgs, limiter)
}

// chatRequest builds a POST carrying the valid tag and allowed origin.
func chatRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Origin", testOrigin)
	r.Header.Set("X-Syntrava-Client", testTag)
	return r
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})
