// Package openrouter implements domain.CompletionClient over the OpenRouter
// chat/completions endpoint (OpenAI-compatible).
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/syntrava/assistant-gateway/internal/adapter/observability"
	"github.com/syntrava/assistant-gateway/internal/config"
	"github.com/syntrava/assistant-gateway/internal/domain"
	obsctx "github.com/syntrava/assistant-gateway/internal/observability"
)

const (
	provider = "openrouter"
	// bodySnippetLimit bounds upstream diagnostics written to logs.
	bodySnippetLimit = 512
	// maxResponseBytes bounds how much of a completion body is read.
	maxResponseBytes = 1 << 20
)

var (
	errMissingAPIKey    = errors.New("OPENROUTER_API_KEY is not configured")
	errMalformedPayload = errors.New("malformed completion payload")
)

// Client issues exactly one chat-completion call per Complete. It never retries.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a client whose transport is traced and bounded by UPSTREAM_TIMEOUT.
func New(cfg config.Config) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("OpenRouter %s %s", r.Method, r.URL.Path)
		}),
	)
	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: timeout, Transport: transport},
	}
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

// Complete sends the assembled context and returns the raw completion text.
// Every failure is a *domain.UpstreamError; the response body only reaches logs.
func (c *Client) Complete(ctx domain.Context, req domain.CompletionRequest) (string, error) {
	lg := obsctx.LoggerFromContext(ctx)
	endpoint := strings.TrimRight(c.cfg.OpenRouterBaseURL, "/") + "/chat/completions"

	if c.cfg.OpenRouterAPIKey == "" {
		observability.AIRequestFailuresTotal.WithLabelValues(provider, "config").Inc()
		lg.Error("ai provider not configured", slog.String("provider", provider))
		return "", &domain.UpstreamError{Err: errMissingAPIKey}
	}

	b, err := json.Marshal(chatRequest{
		Model:       c.cfg.ChatModel,
		Messages:    req.Messages,
		Temperature: c.cfg.ChatTemperature,
		MaxTokens:   c.cfg.ChatMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("op=openrouter.Complete: %w", err)
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", &domain.UpstreamError{Err: err}
	}
	r.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouterAPIKey)
	r.Header.Set("Content-Type", "application/json")
	if c.cfg.OpenRouterReferer != "" {
		r.Header.Set("HTTP-Referer", c.cfg.OpenRouterReferer)
	}
	if c.cfg.OpenRouterTitle != "" {
		r.Header.Set("X-Title", c.cfg.OpenRouterTitle)
	}

	start := time.Now()
	resp, err := c.hc.Do(r)
	observability.AIRequestsTotal.WithLabelValues(provider, "chat").Inc()
	observability.AIRequestDuration.WithLabelValues(provider, "chat").Observe(time.Since(start).Seconds())
	if err != nil {
		reason := "transport"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			reason = "timeout"
		}
		observability.AIRequestFailuresTotal.WithLabelValues(provider, reason).Inc()
		lg.Error("ai provider request failed", slog.String("provider", provider), slog.String("op", "chat"), slog.String("reason", reason), slog.Any("error", err))
		return "", &domain.UpstreamError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		observability.AIRequestFailuresTotal.WithLabelValues(provider, "transport").Inc()
		lg.Error("failed to read response body", slog.String("provider", provider), slog.Any("error", err))
		return "", &domain.UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}
	snippet := snippetOf(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.AIRequestFailuresTotal.WithLabelValues(provider, "status").Inc()
		lg.Error("ai provider non-2xx",
			slog.String("provider", provider),
			slog.String("op", "chat"),
			slog.Int("status", resp.StatusCode),
			slog.String("model", c.cfg.ChatModel),
			slog.String("endpoint", endpoint),
			slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
			slog.String("body", snippet))
		return "", &domain.UpstreamError{StatusCode: resp.StatusCode, Body: snippet}
	}

	if !gjson.ValidBytes(body) {
		observability.AIRequestFailuresTotal.WithLabelValues(provider, "decode").Inc()
		lg.Error("ai provider decode error",
			slog.String("provider", provider),
			slog.String("op", "chat"),
			slog.String("model", c.cfg.ChatModel),
			slog.String("body", snippet))
		return "", &domain.UpstreamError{StatusCode: resp.StatusCode, Body: snippet, Err: errMalformedPayload}
	}

	text := ExtractContent(body)
	if served := gjson.GetBytes(body, "model").String(); served != "" && served != c.cfg.ChatModel {
		lg.Debug("model substitution detected", slog.String("requested_model", c.cfg.ChatModel), slog.String("actual_model", served))
	}
	lg.Debug("ai provider call successful",
		slog.String("provider", provider),
		slog.Int("choices_count", int(gjson.GetBytes(body, "choices.#").Int())),
		slog.Int("content_bytes", len(text)))
	return text, nil
}

// ExtractContent returns choices[0].message.content, else choices[0].text,
// else an empty string. Only a missing or null field falls through.
func ExtractContent(body []byte) string {
	for _, path := range []string{"choices.0.message.content", "choices.0.text"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}

func snippetOf(body []byte) string {
	if len(body) > bodySnippetLimit {
		return string(body[:bodySnippetLimit])
	}
	return string(body)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
