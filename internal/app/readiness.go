package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpserver "github.com/syntrava/assistant-gateway/internal/adapter/httpserver"
	"github.com/syntrava/assistant-gateway/internal/config"
)

var errAPIKeyMissing = errors.New("OPENROUTER_API_KEY not configured")

// BuildReadinessChecks returns the /readyz probes: the upstream key is set and
// the upstream answers GET /models.
func BuildReadinessChecks(cfg config.Config) []httpserver.ReadinessCheck {
	keyCheck := func(_ context.Context) error {
		if strings.TrimSpace(cfg.OpenRouterAPIKey) == "" {
			return errAPIKeyMissing
		}
		return nil
	}
	upstreamCheck := func(ctx context.Context) error {
		client := &http.Client{Timeout: 2 * time.Second}
		url := strings.TrimRight(cfg.OpenRouterBaseURL, "/") + "/models"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if cfg.OpenRouterAPIKey != "" {
			req.Header.Set("Authorization", "Bearer "+cfg.OpenRouterAPIKey)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		return fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	return []httpserver.ReadinessCheck{
		{Name: "api_key", Check: keyCheck},
		{Name: "upstream", Check: upstreamCheck},
	}
}
