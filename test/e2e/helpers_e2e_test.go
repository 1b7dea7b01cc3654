//go:build e2e

package e2e_test

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	baseURL   = strings.TrimRight(getenv("E2E_BASE_URL", "http://localhost:8080"), "/")
	clientTag = getenv("E2E_CLIENT_TAG", "syntrava-vitrine-1")
	origin    = getenv("E2E_ORIGIN", "http://localhost:3000")
	timeout   = 40 * time.Second
)

// getenv returns the value of the environment variable k or def if empty.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// requireApp skips the test when the gateway is not reachable.
func requireApp(t *testing.T, client *http.Client) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		t.Skipf("gateway not available at %s: %v", baseURL, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("gateway not healthy: %d", resp.StatusCode)
	}
}

// postChat sends body to /api/chat with the configured tag, origin and forwarded IP.
func postChat(t *testing.T, client *http.Client, ip, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/chat", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", origin)
	req.Header.Set("X-Syntrava-Client", clientTag)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}
