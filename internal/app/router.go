// Package app assembles the HTTP router and process-level checks.
package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/syntrava/assistant-gateway/internal/adapter/httpserver"
	"github.com/syntrava/assistant-gateway/internal/adapter/observability"
	"github.com/syntrava/assistant-gateway/internal/config"
)

// globalKey puts every caller in the same bucket for the process-wide guard.
const globalKey = "global"

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer(srv.Msgs))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.RequestID())
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)
	r.Use(httpserver.TimeoutMiddleware(requestTimeout(cfg), srv.Msgs))

	// Every method reaches the gate so that it can answer pre-flight and 405.
	chat := []func(http.Handler) http.Handler{srv.AccessGate(), srv.RateLimit()}
	if cfg.GlobalRateLimitPerMin > 0 {
		chat = append(chat, httprate.Limit(cfg.GlobalRateLimitPerMin, time.Minute,
			httprate.WithKeyFuncs(func(*http.Request) (string, error) { return globalKey, nil }),
			httprate.WithLimitHandler(srv.GlobalLimitHandler()),
			// quota headers belong to the per-client limiter
			httprate.WithResponseHeaders(httprate.ResponseHeaders{RetryAfter: "Retry-After"}),
		))
	}
	r.With(chat...).HandleFunc("/api/chat", srv.ChatHandler())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })
	r.Get("/readyz", srv.ReadyzHandler())

	return httpserver.SecurityHeaders(r)
}

func requestTimeout(cfg config.Config) time.Duration {
	if cfg.RequestTimeout > 0 {
		return cfg.RequestTimeout
	}
	return 45 * time.Second
}
