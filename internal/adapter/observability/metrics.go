package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)
	AIRequestFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_request_failures_total",
			Help: "Failed AI requests by provider and reason",
		},
		[]string{"provider", "reason"},
	)

	// Gateway admission
	AccessDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_access_denied_total",
			Help: "Requests rejected by the access gate",
		},
		[]string{"reason"},
	)
	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"scope"},
	)
	RateLimitTrackedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_rate_limit_tracked_clients",
			Help: "Client identities currently held by the sliding window limiter",
		},
	)

	// Chat pipeline outcomes
	ChatRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_replies_total",
			Help: "Chat pipeline outcomes by mode and error kind",
		},
		[]string{"mode", "outcome"},
	)
	ChatPromptTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_prompt_tokens",
			Help:    "Estimated prompt tokens sent upstream",
			Buckets: []float64{64, 128, 256, 512, 1024, 2048, 4096, 8192},
		},
		[]string{"mode"},
	)
	ChatHistoryTurns = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_history_turns",
			Help:    "Conversation turns kept after sanitizing",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 10},
		},
	)
	ChatFallbackAnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_fallback_answers_total",
			Help: "Replies replaced by the fallback message because the model returned nothing usable",
		},
		[]string{"mode"},
	)
)

var initOnce sync.Once

// InitMetrics registers all collectors with the default registry once per process.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(AIRequestsTotal)
		prometheus.MustRegister(AIRequestDuration)
		prometheus.MustRegister(AIRequestFailuresTotal)
		prometheus.MustRegister(AccessDeniedTotal)
		prometheus.MustRegister(RateLimitedTotal)
		prometheus.MustRegister(RateLimitTrackedClients)
		prometheus.MustRegister(ChatRepliesTotal)
		prometheus.MustRegister(ChatPromptTokens)
		prometheus.MustRegister(ChatHistoryTurns)
		prometheus.MustRegister(ChatFallbackAnswersTotal)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = "unmatched"
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// ObserveAccessDenied counts a gate rejection; reason is "method", "origin" or "client_tag".
func ObserveAccessDenied(reason string) {
	AccessDeniedTotal.WithLabelValues(reason).Inc()
}

// ObserveRateLimited counts a throttled request; scope is "client" or "global".
func ObserveRateLimited(scope string) {
	RateLimitedTotal.WithLabelValues(scope).Inc()
}

// ObserveChatReply records the outcome of one pipeline run. outcome is "ok"
// or the error kind.
func ObserveChatReply(mode, outcome string) {
	ChatRepliesTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveChatContext records prompt size and retained history for one request.
func ObserveChatContext(mode string, promptTokens, historyTurns int) {
	if promptTokens >= 0 {
		ChatPromptTokens.WithLabelValues(mode).Observe(float64(promptTokens))
	}
	if historyTurns >= 0 {
		ChatHistoryTurns.Observe(float64(historyTurns))
	}
}
