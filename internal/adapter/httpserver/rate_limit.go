package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/syntrava/assistant-gateway/internal/adapter/observability"
	"github.com/syntrava/assistant-gateway/internal/domain"
	obsctx "github.com/syntrava/assistant-gateway/internal/observability"
)

// HeaderRateLimitRemaining reports how many requests the caller has left in
// the current window.
const HeaderRateLimitRemaining = "X-RateLimit-Remaining"

type clientCounter interface{ Len() int }

// RateLimit admits each client through the per-client sliding window and
// reports the remaining quota. A throttled request gets 429 with Retry-After
// and is not recorded. Limiter errors fail open.
func (s *Server) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ClientIdentity(r, s.Cfg.TrustForwardedFor)
			ctx := obsctx.ContextWithClientID(r.Context(), id)
			if s.Limiter == nil {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			d, err := s.Limiter.Allow(ctx, id)
			if cc, ok := s.Limiter.(clientCounter); ok {
				observability.RateLimitTrackedClients.Set(float64(cc.Len()))
			}
			if err != nil {
				LoggerFrom(r).Warn("rate limiter unavailable, admitting", slog.Any("error", err))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if d.Remaining >= 0 {
				w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
			}
			if !d.Allowed {
				observability.ObserveRateLimited("client")
				LoggerFrom(r).Warn("client rate limited",
					slog.String("client", id),
					slog.Duration("retry_after", d.RetryAfter))
				setRetryAfter(w, d.RetryAfter)
				writeError(w, s.Msgs, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GlobalLimitHandler answers requests rejected by the process-wide guard.
func (s *Server) GlobalLimitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		observability.ObserveRateLimited("global")
		LoggerFrom(r).Warn("global rate limit reached")
		writeError(w, s.Msgs, domain.ErrRateLimited)
	}
}
