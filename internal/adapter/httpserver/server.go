package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/syntrava/assistant-gateway/internal/config"
	"github.com/syntrava/assistant-gateway/internal/domain"
	"github.com/syntrava/assistant-gateway/internal/i18n"
	"github.com/syntrava/assistant-gateway/internal/service/ratelimiter"
	"github.com/syntrava/assistant-gateway/internal/usecase"
)

// ChatReplier runs the chat pipeline for one request.
type ChatReplier interface {
	Reply(ctx context.Context, in domain.ChatInput) (usecase.ChatReply, error)
}

// ReadinessCheck is a named dependency probe for /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg     config.Config
	Chat    ChatReplier
	Msgs    *i18n.Localizer
	Limiter ratelimiter.Limiter
	Checks  []ReadinessCheck

	origins map[string]struct{}
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, chat ChatReplier, msgs *i18n.Localizer, limiter ratelimiter.Limiter, checks ...ReadinessCheck) *Server {
	origins := make(map[string]struct{})
	for _, o := range cfg.AllowedOrigins() {
		origins[o] = struct{}{}
	}
	return &Server{Cfg: cfg, Chat: chat, Msgs: msgs, Limiter: limiter, Checks: checks, origins: origins}
}

// ReadyzHandler runs every readiness check under a shared 2s deadline.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, len(s.Checks))
		ok := true
		for _, c := range s.Checks {
			if c.Check == nil {
				continue
			}
			if err := c.Check(ctx); err != nil {
				ok = false
				checks = append(checks, check{Name: c.Name, OK: false, Details: err.Error()})
				continue
			}
			checks = append(checks, check{Name: c.Name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
