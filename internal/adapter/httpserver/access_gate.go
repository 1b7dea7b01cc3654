package httpserver

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/syntrava/assistant-gateway/internal/adapter/observability"
	"github.com/syntrava/assistant-gateway/internal/domain"
)

const allowMethods = "POST, OPTIONS"

// AccessGate applies the CORS policy, answers pre-flight requests and
// rejects wrong methods, unlisted origins and a missing client tag before
// any quota is consumed.
//
// The client tag ships inside a public web client. It filters casual
// scripted traffic and is not authentication.
func (s *Server) AccessGate() func(http.Handler) http.Handler {
	allowHeaders := "Content-Type, " + s.Cfg.ClientTagHeader
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			listed := s.originAllowed(origin)

			h := w.Header()
			switch {
			case s.Cfg.PermissiveCORS():
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && listed:
				h.Set("Access-Control-Allow-Origin", origin)
			}
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Expose-Headers", "X-Request-Id, Retry-After, "+HeaderRateLimitRemaining)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			if r.Method != http.MethodPost {
				s.deny(w, r, "method", domain.ErrMethodNotAllowed)
				return
			}
			if origin != "" && !listed && !s.Cfg.PermissiveCORS() && s.Cfg.CORSEnforceOrigin {
				s.deny(w, r, "origin", domain.ErrForbidden, slog.String("origin", origin))
				return
			}
			if s.Cfg.ClientTagEnforced && !tagMatches(r.Header.Get(s.Cfg.ClientTagHeader), s.Cfg.ClientTag) {
				s.deny(w, r, "client_tag", domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	_, ok := s.origins[origin]
	return ok
}

func (s *Server) deny(w http.ResponseWriter, r *http.Request, reason string, err error, attrs ...any) {
	observability.ObserveAccessDenied(reason)
	attrs = append(attrs,
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("client", ClientIdentity(r, s.Cfg.TrustForwardedFor)))
	LoggerFrom(r).Warn("request denied", attrs...)
	writeError(w, s.Msgs, err)
}

// tagMatches compares in constant time. An empty expected tag never matches.
func tagMatches(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
