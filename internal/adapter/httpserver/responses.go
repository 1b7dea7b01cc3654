// Package httpserver contains the HTTP boundary of the gateway.
//
// It owns the access gate, per-client throttling, the chat handler and the
// single mapping from domain errors to status codes and localized bodies.
package httpserver

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/syntrava/assistant-gateway/internal/domain"
	"github.com/syntrava/assistant-gateway/internal/i18n"
)

type errorBody struct {
	Error string `json:"error"`
}

type answerBody struct {
	Answer string `json:"answer"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error onto its status code and message id.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, i18n.MsgMethodNotAllowed
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, i18n.MsgClientForbidden
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, i18n.MsgPayloadTooLarge
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, i18n.MsgMessageMissing
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, i18n.MsgRateLimited
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusInternalServerError, i18n.MsgUpstreamFailed
	default:
		return http.StatusInternalServerError, i18n.MsgInternalError
	}
}

// writeError is the only place errors become responses. The body carries the
// localized message and never the error text itself.
func writeError(w http.ResponseWriter, msgs *i18n.Localizer, err error) {
	status, id := statusFor(err)
	writeJSON(w, status, errorBody{Error: msgs.Get(id)})
}

// setRetryAfter writes the delay in whole seconds, rounded up, never below 1.
func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
}
