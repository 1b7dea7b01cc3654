package httpserver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/syntrava/assistant-gateway/internal/adapter/observability"
	"github.com/syntrava/assistant-gateway/internal/domain"
	"github.com/syntrava/assistant-gateway/internal/usecase"
)

// ChatHandler reads the bounded body, runs the pipeline and writes either
// {"answer": ...} or {"error": ...}, never both.
func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r, s.Cfg.MaxBodyBytes)
		if err != nil {
			LoggerFrom(r).Warn("chat body rejected", slog.Any("error", err))
			writeError(w, s.Msgs, err)
			return
		}

		in := usecase.ParseChatInput(body)
		out, err := s.Chat.Reply(r.Context(), in)
		mode := string(domain.ParseMode(in.Mode))
		if err != nil {
			observability.ObserveChatReply(mode, string(domain.KindOf(err)))
			writeError(w, s.Msgs, err)
			return
		}

		mode = string(out.Mode)
		observability.ObserveChatReply(mode, "ok")
		observability.ObserveChatContext(mode, out.PromptTokens, out.HistoryTurns)
		if out.Fallback {
			observability.ChatFallbackAnswersTotal.WithLabelValues(mode).Inc()
		}
		writeJSON(w, http.StatusOK, answerBody{Answer: out.Answer})
	}
}

// readBody reads at most limit bytes. A larger body is ErrPayloadTooLarge.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrPayloadTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrInvalidArgument, err)
	}
	return body, nil
}
