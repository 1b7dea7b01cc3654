// Package usecase contains application business logic services.
package usecase

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/syntrava/assistant-gateway/internal/domain"
	"github.com/syntrava/assistant-gateway/pkg/textx"
)

// HistoryPolicy bounds the conversation context a client may send.
type HistoryPolicy struct {
	MaxTurns int
	MaxChars int
}

// DefaultHistoryPolicy keeps the last 10 turns of at most 2000 characters each.
var DefaultHistoryPolicy = HistoryPolicy{MaxTurns: 10, MaxChars: 2000}

// SanitizeHistory turns untrusted JSON into bounded conversation turns.
//
// Anything that is not a JSON array yields an empty slice. Otherwise the last
// MaxTurns elements are kept in order; roles other than "assistant" become
// "user" and content is stripped of control characters and capped to MaxChars
// runes. Surrounding whitespace is kept. Non-object elements become empty user turns. It never fails.
func SanitizeHistory(raw []byte, p HistoryPolicy) []domain.Message {
	out := []domain.Message{}
	if len(raw) == 0 || p.MaxTurns <= 0 || !gjson.ValidBytes(raw) {
		return out
	}
	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		return out
	}
	turns := res.Array()
	if len(turns) > p.MaxTurns {
		turns = turns[len(turns)-p.MaxTurns:]
	}
	for _, turn := range turns {
		role := ""
		if r := turn.Get("role"); r.Type == gjson.String {
			role = r.Str
		}
		out = append(out, domain.Message{
			Role:    domain.ParseHistoryRole(role),
			Content: textx.Clip(contentText(turn.Get("content")), p.MaxChars),
		})
	}
	return out
}

// contentText renders a scalar content value as text. Missing, null, false,
// zero and structured values render as "".
func contentText(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		if v.Num == 0 {
			return ""
		}
		return v.Raw
	case gjson.True:
		return "true"
	default:
		return ""
	}
}

// AssembleContext builds [system, history..., user]. It fails with
// ErrInvalidArgument when the user message is blank. A non-blank message is
// sent as written, capped to maxChars runes.
func AssembleContext(systemPrompt string, history []domain.Message, userMessage string, maxChars int) (domain.CompletionRequest, error) {
	if textx.IsBlank(userMessage) {
		return domain.CompletionRequest{}, fmt.Errorf("%w: userMessage is required", domain.ErrInvalidArgument)
	}
	msgs := make([]domain.Message, 0, len(history)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: systemPrompt})
	msgs = append(msgs, history...)
	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: textx.Clip(userMessage, maxChars)})
	return domain.CompletionRequest{Messages: msgs}, nil
}
