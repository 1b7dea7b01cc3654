package usecase

import (
	"github.com/tidwall/gjson"

	"github.com/syntrava/assistant-gateway/internal/domain"
)

// ParseChatInput extracts userMessage, mode and history from an untrusted
// request body. It never fails: a body that is not a JSON object yields a zero
// ChatInput, which the pipeline then rejects for its missing message.
func ParseChatInput(body []byte) domain.ChatInput {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return domain.ChatInput{}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return domain.ChatInput{}
	}
	in := domain.ChatInput{UserMessage: contentText(doc.Get("userMessage"))}
	if m := doc.Get("mode"); m.Type == gjson.String {
		in.Mode = m.Str
	}
	if h := doc.Get("history"); h.Exists() {
		in.History = []byte(h.Raw)
	}
	return in
}
