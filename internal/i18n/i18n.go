// Package i18n provides the user-facing strings of the gateway.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Languages bundled with the binary.
var Languages = []string{"fr", "en"}

// Message IDs
const (
	MsgMethodNotAllowed = "method_not_allowed"
	MsgClientForbidden  = "client_forbidden"
	MsgRateLimited      = "rate_limited"
	MsgMessageMissing   = "message_missing"
	MsgPayloadTooLarge  = "payload_too_large"
	MsgUpstreamFailed   = "upstream_failed"
	MsgInternalError    = "internal_error"
	MsgEmptyAnswer      = "empty_answer"
)

// Localizer resolves message IDs for a single configured language.
type Localizer struct {
	lang      string
	localizer *i18n.Localizer
}

// NewLocalizer loads the embedded catalogs and binds lang, falling back to French.
func NewLocalizer(lang string) (*Localizer, error) {
	bundle := i18n.NewBundle(language.French)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, l := range Languages {
		if _, err := bundle.LoadMessageFileFS(localeFS, fmt.Sprintf("locales/%s.json", l)); err != nil {
			return nil, fmt.Errorf("op=i18n.NewLocalizer: load %s: %w", l, err)
		}
	}
	return &Localizer{lang: lang, localizer: i18n.NewLocalizer(bundle, lang, "fr")}, nil
}

// MustLocalizer is NewLocalizer for start-up and tests.
func MustLocalizer(lang string) *Localizer {
	l, err := NewLocalizer(lang)
	if err != nil {
		panic(err)
	}
	return l
}

// Lang returns the configured language tag.
func (l *Localizer) Lang() string { return l.lang }

// Get returns the localized message or the ID itself when it is unknown.
func (l *Localizer) Get(messageID string) string {
	if l == nil || l.localizer == nil {
		return messageID
	}
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID // Fallback to message ID
	}
	return msg
}
