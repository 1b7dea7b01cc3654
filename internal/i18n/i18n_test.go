package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizer_French(t *testing.T) {
	l, err := NewLocalizer("fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", l.Lang())

	tests := map[string]string{
		MsgMethodNotAllowed: "Use POST",
		MsgClientForbidden:  "Client non autorisé.",
		MsgRateLimited:      "Trop de requêtes. Merci de patienter quelques instants avant de réessayer.",
		MsgMessageMissing:   "Message utilisateur manquant.",
		MsgUpstreamFailed:   "Erreur appel OpenRouter",
		MsgInternalError:    "Erreur serveur interne.",
		MsgEmptyAnswer:      "Je n’ai pas bien compris. Peux-tu reformuler ?",
	}
	for id, want := range tests {
		t.Run(id, func(t *testing.T) {
			assert.Equal(t, want, l.Get(id))
		})
	}
}

func TestLocalizer_English(t *testing.T) {
	l := MustLocalizer("en")
	assert.Equal(t, "Client not allowed.", l.Get(MsgClientForbidden))
	assert.Equal(t, "Use POST", l.Get(MsgMethodNotAllowed))
}

func TestLocalizer_Fallbacks(t *testing.T) {
	l := MustLocalizer("de")
	assert.Equal(t, "Client non autorisé.", l.Get(MsgClientForbidden), "unknown language falls back to French")
	assert.Equal(t, "no_such_id", l.Get("no_such_id"))

	var nilLoc *Localizer
	assert.Equal(t, MsgInternalError, nilLoc.Get(MsgInternalError))
}

func TestCatalogsCoverAllIDs(t *testing.T) {
	ids := []string{
		MsgMethodNotAllowed, MsgClientForbidden, MsgRateLimited, MsgMessageMissing,
		MsgPayloadTooLarge, MsgUpstreamFailed, MsgInternalError, MsgEmptyAnswer,
	}
	for _, lang := range Languages {
		l := MustLocalizer(lang)
		for _, id := range ids {
			assert.NotEqualf(t, id, l.Get(id), "%s missing in %s catalog", id, lang)
		}
	}
}
