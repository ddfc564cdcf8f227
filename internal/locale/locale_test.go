package locale_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
	"github.com/viczaid25/CreditCardApp/internal/locale"
)

var catalogKeys = []string{
	config.TKeyPaymentTitle,
	config.TKeyPaymentBody,
	config.TKeyCutTitle,
	config.TKeyCutBody,
	config.TKeyStatusNormal,
	config.TKeyStatusUpcoming,
	config.TKeyStatusUrgent,
	config.TKeyStatusOverdue,
	config.TKeyFormatDate,
	config.TKeyColID,
	config.TKeyColName,
	config.TKeyColCut,
	config.TKeyColDue,
	config.TKeyColDays,
	config.TKeyColStatus,
	config.TKeyNotifDenied,
	config.TKeyNotifEnabled,
	config.TKeyNotifAlreadyOn,
	config.TKeyNotifDisabled,
	config.TKeyNoCards,
	config.TKeyCardAdded,
	config.TKeyCardUpdated,
	config.TKeyCardDeleted,
	config.TKeyNotifStatus,
	config.TKeyStateOn,
	config.TKeyStateOff,
	config.TKeyFeedPwdSet,
	config.TKeyFeedPwdCleared,
	config.TKeyErrNameEmpty,
	config.TKeyErrCutDay,
	config.TKeyErrPaymentDays,
	config.TKeyErrCardMissing,
}

// TestCatalogIntegrity ensures that every translation key defined in config
// exists in each locale file, and flags orphans.
func TestCatalogIntegrity(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
			require.NoError(t, err, "Must load catalog for %s", lang)

			var jsonMap map[string]any
			require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

			defined := make(map[string]bool, len(catalogKeys))
			for _, k := range catalogKeys {
				defined[k] = true
				_, exists := jsonMap[k]
				assert.Truef(t, exists, "Key '%s' is missing in active.%s.json", k, lang)
			}

			for jsonKey := range jsonMap {
				if strings.HasPrefix(jsonKey, "_") {
					continue
				}
				assert.Truef(t, defined[jsonKey], "Key '%s' in active.%s.json is not declared in config", jsonKey, lang)
			}
		})
	}
}

func TestTranslator_LoadsAllLanguages(t *testing.T) {
	tr := locale.New("en")
	assert.ElementsMatch(t, config.SupportedLanguages, tr.Languages())
}

func TestTranslator_Reminder(t *testing.T) {
	card := engine.Card{ID: "a", Name: "Visa"}
	due := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		lang      string
		wantTitle string
		wantBody  string
	}{
		{"en", "Payment reminder", "Your card Visa is due on Mar 7, 2025"},
		{"es", "Recordatorio de pago", "Tu tarjeta Visa vence el 07/03/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			title, body := locale.New(tt.lang).Reminder(engine.KindPayment, card, due)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantBody, body)
		})
	}

	_, cutBody := locale.New("es").Reminder(engine.KindCut, card, due)
	assert.Equal(t, "Hoy es el día de corte para tu tarjeta Visa", cutBody)
}

func TestTranslator_Fallbacks(t *testing.T) {
	tr := locale.New("de-DE")
	assert.Equal(t, "de", tr.Lang())
	assert.Equal(t, "Overdue", tr.Urgency(engine.UrgencyOverdue), "unknown languages fall back to English")

	assert.Equal(t, "missing_key", tr.Msg("missing_key", nil))

	tr.SetLanguage("es")
	assert.Equal(t, "es", tr.Lang())
	assert.Equal(t, "Vencido", tr.Urgency(engine.UrgencyOverdue))
}
