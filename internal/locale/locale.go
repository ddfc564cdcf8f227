package locale

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator renders user-facing strings from the embedded catalogs.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      string
	languages []string
}

// New loads every embedded catalog and selects lang, falling back to English.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		t.languages = append(t.languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	t.SetLanguage(lang)
	return t
}

// SetLanguage switches the active catalog. Unknown tags resolve to English.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	base, _ := tag.Base()
	t.lang = base.String()
	t.localizer = i18n.NewLocalizer(t.bundle, t.lang, config.DefaultLanguage)
}

// Lang returns the active language code.
func (t *Translator) Lang() string {
	return t.lang
}

// Languages lists the catalogs that loaded successfully.
func (t *Translator) Languages() []string {
	return t.languages
}

// Msg translates a key. data fills template placeholders and may be nil.
// Missing keys return the key itself.
func (t *Translator) Msg(key string, data map[string]any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// FormatDate renders a date with the catalog's date layout.
func (t *Translator) FormatDate(d time.Time) string {
	layout := t.Msg(config.TKeyFormatDate, nil)
	if layout == config.TKeyFormatDate {
		layout = config.DateFormatDisplay
	}
	return d.Format(layout)
}

// Reminder produces the localized title and body of a reminder.
// Its signature matches engine.Scheduler.FormatReminder.
func (t *Translator) Reminder(kind engine.ReminderKind, card engine.Card, d time.Time) (string, string) {
	if kind == engine.KindPayment {
		return t.Msg(config.TKeyPaymentTitle, nil),
			t.Msg(config.TKeyPaymentBody, map[string]any{"Name": card.Name, "Date": t.FormatDate(d)})
	}
	return t.Msg(config.TKeyCutTitle, nil),
		t.Msg(config.TKeyCutBody, map[string]any{"Name": card.Name})
}

// Urgency returns the localized label of an urgency band.
func (t *Translator) Urgency(u engine.Urgency) string {
	return t.Msg(u.MessageKey(), nil)
}
