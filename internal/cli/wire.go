package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viczaid25/CreditCardApp/internal/app"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
	"github.com/viczaid25/CreditCardApp/internal/locale"
	"github.com/viczaid25/CreditCardApp/internal/notify"
	"github.com/viczaid25/CreditCardApp/internal/store"
)

// wiring resolves the dependencies of a command once its flags are parsed.
type wiring struct {
	configPath *string
	clock      engine.Clock
}

// deps is the dependency graph shared by every command.
type deps struct {
	settings   config.Settings
	service    *app.CardService
	sink       *notify.FileSink
	translator *locale.Translator
	clock      engine.Clock
}

func (w *wiring) build(cmd *cobra.Command) (*deps, error) {
	settings, err := config.LoadSettings(viper.New(), *w.configPath)
	if err != nil {
		return nil, err
	}

	repo, err := store.NewRepository(settings.StorePath)
	if err != nil {
		return nil, fmt.Errorf("wire card store: %w", err)
	}

	sink, err := notify.NewFileSink(settings.RemindersPath)
	if err != nil {
		return nil, fmt.Errorf("wire reminder sink: %w", err)
	}

	tr := locale.New(settings.Language)

	scheduler := engine.NewScheduler(w.clock, sink)
	scheduler.Policy = engine.ReminderPolicy{
		DaysBefore: settings.DaysBefore,
		Hour:       settings.ReminderHour,
		Minute:     settings.ReminderMinute,
	}
	scheduler.FormatReminder = tr.Reminder
	scheduler.OnDenied = func() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), tr.Msg(config.TKeyNotifDenied, nil))
	}

	svc := app.NewCardService(repo, scheduler, w.clock)
	if err := svc.Load(cmd.Context()); err != nil {
		return nil, err
	}

	return &deps{
		settings:   settings,
		service:    svc,
		sink:       sink,
		translator: tr,
		clock:      w.clock,
	}, nil
}

// userError turns domain errors into messages in the user's language while
// keeping the cause inspectable.
func (d *deps) userError(err error, cardID string) error {
	if err == nil {
		return nil
	}
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%s: %w", d.translator.Msg(verr.Key, nil), err)
	}
	if errors.Is(err, engine.ErrCardNotFound) {
		return fmt.Errorf("%s: %w", d.translator.Msg(config.TKeyErrCardMissing, map[string]any{"ID": cardID}), err)
	}
	return err
}
