package cli

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
	"github.com/viczaid25/CreditCardApp/internal/notify"
	"github.com/viczaid25/CreditCardApp/internal/server"
)

func newServeCmd(w *wiring) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Deliver due reminders and serve the calendar feed until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := w.build(cmd)
			if err != nil {
				return err
			}
			return serve(cmd, d)
		},
	}
}

func serve(cmd *cobra.Command, d *deps) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	srv := server.NewFeedServer(d.settings.ServerPort)
	pwd, err := feedPassword()
	if err != nil {
		slog.Warn(config.ErrKeyringRead,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyError, err,
		)
	}
	srv.SetPassword(pwd)

	unsubscribe := d.service.WatchAuthorization(d.sink)
	defer unsubscribe()

	if d.sink.IsAuthorized() {
		if err := d.service.RescheduleAll(ctx); err != nil {
			slog.Error(config.ErrReschedule,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyError, err,
			)
		}
	}
	refreshFeed(ctx, d, srv)

	deliverer := notify.DeliverFunc(func(ctx context.Context, req engine.ReminderRequest) error {
		if _, err := fmt.Fprintf(out, "%s: %s\n", req.Title, req.Body); err != nil {
			return err
		}
		return notify.LogDeliverer{}.Deliver(ctx, req)
	})

	dispatcher := notify.NewDispatcher(d.sink, d.clock, deliverer, d.settings.DispatchSpec)
	dispatcher.AfterFire = d.service.HandleFired
	dispatcher.OnTick = func(ctx context.Context) {
		if err := d.service.Load(ctx); err != nil {
			slog.Warn(config.ErrStoreRead,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyError, err,
			)
		}
		refreshFeed(ctx, d, srv)
	}

	if err := dispatcher.Start(); err != nil {
		return err
	}
	defer dispatcher.Stop()

	return srv.Start(ctx)
}

func refreshFeed(ctx context.Context, d *deps, srv *server.FeedServer) {
	if err := d.service.PublishFeed(ctx, srv, d.sink); err != nil {
		slog.Error(config.ErrFeedRefresh,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyError, err,
		)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), config.MsgVersionOutput,
				config.AppName,
				config.Version,
				runtime.GOOS,
				runtime.GOARCH,
			)
			return err
		},
	}
}
