package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/zalando/go-keyring"
)

func newNotificationsCmd(w *wiring) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Allow, deny or inspect payment reminders",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Allow reminders and reschedule them for every card",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d, err := w.build(cmd)
				if err != nil {
					return err
				}

				// Rescheduling only happens on a change, so say so when nothing changed.
				if d.sink.IsAuthorized() {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.translator.Msg(config.TKeyNotifAlreadyOn, nil))
					return nil
				}

				unsubscribe := d.service.WatchAuthorization(d.sink)
				defer unsubscribe()

				if err := d.sink.SetAuthorized(cmd.Context(), true); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.translator.Msg(config.TKeyNotifEnabled, nil))
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Deny reminders and drop the pending ones",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d, err := w.build(cmd)
				if err != nil {
					return err
				}

				if err := d.sink.SetAuthorized(cmd.Context(), false); err != nil {
					return err
				}
				if err := d.sink.CancelAll(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.translator.Msg(config.TKeyNotifDisabled, nil))
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether reminders are allowed and how many are pending",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d, err := w.build(cmd)
				if err != nil {
					return err
				}

				pending, err := d.sink.Pending(cmd.Context())
				if err != nil {
					return err
				}
				state := d.translator.Msg(config.TKeyStateOff, nil)
				if d.sink.IsAuthorized() {
					state = d.translator.Msg(config.TKeyStateOn, nil)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.translator.Msg(config.TKeyNotifStatus, map[string]any{
					"State": state,
					"Count": len(pending),
				}))
				return nil
			},
		},
	)

	return cmd
}

func newFeedPasswordCmd(w *wiring) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed-password",
		Short: "Protect the HTTP feed with a password kept in the system keyring",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <password>",
			Short: "Store the feed password (user name: " + config.FeedUser + ")",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := w.build(cmd)
				if err != nil {
					return err
				}
				if err := keyring.Set(config.KeyringService, config.KeyringFeedUser, args[0]); err != nil {
					return fmt.Errorf("%s: %w", config.ErrKeyringWrite, err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.translator.Msg(config.TKeyFeedPwdSet, nil))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the feed password and serve without auth",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				d, err := w.build(cmd)
				if err != nil {
					return err
				}
				err = keyring.Delete(config.KeyringService, config.KeyringFeedUser)
				if err != nil && !errors.Is(err, keyring.ErrNotFound) {
					return fmt.Errorf("%s: %w", config.ErrKeyringWrite, err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.translator.Msg(config.TKeyFeedPwdCleared, nil))
				return nil
			},
		},
	)

	return cmd
}

// feedPassword returns the stored feed password, or "" when none is set.
func feedPassword() (string, error) {
	pwd, err := keyring.Get(config.KeyringService, config.KeyringFeedUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyringRead, err)
	}
	return pwd, nil
}
