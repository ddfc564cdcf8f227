package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viczaid25/CreditCardApp/internal/app"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

func newAddCmd(w *wiring) *cobra.Command {
	var (
		name        string
		cutDay      int
		paymentDays int
		color       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a card and schedule its reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := w.build(cmd)
			if err != nil {
				return err
			}

			card, err := d.service.AddCard(cmd.Context(), name, cutDay, paymentDays, normalizeColor(color))
			if card.ID == "" {
				return d.userError(err, "")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.translator.Msg(config.TKeyCardAdded, map[string]any{
				"Name": card.Name,
				"ID":   card.ID,
			}))
			return err
		},
	}

	cmd.Flags().StringVar(&name, config.FlagName, "", config.FlagDescName)
	cmd.Flags().IntVar(&cutDay, config.FlagCutDay, 0, config.FlagDescCutDay)
	cmd.Flags().IntVar(&paymentDays, config.FlagPaymentDays, 0, config.FlagDescPayDays)
	cmd.Flags().StringVar(&color, config.FlagColor, "", config.FlagDescColor)
	_ = cmd.MarkFlagRequired(config.FlagName)
	_ = cmd.MarkFlagRequired(config.FlagCutDay)
	_ = cmd.MarkFlagRequired(config.FlagPaymentDays)

	return cmd
}

func newEditCmd(w *wiring) *cobra.Command {
	var (
		name        string
		cutDay      int
		paymentDays int
		color       string
	)

	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Change a card and reschedule its reminders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := w.build(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var patch app.CardPatch
			if flags.Changed(config.FlagName) {
				if strings.TrimSpace(name) == "" {
					return d.userError(&engine.ValidationError{Field: config.FlagName, Key: config.TKeyErrNameEmpty}, "")
				}
				patch.Name = &name
			}
			if flags.Changed(config.FlagCutDay) {
				if cutDay < config.MinCutDay || cutDay > config.MaxCutDay {
					return d.userError(&engine.ValidationError{Field: config.FlagCutDay, Key: config.TKeyErrCutDay}, "")
				}
				patch.CutDay = &cutDay
			}
			if flags.Changed(config.FlagPaymentDays) {
				if paymentDays < config.MinPaymentDays || paymentDays > config.MaxPaymentDays {
					return d.userError(&engine.ValidationError{Field: config.FlagPaymentDays, Key: config.TKeyErrPaymentDays}, "")
				}
				patch.PaymentDays = &paymentDays
			}
			if flags.Changed(config.FlagColor) {
				c := normalizeColor(color)
				patch.ColorTag = &c
			}

			card, err := d.service.UpdateCard(cmd.Context(), args[0], patch)
			if card.ID == "" {
				return d.userError(err, args[0])
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.translator.Msg(config.TKeyCardUpdated, map[string]any{"Name": card.Name}))
			return err
		},
	}

	cmd.Flags().StringVar(&name, config.FlagName, "", config.FlagDescName)
	cmd.Flags().IntVar(&cutDay, config.FlagCutDay, 0, config.FlagDescCutDay)
	cmd.Flags().IntVar(&paymentDays, config.FlagPaymentDays, 0, config.FlagDescPayDays)
	cmd.Flags().StringVar(&color, config.FlagColor, "", config.FlagDescColor)

	return cmd
}

func newDeleteCmd(w *wiring) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <card-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a card and cancel its reminders",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := w.build(cmd)
			if err != nil {
				return err
			}

			if err := d.service.DeleteCard(cmd.Context(), args[0]); err != nil {
				return d.userError(err, args[0])
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.translator.Msg(config.TKeyCardDeleted, map[string]any{"ID": args[0]}))
			return nil
		},
	}
}

func newListCmd(w *wiring) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cards ordered by payment due date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := w.build(cmd)
			if err != nil {
				return err
			}
			renderSnapshots(cmd.OutOrStdout(), d.translator, d.service.Snapshots())
			return nil
		},
	}
}

func newDueCmd(w *wiring) *cobra.Command {
	var within int

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List cards whose payment is due soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := w.build(cmd)
			if err != nil {
				return err
			}
			snaps := engine.DueWithin(d.service.ListCards(), d.clock.Now(), within)
			renderSnapshots(cmd.OutOrStdout(), d.translator, snaps)
			return nil
		},
	}

	cmd.Flags().IntVar(&within, config.FlagWithin, config.DefaultDueWindowDays, config.FlagDescWithin)
	return cmd
}

// normalizeColor accepts "#RRGGBB" or "RRGGBB" and stores the bare upper-case form.
func normalizeColor(c string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
}
