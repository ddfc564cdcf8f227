// Package cli holds the cobra command tree of the cardcal binary.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

// Options carries process-level hooks into the command tree.
type Options struct {
	// SetupLogging installs the default slog logger once flags are parsed.
	// Execute closes the returned closer, if any, after logging the outcome.
	SetupLogging func(debug bool) io.Closer

	// Clock defaults to the wall clock.
	Clock engine.Clock

	// Args replaces os.Args[1:] when non-nil.
	Args []string
}

// Execute runs the command tree and logs its outcome. The log closer is
// released whether the command succeeded or not.
func Execute(ctx context.Context, opts Options) error {
	var logCloser io.Closer
	if setup := opts.SetupLogging; setup != nil {
		opts.SetupLogging = func(debug bool) io.Closer {
			logCloser = setup(debug)
			return logCloser
		}
	}

	rootCmd := NewRootCmd(opts)
	if opts.Args != nil {
		rootCmd.SetArgs(opts.Args)
	}

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyError, err,
		)
	} else {
		slog.Debug(config.MsgAppStop, config.LogKeyComponent, config.CompCLI)
	}

	if logCloser != nil {
		_ = logCloser.Close()
	}
	return err
}

// NewRootCmd builds the full command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Clock == nil {
		opts.Clock = engine.RealClock{}
	}

	var (
		configPath string
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:           config.BinaryName,
		Short:         "Credit card billing-cycle calendar and payment reminders",
		Long:          "cardcal tracks the statement (cut) date and payment due date of your credit cards and reminds you before each payment.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.SetupLogging != nil {
				opts.SetupLogging(debug)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, config.FlagConfig, "", config.FlagDescConfig)
	rootCmd.PersistentFlags().BoolVar(&debug, config.FlagDebug, false, config.FlagDescDebug)

	w := &wiring{configPath: &configPath, clock: opts.Clock}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAddCmd(w),
		newEditCmd(w),
		newDeleteCmd(w),
		newListCmd(w),
		newDueCmd(w),
		newNotificationsCmd(w),
		newFeedPasswordCmd(w),
		newServeCmd(w),
	)

	return rootCmd
}
