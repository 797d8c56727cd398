// Package cli implements the catalogctl operator tool.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"artwaves-catalog/config"
	"artwaves-catalog/logging"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	cfg    *config.Config
)

// NewRootCmd creates the root cobra command for catalogctl.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Operate the Art Waves product catalog",
		Long:  "catalogctl queries catalog snapshots offline, seeds catalog backends and mints API tokens.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	cfg = config.LoadConfig()

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")

	root.AddCommand(
		newQueryCmd(),
		newSeedCmd(),
		newGenerateCmd(),
		newTokenCmd(),
	)

	return root
}
