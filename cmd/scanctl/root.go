package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tair/freshsave/pkg/config"
	"github.com/tair/freshsave/pkg/logger"
)

const logLevelFlag = "log-level"

// New builds the scanctl command tree.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scanctl [sub-command]",
		Short: "FreshSave barcode tooling",
		Long: `scanctl runs the product resolver outside the scanner service and
issues development tokens accepted by the FreshSave services.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			level, err := cmd.Flags().GetString(logLevelFlag)
			if err != nil {
				return err
			}
			logger.InitWithWriter("scanctl", zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: "15:04:05"})
			logger.SetLevel(level)
			return nil
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	cmd.PersistentFlags().String(logLevelFlag, "warn", "log level written to stderr (debug, info, warn, error)")
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}
