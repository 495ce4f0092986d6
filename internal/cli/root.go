package cli

import (
	"fmt"

	"factory-dispatch/internal/config"
	"factory-dispatch/internal/logger"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the loaded configuration.
type RootOptions struct {
	ConfigFile string
	Verbose    bool

	cfg config.Printer
}

// NewRootCommand creates the root command for the factory printer client.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "factory-printer",
		Short: "Factory order printer",
		Long: `Polls the order store for new factory orders, prints a production ticket
for each one and acknowledges it so the order moves to confirmed.

Settings come from FACTORY_* environment variables or a config file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadPrinter(opts.ConfigFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			level := cfg.LogLevel
			if opts.Verbose {
				level = "debug"
			}
			if err := logger.Init(level, opts.Verbose); err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewTestPrintCommand(opts))

	return cmd
}
