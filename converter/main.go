package main

import (
	"fmt"
	"github.com/go-kit/log"
	"github.com/spf13/cobra"
	"go-exchange-rate-graph/config"
	"go-exchange-rate-graph/logging"
	"os"
	"strings"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		logger     log.Logger = log.NewNopLogger()
	)

	root := &cobra.Command{
		Use:   "converter <conversion file>",
		Short: "Convert an amount between currencies through the fewest exchanges",
		Long: `Reads a conversion file and prints the converted amount.

The first line of the file is source;amount;destination, the second the number
of rate lines that follow, then one from;to;rate line per exchange rate.
Arguments are joined with spaces, so paths containing spaces need no quotes.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			logger, err = logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("missing conversion file")
			}
			amount, err := convertFile(strings.Join(args, " "), log.With(logger, "component", "converter"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), amount)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $RATEGRAPH_CONFIG)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	interactive := &cobra.Command{
		Use:   "interactive [conversion file]",
		Short: "Convert a file, then change amount, currencies or file and convert again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), log.With(logger, "component", "session"), strings.Join(args, " "))
		},
	}
	root.AddCommand(interactive)

	return root
}
