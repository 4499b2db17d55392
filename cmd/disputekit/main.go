// Command disputekit is the operator CLI: matching, letters, catalog data
// tooling, entitlements and database migrations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "disputekit",
		Short: "Card dispute reason-code tooling",
		Long: `disputekit matches dispute descriptions to card-network reason codes,
assembles dispute letters and maintains the reason catalog data files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	cmd.PersistentFlags().String("data-dir", "", "catalog data directory (overrides catalog.data_dir)")
	cmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("catalog.data_dir", cmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(matchCmd())
	cmd.AddCommand(letterCmd())
	cmd.AddCommand(catalogCmd())
	cmd.AddCommand(grantCmd())
	cmd.AddCommand(outcomeCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(setupCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "disputekit %s\n", version)
		},
	}
}
