package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/disputekit/disputekit-server/internal/config"
	"github.com/disputekit/disputekit-server/internal/setup"
)

func setupCmd() *cobra.Command {
	var (
		clientConfig string
		binary       string
		dataDir      string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with the desktop client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dataDir == "" {
				dataDir = config.LoadLiteConfig().DataDir
			}
			path, err := setup.Register(setup.Options{
				ConfigPath: clientConfig,
				BinaryPath: binary,
				DataDir:    dataDir,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s in %s\n", setup.ServerKey, path)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether the MCP server is registered",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := clientConfig
			if path == "" {
				var err error
				if path, err = setup.DefaultConfigPath(); err != nil {
					return err
				}
			}
			st, err := setup.Inspect(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:     %s\n", st.ConfigPath)
			fmt.Fprintf(out, "registered: %t\n", st.Registered)
			if st.Registered {
				fmt.Fprintf(out, "command:    %s\n", st.Command)
				fmt.Fprintf(out, "data dir:   %s\n", st.DataDir)
			}
			for _, issue := range st.Issues {
				fmt.Fprintf(out, "issue:      %s\n", issue)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&clientConfig, "client-config", "", "desktop client config file (default: per-OS location)")
	cmd.Flags().StringVar(&binary, "binary", "", "path to mcp-server-lite (default: search PATH and build dirs)")
	cmd.Flags().StringVar(&dataDir, "mcp-data-dir", "", "data directory exported to the server (default: ~/.disputekit)")
	cmd.AddCommand(status)

	return cmd
}
