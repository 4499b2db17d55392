package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/disputekit/disputekit-server/internal/auth"
)

func grantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <email>",
		Short: "Unlock the full letter for an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Service.GrantEntitlement(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted entitlement to %s\n", args[0])

			secret := viper.GetString("server.user_token_secret")
			signer, err := auth.NewSigner(secret, viper.GetDuration("server.user_token_ttl"))
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No user_token_secret configured; no access token issued")
				return nil
			}
			token, err := signer.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Access token: %s\n", token)
			return nil
		},
	}
}

func outcomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outcome <session-id> <pending|won|lost|withdrawn>",
		Short: "Record the outcome of a dispute",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Service.UpdateOutcome(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s marked %s\n", args[0], args[1])
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded dispute sessions as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			application, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			if output == "" || output == "-" {
				return application.Service.ExportDisputes(ctx, cmd.OutOrStdout())
			}

			if info, err := os.Stat(output); err == nil && info.IsDir() {
				output = filepath.Join(output, fmt.Sprintf("disputes-%s.json", time.Now().UTC().Format("20060102-150405")))
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()

			if err := application.Service.ExportDisputes(ctx, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported disputes to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default: stdout)")
	return cmd
}
