package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func matchCmd() *cobra.Command {
	var (
		network  string
		keywords []string
		search   bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "match [scenario]",
		Short: "Match a dispute description to a reason code",
		Long: `Match free text against the reason catalog. Without --network every
network is tried in priority order. With --keyword the keyword matcher runs
instead, and --search lists the best strategy matches across networks.`,
		Example: `  disputekit match "package never arrived" --network visa
  disputekit match --network mastercard --keyword fraud --keyword stolen
  disputekit match --search "charged twice"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := openCatalogService(ctx)
			if err != nil {
				return err
			}

			if len(keywords) > 0 {
				results, err := svc.MatchKeywords(ctx, network, keywords)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), results)
			}

			if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
				return fmt.Errorf("a scenario argument or --keyword is required")
			}

			if search {
				hits, err := svc.SearchStrategies(ctx, args[0], limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), hits)
			}

			result, err := svc.MatchScenario(ctx, network, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&network, "network", "n", "", "card network (visa, mastercard, amex, discover)")
	cmd.Flags().StringSliceVarP(&keywords, "keyword", "k", nil, "keyword to match (repeatable)")
	cmd.Flags().BoolVar(&search, "search", false, "search strategies across networks")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum strategy search results")

	return cmd
}
