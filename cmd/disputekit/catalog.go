package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/disputekit/disputekit-server/internal/catalog"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/logging"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Maintain reason catalog data files",
		Long: `Import, enrich, convert and validate the files under the catalog data
directory: reasons/<network>, strategies/<network>, bins and issuers.`,
	}

	cmd.AddCommand(catalogImportCmd())
	cmd.AddCommand(catalogEnhanceCmd())
	cmd.AddCommand(catalogSeedKeywordsCmd())
	cmd.AddCommand(catalogConvertBinsCmd())
	cmd.AddCommand(catalogValidateCmd())

	return cmd
}

// dataDirFrom picks the positional directory, then --data-dir, then ./data.
func dataDirFrom(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if dir := viper.GetString("catalog.data_dir"); dir != "" {
		return dir
	}
	return "data"
}

func catalogImportCmd() *cobra.Command {
	var (
		scenariosFile string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "import <legacy-file> [data-dir]",
		Short: "Split a legacy {network: {code: entry}} file into per-network lists",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var legacy map[string]map[string]domain.ReasonCodeEntry
			if err := catalog.DecodeFile(args[0], &legacy); err != nil {
				return err
			}

			var scenarios map[string][]catalog.ScenarioSeed
			if scenariosFile != "" {
				if err := catalog.DecodeFile(scenariosFile, &scenarios); err != nil {
					return err
				}
			}

			ext, err := extensionFor(format)
			if err != nil {
				return err
			}

			dir := filepath.Join(dataDirFrom(args[1:]), catalog.ReasonsDir)
			byNetwork := catalog.ImportLegacy(legacy, scenarios)

			networks := make([]string, 0, len(byNetwork))
			for network := range byNetwork {
				networks = append(networks, network)
			}
			sort.Strings(networks)

			for _, network := range networks {
				path := filepath.Join(dir, network+ext)
				if err := catalog.WriteDataFile(path, byNetwork[network]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries -> %s\n", network, len(byNetwork[network]), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenariosFile, "scenarios", "", "legacy {network: [{reasonCode, scenarioPattern}]} file")
	cmd.Flags().StringVar(&format, "format", "json", "output format (json, yaml)")
	return cmd
}

func catalogEnhanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enhance [data-dir]",
		Short: "Fill day counts from the free-text time limits",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rewriteReasons(cmd, dataDirFrom(args), "time limits", catalog.EnhanceTimeLimits)
		},
	}
}

func catalogSeedKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-keywords [data-dir]",
		Short: "Add category match keywords to entries that have none",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rewriteReasons(cmd, dataDirFrom(args), "keywords", catalog.SeedKeywords)
		},
	}
}

// rewriteReasons applies fn to every network's reasons file in place.
func rewriteReasons(cmd *cobra.Command, dataDir, what string, fn func([]domain.ReasonCodeEntry) int) error {
	dir := filepath.Join(dataDir, catalog.ReasonsDir)
	total := 0
	found := 0

	for _, network := range domain.DefaultNetworks {
		path, err := catalog.FindDataFile(dir, network)
		if err != nil {
			continue
		}
		found++

		var entries []domain.ReasonCodeEntry
		if err := catalog.DecodeFile(path, &entries); err != nil {
			return err
		}
		n := fn(entries)
		if err := catalog.WriteDataFile(path, entries); err != nil {
			return err
		}
		total += n
		fmt.Fprintf(cmd.OutOrStdout(), "%s: updated %s on %d of %d entries\n", network, what, n, len(entries))
	}

	if found == 0 {
		return fmt.Errorf("no reason files found under %s", dir)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s on %d entries\n", what, total)
	return nil
}

func catalogConvertBinsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert-bins <bin-list.csv>",
		Short: "Convert a BIN list CSV into the directory BIN table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open BIN csv: %w", err)
			}
			defer f.Close()

			bins, err := catalog.ConvertBinsCSV(f)
			if err != nil {
				return err
			}

			if output == "" {
				output = filepath.Join(dataDirFrom(nil), catalog.BinsFile+".json")
			}
			if _, err := os.Stat(output); err == nil {
				ext := filepath.Ext(output)
				backup := strings.TrimSuffix(output, ext) + fmt.Sprintf("-%d", time.Now().Unix()) + ext
				if err := os.Rename(output, backup); err != nil {
					return fmt.Errorf("failed to back up %s: %w", output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Backed up existing file to %s\n", backup)
			}

			if err := catalog.WriteDataFile(output, bins); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d BIN entries to %s\n", len(bins), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <data-dir>/bins.json)")
	return cmd
}

func catalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [data-dir]",
		Short: "Load the catalog and report entry counts and failures",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataDirFrom(args)
			logger := logging.Discard()

			snap, err := catalog.NewLoader(dir, domain.DefaultNetworks, logger).Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, network := range snap.Catalog.Networks() {
				fmt.Fprintf(out, "%-12s %d entries\n", network, snap.Catalog.Len(network))
			}
			fmt.Fprintf(out, "%-12s %d entries\n", "bins", snap.Directory.BinCount())

			if len(snap.Failures) == 0 {
				fmt.Fprintln(out, "OK")
				return nil
			}

			parts := make([]string, 0, len(snap.Failures))
			for part := range snap.Failures {
				parts = append(parts, part)
			}
			sort.Strings(parts)
			for _, part := range parts {
				fmt.Fprintf(out, "FAIL %s: %v\n", part, snap.Failures[part])
			}
			return fmt.Errorf("%d catalog parts failed to load", len(snap.Failures))
		},
	}
}

func extensionFor(format string) (string, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return ".json", nil
	case "yaml", "yml":
		return ".yaml", nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
