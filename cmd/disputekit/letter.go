package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/disputekit/disputekit-server/internal/catalog"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/service"
)

func letterCmd() *cobra.Command {
	var (
		intakeFile string
		intake     domain.Intake
		evidence   []string
		tone       string
		format     string
		locked     bool
	)

	cmd := &cobra.Command{
		Use:   "letter",
		Short: "Assemble a dispute letter",
		Long: `Assemble a dispute letter from an intake file (JSON or YAML) or from flags.
Flags override fields read from the file. --locked renders the preview that
hides gated content.`,
		Example: `  disputekit letter --intake intake.yaml --format html > letter.html
  disputekit letter --description "never delivered" --merchant Acme --amount 49.99 --network visa`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := domain.Intake{}
			if intakeFile != "" {
				if err := catalog.DecodeFile(intakeFile, &in); err != nil {
					return err
				}
			}
			mergeIntake(&in, intake)
			if strings.TrimSpace(in.Description) == "" {
				return fmt.Errorf("an intake description is required (--description or --intake)")
			}

			req := service.LetterRequest{
				Intake:          &in,
				Tone:            domain.Tone(tone),
				PaywallUnlocked: !locked,
			}
			for _, e := range evidence {
				req.Evidence = append(req.Evidence, domain.EvidenceItem{Description: e})
			}

			ctx := cmd.Context()
			svc, err := openCatalogService(ctx)
			if err != nil {
				return err
			}

			var result service.LetterResult
			if locked {
				result, err = svc.PreviewLetter(ctx, req)
			} else {
				result, err = svc.GenerateLetter(ctx, req)
			}
			if err != nil {
				return err
			}
			return writeLetter(cmd.OutOrStdout(), result, format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&intakeFile, "intake", "", "intake file (.json, .yaml, .yml)")
	f.StringVar(&intake.Description, "description", "", "what went wrong")
	f.StringVar(&intake.Network, "network", "", "card network")
	f.StringVar(&intake.Answers.Name, "name", "", "cardholder name")
	f.StringVar(&intake.Answers.Merchant, "merchant", "", "merchant name")
	f.StringVar(&intake.Answers.Amount, "amount", "", "disputed amount")
	f.StringVar(&intake.Answers.TransactionDate, "date", "", "transaction date")
	f.StringVar(&intake.Answers.Issuer, "issuer", "", "card issuer")
	f.StringVar(&intake.Answers.CardBrand, "card-brand", "", "card brand used to pick the recommended reason")
	f.StringVar(&intake.Answers.EvidenceSummary, "evidence-summary", "", "summary of supporting evidence")
	f.StringSliceVar(&evidence, "evidence", nil, "evidence item (repeatable)")
	f.StringVar(&tone, "tone", "", "letter tone (formal, assertive, polite)")
	f.StringVar(&format, "format", "text", "output format (text, html, json)")
	f.BoolVar(&locked, "locked", false, "render the locked preview")

	return cmd
}

// mergeIntake copies the non-empty fields of flags onto in.
func mergeIntake(in *domain.Intake, flags domain.Intake) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&in.Description, flags.Description)
	set(&in.Network, flags.Network)
	set(&in.Answers.Name, flags.Answers.Name)
	set(&in.Answers.Merchant, flags.Answers.Merchant)
	set(&in.Answers.Amount, flags.Answers.Amount)
	set(&in.Answers.TransactionDate, flags.Answers.TransactionDate)
	set(&in.Answers.Issuer, flags.Answers.Issuer)
	set(&in.Answers.CardBrand, flags.Answers.CardBrand)
	set(&in.Answers.EvidenceSummary, flags.Answers.EvidenceSummary)
}

func writeLetter(w io.Writer, result service.LetterResult, format string) error {
	switch strings.ToLower(format) {
	case "html":
		_, err := io.WriteString(w, result.HTML)
		return err
	case "json":
		return printJSON(w, result)
	case "text", "":
		_, err := io.WriteString(w, result.Text)
		return err
	default:
		return fmt.Errorf("unknown format %q (want text, html or json)", format)
	}
}
