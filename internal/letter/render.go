package letter

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// RenderText renders a draft as plain text, one block per section.
func RenderText(d domain.LetterDraft) string {
	var b strings.Builder
	writeLines := func(lines ...string) {
		for _, l := range lines {
			if l != "" {
				b.WriteString(l)
				b.WriteByte('\n')
			}
		}
	}

	writeLines(d.Header.Sender...)
	b.WriteByte('\n')
	writeLines(d.Header.Date)
	b.WriteByte('\n')
	writeLines("Disputes Department", d.Header.Recipient.Name, d.Header.Recipient.Address)
	b.WriteByte('\n')
	writeLines("Subject: " + d.Header.Subject)
	b.WriteByte('\n')
	writeLines(d.Greeting)
	b.WriteByte('\n')
	writeLines(d.Opening)
	b.WriteByte('\n')
	writeLines(d.Evidence.Summary)

	if !d.Reason.Empty() {
		b.WriteByte('\n')
		writeLines(d.Reason.Statement)
		writeBullets(&b, "Merchant Rebuttals", d.Reason.MerchantRebuttals)
		writeBullets(&b, "Strategy Tips", d.Reason.StrategyTips)
		writeBullets(&b, "Focus Your Evidence On", d.Reason.EvidenceFocus)
		if d.Reason.SuggestedArgument != "" {
			fmt.Fprintf(&b, "Suggested Argument: %s\n", d.Reason.SuggestedArgument)
		}
	}

	if len(d.StrategyTips) > 0 {
		b.WriteByte('\n')
		writeBullets(&b, "Tips", d.StrategyTips)
	}

	if len(d.Exhibits) > 0 {
		b.WriteString("\nEnclosed:\n")
		for _, e := range d.Exhibits {
			fmt.Fprintf(&b, "%s: %s\n", e.Label, e.Description)
		}
	}

	b.WriteByte('\n')
	writeLines(d.Request.Request, d.Request.Closing)
	b.WriteByte('\n')
	writeLines(d.Request.SignOff, d.Request.Signature)

	if d.CFPBComplaint != "" {
		b.WriteByte('\n')
		writeLines(d.CFPBComplaint)
	}
	return b.String()
}

func writeBullets(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

var htmlTemplate = template.Must(template.New("letter").Parse(`<article class="dispute-letter">
<address class="sender">{{range .Header.Sender}}{{.}}<br>{{end}}</address>
<p class="date">{{.Header.Date}}</p>
<address class="recipient">Disputes Department<br>{{.Header.Recipient.Name}}<br>{{.Header.Recipient.Address}}</address>
<p class="subject"><strong>Subject:</strong> {{.Header.Subject}}</p>
<p>{{.Greeting}}</p>
<p>{{.Opening}}</p>
<p>{{.Evidence.Summary}}</p>
{{- if .Reason.Statement}}
<section class="reason">
<p>{{.Reason.Statement}}</p>
{{- if .Reason.MerchantRebuttals}}<h4>Merchant Rebuttals</h4><ul>{{range .Reason.MerchantRebuttals}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{- if .Reason.StrategyTips}}<h4>Strategy Tips</h4><ul>{{range .Reason.StrategyTips}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{- if .Reason.EvidenceFocus}}<h4>Focus Your Evidence On</h4><ul>{{range .Reason.EvidenceFocus}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{- if .Reason.SuggestedArgument}}<p><strong>Suggested Argument:</strong> {{.Reason.SuggestedArgument}}</p>{{end}}
</section>
{{- end}}
{{- if .StrategyTips}}
<ul class="tips">{{range .StrategyTips}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
{{- if .Exhibits}}
<ol class="exhibits">{{range .Exhibits}}<li><strong>{{.Label}}:</strong> {{.Description}}</li>{{end}}</ol>
{{- end}}
<p>{{.Request.Request}}</p>
<p>{{.Request.Closing}}</p>
<p>{{.Request.SignOff}}<br>{{.Request.Signature}}</p>
{{- if .CFPBComplaint}}
<p class="cfpb">{{.CFPBComplaint}}</p>
{{- end}}
</article>
`))

// RenderHTML renders a draft as an escaped HTML fragment.
func RenderHTML(d domain.LetterDraft) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("failed to render letter: %w", err)
	}
	return buf.String(), nil
}
