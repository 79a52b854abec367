package report

import (
	"fmt"
	"strings"

	"ethixguard/internal/compliance"
	"ethixguard/internal/policy"
)

// TimeLayout is the format of the "Generated on" line.
const TimeLayout = "2006-01-02 15:04:05"

// Markdown renders r as the markdown compliance report.
func Markdown(r *Report) string {
	var b strings.Builder
	b.WriteString("# EthixGuard Compliance Report\n\n")
	b.WriteString(fmt.Sprintf("Generated on: %s UTC\n\n", r.GeneratedAt.UTC().Format(TimeLayout)))
	b.WriteString(fmt.Sprintf("Report ID: `%s`\n\n", r.ID))
	b.WriteString(body(r))
	return b.String()
}

// body is everything below the header. It carries no timestamp and no ID,
// so it doubles as the input to the report ID.
func body(r *Report) string {
	var b strings.Builder

	b.WriteString("## Biosafety Compliance Summary\n\n")
	writeItems(&b, r.Biosafety.Items, nil)
	writeSummary(&b, r.Biosafety.Summary)

	b.WriteString("## Ethics Compliance Summary\n\n")
	if r.ResearchType != "" {
		b.WriteString(fmt.Sprintf("Research type: %s\n\n", r.ResearchType))
	}
	writeItems(&b, r.Ethics.Items, r.Containment)
	writeSummary(&b, r.Ethics.Summary)

	if strings.TrimSpace(r.Notes) != "" {
		b.WriteString("## Additional Notes\n\n")
		b.WriteString(strings.TrimSpace(r.Notes) + "\n\n")
	}

	b.WriteString("## Recommendations\n\n")
	b.WriteString("### " + r.Recommendation.Heading + "\n")
	if len(r.Recommendation.Actions) > 0 {
		b.WriteString("\n")
	}
	for _, a := range r.Recommendation.Actions {
		b.WriteString("- " + a + "\n")
	}
	return b.String()
}

func writeItems(b *strings.Builder, items []compliance.ClassifiedItem, ca *compliance.ContainmentAssessment) {
	for _, it := range items {
		line := fmt.Sprintf("- **%s**: %s (%s)", it.Question, it.Value, it.Status.Tag())
		if ca != nil && it.Question == policy.LabelContainmentLevel && ca.Insufficient() {
			line += " - Minimum required: " + ca.Required.String()
		}
		b.WriteString(line + "\n")
	}
	if len(items) > 0 {
		b.WriteString("\n")
	}
}

func writeSummary(b *strings.Builder, s compliance.Summary) {
	b.WriteString("### Summary\n\n")
	b.WriteString(fmt.Sprintf("- Passes: %d\n", s.Pass))
	b.WriteString(fmt.Sprintf("- Warnings: %d\n", s.Warning))
	b.WriteString(fmt.Sprintf("- Violations: %d\n\n", s.Violation))
}
