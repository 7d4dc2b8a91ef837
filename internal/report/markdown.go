package report

import (
	"fmt"
	"strings"

	"github.com/roach88/wcprobe/internal/harness"
)

// FormatResults renders summary and results as Markdown. Results appear in
// input order.
func FormatResults(summary harness.Summary, results []harness.TestResult) string {
	var b strings.Builder

	b.WriteString("# Test Results\n\n")
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total:** %d\n", summary.Total)
	fmt.Fprintf(&b, "- **Passed:** %d\n", summary.Passed)
	fmt.Fprintf(&b, "- **Failed:** %d\n", summary.Failed)
	fmt.Fprintf(&b, "- **Duration:** %s\n", formatDuration(summary.DurationMS))
	fmt.Fprintf(&b, "- **Success Rate:** %.1f%%\n", summary.SuccessRate)

	if len(results) == 0 {
		b.WriteString("\nNo tests were run.\n")
		return b.String()
	}

	b.WriteString("\n## Results\n")
	for _, r := range results {
		fmt.Fprintf(&b, "\n### [%s] %s\n\n", r.Status, r.Name)
		if r.Group != "" {
			fmt.Fprintf(&b, "- **Group:** %s\n", r.Group)
		}
		fmt.Fprintf(&b, "- **Duration:** %dms\n", r.DurationMS)
		if r.ErrorMessage != "" {
			fmt.Fprintf(&b, "- **Error:** %s\n", inline(r.ErrorMessage))
		}
	}
	return b.String()
}

// FormatRun renders a complete run with its header.
func FormatRun(run harness.Run) string {
	var b strings.Builder
	b.WriteString(FormatResults(run.Summary, run.Results))
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "Run `%s` of suite `%s` started %s.\n",
		run.ID, run.Suite, run.StartedAt.UTC().Format("2006-01-02T15:04:05Z"))
	return b.String()
}

func formatDuration(ms int64) string {
	return fmt.Sprintf("%dms (%.2fs)", ms, float64(ms)/1000)
}

// inline keeps multi-line error text on a single list item.
func inline(s string) string {
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return strings.ReplaceAll(s, "\t", `\t`)
}
