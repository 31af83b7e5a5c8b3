package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mchmarny/catclean/pkg/correct"
)

const (
	titleWidth = 70
	ruleWidth  = 80
)

// Render writes a human-readable summary of the report to w, listing at
// most limit flagged records.
func Render(w io.Writer, r *Report, limit int) error {
	var sb strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintf(&sb, "%s\n%s mislabel summary\n%s\n", rule, r.Category, rule)
	fmt.Fprintf(&sb, "Original:  %d\n", r.Statistics.OriginalCount)
	fmt.Fprintf(&sb, "Removed:   %d\n", r.Statistics.RemovedCount)
	fmt.Fprintf(&sb, "Kept:      %d\n", r.Statistics.FinalCount)
	fmt.Fprintf(&sb, "Rate:      %s\n", r.MislabelRate)

	if breakdown := r.TopicBreakdown(); len(breakdown) > 0 {
		sb.WriteString("\nBy actual topic:\n")
		for _, tc := range breakdown {
			fmt.Fprintf(&sb, "  %-10s %d\n", tc.Topic, tc.Count)
		}
	}

	n := len(r.MislabeledPapers)
	if limit >= 0 && n > limit {
		n = limit
	}
	if n > 0 {
		fmt.Fprintf(&sb, "\nStrongest evidence (top %d):\n", n)
	}
	for i, e := range r.MislabeledPapers[:n] {
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, Clip(e.Title, titleWidth))
		fmt.Fprintf(&sb, "   Categories: %s\n", strings.Join(e.CategoriesListed, ", "))
		fmt.Fprintf(&sb, "   Actual topic: %s (%d keywords)\n", strings.ToUpper(e.ActualTopic), e.KeywordCount)
		fmt.Fprintf(&sb, "   Evidence: %s\n", strings.Join(e.EvidenceKeywords, ", "))
	}

	sb.WriteString(rule + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// Clip returns at most n runes of s.
func Clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// RenderRemoved writes the first limit removal events in record order.
func RenderRemoved(w io.Writer, events []correct.RemovalEvent, limit int) error {
	n := len(events)
	if limit >= 0 && n > limit {
		n = limit
	}
	if n == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nSample removed (first %d):\n", n)
	for i, ev := range events[:n] {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, Clip(ev.Title, titleWidth))
		fmt.Fprintf(&sb, "   Reason: %s\n", ev.Reason)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
