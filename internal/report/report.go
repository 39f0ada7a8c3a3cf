// Package report renders the final interview report as terminal text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rbright/rehearse/internal/remote"
)

// Band classifies an overall score.
type Band string

const (
	BandStrong Band = "strong"
	BandMixed  Band = "mixed"
	BandWeak   Band = "weak"
)

// BandFor maps a 0-100 score to its band.
func BandFor(score int) Band {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 50:
		return BandMixed
	default:
		return BandWeak
	}
}

// Render writes r to w.
func Render(w io.Writer, r remote.Report) error {
	_, err := io.WriteString(w, String(r))
	return err
}

// String returns the rendered report.
func String(r remote.Report) string {
	var b strings.Builder

	marker := "NO HIRE"
	if r.Hire() {
		marker = "HIRE"
	}

	b.WriteString("Interview report\n")
	b.WriteString("================\n\n")
	fmt.Fprintf(&b, "Final score: %d/100 (%s)\n", r.Score, BandFor(r.Score))
	fmt.Fprintf(&b, "Verdict:     %s [%s]\n\n", strings.ToUpper(strings.TrimSpace(r.Verdict)), marker)

	b.WriteString("Score breakdown\n")
	fmt.Fprintf(&b, "  Technical  (70%%): %d\n", r.TechnicalScore)
	fmt.Fprintf(&b, "  Confidence (30%%): %d\n", r.ConfidenceScore)

	if summary := strings.TrimSpace(r.Summary); summary != "" {
		b.WriteString("\nSummary\n")
		fmt.Fprintf(&b, "  %s\n", summary)
	}

	writeList(&b, "Strengths", "+", r.Strengths)
	writeList(&b, "Areas for improvement", "-", r.Weaknesses)

	return b.String()
}

func writeList(b *strings.Builder, title string, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(b, "  %s %s\n", bullet, item)
	}
}
