// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/career-services/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintCascade outputs a cascade log with the state of each step.
func (p *Printer) PrintCascade(c *types.CascadeRecord) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:        %s\n", c.Kind))
	sb.WriteString(fmt.Sprintf("Status:      %s\n", c.Status))
	sb.WriteString(fmt.Sprintf("Attempts:    %d\n", c.Attempts))
	if c.ApplicationID != "" {
		sb.WriteString(fmt.Sprintf("Application: %s\n", c.ApplicationID))
	}
	if c.InterviewID != "" {
		sb.WriteString(fmt.Sprintf("Interview:   %s\n", c.InterviewID))
	}
	if c.CreatedAt != nil {
		sb.WriteString(fmt.Sprintf("Started:     %s\n", c.CreatedAt.Format(time.RFC3339)))
	}

	if len(c.Steps) > 0 {
		sb.WriteString("\nSteps:\n")
		for i, step := range c.Steps {
			sb.WriteString(fmt.Sprintf("  %d. %s %s", i+1, stepMark(step.Status), step.Name))
			if step.Error != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", step.Error))
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("CASCADE "+c.ID, strings.TrimSuffix(sb.String(), "\n"))
}

func stepMark(status types.StepStatus) string {
	switch status {
	case types.StepCompleted:
		return "✓"
	case types.StepFailed:
		return "✗"
	default:
		return "·"
	}
}

// PrintCascades outputs a summary line per cascade.
func (p *Printer) PrintCascades(title string, cascades []types.CascadeRecord) {
	if len(cascades) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d\n\n", len(cascades)))

	count := min(len(cascades), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := cascades[i]
		done := len(c.CompletedSteps())
		sb.WriteString(fmt.Sprintf("• %s  %s  %d/%d steps\n", c.ID, c.Kind, done, len(c.Steps)))
	}
	if len(cascades) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(cascades)-maxItemsToShow))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}
