package handlers

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/ekstrap/ekstrap/internal/provisioning"
)

var (
	summaryColorGreen  = lipgloss.Color("#22c55e")
	summaryColorRed    = lipgloss.Color("#ef4444")
	summaryColorYellow = lipgloss.Color("#eab308")
	summaryColorBlue   = lipgloss.Color("#3b82f6")
	summaryColorDim    = lipgloss.Color("#6b7280")
	summaryColorWhite  = lipgloss.Color("#f9fafb")
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(summaryColorWhite)

	summarySectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(summaryColorBlue)

	summaryDimStyle = lipgloss.NewStyle().
			Foreground(summaryColorDim)

	summaryGreenStyle = lipgloss.NewStyle().
				Foreground(summaryColorGreen)

	summaryYellowStyle = lipgloss.NewStyle().
				Foreground(summaryColorYellow)

	summaryRedStyle = lipgloss.NewStyle().
			Foreground(summaryColorRed)
)

// stdoutIsTTY reports whether stdout is an interactive terminal. Declared
// as a variable so tests can force either path.
var stdoutIsTTY = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// printSummary writes the run recap to stdout, styled when the output is
// an interactive terminal and plain otherwise. A nil summary (config or
// client construction failed before the run started) prints nothing.
func printSummary(s *provisioning.Summary) {
	if s == nil {
		return
	}
	if stdoutIsTTY() {
		fmt.Println(renderSummary(s))
		return
	}
	fmt.Println(renderSummaryPlain(s))
}

// renderSummary produces a lipgloss-styled recap of a run.
func renderSummary(s *provisioning.Summary) string {
	var b strings.Builder

	title := fmt.Sprintf("  ekstrap %s: %s (%s)", s.Operation, s.Cluster, s.Region)
	b.WriteString("\n")
	b.WriteString(summaryTitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(summaryDimStyle.Render("  " + strings.Repeat("═", len(title)-2)))
	b.WriteString("\n")

	if len(s.Resources) > 0 {
		b.WriteString("\n")
		b.WriteString(summarySectionStyle.Render("  Resources"))
		b.WriteString("\n")
		b.WriteString(summaryDimStyle.Render("  " + strings.Repeat("─", 45)))
		b.WriteString("\n")
		for _, res := range s.Resources {
			b.WriteString(fmt.Sprintf("  %s  %-18s %s\n",
				outcomeStyle(res.Outcome).Render(fmt.Sprintf("%-8s", res.Outcome)),
				res.Kind,
				res.Key,
			))
		}
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(summaryYellowStyle.Render("  Warnings"))
		b.WriteString("\n")
		b.WriteString(summaryDimStyle.Render("  " + strings.Repeat("─", 45)))
		b.WriteString("\n")
		for _, w := range s.Warnings {
			b.WriteString(summaryYellowStyle.Render("  ! " + w))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + countsLine(s))
	b.WriteString("\n")

	return b.String()
}

// renderSummaryPlain is the unstyled variant used when stdout is not a
// terminal (CI logs, pipes).
func renderSummaryPlain(s *provisioning.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nekstrap %s: %s (%s)\n", s.Operation, s.Cluster, s.Region)
	for _, res := range s.Resources {
		fmt.Fprintf(&b, "  %-8s %-18s %s\n", res.Outcome, res.Kind, res.Key)
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	b.WriteString(countsLine(s))

	return b.String()
}

// countsLine condenses the outcome tallies into one line, zero counts
// omitted, in a stable order.
func countsLine(s *provisioning.Summary) string {
	counts := s.Counts()
	var parts []string
	for _, outcome := range []string{"created", "repaired", "present", "deleted", "absent", "kept", "degraded"} {
		if n := counts[outcome]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, outcome))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no resources touched")
	}
	line := strings.Join(parts, ", ")
	if s.Duration != "" {
		line += " in " + s.Duration
	}
	return line
}

func outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "created", "deleted":
		return summaryGreenStyle
	case "repaired", "kept":
		return summaryYellowStyle
	case "degraded":
		return summaryRedStyle
	default:
		return summaryDimStyle
	}
}
