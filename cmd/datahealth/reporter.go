package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dataplane-io/datahealth/internal/health"
)

// Verdict styles, bold foreground per status.
var (
	styleGreen  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10b981"))
	styleYellow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f59e0b"))
	styleRed    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// statusStyle returns the style for a verdict. Unknown statuses render dim.
func statusStyle(status health.Status) lipgloss.Style {
	switch status {
	case health.StatusGreen:
		return styleGreen
	case health.StatusYellow:
		return styleYellow
	case health.StatusRed:
		return styleRed
	}
	return styleDim
}

// renderStatus renders a verdict with its color applied. Outside a terminal
// lipgloss degrades to plain text, so piped output stays clean.
func renderStatus(status health.Status) string {
	return statusStyle(status).Render(string(status))
}

// statusIcon returns the single-character progress icon for a verdict.
func statusIcon(status health.Status) string {
	switch status {
	case health.StatusGreen:
		return "✓"
	case health.StatusYellow:
		return "!"
	}
	return "✗"
}

// formatDuration formats a duration in a consistent, human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// truncateName shortens a name to maxLen runes, replacing the last rune with
// "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// datasetNameWidth computes the breakdown column width from the longest
// dataset name, clamped so one absurd name cannot blow up the table.
func datasetNameWidth(report *health.Report) int {
	const maxWidth = 30
	const minWidth = 8

	width := minWidth
	for _, entry := range report.Datasets {
		if n := runewidth.StringWidth(entry.Dataset.Name); n > width {
			width = n
		}
	}
	if width > maxWidth {
		width = maxWidth
	}
	return width
}

//nolint:errcheck // display function, writer errors are not actionable
func printSummary(w io.Writer, report *health.Report, duration time.Duration) {
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintln(w, " DATASET HEALTH")
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintln(w)

	summary := report.Summary

	fmt.Fprintf(w, "Overall Status: %s\n", renderStatus(report.Status))
	fmt.Fprintf(w, "Datasets:       %d\n", summary.Total)
	fmt.Fprintf(w, "  GREEN:        %d\n", summary.Green)
	fmt.Fprintf(w, "  YELLOW:       %d\n", summary.Yellow)
	fmt.Fprintf(w, "  RED:          %d\n", summary.Red)
	fmt.Fprintf(w, "Generated At:   %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:       %s\n", formatDuration(duration))
	fmt.Fprintln(w)

	if len(report.Datasets) == 0 {
		fmt.Fprintln(w, "No datasets evaluated.")
		fmt.Fprintln(w)
		return
	}

	// Per-dataset breakdown
	fmt.Fprintln(w, "-"+strings.Repeat("-", 50))
	fmt.Fprintln(w, " PER-DATASET BREAKDOWN")
	fmt.Fprintln(w, "-"+strings.Repeat("-", 50))

	nameWidth := datasetNameWidth(report)
	for _, entry := range report.Datasets {
		name := truncateName(entry.Dataset.Name, nameWidth)
		fmt.Fprintf(w, "  %s %s [%s]\n",
			statusIcon(entry.Status), padRight(name, nameWidth), renderStatus(entry.Status))

		// Show the evidence behind every non-GREEN verdict.
		if entry.Status == health.StatusGreen {
			continue
		}
		for _, check := range entry.Checks {
			if check.Status == health.StatusGreen {
				continue
			}
			fmt.Fprintf(w, "      %s %s: %s\n", statusIcon(check.Status), check.Name, check.Message)
		}
	}
	fmt.Fprintln(w)
}
