package main

import (
	"fmt"
	"strings"

	"boardpoints/internal/board"

	"github.com/charmbracelet/lipgloss"
)

var (
	success = lipgloss.Color("#8BC34A") // Lime Green
	info    = lipgloss.Color("#2196F3") // Blue
	muted   = lipgloss.Color("#808a99")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(info)
	pointsStyle = lipgloss.NewStyle().Bold(true).Foreground(success)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
)

// renderReport formats one pass over source for the terminal.
func renderReport(source string, r board.Report) string {
	if !r.Active {
		return titleStyle.Render(source) + "  " + mutedStyle.Render("not a project board")
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(source))
	sb.WriteString("  ")
	sb.WriteString(pointsStyle.Render(fmt.Sprintf("%d points", r.Points)))
	sb.WriteString("\n")

	width := 0
	for _, col := range r.Columns {
		width = max(width, lipgloss.Width(columnLabel(col)))
	}
	nameStyle := lipgloss.NewStyle().Width(width)
	for _, col := range r.Columns {
		fmt.Fprintf(&sb, "  %s  %s %s\n",
			nameStyle.Render(columnLabel(col)),
			pointsStyle.Render(fmt.Sprintf("%d points", col.Points)),
			mutedStyle.Render(fmt.Sprintf("(%d cards)", col.Cards)))
	}

	s := r.Stats
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  created %d, replaced %d, unchanged %d, suffixed %d, skipped %d",
		s.Created, s.Replaced, s.Unchanged, s.Suffixed, s.Skipped)))
	return sb.String()
}

func columnLabel(col board.ColumnReport) string {
	if col.Name == "" {
		return "(unnamed)"
	}
	return col.Name
}
