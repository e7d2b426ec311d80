package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Box is a titled pane whose content is clipped to the space it is given.
// Lines past the bottom collapse into a "… N more" marker; Footer, when
// set, is right-aligned on the last row.
type Box struct {
	Title   string
	Content string
	Footer  string
	Accent  lipgloss.Color
}

func (b Box) Render(width, height int) string {
	if width <= 4 || height <= 2 {
		return ""
	}
	inner, rows := width-4, height-2

	title := lipgloss.NewStyle().Bold(true)
	if b.Accent != "" {
		title = title.Foreground(b.Accent)
	}
	lines := []string{title.Render(b.Title)}
	if b.Content != "" {
		lines = append(lines, strings.Split(b.Content, "\n")...)
	}
	budget := rows
	if b.Footer != "" {
		budget--
	}
	if len(lines) > budget && budget > 0 {
		hidden := len(lines) - budget + 1
		lines = append(lines[:budget-1], fmt.Sprintf("… %d more", hidden))
	} else if budget <= 0 {
		lines = nil
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, inner, "…")
	}
	for len(lines) < budget {
		lines = append(lines, "")
	}
	if b.Footer != "" {
		f := ansi.Truncate(b.Footer, inner, "…")
		lines = append(lines, strings.Repeat(" ", max(0, inner-ansi.StringWidth(f)))+f)
	}

	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(width - 2)
	if b.Accent != "" {
		border = border.BorderForeground(b.Accent)
	}
	return border.Render(strings.Join(lines, "\n"))
}
