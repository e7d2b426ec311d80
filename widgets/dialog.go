package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ButtonKind selects the button palette.
type ButtonKind int

const (
	ButtonNormal ButtonKind = iota
	ButtonCancel
	ButtonDestructive
)

// ButtonView is one rendered dialog button.
type ButtonView struct {
	Text string
	Kind ButtonKind
}

// DialogView is everything needed to draw an alert card.
type DialogView struct {
	Title    string
	Message  string
	Buttons  []ButtonView
	Selected int
	Footer   string
	MaxWidth int
}

// Theme holds the dialog styles.
type Theme struct {
	Card        lipgloss.Style
	Title       lipgloss.Style
	Message     lipgloss.Style
	Button      lipgloss.Style
	Selected    lipgloss.Style
	Destructive lipgloss.Style
	Muted       lipgloss.Style
}

// NewTheme builds the dialog theme around an accent color (ANSI index or hex).
func NewTheme(accent string) Theme {
	if strings.TrimSpace(accent) == "" {
		accent = "39"
	}
	a := lipgloss.Color(accent)
	return Theme{
		Card:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(a).Padding(1, 2),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(a),
		Message:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Button:      lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("250")),
		Selected:    lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("0")).Background(a),
		Destructive: lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("203")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Render draws the card. Buttons are laid out on one row, the selected one
// highlighted; a destructive button keeps its color unless selected.
func (d DialogView) Render(th Theme) string {
	width := d.MaxWidth
	if width <= 0 {
		width = 48
	}
	parts := []string{th.Title.Render(d.Title)}
	if d.Message != "" {
		parts = append(parts, "", th.Message.Width(width).Render(d.Message))
	}
	if row := d.buttonRow(th); row != "" {
		parts = append(parts, "", row)
	}
	if d.Footer != "" {
		parts = append(parts, "", th.Muted.Render(d.Footer))
	}
	return th.Card.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (d DialogView) buttonRow(th Theme) string {
	if len(d.Buttons) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(d.Buttons))
	for i, b := range d.Buttons {
		label := "[ " + b.Text + " ]"
		switch {
		case i == d.Selected:
			rendered = append(rendered, th.Selected.Render(label))
		case b.Kind == ButtonDestructive:
			rendered = append(rendered, th.Destructive.Render(label))
		default:
			rendered = append(rendered, th.Button.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
