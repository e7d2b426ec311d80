package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type Action string

const (
	scopeDialog   = "dialog"
	scopeSessions = "sessions"
)

const (
	actionQuit     Action = "quit"
	actionPrevBtn  Action = "prev_button"
	actionNextBtn  Action = "next_button"
	actionPress    Action = "press"
	actionCancel   Action = "cancel"
	actionForceQ   Action = "force_quit"
	actionScrollUp Action = "scroll_up"
	actionScrollDn Action = "scroll_down"
)

type Binding struct {
	Action  Action
	Binding key.Binding
}

// KeyRegistry maps key presses to actions per scope.
type KeyRegistry struct {
	byScope map[string][]Binding
}

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{byScope: make(map[string][]Binding)}
	reg := func(scope string, action Action, keys []string, helpKey, help string) {
		r.byScope[scope] = append(r.byScope[scope], Binding{
			Action:  action,
			Binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, help)),
		})
	}

	reg(scopeDialog, actionPrevBtn, []string{"left", "h", "shift+tab"}, "←", "prev")
	reg(scopeDialog, actionNextBtn, []string{"right", "l", "tab"}, "→", "next")
	reg(scopeDialog, actionPress, []string{"enter", " "}, "enter", "press")
	reg(scopeDialog, actionCancel, []string{"esc"}, "esc", "cancel")
	reg(scopeDialog, actionForceQ, []string{"ctrl+c"}, "ctrl+c", "quit")

	reg(scopeSessions, actionScrollUp, []string{"up", "k"}, "↑/k", "up")
	reg(scopeSessions, actionScrollDn, []string{"down", "j"}, "↓/j", "down")
	reg(scopeSessions, actionQuit, []string{"q", "ctrl+c"}, "q", "quit")
	return r
}

// Resolve returns the action bound to msg in scope.
func (r *KeyRegistry) Resolve(msg tea.KeyMsg, scope string) (Action, bool) {
	for _, b := range r.byScope[scope] {
		if key.Matches(msg, b.Binding) {
			return b.Action, true
		}
	}
	return "", false
}

// HelpLine renders "key action · key action" for the scope footer.
func (r *KeyRegistry) HelpLine(scope string) string {
	parts := make([]string, 0, len(r.byScope[scope]))
	for _, b := range r.byScope[scope] {
		h := b.Binding.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
