package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"

	"github.com/jask/voltalert/internal/alert"
	"github.com/jask/voltalert/internal/charging"
	"github.com/jask/voltalert/widgets"
)

// Dismisser resolves the displayed dialog. *alert.Manager satisfies it.
type Dismisser interface {
	Dismiss(id uuid.UUID, button int) error
}

// Texts supplies localized UI copy. *i18n.Dictionary satisfies it.
type Texts interface {
	Text(key string) string
	Format(key string, args ...any) string
}

// App renders charging sessions with the current alert overlaid on top.
type App struct {
	ctx     context.Context
	alerts  Dismisser
	texts   Texts
	theme   widgets.Theme
	accent  string
	keys    *KeyRegistry
	width   int
	height  int
	status  string
	isErr   bool
	simDone bool

	sessions map[string]charging.Session
	cursor   int

	dialog   *alert.Dialog
	pending  int
	selected int
}

func New(ctx context.Context, alerts Dismisser, texts Texts, accent string) *App {
	return &App{
		ctx:      ctx,
		alerts:   alerts,
		texts:    texts,
		theme:    widgets.NewTheme(accent),
		accent:   accent,
		keys:     NewKeyRegistry(),
		width:    80,
		height:   24,
		sessions: make(map[string]charging.Session),
	}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case ShowDialogMsg:
		d := m.Dialog
		a.dialog = &d
		a.pending = m.Pending
		a.selected = initialSelection(d.Buttons)
	case QueueMsg:
		if a.dialog != nil {
			a.pending = m.Pending
		}
	case SessionMsg:
		a.sessions[m.Session.ID] = m.Session
	case SimDoneMsg:
		a.simDone = true
		if m.Err != nil && a.ctx.Err() == nil {
			return a, ErrorCmd(m.Err)
		}
		return a, StatusCmd("all sessions finished")
	case StatusMsg:
		a.status, a.isErr = m.Text, m.IsErr
	case dismissedMsg:
		if m.err != nil {
			return a, ErrorCmd(m.err)
		}
	case tea.KeyMsg:
		if a.dialog != nil {
			return a.handleDialogKey(m)
		}
		return a.handleSessionsKey(m)
	}
	return a, nil
}

func (a *App) handleDialogKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok := a.keys.Resolve(m, scopeDialog)
	if !ok {
		return a, nil
	}
	n := len(a.dialog.Buttons)
	if n == 0 && action != actionForceQ {
		return a, nil
	}
	switch action {
	case actionForceQ:
		return a, tea.Quit
	case actionPrevBtn:
		a.selected = (a.selected - 1 + n) % n
	case actionNextBtn:
		a.selected = (a.selected + 1) % n
	case actionPress:
		return a, a.press(a.selected)
	case actionCancel:
		if idx, ok := cancelIndex(a.dialog.Buttons); ok {
			return a, a.press(idx)
		}
	}
	return a, nil
}

func (a *App) handleSessionsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok := a.keys.Resolve(m, scopeSessions)
	if !ok {
		return a, nil
	}
	switch action {
	case actionQuit:
		return a, tea.Quit
	case actionScrollUp:
		if a.cursor > 0 {
			a.cursor--
		}
	case actionScrollDn:
		if a.cursor < len(a.sessions)-1 {
			a.cursor++
		}
	}
	return a, nil
}

// press hides the dialog immediately and dismisses it off the Update
// goroutine so the manager can run callbacks and show the next alert.
func (a *App) press(idx int) tea.Cmd {
	id := a.dialog.ID
	a.dialog = nil
	a.pending = 0
	alerts := a.alerts
	return func() tea.Msg {
		return dismissedMsg{err: alerts.Dismiss(id, idx)}
	}
}

// initialSelection prefers the first button that is not a cancel button.
func initialSelection(buttons []alert.Button) int {
	for i, b := range buttons {
		if b.Style != alert.StyleCancel {
			return i
		}
	}
	return 0
}

// cancelIndex picks the button esc should press: the cancel-styled one, or
// the only button.
func cancelIndex(buttons []alert.Button) (int, bool) {
	for i, b := range buttons {
		if b.Style == alert.StyleCancel {
			return i, true
		}
	}
	if len(buttons) == 1 {
		return 0, true
	}
	return 0, false
}

func (a *App) View() string {
	w, h := a.width, a.height
	footer := a.footer()
	pane := widgets.Box{
		Title:   "Charging sessions",
		Content: a.sessionLines(w - 4),
		Footer:  fmt.Sprintf("%d sessions", len(a.sessions)),
	}
	if a.accent != "" {
		pane.Accent = lipgloss.Color(a.accent)
	}
	body := pane.Render(w, h-lipgloss.Height(footer))
	base := lipgloss.JoinVertical(lipgloss.Left, body, footer)
	if a.dialog == nil {
		return base
	}
	card := a.dialogView(w).Render(a.theme)
	return widgets.RenderModal(base, card, w, h)
}

func (a *App) dialogView(width int) widgets.DialogView {
	d := a.dialog
	view := widgets.DialogView{
		Title:    d.Title,
		Message:  d.Message,
		Selected: a.selected,
		MaxWidth: min(48, max(20, width-10)),
	}
	for _, b := range d.Buttons {
		view.Buttons = append(view.Buttons, widgets.ButtonView{Text: b.Text, Kind: buttonKind(b.Style)})
	}
	if a.pending > 0 {
		view.Footer = a.text("tui.queue_depth", a.pending)
	}
	return view
}

func buttonKind(s alert.Style) widgets.ButtonKind {
	switch s {
	case alert.StyleCancel:
		return widgets.ButtonCancel
	case alert.StyleDestructive:
		return widgets.ButtonDestructive
	default:
		return widgets.ButtonNormal
	}
}

func (a *App) footer() string {
	muted := a.theme.Muted
	var help string
	if a.dialog != nil {
		help = a.text("tui.help")
	} else {
		help = a.keys.HelpLine(scopeSessions)
	}
	line := muted.Render(help)
	if a.dialog != nil && a.pending > 0 {
		line = a.theme.Title.Render(a.text("tui.queue_depth", a.pending)) + "  " + line
	}
	if a.status != "" {
		st := a.theme.Message
		if a.isErr {
			st = a.theme.Destructive
		}
		line = st.Render(a.status) + "  " + line
	}
	return line
}

func (a *App) text(key string, args ...any) string {
	if a.texts == nil {
		return key
	}
	if len(args) == 0 {
		return a.texts.Text(key)
	}
	return a.texts.Format(key, args...)
}

func (a *App) sortedSessions() []charging.Session {
	out := make([]charging.Session, 0, len(a.sessions))
	for _, s := range a.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (a *App) sessionLines(width int) string {
	list := a.sortedSessions()
	if len(list) == 0 {
		return a.text("tui.idle")
	}
	var b strings.Builder
	for i, s := range list {
		prefix := "  "
		if i == a.cursor {
			prefix = "> "
		}
		state := string(s.State)
		if s.Failure != charging.FailureNone {
			state += " (" + string(s.Failure) + ")"
		}
		line := fmt.Sprintf("%s%-24s %-34s %6.1f kWh", prefix, s.Label(), state, s.KWh())
		if width > 0 {
			line = ansi.Truncate(line, width, "…")
		}
		b.WriteString(line)
		if i < len(list)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
