package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/voltalert/internal/alert"
	"github.com/jask/voltalert/internal/charging"
	"github.com/jask/voltalert/internal/i18n"
)

type dismissCall struct {
	id     uuid.UUID
	button int
}

type fakeDismisser struct {
	mu    sync.Mutex
	calls []dismissCall
	err   error
}

func (f *fakeDismisser) Dismiss(id uuid.UUID, button int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dismissCall{id, button})
	return f.err
}

func newTestApp(t *testing.T) (*App, *fakeDismisser) {
	t.Helper()
	b, err := i18n.LoadEmbedded()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	f := &fakeDismisser{}
	return New(context.Background(), f, b.Dictionary("en-US"), ""), f
}

func declinedDialog() alert.Dialog {
	return alert.Dialog{
		ID:      uuid.New(),
		Title:   "Payment failed",
		Message: "Your card was declined.",
		Buttons: []alert.Button{
			{Text: "Cancel", Style: alert.StyleCancel},
			{Text: "Retry"},
		},
	}
}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func update(a *App, msg tea.Msg) tea.Cmd {
	_, cmd := a.Update(msg)
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestShowDialogSelectsFirstNonCancelButton(t *testing.T) {
	a, _ := newTestApp(t)
	update(a, ShowDialogMsg{Dialog: declinedDialog()})
	if a.dialog == nil {
		t.Fatal("expected dialog to be displayed")
	}
	if a.selected != 1 {
		t.Fatalf("expected Retry selected, got %d", a.selected)
	}
}

func TestEnterPressesSelectedButton(t *testing.T) {
	a, f := newTestApp(t)
	d := declinedDialog()
	update(a, ShowDialogMsg{Dialog: d})
	update(a, keyMsg(tea.KeyRight)) // wraps to Cancel

	cmd := update(a, keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected dismiss command")
	}
	if a.dialog != nil {
		t.Fatal("dialog should be hidden once a button is pressed")
	}
	msg := cmd()
	if dm, ok := msg.(dismissedMsg); !ok || dm.err != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
	if len(f.calls) != 1 || f.calls[0] != (dismissCall{d.ID, 0}) {
		t.Fatalf("unexpected dismiss calls %+v", f.calls)
	}
}

func TestEscPressesCancelButton(t *testing.T) {
	a, f := newTestApp(t)
	d := declinedDialog()
	d.Buttons[0], d.Buttons[1] = d.Buttons[1], d.Buttons[0]
	update(a, ShowDialogMsg{Dialog: d})

	cmd := update(a, keyMsg(tea.KeyEsc))
	if cmd == nil {
		t.Fatal("expected dismiss command")
	}
	cmd()
	if len(f.calls) != 1 || f.calls[0].button != 1 {
		t.Fatalf("expected cancel button (1) pressed, got %+v", f.calls)
	}
}

func TestEscWithSingleButton(t *testing.T) {
	a, f := newTestApp(t)
	update(a, ShowDialogMsg{Dialog: alert.Dialog{ID: uuid.New(), Title: "Error", Buttons: []alert.Button{{Text: "OK"}}}})
	cmd := update(a, keyMsg(tea.KeyEsc))
	if cmd == nil {
		t.Fatal("expected dismiss command")
	}
	cmd()
	if len(f.calls) != 1 || f.calls[0].button != 0 {
		t.Fatalf("unexpected calls %+v", f.calls)
	}
}

func TestEscIgnoredWithoutCancelButton(t *testing.T) {
	a, _ := newTestApp(t)
	update(a, ShowDialogMsg{Dialog: alert.Dialog{ID: uuid.New(), Title: "Pick", Buttons: []alert.Button{{Text: "A"}, {Text: "B"}}}})
	if cmd := update(a, keyMsg(tea.KeyEsc)); cmd != nil {
		t.Fatal("esc should do nothing without a cancel button")
	}
	if a.dialog == nil {
		t.Fatal("dialog should stay visible")
	}
}

func TestQuitKeys(t *testing.T) {
	a, _ := newTestApp(t)
	update(a, ShowDialogMsg{Dialog: declinedDialog()})
	if cmd := update(a, runes("q")); cmd != nil {
		t.Fatal("q must not quit while a dialog is shown")
	}
	if !isQuit(update(a, keyMsg(tea.KeyCtrlC))) {
		t.Fatal("ctrl+c should always quit")
	}

	b, _ := newTestApp(t)
	if !isQuit(update(b, runes("q"))) {
		t.Fatal("q should quit when no dialog is shown")
	}
}

func TestDismissErrorBecomesStatus(t *testing.T) {
	a, _ := newTestApp(t)
	cmd := update(a, dismissedMsg{err: alert.ErrNotDisplayed})
	if cmd == nil {
		t.Fatal("expected error status command")
	}
	update(a, cmd())
	if !a.isErr || !strings.Contains(a.status, "not") {
		t.Fatalf("expected error status, got %q", a.status)
	}
}

func TestViewRendersSessionsAndDialog(t *testing.T) {
	a, _ := newTestApp(t)
	update(a, tea.WindowSizeMsg{Width: 100, Height: 30})

	if !strings.Contains(a.View(), "No alerts") {
		t.Fatal("idle view should show the idle text")
	}

	update(a, SessionMsg{Session: charging.Session{
		ID: "s1", Site: "Oslo S", Connector: 2, State: charging.StateCharging,
		EnergyWh: 4500, StartedAt: time.Unix(0, 0),
	}})
	update(a, ShowDialogMsg{Dialog: declinedDialog(), Pending: 2})
	view := a.View()
	for _, want := range []string{"Oslo S #2", "4.5 kWh", "Payment failed", "[ Retry ]", "[ Cancel ]", "2 alert(s) waiting"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSessionsSortedByStart(t *testing.T) {
	a, _ := newTestApp(t)
	base := time.Unix(100, 0)
	update(a, SessionMsg{Session: charging.Session{ID: "b", Site: "Bergen Bryggen", Connector: 1, StartedAt: base.Add(time.Second)}})
	update(a, SessionMsg{Session: charging.Session{ID: "a", Site: "Oslo S", Connector: 1, StartedAt: base}})
	got := a.sortedSessions()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestQueueMsgOnlyWhileDialogShown(t *testing.T) {
	a, _ := newTestApp(t)
	update(a, QueueMsg{Pending: 4})
	if a.pending != 0 {
		t.Fatalf("pending should stay 0 without a dialog, got %d", a.pending)
	}
	update(a, ShowDialogMsg{Dialog: declinedDialog(), Pending: 1})
	update(a, QueueMsg{Pending: 3})
	if a.pending != 3 {
		t.Fatalf("expected 3 pending, got %d", a.pending)
	}
	if !strings.Contains(a.View(), "3 alert(s) waiting") {
		t.Fatal("footer should show queue depth")
	}
}

func TestSimDoneReportsStatus(t *testing.T) {
	a, _ := newTestApp(t)
	update(a, update(a, SimDoneMsg{})())
	if a.isErr || a.status != "all sessions finished" || !a.simDone {
		t.Fatalf("unexpected status %q err=%v", a.status, a.isErr)
	}

	b, _ := newTestApp(t)
	update(b, update(b, SimDoneMsg{Err: errors.New("store session: disk full")})())
	if !b.isErr || !strings.Contains(b.status, "disk full") {
		t.Fatalf("expected error status, got %q", b.status)
	}
}

func TestSuccessfulDismissLeavesStatus(t *testing.T) {
	a, _ := newTestApp(t)
	if cmd := update(a, dismissedMsg{}); cmd != nil {
		t.Fatal("no command expected for a clean dismiss")
	}
}
