// Package console presents alerts on a plain writer and answers them
// automatically. It backs the headless simulate command.
package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jask/voltalert/internal/alert"
	"github.com/jask/voltalert/internal/logging"
	"github.com/jask/voltalert/widgets"
)

// Manager is the subset of *alert.Manager the presenter drives.
type Manager interface {
	Dismiss(id uuid.UUID, button int) error
	State() alert.State
}

// Presenter prints every dialog and presses a button on it. Show only
// hands the dialog over; Run does the printing and dismissing.
type Presenter struct {
	Out    io.Writer
	Theme  widgets.Theme
	Log    *logging.Logger
	Choose func(alert.Dialog) int

	dialogs chan alert.Dialog
}

func New(out io.Writer, accent string) *Presenter {
	return &Presenter{
		Out:     out,
		Theme:   widgets.NewTheme(accent),
		dialogs: make(chan alert.Dialog, 1),
	}
}

// Show implements alert.Presenter. The manager displays one dialog at a
// time, so the buffered slot is always free when Show is called.
func (p *Presenter) Show(d alert.Dialog) {
	p.dialogs <- d
}

// Run answers dialogs until ctx is done.
func (p *Presenter) Run(ctx context.Context, m Manager) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-p.dialogs:
			idx := p.choose(d)
			p.print(d, idx)
			if err := m.Dismiss(d.ID, idx); err != nil {
				p.Log.With("console").Warnf("dismiss %s: %v", d.ID, err)
			}
		}
	}
}

func (p *Presenter) choose(d alert.Dialog) int {
	if p.Choose == nil {
		return 0
	}
	idx := p.Choose(d)
	if idx < 0 || idx >= len(d.Buttons) {
		return 0
	}
	return idx
}

func (p *Presenter) print(d alert.Dialog, idx int) {
	if p.Out == nil {
		return
	}
	view := widgets.DialogView{Title: d.Title, Message: d.Message, Selected: idx}
	for _, b := range d.Buttons {
		kind := widgets.ButtonNormal
		switch b.Style {
		case alert.StyleCancel:
			kind = widgets.ButtonCancel
		case alert.StyleDestructive:
			kind = widgets.ButtonDestructive
		}
		view.Buttons = append(view.Buttons, widgets.ButtonView{Text: b.Text, Kind: kind})
	}
	pressed := ""
	if idx < len(d.Buttons) {
		pressed = d.Buttons[idx].Text
	}
	fmt.Fprintf(p.Out, "%s\n-> %s\n", view.Render(p.Theme), pressed)
}

// WaitIdle blocks until the manager has nothing displayed or pending.
func WaitIdle(ctx context.Context, m Manager, poll time.Duration) error {
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}
	t := time.NewTicker(poll)
	defer t.Stop()
	for m.State() != alert.StateIdle {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
