package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/voltalert/internal/alert"
)

// Pender reports queue depth. *alert.Manager satisfies it.
type Pender interface {
	Pending() []alert.Request
}

// ProgramPresenter forwards dialogs into a running bubbletea program.
// Messages sent before Attach are buffered and flushed in order.
type ProgramPresenter struct {
	queue Pender

	mu      sync.Mutex
	program *tea.Program
	backlog []tea.Msg
}

func NewProgramPresenter(queue Pender) *ProgramPresenter {
	return &ProgramPresenter{queue: queue}
}

// SetQueue sets the source for the pending count shown with each dialog.
func (p *ProgramPresenter) SetQueue(q Pender) {
	p.mu.Lock()
	p.queue = q
	p.mu.Unlock()
}

func (p *ProgramPresenter) Attach(prog *tea.Program) {
	p.mu.Lock()
	backlog := p.backlog
	p.backlog = nil
	p.program = prog
	p.mu.Unlock()
	for _, msg := range backlog {
		prog.Send(msg)
	}
}

// Show implements alert.Presenter. It is never called on the Update
// goroutine: the App dismisses from a tea.Cmd.
func (p *ProgramPresenter) Show(d alert.Dialog) {
	p.mu.Lock()
	q := p.queue
	p.mu.Unlock()
	pending := 0
	if q != nil {
		pending = len(q.Pending())
	}
	p.Send(ShowDialogMsg{Dialog: d, Pending: pending})
}

// Send delivers msg to the program, or buffers it until Attach.
func (p *ProgramPresenter) Send(msg tea.Msg) {
	p.mu.Lock()
	prog := p.program
	if prog == nil {
		p.backlog = append(p.backlog, msg)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	prog.Send(msg)
}
