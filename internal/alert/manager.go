package alert

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jask/voltalert/internal/events"
	"github.com/jask/voltalert/internal/logging"
)

const fallbackDismissLabel = "OK"

// Publisher receives lifecycle events. *events.Bus satisfies it.
type Publisher interface {
	Publish(events.Event)
}

// Option configures a Manager.
type Option func(*Manager)

// WithPublisher reports lifecycle transitions to p.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithLogger sets the manager logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.log = l.With("alert") }
}

// WithClock overrides the clock used for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the pending queue and the single displayed slot.
// It is safe for concurrent use.
type Manager struct {
	presenter Presenter
	labels    Labeler
	publisher Publisher
	log       *logging.Logger
	now       func() time.Time

	mu         sync.Mutex
	pending    []Request
	current    *Request
	buttons    []Button // resolved buttons of current
	dismissing bool
}

// New creates a manager drawing through presenter. labels may be nil, in
// which case the default dismiss button reads "OK".
func New(presenter Presenter, labels Labeler, opts ...Option) *Manager {
	if presenter == nil {
		panic("alert: nil presenter")
	}
	m := &Manager{
		presenter: presenter,
		labels:    labels,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Alert queues a dialog. A request whose title and message equal a request
// still waiting in the queue is dropped; the displayed request is not
// compared, so re-raising the visible alert queues it again.
func (m *Manager) Alert(title, message string, buttons ...Button) {
	req := Request{
		ID:        uuid.New(),
		Title:     title,
		Message:   message,
		CreatedAt: m.now().UTC(),
	}
	if len(buttons) > 0 {
		req.Buttons = append([]Button(nil), buttons...)
	}

	m.mu.Lock()
	for _, p := range m.pending {
		if p.sameContent(title, message) {
			m.publishLocked(events.AlertSuppressed, req, -1)
			m.mu.Unlock()
			m.log.Debugf("suppressed duplicate %q (pending %s)", title, p.ID)
			return
		}
	}
	m.pending = append(m.pending, req)
	m.publishLocked(events.AlertEnqueued, req, -1)
	dialog, ok := m.drainLocked()
	m.mu.Unlock()

	if ok {
		m.show(dialog)
	}
}

// Dismiss records a press of button on the displayed dialog id. The button
// callback runs first, without the lock held so it may raise new alerts;
// then the slot is cleared and the next pending request is shown.
func (m *Manager) Dismiss(id uuid.UUID, button int) error {
	m.mu.Lock()
	if m.current == nil || m.current.ID != id || m.dismissing {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotDisplayed, id)
	}
	if button < 0 || button >= len(m.buttons) {
		n := len(m.buttons)
		m.mu.Unlock()
		return fmt.Errorf("%w: index %d of %d", ErrUnknownButton, button, n)
	}
	m.dismissing = true
	req := *m.current
	pressed := m.buttons[button]
	m.mu.Unlock()

	m.press(req, pressed)

	m.mu.Lock()
	m.current = nil
	m.buttons = nil
	m.dismissing = false
	m.publishLocked(events.AlertDismissed, req, button)
	dialog, ok := m.drainLocked()
	m.mu.Unlock()

	if ok {
		m.show(dialog)
	}
	return nil
}

// State reports whether the manager is idle, draining, or displaying.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.current != nil:
		return StateDisplaying
	case len(m.pending) > 0:
		return StatePendingOnly
	default:
		return StateIdle
	}
}

// Current returns the displayed request, if any.
func (m *Manager) Current() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Request{}, false
	}
	return *m.current, true
}

// Pending returns a copy of the waiting requests in display order.
func (m *Manager) Pending() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.pending))
	copy(out, m.pending)
	return out
}

// drainLocked promotes the queue head when nothing is displayed.
func (m *Manager) drainLocked() (Dialog, bool) {
	if m.current != nil || len(m.pending) == 0 {
		return Dialog{}, false
	}
	head := m.pending[0]
	m.pending[0] = Request{}
	m.pending = m.pending[1:]
	if len(m.pending) == 0 {
		m.pending = nil
	}

	m.current = &head
	m.buttons = m.resolveButtons(head)
	m.publishLocked(events.AlertShown, head, -1)

	return Dialog{
		ID:      head.ID,
		Title:   head.Title,
		Message: head.Message,
		Buttons: append([]Button(nil), m.buttons...),
	}, true
}

func (m *Manager) resolveButtons(req Request) []Button {
	if len(req.Buttons) > 0 {
		return append([]Button(nil), req.Buttons...)
	}
	label := ""
	if m.labels != nil {
		label = m.labels.Text(DismissKey)
	}
	if label == "" {
		label = fallbackDismissLabel
	}
	return []Button{{Text: label}}
}

func (m *Manager) show(d Dialog) {
	m.log.Debugf("show %s %q", d.ID, d.Title)
	m.presenter.Show(d)
}

func (m *Manager) press(req Request, b Button) {
	if b.OnPress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorf("button %q on %q panicked: %v", b.Text, req.Title, r)
		}
	}()
	b.OnPress()
}

func (m *Manager) publishLocked(t events.Type, req Request, button int) {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(events.Event{
		Type:      t,
		AlertID:   req.ID,
		Title:     req.Title,
		Message:   req.Message,
		Button:    button,
		Pending:   len(m.pending),
		Timestamp: m.now().UTC(),
	})
}
