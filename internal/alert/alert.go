// Package alert serializes concurrent "show a modal alert" requests into a
// single visible dialog at a time.
//
// Producers call Manager.Alert from anywhere. Requests wait in a FIFO queue;
// a request whose title and message match one already waiting is dropped.
// The head of the queue is handed to a Presenter once nothing is displayed,
// and the presenter reports the user's button press back through Dismiss,
// which runs the button callback and promotes the next request.
package alert

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DismissKey is the dictionary key of the default dismiss button label.
const DismissKey = "alert.dismiss"

var (
	// ErrNoManager is returned when alerts are raised outside a manager scope.
	ErrNoManager = errors.New("alert: used outside of manager scope")
	// ErrNotDisplayed is returned by Dismiss for a request that is not the displayed one.
	ErrNotDisplayed = errors.New("alert: request is not displayed")
	// ErrUnknownButton is returned by Dismiss for a button index outside the dialog.
	ErrUnknownButton = errors.New("alert: unknown button")
)

// Style hints how a presenter should draw a button.
type Style int

const (
	StyleDefault Style = iota
	StyleCancel
	StyleDestructive
)

func (s Style) String() string {
	switch s {
	case StyleCancel:
		return "cancel"
	case StyleDestructive:
		return "destructive"
	default:
		return "default"
	}
}

// Button is one choice on a dialog. OnPress may be nil.
type Button struct {
	Text    string
	OnPress func()
	Style   Style
}

// Request is a queued alert. An empty Message or nil Buttons means absent.
type Request struct {
	ID        uuid.UUID
	Title     string
	Message   string
	Buttons   []Button
	CreatedAt time.Time
}

func (r Request) sameContent(title, message string) bool {
	return r.Title == title && r.Message == message
}

// Dialog is what a Presenter draws: the displayed request with its buttons
// resolved, so it always has at least one button.
type Dialog struct {
	ID      uuid.UUID
	Title   string
	Message string
	Buttons []Button
}

// Presenter is the host capability that draws dialogs. For every Show the
// host must eventually call Manager.Dismiss with the dialog ID and the index
// of the pressed button.
type Presenter interface {
	Show(Dialog)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Dialog)

func (f PresenterFunc) Show(d Dialog) { f(d) }

// Labeler looks up localized text by key.
type Labeler interface {
	Text(key string) string
}

// State describes the queue from the outside.
type State int

const (
	// StateIdle: nothing waiting, nothing displayed.
	StateIdle State = iota
	// StatePendingOnly: requests waiting while nothing is displayed. Transient.
	StatePendingOnly
	// StateDisplaying: a dialog is bound to the displayed slot.
	StateDisplaying
)

func (s State) String() string {
	switch s {
	case StatePendingOnly:
		return "pending"
	case StateDisplaying:
		return "displaying"
	default:
		return "idle"
	}
}
