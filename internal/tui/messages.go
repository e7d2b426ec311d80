package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/voltalert/internal/alert"
	"github.com/jask/voltalert/internal/charging"
)

// ShowDialogMsg replaces the displayed dialog.
type ShowDialogMsg struct {
	Dialog  alert.Dialog
	Pending int
}

// QueueMsg updates the number of alerts waiting behind the displayed one.
type QueueMsg struct {
	Pending int
}

// SessionMsg carries a charging session snapshot.
type SessionMsg struct {
	Session charging.Session
}

// SimDoneMsg reports that the simulator finished.
type SimDoneMsg struct {
	Err error
}

type StatusMsg struct {
	Text  string
	IsErr bool
}

type dismissedMsg struct {
	err error
}

func StatusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		if err == nil {
			return StatusMsg{}
		}
		return StatusMsg{Text: err.Error(), IsErr: true}
	}
}
