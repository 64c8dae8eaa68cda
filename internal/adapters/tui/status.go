package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"canvastree/internal/adapters/tui/views"
)

// StatusHook forwards info and warning log entries to the status line.
// Entries arriving faster than the screen consumes them are dropped.
type StatusHook struct {
	ch chan views.StatusMsg
}

// NewStatusHook creates a hook with a small backlog
func NewStatusHook() *StatusHook {
	return &StatusHook{ch: make(chan views.StatusMsg, 16)}
}

func (h *StatusHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel, logrus.WarnLevel, logrus.InfoLevel}
}

func (h *StatusHook) Fire(e *logrus.Entry) error {
	select {
	case h.ch <- views.StatusMsg{Text: e.Message, Err: e.Level <= logrus.WarnLevel}:
	default:
	}
	return nil
}

// Wait delivers the next entry as a tea message
func (h *StatusHook) Wait() tea.Cmd {
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		return <-h.ch
	}
}
