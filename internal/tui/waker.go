package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// waker turns translator wake-ups into wakeMsg. Signals coalesce: one
// pending wake-up is enough to make the next Tick drain everything.
type waker struct {
	ch chan struct{}
}

func newWaker() *waker {
	return &waker{ch: make(chan struct{}, 1)}
}

// Wake implements reasoning.Waker.
func (w *waker) Wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// WakeAfter implements reasoning.Waker.
func (w *waker) WakeAfter(d time.Duration) {
	if d <= 0 {
		w.Wake()
		return
	}
	time.AfterFunc(d, w.Wake)
}

func (w *waker) wait() tea.Cmd {
	return func() tea.Msg {
		<-w.ch
		return wakeMsg{}
	}
}
