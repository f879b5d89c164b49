package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timerSlot holds at most one outstanding tea.Tick. Ticks cannot be stopped
// once issued, so every schedule or cancel moves the slot to a new id and a
// fire carrying an older id is ignored.
type timerSlot struct {
	id     int
	active bool
}

func (t *timerSlot) schedule(d time.Duration, msg func(id int) tea.Msg) tea.Cmd {
	t.id++
	t.active = true
	id := t.id
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg(id)
	})
}

func (t *timerSlot) cancel() {
	t.id++
	t.active = false
}

// fire reports whether id is the live tick and consumes it.
func (t *timerSlot) fire(id int) bool {
	if !t.active || id != t.id {
		return false
	}
	t.active = false
	return true
}

func (t *timerSlot) pending() bool {
	return t.active
}
