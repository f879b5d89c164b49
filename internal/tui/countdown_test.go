package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		left time.Duration
		want string
	}{
		{0, "refreshing..."},
		{-5 * time.Second, "refreshing..."},
		{20 * time.Second, "1 minute"},
		{time.Minute, "1 minute"},
		{45 * time.Minute, "45 minutes"},
		{90 * time.Minute, "1h 30m"},
		{23*time.Hour + 59*time.Minute, "23h 59m"},
		{25 * time.Hour, "1 day"},
		{72 * time.Hour, "3 days"},
	}
	for _, tc := range cases {
		if got := formatCountdown(tc.left); got != tc.want {
			t.Fatalf("formatCountdown(%v) = %q, want %q", tc.left, got, tc.want)
		}
	}
}

func TestFormatCooldown(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      string
	}{
		{0, "New Question"},
		{-time.Second, "New Question"},
		{12200 * time.Millisecond, "wait 13s"},
		{59 * time.Second, "wait 59s"},
		{time.Minute, "wait 1 min"},
		{61 * time.Second, "wait 2 mins"},
		{5 * time.Minute, "wait 5 mins"},
	}
	for _, tc := range cases {
		if got := formatCooldown(tc.remaining); got != tc.want {
			t.Fatalf("formatCooldown(%v) = %q, want %q", tc.remaining, got, tc.want)
		}
	}
}

func TestTimerSlotIgnoresSupersededFires(t *testing.T) {
	var slot timerSlot
	slot.schedule(time.Hour, func(id int) tea.Msg { return id })
	first := slot.id
	slot.schedule(time.Hour, func(id int) tea.Msg { return id })

	if slot.fire(first) {
		t.Fatal("superseded id must not fire")
	}
	if !slot.fire(slot.id) {
		t.Fatal("live id should fire")
	}
	if slot.fire(slot.id) {
		t.Fatal("a fire is consumed once")
	}
	slot.schedule(time.Hour, func(id int) tea.Msg { return id })
	live := slot.id
	slot.cancel()
	if slot.fire(live) || slot.pending() {
		t.Fatal("cancelled slot must not fire")
	}
}
