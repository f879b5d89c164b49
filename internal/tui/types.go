package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/csheth/triviaqotd/internal/trivia"
)

type phase int

const (
	phaseLoading phase = iota
	phaseQuestion
	phaseAnswer
	phaseUnavailable
	phaseConfigRequired
)

func (p phase) String() string {
	switch p {
	case phaseLoading:
		return "loading"
	case phaseQuestion:
		return "question"
	case phaseAnswer:
		return "answer"
	case phaseUnavailable:
		return "unavailable"
	case phaseConfigRequired:
		return "config_required"
	default:
		return "unknown"
	}
}

const (
	heroTitle           = "Trivia Question of the Day"
	loadingText         = "Loading trivia..."
	unavailableText     = "No trivia available"
	refreshingText      = "refreshing..."
	manualReadyLabel    = "New Question"
	showAnswerLabel     = "↓ Answer"
	showQuestionLabel   = "↑ Question"
	cosmeticTickEvery   = time.Second
	defaultFetchTimeout = 35 * time.Second
	minContentWidth     = 30
)

// displayState is everything the view is derived from.
type displayState struct {
	item              trivia.Item
	revealed          bool
	loaded            bool
	lastFetchAt       time.Time
	nextFetchAt       time.Time
	lastManualFetchAt time.Time
}

type fetchResultMsg struct {
	seq    uint64
	forced bool
	result trivia.Result
	err    error
}

type refreshTickMsg struct{ id int }

type autoHideMsg struct{ id int }

type countdownTickMsg struct{ id int }

type cooldownTickMsg struct{ id int }

// ToggleAnswerMsg flips between the question and the answer.
type ToggleAnswerMsg struct{}

// ManualRefreshMsg requests a forced fetch, subject to the cooldown.
type ManualRefreshMsg struct{}

// SuspendMsg stops the cosmetic countdown and cooldown ticks while the
// display is hidden.
type SuspendMsg struct{}

// ResumeMsg restarts the cosmetic ticks from scratch.
type ResumeMsg struct{}

type keyMap struct {
	Toggle  key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap(allowRefresh bool) keyMap {
	keys := keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter", "a"),
			key.WithHelp("space", "show/hide answer"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new question"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	keys.Refresh.SetEnabled(allowRefresh)
	return keys
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Toggle, k.Refresh}, {k.Help, k.Quit}}
}
