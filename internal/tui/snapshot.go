package tui

import "time"

// Snapshot is the renderable view-tree for the current display state. The
// answer is only included while it is revealed.
type Snapshot struct {
	State            string     `json:"state"`
	Text             string     `json:"text,omitempty"`
	Question         string     `json:"question,omitempty"`
	Answer           string     `json:"answer,omitempty"`
	Category         string     `json:"category,omitempty"`
	Revealed         bool       `json:"revealed"`
	Loaded           bool       `json:"loaded"`
	ToggleLabel      string     `json:"toggle_label,omitempty"`
	Countdown        string     `json:"countdown,omitempty"`
	RefreshLabel     string     `json:"refresh_label,omitempty"`
	RefreshEnabled   bool       `json:"refresh_enabled"`
	Fetching         bool       `json:"fetching"`
	FetchKind        string     `json:"fetch_kind,omitempty"`
	Message          string     `json:"message,omitempty"`
	Error            string     `json:"error,omitempty"`
	AnimationSpeedMs int64      `json:"animation_speed_ms"`
	LastFetchAt      *time.Time `json:"last_fetch_at,omitempty"`
	NextFetchAt      *time.Time `json:"next_fetch_at,omitempty"`
}

// Snapshotter is implemented by the model returned from New.
type Snapshotter interface {
	Snapshot() Snapshot
}

func (m *model) Snapshot() Snapshot {
	p := m.phase()
	snap := Snapshot{
		State:            p.String(),
		Loaded:           m.display.loaded,
		Revealed:         m.display.revealed,
		Fetching:         m.inFlight > 0,
		FetchKind:        string(m.activeFetch.Kind),
		Message:          m.infoMessage,
		Error:            m.errorMessage,
		AnimationSpeedMs: m.config.AnimationSpeed.Milliseconds(),
		LastFetchAt:      timePtr(m.display.lastFetchAt),
		NextFetchAt:      timePtr(m.display.nextFetchAt),
	}
	switch p {
	case phaseConfigRequired:
		snap.Text = configRequiredText(m.configErr)
		return snap
	case phaseLoading:
		snap.Text = loadingText
	case phaseUnavailable:
		snap.Text = unavailableText
	case phaseQuestion, phaseAnswer:
		item := m.display.item
		snap.Question = item.Question
		snap.Category = item.Category
		snap.Text = item.Question
		snap.ToggleLabel = m.toggleLabel()
		if m.display.revealed {
			snap.Answer = item.Answer
			snap.Text = item.Answer
		}
	}
	if m.config.ShowTimer {
		snap.Countdown = m.countdownLabel
	}
	if m.config.AllowManualRefresh {
		snap.RefreshLabel = m.refreshLabel()
		snap.RefreshEnabled = snap.RefreshLabel == manualReadyLabel
	}
	return snap
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
