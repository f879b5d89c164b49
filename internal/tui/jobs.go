package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// jobKind says why a fetch was issued.
type jobKind string

const (
	jobKindScheduledFetch jobKind = "scheduled-fetch"
	jobKindManualFetch    jobKind = "manual-fetch"
)

// fetchJob identifies one fetch from issue to completion. Err is set only
// on the copy carried back in a jobResultEnvelope.
type fetchJob struct {
	ID        string
	Kind      jobKind
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

type jobResultEnvelope struct {
	Job     fetchJob
	Payload tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs fetches off the event loop and tags each with an id.
type jobBus struct {
	counter atomic.Int64
	log     *zap.Logger
	now     func() time.Time
}

func newJobBus(log *zap.Logger) *jobBus {
	return &jobBus{log: log, now: time.Now}
}

// Start returns the issued job and the command that runs it. The command
// resolves to a jobResultEnvelope.
func (b *jobBus) Start(kind jobKind, runner jobRunner) (fetchJob, tea.Cmd) {
	job := fetchJob{
		ID:        fmt.Sprintf("%s-%d", kind, b.counter.Add(1)),
		Kind:      kind,
		StartedAt: b.now(),
	}
	return job, func() tea.Msg {
		payload, err := runner(context.Background())
		done := job
		done.Duration = b.now().Sub(job.StartedAt)
		done.Err = err
		b.log.Debug("fetch job finished",
			zap.String("job", done.ID),
			zap.String("kind", string(done.Kind)),
			zap.Duration("duration", done.Duration),
			zap.Error(err),
		)
		return jobResultEnvelope{Job: done, Payload: payload}
	}
}
