package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/triviaqotd/internal/trivia"
)

// Fetcher is the coordinator as seen by the controller.
type Fetcher interface {
	Request(ctx context.Context, force bool) (trivia.Result, error)
}

func fetchTriviaJob(fetcher Fetcher, seq uint64, force bool, timeout time.Duration) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		result, err := fetcher.Request(ctx, force)
		return fetchResultMsg{seq: seq, forced: force, result: result, err: err}, err
	}
}

func originMessage(origin trivia.Origin) string {
	switch origin {
	case trivia.OriginCache:
		return "Showing cached question."
	case trivia.OriginStale:
		return "Source unreachable; showing the last question."
	default:
		return ""
	}
}
