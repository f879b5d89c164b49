package trivia

import (
	"context"
	"errors"
	"strings"
)

// Item is a single question/answer pair. Category is optional.
type Item struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// Empty reports whether the item carries no usable question.
func (i Item) Empty() bool {
	return strings.TrimSpace(i.Question) == ""
}

var (
	// ErrRemoteUnavailable covers transport failures and timeouts.
	ErrRemoteUnavailable = errors.New("trivia source unavailable")
	// ErrMalformedResponse is returned when the payload is not a trivia record.
	ErrMalformedResponse = errors.New("malformed trivia response")
	// ErrConfigurationMissing means the source cannot be contacted at all
	// until its settings are supplied.
	ErrConfigurationMissing = errors.New("trivia source configuration missing")
	// ErrUnavailable is the hard failure: the remote failed and nothing was cached.
	ErrUnavailable = errors.New("no trivia available")
)

// Source fetches one trivia record from a remote collaborator.
type Source interface {
	Fetch(ctx context.Context) (Item, error)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(ctx context.Context) (Item, error)

func (f SourceFunc) Fetch(ctx context.Context) (Item, error) {
	return f(ctx)
}
