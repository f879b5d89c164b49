package trivia

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultFreshness is how long a successful fetch satisfies unforced requests.
const DefaultFreshness = 5 * time.Minute

// Origin records which path produced a Result.
type Origin string

const (
	OriginCache  Origin = "cache"
	OriginRemote Origin = "remote"
	OriginStale  Origin = "stale"
)

// Result is what a Request resolves to. FetchedAt is the time of the
// successful remote fetch that produced Item.
type Result struct {
	Item      Item      `json:"item"`
	Origin    Origin    `json:"origin"`
	FetchedAt time.Time `json:"fetched_at"`
}

type cacheEntry struct {
	item      Item
	fetchedAt time.Time
}

func (e cacheEntry) present() bool {
	return !e.item.Empty()
}

// Coordinator decides between cache and remote for each request and owns the
// only cache entry. It is safe for concurrent use: commands issued by the
// controller run off the event loop.
type Coordinator struct {
	source    Source
	freshness time.Duration
	now       func() time.Time
	log       *zap.Logger

	group singleflight.Group

	mu    sync.Mutex
	cache cacheEntry
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithFreshness sets the freshness window. Zero disables cache hits.
func WithFreshness(d time.Duration) Option {
	return func(c *Coordinator) {
		c.freshness = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithLogger attaches a logger for decision-path records.
func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCoordinator wires a coordinator around source.
func NewCoordinator(source Source, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:    source,
		freshness: DefaultFreshness,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request resolves a trivia item. Unforced requests inside the freshness
// window are served from cache. Remote failures fall back to the cached item
// of any age; only an empty cache yields ErrUnavailable.
func (c *Coordinator) Request(ctx context.Context, force bool) (Result, error) {
	entry := c.snapshot()
	if !force && entry.present() && c.fresh(entry) {
		c.log.Info("serving cached trivia",
			zap.String("path", "cache-hit"),
			zap.Time("fetched_at", entry.fetchedAt),
		)
		return Result{Item: entry.item, Origin: OriginCache, FetchedAt: entry.fetchedAt}, nil
	}

	v, err, shared := c.group.Do("remote", func() (interface{}, error) {
		item, err := c.source.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if item.Empty() || item.Answer == "" {
			return nil, fmt.Errorf("%w: source returned an empty record", ErrMalformedResponse)
		}
		return c.store(item), nil
	})
	if err == nil {
		stored := v.(cacheEntry)
		c.log.Info("fetched trivia from source",
			zap.String("path", "fresh-fetch"),
			zap.Bool("forced", force),
			zap.Bool("shared", shared),
			zap.String("question", preview(stored.item.Question)),
		)
		return Result{Item: stored.item, Origin: OriginRemote, FetchedAt: stored.fetchedAt}, nil
	}

	if errors.Is(err, ErrConfigurationMissing) {
		c.log.Error("trivia source is not configured", zap.String("path", "hard-failure"), zap.Error(err))
		return Result{}, err
	}

	entry = c.snapshot()
	if entry.present() {
		c.log.Warn("serving stale trivia after source failure",
			zap.String("path", "stale-fallback"),
			zap.Time("fetched_at", entry.fetchedAt),
			zap.Error(err),
		)
		return Result{Item: entry.item, Origin: OriginStale, FetchedAt: entry.fetchedAt}, nil
	}

	c.log.Error("no trivia available", zap.String("path", "hard-failure"), zap.Error(err))
	return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// Cached returns the cache entry, if any.
func (c *Coordinator) Cached() (Item, time.Time, bool) {
	entry := c.snapshot()
	return entry.item, entry.fetchedAt, entry.present()
}

func (c *Coordinator) fresh(entry cacheEntry) bool {
	if entry.fetchedAt.IsZero() {
		return false
	}
	return c.now().Sub(entry.fetchedAt) < c.freshness
}

func (c *Coordinator) snapshot() cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache
}

func (c *Coordinator) store(item Item) cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = cacheEntry{item: item, fetchedAt: c.now()}
	return c.cache
}

const previewRunes = 50

// preview shortens value for log fields without splitting a rune.
func preview(value string) string {
	if utf8.RuneCountInString(value) <= previewRunes {
		return value
	}
	return string([]rune(value)[:previewRunes]) + "..."
}
