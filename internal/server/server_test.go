package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/r3labs/sse/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/csheth/triviaqotd/internal/trivia"
	"github.com/csheth/triviaqotd/internal/tui"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) sent() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tea.Msg(nil), r.msgs...)
}

type staticFetcher struct {
	item trivia.Item
}

func (f staticFetcher) Request(ctx context.Context, force bool) (trivia.Result, error) {
	return trivia.Result{Item: f.item, Origin: trivia.OriginRemote}, nil
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(nil, []string{"http://localhost:8080"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts
}

func TestSnapshotEndpointReflectsWrappedModel(t *testing.T) {
	srv, ts := newTestServer(t)
	model := srv.Wrap(tui.New(tui.Config{ConfigError: trivia.ErrConfigurationMissing}))
	model.Init()

	resp, err := http.Get(ts.URL + "/api/trivia")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap tui.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "config_required", snap.State)
	assert.True(t, strings.HasPrefix(snap.Text, "Configuration required"))
}

func TestWrappedModelPublishesAfterUpdate(t *testing.T) {
	srv := New(nil, nil)
	defer srv.Close()
	model := srv.Wrap(tui.New(tui.Config{
		Fetcher:         staticFetcher{item: trivia.Item{Question: "Q1", Answer: "A1"}},
		RefreshInterval: time.Hour,
	}))
	model.Init()
	assert.Equal(t, "loading", srv.Snapshot().State)

	next, _ := model.Update(tui.ToggleAnswerMsg{})
	assert.Same(t, model, next)
	assert.Equal(t, "loading", srv.Snapshot().State)
	assert.NotEmpty(t, model.View())
}

func TestActionsForwardToSender(t *testing.T) {
	srv, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/trivia/toggle", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	sender := &recordingSender{}
	srv.Attach(sender)

	for _, path := range []string{"/api/trivia/toggle", "/api/trivia/refresh", "/api/visibility?state=hidden", "/api/visibility?state=visible"} {
		resp, err := http.Post(ts.URL+path, "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusAccepted, resp.StatusCode, path)
	}
	assert.Equal(t, []tea.Msg{
		tui.ToggleAnswerMsg{},
		tui.ManualRefreshMsg{},
		tui.SuspendMsg{},
		tui.ResumeMsg{},
	}, sender.sent())
}

func TestVisibilityRejectsUnknownState(t *testing.T) {
	srv, ts := newTestServer(t)
	sender := &recordingSender{}
	srv.Attach(sender)

	resp, err := http.Post(ts.URL+"/api/visibility?state=minimised", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, sender.sent())
}

func TestWrongMethodIsRejected(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/trivia/refresh")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflightAllowsConfiguredOrigin(t *testing.T) {
	_, ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/trivia/toggle", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:8080", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestEventsStreamCarriesSnapshots(t *testing.T) {
	srv, ts := newTestServer(t)

	client := sse.NewClient(ts.URL + "/events")
	events := make(chan *sse.Event, 4)
	require.NoError(t, client.SubscribeChan(StreamID, events))
	defer client.Unsubscribe(events)

	srv.publish(tui.Snapshot{State: "question", Question: "Q1", Text: "Q1"})

	select {
	case event := <-events:
		var snap tui.Snapshot
		require.NoError(t, json.Unmarshal(event.Data, &snap))
		assert.Equal(t, "question", snap.State)
		assert.Equal(t, "Q1", snap.Question)
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot received")
	}
}

type brokenWriter struct {
	header http.Header
	status int
}

func (w *brokenWriter) Header() http.Header { return w.header }

func (w *brokenWriter) WriteHeader(status int) { w.status = status }

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestRenderJSONLogsWriteFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	srv := New(zap.New(core), nil)
	defer srv.Close()

	w := &brokenWriter{header: http.Header{}}
	srv.renderJSONMessage(w, http.StatusAccepted, "accepted")

	assert.Equal(t, http.StatusAccepted, w.status)
	entries := logs.FilterMessage("write response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "connection reset", entries[0].ContextMap()["error"])
}
