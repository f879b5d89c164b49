// Package server exposes the presentation controller over HTTP. The
// controller runs headless inside a tea.Program; every state change is
// published to /events as a JSON snapshot and user actions are forwarded
// back into the program as messages.
package server

import (
	"encoding/json"
	"net/http"
	"reflect"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/csheth/triviaqotd/internal/tui"
)

// StreamID is the SSE stream snapshots are published on.
const StreamID = "trivia"

// Sender delivers messages into a running controller. *tea.Program
// satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

type Server struct {
	log            *zap.Logger
	events         *sse.Server
	allowedOrigins []string

	mu       sync.RWMutex
	snapshot tui.Snapshot
	sender   Sender
}

func New(log *zap.Logger, allowedOrigins []string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	events := sse.New()
	events.AutoReplay = false
	events.CreateStream(StreamID)
	return &Server{
		log:            log,
		events:         events,
		allowedOrigins: allowedOrigins,
	}
}

// Attach sets the destination for user actions received over HTTP.
func (s *Server) Attach(sender Sender) {
	s.mu.Lock()
	s.sender = sender
	s.mu.Unlock()
}

// Snapshot returns the last published state.
func (s *Server) Snapshot() tui.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Server) Close() {
	s.events.Close()
}

// Wrap returns a model that behaves like inner and publishes its snapshot
// after every update that changes it. inner should implement
// tui.Snapshotter; otherwise nothing is published.
func (s *Server) Wrap(inner tea.Model) tea.Model {
	return &publisher{inner: inner, server: s}
}

func (s *Server) publish(snap tui.Snapshot) {
	s.mu.Lock()
	if reflect.DeepEqual(s.snapshot, snap) {
		s.mu.Unlock()
		return
	}
	s.snapshot = snap
	s.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("encode snapshot", zap.Error(err))
		return
	}
	s.log.Debug("publishing snapshot", zap.String("state", snap.State))
	s.events.Publish(StreamID, &sse.Event{Data: data})
}

// Handler returns the HTTP routes wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/trivia", s.handleSnapshot)
	mux.HandleFunc("POST /api/trivia/toggle", s.action(tui.ToggleAnswerMsg{}))
	mux.HandleFunc("POST /api/trivia/refresh", s.action(tui.ManualRefreshMsg{}))
	mux.HandleFunc("POST /api/visibility", s.handleVisibility)
	mux.HandleFunc("GET /events", s.handleEvents)

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	return c.Handler(mux)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.renderJSON(w, http.StatusOK, s.Snapshot())
}

func (s *Server) action(msg tea.Msg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.send(msg) {
			s.renderJSONMessage(w, http.StatusServiceUnavailable, "controller is not running")
			return
		}
		s.renderJSONMessage(w, http.StatusAccepted, "accepted")
	}
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var msg tea.Msg
	switch r.URL.Query().Get("state") {
	case "hidden":
		msg = tui.SuspendMsg{}
	case "visible":
		msg = tui.ResumeMsg{}
	default:
		s.renderJSONMessage(w, http.StatusBadRequest, "state must be hidden or visible")
		return
	}
	s.action(msg)(w, r)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("stream") == "" {
		query.Set("stream", StreamID)
		r.URL.RawQuery = query.Encode()
	}
	s.events.ServeHTTP(w, r)
}

func (s *Server) send(msg tea.Msg) bool {
	s.mu.RLock()
	sender := s.sender
	s.mu.RUnlock()
	if sender == nil {
		return false
	}
	sender.Send(msg)
	return true
}

type publisher struct {
	inner  tea.Model
	server *Server
}

func (p *publisher) Init() tea.Cmd {
	cmd := p.inner.Init()
	p.publish()
	return cmd
}

func (p *publisher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := p.inner.Update(msg)
	p.inner = next
	p.publish()
	return p, cmd
}

func (p *publisher) View() string {
	return p.inner.View()
}

func (p *publisher) publish() {
	if snapshotter, ok := p.inner.(tui.Snapshotter); ok {
		p.server.publish(snapshotter.Snapshot())
	}
}

func (s *Server) renderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("write response", zap.Int("status", status), zap.Error(err))
	}
}

func (s *Server) renderJSONMessage(w http.ResponseWriter, status int, message string) {
	s.renderJSON(w, status, map[string]string{"message": message})
}
