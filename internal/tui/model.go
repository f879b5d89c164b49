package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/triviaqotd/internal/trivia"
)

// Config wires runtime options into the controller.
type Config struct {
	Fetcher Fetcher
	// ConfigError, when set, pins the display in the configuration-required
	// state and no fetch is ever issued.
	ConfigError           error
	RefreshInterval       time.Duration
	AnswerTimeout         time.Duration
	ShowTimer             bool
	AllowManualRefresh    bool
	ManualRefreshCooldown time.Duration
	AnimationSpeed        time.Duration
	FetchTimeout          time.Duration
	Logger                *zap.Logger
	Now                   func() time.Time
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = defaultFetchTimeout
	}
	if config.Fetcher == nil && config.ConfigError == nil {
		config.ConfigError = trivia.ErrConfigurationMissing
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:    config,
		log:       log,
		now:       now,
		jobs:      newJobBus(log),
		keys:      newKeyMap(config.AllowManualRefresh),
		help:      help.New(),
		spinner:   spin,
		configErr: config.ConfigError,
	}
	if m.configErr != nil {
		m.display.loaded = true
	}
	return m
}

type model struct {
	config Config
	log    *zap.Logger
	now    func() time.Time
	jobs   *jobBus

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int

	display   displayState
	configErr error

	autoHide  timerSlot
	refresh   timerSlot
	countdown timerSlot
	cooldown  timerSlot
	suspended bool

	fetchSeq    uint64
	appliedSeq  uint64
	inFlight    int
	activeFetch fetchJob

	countdownLabel string
	cooldownLabel  string
	infoMessage    string
	errorMessage   string
}

func (m *model) Init() tea.Cmd {
	if m.configErr != nil {
		m.log.Error("trivia source not configured; fetching disabled", zap.Error(m.configErr))
		return nil
	}
	cmds := []tea.Cmd{m.requestTrivia(false)}
	if m.config.RefreshInterval > 0 {
		cmds = append(cmds, m.scheduleRefresh())
	}
	cmds = append(cmds, m.startCosmeticTicks())
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if m.inFlight > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobResultEnvelope:
		if msg.Job.ID == m.activeFetch.ID {
			m.activeFetch = fetchJob{}
		}
		return m.Update(msg.Payload)
	case fetchResultMsg:
		m.handleFetchResult(msg)
		return m, nil
	case refreshTickMsg:
		return m, m.handleRefreshTick(msg)
	case autoHideMsg:
		m.handleAutoHide(msg)
		return m, nil
	case countdownTickMsg:
		return m, m.handleCountdownTick(msg)
	case cooldownTickMsg:
		return m, m.handleCooldownTick(msg)
	case ToggleAnswerMsg:
		return m, m.toggleAnswer()
	case ManualRefreshMsg:
		return m, m.manualRefresh()
	case tea.BlurMsg, SuspendMsg:
		m.suspend()
		return m, nil
	case tea.FocusMsg, ResumeMsg:
		return m, m.resume()
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		return m.toggleAnswer()
	case key.Matches(msg, m.keys.Refresh):
		return m.manualRefresh()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

// requestTrivia issues a fetch tagged with the next sequence number.
func (m *model) requestTrivia(force bool) tea.Cmd {
	m.fetchSeq++
	kind := jobKindScheduledFetch
	if force {
		kind = jobKindManualFetch
	}
	job, run := m.jobs.Start(kind, fetchTriviaJob(m.config.Fetcher, m.fetchSeq, force, m.config.FetchTimeout))
	m.activeFetch = job
	m.log.Debug("fetch started", zap.String("job", job.ID), zap.Uint64("seq", m.fetchSeq))
	m.inFlight++
	if m.inFlight == 1 {
		return tea.Batch(run, m.spinner.Tick)
	}
	return run
}

func (m *model) handleFetchResult(msg fetchResultMsg) {
	if m.inFlight > 0 {
		m.inFlight--
	}
	if msg.seq <= m.appliedSeq {
		m.log.Info("dropping superseded trivia result",
			zap.Uint64("seq", msg.seq),
			zap.Uint64("applied_seq", m.appliedSeq),
			zap.Bool("forced", msg.forced),
		)
		return
	}
	m.appliedSeq = msg.seq
	m.display.loaded = true

	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		if errors.Is(msg.err, trivia.ErrConfigurationMissing) {
			m.configErr = msg.err
			m.refresh.cancel()
			m.autoHide.cancel()
			m.countdown.cancel()
			m.cooldown.cancel()
		}
		return
	}

	now := m.now()
	m.display.item = msg.result.Item
	m.display.revealed = false
	m.autoHide.cancel()
	m.display.lastFetchAt = now
	m.display.nextFetchAt = now.Add(m.config.RefreshInterval)
	m.errorMessage = ""
	m.infoMessage = originMessage(msg.result.Origin)
	m.updateCountdownLabel(now)
}

func (m *model) scheduleRefresh() tea.Cmd {
	return m.refresh.schedule(m.config.RefreshInterval, func(id int) tea.Msg {
		return refreshTickMsg{id: id}
	})
}

func (m *model) handleRefreshTick(msg refreshTickMsg) tea.Cmd {
	if !m.refresh.fire(msg.id) {
		return nil
	}
	return tea.Batch(m.requestTrivia(false), m.scheduleRefresh())
}

func (m *model) canToggle() bool {
	return m.configErr == nil && m.display.loaded && !m.display.item.Empty()
}

func (m *model) toggleAnswer() tea.Cmd {
	if !m.canToggle() {
		return nil
	}
	m.display.revealed = !m.display.revealed
	m.autoHide.cancel()
	if !m.display.revealed || m.config.AnswerTimeout <= 0 {
		return nil
	}
	return m.autoHide.schedule(m.config.AnswerTimeout, func(id int) tea.Msg {
		return autoHideMsg{id: id}
	})
}

func (m *model) handleAutoHide(msg autoHideMsg) {
	if !m.autoHide.fire(msg.id) {
		return
	}
	m.display.revealed = false
}

func (m *model) cooldownRemaining(now time.Time) time.Duration {
	if m.display.lastManualFetchAt.IsZero() {
		return 0
	}
	remaining := m.config.ManualRefreshCooldown - now.Sub(m.display.lastManualFetchAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *model) manualRefresh() tea.Cmd {
	if !m.config.AllowManualRefresh || m.configErr != nil {
		return nil
	}
	now := m.now()
	if remaining := m.cooldownRemaining(now); remaining > 0 {
		m.cooldownLabel = formatCooldown(remaining)
		return nil
	}
	m.display.lastManualFetchAt = now
	m.updateCooldownLabel(now)
	return m.requestTrivia(true)
}

func (m *model) updateCountdownLabel(now time.Time) {
	if m.display.nextFetchAt.IsZero() {
		m.countdownLabel = ""
		return
	}
	m.countdownLabel = formatCountdown(m.display.nextFetchAt.Sub(now))
}

func (m *model) updateCooldownLabel(now time.Time) {
	m.cooldownLabel = formatCooldown(m.cooldownRemaining(now))
}

func (m *model) scheduleCountdown() tea.Cmd {
	return m.countdown.schedule(cosmeticTickEvery, func(id int) tea.Msg {
		return countdownTickMsg{id: id}
	})
}

func (m *model) scheduleCooldown() tea.Cmd {
	return m.cooldown.schedule(cosmeticTickEvery, func(id int) tea.Msg {
		return cooldownTickMsg{id: id}
	})
}

func (m *model) handleCountdownTick(msg countdownTickMsg) tea.Cmd {
	if !m.countdown.fire(msg.id) {
		return nil
	}
	m.updateCountdownLabel(m.now())
	return m.scheduleCountdown()
}

func (m *model) handleCooldownTick(msg cooldownTickMsg) tea.Cmd {
	if !m.cooldown.fire(msg.id) {
		return nil
	}
	m.updateCooldownLabel(m.now())
	return m.scheduleCooldown()
}

// startCosmeticTicks (re)starts the countdown and cooldown displays. Each
// schedule supersedes whatever tick was outstanding in its slot.
func (m *model) startCosmeticTicks() tea.Cmd {
	now := m.now()
	var cmds []tea.Cmd
	if m.config.ShowTimer {
		m.updateCountdownLabel(now)
		cmds = append(cmds, m.scheduleCountdown())
	}
	if m.config.AllowManualRefresh {
		m.updateCooldownLabel(now)
		cmds = append(cmds, m.scheduleCooldown())
	}
	return tea.Batch(cmds...)
}

// suspend only pauses the cosmetic ticks; the auto-hide and scheduled
// refresh timers keep running while hidden.
func (m *model) suspend() {
	if m.suspended {
		return
	}
	m.suspended = true
	m.countdown.cancel()
	m.cooldown.cancel()
	m.log.Debug("display hidden; cosmetic timers stopped")
}

func (m *model) resume() tea.Cmd {
	if !m.suspended {
		return nil
	}
	m.suspended = false
	if m.configErr != nil {
		return nil
	}
	m.log.Debug("display visible; cosmetic timers restarted")
	return m.startCosmeticTicks()
}

func (m *model) phase() phase {
	switch {
	case m.configErr != nil:
		return phaseConfigRequired
	case !m.display.loaded:
		return phaseLoading
	case m.display.item.Empty():
		return phaseUnavailable
	case m.display.revealed:
		return phaseAnswer
	default:
		return phaseQuestion
	}
}
