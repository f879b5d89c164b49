package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/csheth/triviaqotd/internal/config"
	"github.com/csheth/triviaqotd/internal/logger"
	"github.com/csheth/triviaqotd/internal/server"
	"github.com/csheth/triviaqotd/internal/trivia"
	"github.com/csheth/triviaqotd/internal/tui"
)

// app is everything a command needs, built once from flags and config.
type app struct {
	cfg         config.Config
	log         *zap.Logger
	coordinator *trivia.Coordinator
	sourceErr   error
}

// stringFlag reads a global flag from either the root or a subcommand context.
func stringFlag(ctx *cli.Context, name string) string {
	if value := ctx.String(name); value != "" {
		return value
	}
	return ctx.GlobalString(name)
}

// setup loads configuration and builds the logger and coordinator. quiet
// discards logs unless a log file is configured, so the terminal UI is not
// overwritten.
func setup(ctx *cli.Context, quiet bool) (*app, error) {
	cfg, err := config.Load(stringFlag(ctx, "config"))
	if err != nil {
		return nil, err
	}
	if level := stringFlag(ctx, "log-level"); level != "" {
		cfg.Log.Level = level
	}
	if file := stringFlag(ctx, "log-file"); file != "" {
		cfg.Log.File = file
	}

	log := zap.NewNop()
	if !quiet || cfg.Log.File != "" {
		log, err = logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
		if err != nil {
			return nil, err
		}
	}

	a := &app{cfg: cfg, log: log}
	source, err := cfg.NewSource()
	if err != nil {
		if !errors.Is(err, trivia.ErrConfigurationMissing) {
			return nil, err
		}
		a.sourceErr = err
		log.Warn("trivia source not configured", zap.Error(err))
		return a, nil
	}
	a.coordinator = trivia.NewCoordinator(source,
		trivia.WithFreshness(cfg.FreshnessWindow()),
		trivia.WithLogger(log.Named("coordinator")),
	)
	return a, nil
}

func (a *app) controller() tea.Model {
	cfg := tui.Config{
		ConfigError:           a.sourceErr,
		RefreshInterval:       a.cfg.RefreshInterval(),
		AnswerTimeout:         a.cfg.AnswerTimeout(),
		ShowTimer:             a.cfg.ShowTimer,
		AllowManualRefresh:    a.cfg.AllowManualRefresh,
		ManualRefreshCooldown: a.cfg.ManualRefreshCooldown(),
		AnimationSpeed:        a.cfg.AnimationSpeed(),
		Logger:                a.log.Named("controller"),
	}
	if a.coordinator != nil {
		cfg.Fetcher = a.coordinator
	}
	return tui.New(cfg)
}

func runTUI(ctx *cli.Context) error {
	a, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	opts := []tea.ProgramOption{tea.WithReportFocus()}
	if !ctx.Bool("no-alt-screen") {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(a.controller(), opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func runServe(ctx *cli.Context) error {
	a, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	addr := a.cfg.Server.Addr
	if flagAddr := ctx.String("addr"); flagAddr != "" {
		addr = flagAddr
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.log.Named("server"), a.cfg.Server.AllowedOrigins)
	defer srv.Close()

	program := tea.NewProgram(srv.Wrap(a.controller()),
		tea.WithContext(runCtx),
		tea.WithInput(nil),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	srv.Attach(program)

	programErr := make(chan error, 1)
	go func() {
		_, err := program.Run()
		programErr <- err
	}()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", addr))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-runCtx.Done():
		a.log.Info("shutting down")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			stop()
			return fmt.Errorf("http server: %w", err)
		}
	case err := <-programErr:
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("controller stopped: %w", err)
		}
	}

	// Close the event streams first so open SSE connections do not hold
	// up Shutdown.
	srv.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	program.Quit()
	return nil
}

func runFetch(ctx *cli.Context) error {
	a, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer a.log.Sync()
	if a.sourceErr != nil {
		return a.sourceErr
	}

	timeout := time.Duration(a.cfg.Source.TimeoutMs)*time.Millisecond + 5*time.Second
	fetchCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := a.coordinator.Request(fetchCtx, ctx.Bool("force"))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
