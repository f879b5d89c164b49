// Package tuitest drives the dashboard binary inside a pseudo terminal and
// records what it draws.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 100
	defaultHeight  = 30
	defaultTimeout = 10 * time.Second
	pollEvery      = 20 * time.Millisecond
)

// Step is one scripted interaction. The harness first sleeps for Delay, then
// waits until the plain-text output contains WaitFor, then writes Input.
type Step struct {
	Delay   time.Duration
	WaitFor string
	Input   []byte
}

// Config describes the program under test.
type Config struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Recording is the raw terminal stream plus the frames parsed from it.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// output collects PTY bytes while steps poll it.
type output struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(p)
}

func (o *output) contains(text string) bool {
	o.mu.Lock()
	raw := o.buf.String()
	o.mu.Unlock()
	return strings.Contains(stripANSI(raw), text)
}

func (o *output) bytes() []byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]byte(nil), o.buf.Bytes()...)
}

// Run starts cfg.Command in a PTY, replays the steps, waits for the program
// to exit and returns everything it drew.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	width := cfg.Width
	if width <= 0 {
		width = defaultWidth
	}
	height := cfg.Height
	if height <= 0 {
		height = defaultHeight
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	allowedCodes := map[int]struct{}{0: {}}
	for _, code := range cfg.AllowedExitCodes {
		allowedCodes[code] = struct{}{}
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(height), Cols: uint16(width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	out := &output{}
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		responder := newTerminalResponder(ptmx)
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				chunk := buf[:n]
				responder.Process(chunk)
				_, _ = out.Write(chunk)
			}
			if readErr != nil {
				return
			}
		}
	}()

	start := time.Now()
	for i, step := range cfg.Steps {
		if step.Delay > 0 {
			if err := sleep(ctx, step.Delay); err != nil {
				return nil, fmt.Errorf("tuitest: step %d: %w", i, err)
			}
		}
		if step.WaitFor != "" {
			if err := waitFor(ctx, out, step.WaitFor); err != nil {
				return nil, fmt.Errorf("tuitest: step %d waiting for %q: %w", i, step.WaitFor, err)
			}
		}
		if len(step.Input) > 0 {
			if _, err := ptmx.Write(step.Input); err != nil {
				return nil, fmt.Errorf("tuitest: write input: %w", err)
			}
		}
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
	}()

	select {
	case err := <-waitErr:
		if err != nil && !exitAllowed(err, allowedCodes, cfg.AllowInterrupt) {
			return nil, fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}

	_ = ptmx.Close()
	<-copyDone

	raw := out.bytes()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(start)}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func waitFor(ctx context.Context, out *output, text string) error {
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()
	for !out.contains(text) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func exitAllowed(err error, codes map[int]struct{}, allowInterrupt bool) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if _, ok := codes[exitErr.ExitCode()]; ok {
			return true
		}
	}
	return allowInterrupt && strings.Contains(err.Error(), "signal: interrupt")
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

var (
	KeyEnter = []byte{'\r'}
	KeySpace = []byte{' '}
	KeyCtrlC = []byte{3}
	KeyEsc   = []byte{27}
	// KeyFocusIn and KeyFocusOut are the reports a terminal sends when focus
	// reporting is enabled.
	KeyFocusIn  = []byte("\x1b[I")
	KeyFocusOut = []byte("\x1b[O")
)

// Keys returns the bytes for typing s.
func Keys(s string) []byte {
	return []byte(s)
}
