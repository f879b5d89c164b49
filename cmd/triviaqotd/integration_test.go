package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/csheth/triviaqotd/internal/tuitest"
)

const fixturePage = `<html><body>
<h1>Daily Trivia</h1>
<p>Category: Astronomy</p>
<p>Trivia Question of the Day: Which planet has the most confirmed moons?</p>
<p>Answer: Saturn, with well over a hundred.</p>
<h2>Previous questions</h2>
</body></html>`

func TestDashboardRevealsAnswer(t *testing.T) {
	t.Parallel()

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, fixturePage)
	}))
	defer page.Close()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "tui", "--no-alt-screen"},
		Dir:     cmdDir,
		Env: []string{
			"HOME=" + t.TempDir(),
			"TRIVIA_SOURCE_URL=" + page.URL,
		},
		Width:  100,
		Height: 30,
		Steps: []tuitest.Step{
			{WaitFor: "Which planet has the most confirmed moons?"},
			{Input: tuitest.KeySpace},
			{WaitFor: "Saturn, with well over a hundred."},
			{Input: tuitest.Keys("q")},
		},
		Timeout: 15 * time.Second,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	plain := strings.Join(plainFrames(rec), "\n")
	for _, want := range []string{"Trivia Question of the Day", "Astronomy", "Next question:", "New Question"} {
		if !strings.Contains(plain, want) {
			t.Fatalf("output missing %q\n%s", want, plain)
		}
	}
}

func TestDashboardWithoutSourceAsksForConfiguration(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen"},
		Dir:     cmdDir,
		Env:     []string{"HOME=" + t.TempDir(), "TRIVIA_SOURCE_URL="},
		Steps: []tuitest.Step{
			{WaitFor: "Configuration required"},
			{Input: tuitest.KeyCtrlC},
		},
		Timeout:        10 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if _, ok := rec.FrameContaining("Configuration required"); !ok {
		t.Fatalf("no configuration frame captured:\n%s", rec.Raw)
	}
}

func plainFrames(rec *tuitest.Recording) []string {
	out := make([]string, 0, len(rec.Frames))
	for _, frame := range rec.Frames {
		out = append(out, frame.Plain)
	}
	return out
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	name := "triviaqotd-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
