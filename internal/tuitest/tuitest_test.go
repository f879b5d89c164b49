package tuitest

import (
	"bytes"
	"testing"
)

func TestParseFramesStripsEscapes(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[HTrivia\r\n\x1b[1mQ1\x1b[0m   \r\n\x1b[2J\x1b[HTrivia\r\nA1\r\n\r\n")
	frames := parseFrames(raw)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Plain != "Trivia\nQ1" {
		t.Fatalf("unexpected first frame %q", frames[0].Plain)
	}
	if frames[1].Plain != "Trivia\nA1" {
		t.Fatalf("unexpected second frame %q", frames[1].Plain)
	}
}

func TestRecordingFrameSearch(t *testing.T) {
	rec := &Recording{Frames: []Frame{
		{Index: 0, Plain: "Loading trivia..."},
		{Index: 1, Plain: "Q1\n↓ Answer"},
		{Index: 2, Plain: "A1\n↑ Question"},
	}}
	frame, ok := rec.FrameContaining("Q1", "Answer")
	if !ok || frame.Index != 1 {
		t.Fatalf("unexpected frame %+v ok=%v", frame, ok)
	}
	if _, ok := rec.FrameContaining("Q1", "A1"); ok {
		t.Fatal("no single frame holds both")
	}
	if got := rec.IndexOf("A1", 1); got != 2 {
		t.Fatalf("IndexOf = %d", got)
	}
	if got := rec.IndexOf("Loading", 1); got != -1 {
		t.Fatalf("IndexOf should search forward only, got %d", got)
	}
	final, ok := rec.FinalFrame()
	if !ok || final.Index != 2 {
		t.Fatalf("unexpected final frame %+v", final)
	}
}

func TestResponderAnswersQueriesInOrder(t *testing.T) {
	var replies bytes.Buffer
	tr := newTerminalResponder(&replies)
	tr.Process([]byte("hello\x1b]11;?\x07 and \x1b[6"))
	tr.Process([]byte("n done"))

	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if replies.String() != want {
		t.Fatalf("replies = %q, want %q", replies.String(), want)
	}
}
