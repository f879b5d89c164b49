package tuitest

import (
	"bytes"
	"io"
)

// terminalQueries maps the queries lipgloss and bubbletea send at startup to
// canned answers, so programs do not stall waiting on a real terminal.
var terminalQueries = []struct {
	query, reply []byte
}{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	responderMaxBuffer = 256
	responderKeepTail  = 64
)

type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128)}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	// Keep a tail so queries split across reads are still seen.
	if len(tr.buf) > responderMaxBuffer {
		tr.buf = tr.buf[len(tr.buf)-responderKeepTail:]
	}
}

// answerNext replies to the earliest pending query in the buffer.
func (tr *terminalResponder) answerNext() bool {
	first, idx := -1, -1
	for i, q := range terminalQueries {
		at := bytes.Index(tr.buf, q.query)
		if at >= 0 && (first < 0 || at < first) {
			first, idx = at, i
		}
	}
	if idx < 0 {
		return false
	}
	q := terminalQueries[idx]
	tr.buf = tr.buf[first+len(q.query):]
	_, _ = tr.w.Write(q.reply)
	return true
}
