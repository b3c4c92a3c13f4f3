// Package notify carries short-lived user notifications (toasts) from the
// components that raise them to whatever surface displays them.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one notification.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Success builds a success notice.
func Success(text string) Notice { return Notice{Level: LevelSuccess, Text: text} }

// Error builds an error notice.
func Error(text string) Notice { return Notice{Level: LevelError, Text: text} }

// Notifier displays notices. Implementations must not block for long.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notice)

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Discard drops every notice.
var Discard Notifier = Func(func(context.Context, Notice) {})

// Recorder keeps notices in memory until they are taken.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Take returns the recorded notices and forgets them.
func (r *Recorder) Take() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// Writer prints notices as single lines, for terminals.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a Writer printing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Notify implements Notifier.
func (w *Writer) Notify(_ context.Context, n Notice) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n.Level == LevelError {
		fmt.Fprintf(w.out, "error: %s\n", n.Text)
		return
	}
	fmt.Fprintln(w.out, n.Text)
}
