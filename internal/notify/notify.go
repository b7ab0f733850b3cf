// SPDX-License-Identifier: MPL-2.0

// Package notify carries user-visible messages from the core to whatever
// surface the host provides. The core only ever emits two severities; how
// they are presented is up to the Notifier implementation.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	// SeverityError marks failures the user should act on.
	SeverityError Severity = iota
	// SeverityInfo marks informational messages (debug echo, success).
	SeverityInfo
)

type (
	// Severity is the message kind.
	Severity int

	// Message is one user-visible notification.
	Message struct {
		Severity Severity
		Text     string
	}

	// Notifier is the single sink for user-visible messages.
	// Implementations must be safe for concurrent use: outcome reports arrive
	// from execution goroutines while the invoking flow may still be running.
	Notifier interface {
		Notify(severity Severity, text string)
	}

	// Terminal writes notifications as styled lines to a writer (typically stderr).
	Terminal struct {
		mu         sync.Mutex
		w          io.Writer
		errorStyle lipgloss.Style
		infoStyle  lipgloss.Style
	}

	// Recorder keeps notifications in memory. It is used by tests and by
	// callers that want to inspect what would have been shown.
	Recorder struct {
		mu       sync.Mutex
		messages []Message
	}

	// Discard drops every notification.
	Discard struct{}
)

// String returns a lowercase name for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// NewTerminal creates a Terminal notifier writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{
		w:          w,
		errorStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		infoStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
	}
}

// Notify implements Notifier.
func (t *Terminal) Notify(severity Severity, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch severity {
	case SeverityError:
		fmt.Fprintln(t.w, t.errorStyle.Render("✗")+" "+text)
	default:
		fmt.Fprintln(t.w, t.infoStyle.Render("•")+" "+text)
	}
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Notifier.
func (r *Recorder) Notify(severity Severity, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Severity: severity, Text: text})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Count returns how many messages of the given severity were recorded.
func (r *Recorder) Count(severity Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.Severity == severity {
			n++
		}
	}
	return n
}

// Notify implements Notifier.
func (Discard) Notify(Severity, string) {}
