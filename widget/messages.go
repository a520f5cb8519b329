package widget

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// NotificationKind is the visual class of a notification
type NotificationKind string

const (
	NotifyInfo    NotificationKind = "info"
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notifier shows short transient messages to the user
type Notifier interface {
	Notify(message string, kind NotificationKind)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(message string, kind NotificationKind)

func (f NotifierFunc) Notify(message string, kind NotificationKind) {
	f(message, kind)
}

// MessageSink posts an HTML message into a conversation view
type MessageSink interface {
	AddMessage(role, displayName, htmlContent string) error
}

// MessageSinkFunc adapts a function to MessageSink
type MessageSinkFunc func(role, displayName, htmlContent string) error

func (f MessageSinkFunc) AddMessage(role, displayName, htmlContent string) error {
	return f(role, displayName, htmlContent)
}

// ErrSinkUnavailable is returned by a sink that cannot accept messages
var ErrSinkUnavailable = errors.New("widget: message sink unavailable")

// WriterNotifier prints notifications as "[kind] message" lines
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(message string, kind NotificationKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", kind, message)
}

// TextMessageSink writes messages as plain text, stripping all markup.
// It serves as the fallback surface when no conversation view is available.
type TextMessageSink struct {
	mu     sync.Mutex
	w      io.Writer
	policy *bluemonday.Policy
}

func NewTextMessageSink(w io.Writer) *TextMessageSink {
	return &TextMessageSink{w: w, policy: bluemonday.StrictPolicy()}
}

func (s *TextMessageSink) AddMessage(role, displayName, htmlContent string) error {
	if s == nil || s.w == nil {
		return ErrSinkUnavailable
	}
	text := PlainText(s.policy, htmlContent)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "%s:\n%s\n", displayName, text); err != nil {
		return fmt.Errorf("failed to write %s message: %w", role, err)
	}
	return nil
}

// PlainText strips markup and collapses the blank lines left behind
func PlainText(policy *bluemonday.Policy, htmlContent string) string {
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}
	stripped := html.UnescapeString(policy.Sanitize(htmlContent))

	lines := strings.Split(stripped, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
