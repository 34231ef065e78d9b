package view

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// dismissAfter matches the web client's 3-second notification timeout
const dismissAfter = 3 * time.Second

// Notifier shows transient, auto-dismissing notifications. Validation
// failures and non-success responses surface here; fire-and-forget
// recording failures do not.
type Notifier struct {
	w io.Writer

	mu      sync.Mutex
	current string
	timer   *time.Timer
}

// NewNotifier creates a notifier writing to w
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

// Show displays a notification and schedules its dismissal. A new
// notification replaces the previous one and resets the timer.
func (n *Notifier) Show(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.current = msg
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(dismissAfter, n.dismiss)

	fmt.Fprintf(n.w, "* %s\n", msg)
}

func (n *Notifier) dismiss() {
	n.mu.Lock()
	n.current = ""
	n.timer = nil
	n.mu.Unlock()
}

// Current returns the visible notification, or "" after dismissal
func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
