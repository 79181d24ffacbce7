package reasoning

import "sync"

// Completion carries the outcome of one translation task back to the
// Translator. Err is nil on success.
type Completion struct {
	RequestID  uint64
	Key        string
	Title      string
	Translated string
	Err        error
}

// Inbox is an unbounded mailbox with many senders and one receiver. Send never
// blocks; after Close it silently drops messages.
type Inbox struct {
	mu      sync.Mutex
	pending []Completion
	closed  bool
}

// NewInbox returns an empty, open inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Send enqueues c unless the inbox is closed.
func (in *Inbox) Send(c Completion) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return
	}
	in.pending = append(in.pending, c)
}

// Drain removes and returns everything currently queued, oldest first.
func (in *Inbox) Drain() []Completion {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.pending
	in.pending = nil
	return out
}

// Len reports the number of queued completions.
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.pending)
}

// Close stops accepting completions and discards queued ones.
func (in *Inbox) Close() {
	in.mu.Lock()
	in.closed = true
	in.pending = nil
	in.mu.Unlock()
}
