package reasoning

import (
	"math"
	"time"
)

// barrier marks one outstanding translation request. While it exists every
// emitted item is deferred.
type barrier struct {
	requestID uint64
	key       string
	title     string
	maxWait   time.Duration
	deadline  time.Time
}

// barrierGate owns the single barrier slot and the request sequence.
type barrierGate struct {
	open *barrier
	seq  uint64
}

func (g *barrierGate) isOpen() bool {
	return g.open != nil
}

// begin opens a barrier for key. It reports false when one is already open.
func (g *barrierGate) begin(key, title string, maxWait time.Duration, now time.Time) (uint64, bool) {
	if g.open != nil {
		return 0, false
	}
	requestID := g.seq
	if g.seq < math.MaxUint64 {
		g.seq++
	}
	deadline := now.Add(maxWait)
	if deadline.Before(now) {
		deadline = now
	}
	g.open = &barrier{
		requestID: requestID,
		key:       key,
		title:     title,
		maxWait:   maxWait,
		deadline:  deadline,
	}
	return requestID, true
}

func (g *barrierGate) matches(requestID uint64, key string) bool {
	return g.open != nil && g.open.requestID == requestID && g.open.key == key
}

func (g *barrierGate) expired(now time.Time) bool {
	return g.open != nil && !now.Before(g.open.deadline)
}

// release closes the barrier and returns what it held.
func (g *barrierGate) release() *barrier {
	b := g.open
	g.open = nil
	return b
}
