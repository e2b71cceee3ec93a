package scanner

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDedupeWindow suppresses repeated frames of the same physical code.
const DefaultDedupeWindow = 1500 * time.Millisecond

// Dedupe rejects a code equal to the last accepted one within Window.
// Rejected codes do not extend the window.
type Dedupe struct {
	Window time.Duration

	mu   sync.Mutex
	last string
	at   time.Time
}

func NewDedupe(window time.Duration) *Dedupe {
	if window <= 0 {
		window = DefaultDedupeWindow
	}
	return &Dedupe{Window: window}
}

// Accept records code at now and reports whether it should be searched.
func (d *Dedupe) Accept(code string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if code == d.last && !d.at.IsZero() && now.Sub(d.at) < d.Window {
		return false
	}
	d.last = code
	d.at = now
	return true
}

// FlightGuard allows at most one search in flight.
type FlightGuard struct {
	busy atomic.Bool
}

// TryAcquire takes the guard, or returns false when a search is already running.
func (g *FlightGuard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *FlightGuard) Release() {
	g.busy.Store(false)
}
