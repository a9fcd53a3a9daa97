package serial

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Timer measures elapsed time for a single operation. Ports start one per
// blocking call and compare Elapsed against the configured timeout after
// every underlying transfer attempt.
type Timer interface {
	Start()
	Stop()
	Elapsed() time.Duration
}

type clockTimer struct {
	clk     clock.Clock
	start   time.Time
	stop    time.Time
	running bool
}

// NewTimer returns a Timer reading from clk. A nil clk uses the wall clock.
func NewTimer(clk clock.Clock) Timer {
	if clk == nil {
		clk = clock.New()
	}
	return &clockTimer{clk: clk}
}

func (t *clockTimer) Start() {
	t.start = t.clk.Now()
	t.running = true
}

func (t *clockTimer) Stop() {
	if t.running {
		t.stop = t.clk.Now()
		t.running = false
	}
}

// Elapsed returns the time since Start, or the Start-to-Stop interval once stopped.
func (t *clockTimer) Elapsed() time.Duration {
	if t.running {
		return t.clk.Since(t.start)
	}
	return t.stop.Sub(t.start)
}

// ElapsedMillis is Elapsed truncated to whole milliseconds.
func ElapsedMillis(t Timer) int64 {
	return t.Elapsed().Milliseconds()
}
