package timer

import (
	"sync"
	"time"
)

// Clock creates tickers. It exists so countdowns can be driven manually in tests.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is backed by time.Ticker.
type RealClock struct{}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }

func (r *realTicker) Stop() { r.t.Stop() }

// ManualClock delivers ticks only when Tick is called.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(0, 0).UTC()}
}

func (m *ManualClock) NewTicker(time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTicker{c: make(chan time.Time), stop: make(chan struct{})}
	m.tickers = append(m.tickers, t)
	return t
}

// Tick sends one tick to every running ticker and blocks until each one has
// been received or stopped.
func (m *ManualClock) Tick() {
	m.mu.Lock()
	m.now = m.now.Add(time.Second)
	now := m.now
	running := make([]*manualTicker, 0, len(m.tickers))
	for _, t := range m.tickers {
		if !t.stopped() {
			running = append(running, t)
		}
	}
	m.tickers = running
	m.mu.Unlock()

	for _, t := range running {
		select {
		case t.c <- now:
		case <-t.stop:
		}
	}
}

// Running returns the number of tickers that were created and not stopped.
func (m *ManualClock) Running() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tickers {
		if !t.stopped() {
			n++
		}
	}
	return n
}

type manualTicker struct {
	c    chan time.Time
	once sync.Once
	stop chan struct{}
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (t *manualTicker) stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}
