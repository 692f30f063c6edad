package timer

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTick is the countdown decrement interval.
const DefaultTick = time.Second

// Token identifies one countdown. Tokens increase with every Start so a
// consumer can tell whether an event belongs to the countdown it expects.
type Token uint64

type (
	TickFunc   func(token Token, remaining int)
	ExpireFunc func(token Token)
)

// Controller runs at most one countdown at a time.
type Controller struct {
	clock  Clock
	tick   time.Duration
	logger *zap.Logger

	mu        sync.Mutex
	token     Token
	active    bool
	remaining int
	ticker    Ticker
	stop      chan struct{}
}

// New creates a controller. A nil clock uses RealClock, a non-positive tick uses DefaultTick.
func New(clock Clock, tick time.Duration, logger *zap.Logger) *Controller {
	if clock == nil {
		clock = RealClock{}
	}
	if tick <= 0 {
		tick = DefaultTick
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{clock: clock, tick: tick, logger: logger}
}

// Start cancels any running countdown and starts a new one of limitSeconds
// ticks. onTick is called after every decrement that did not reach zero,
// onExpire exactly once when zero is reached. Both run on the countdown
// goroutine and never while the controller lock is held.
func (c *Controller) Start(limitSeconds int, onTick TickFunc, onExpire ExpireFunc) Token {
	if limitSeconds < 0 {
		limitSeconds = 0
	}

	c.mu.Lock()
	c.stopLocked()
	c.token++
	token := c.token
	ticker := c.clock.NewTicker(c.tick)
	stop := make(chan struct{})
	c.active = true
	c.remaining = limitSeconds
	c.ticker = ticker
	c.stop = stop
	c.mu.Unlock()

	c.logger.Debug("countdown started", zap.Uint64("token", uint64(token)), zap.Int("limit_seconds", limitSeconds))

	go c.run(token, ticker, stop, onTick, onExpire)

	return token
}

// Cancel stops the running countdown, if any. It is safe to call repeatedly.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		c.logger.Debug("countdown cancelled", zap.Uint64("token", uint64(c.token)), zap.Int("remaining", c.remaining))
	}
	c.stopLocked()
}

// Active returns the token of the running countdown.
func (c *Controller) Active() (Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.active
}

// Remaining returns the seconds left on the running countdown, 0 when idle.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return 0
	}
	return c.remaining
}

func (c *Controller) stopLocked() {
	if !c.active {
		return
	}
	c.active = false
	c.remaining = 0
	c.ticker.Stop()
	close(c.stop)
	c.ticker = nil
	c.stop = nil
}

func (c *Controller) run(token Token, ticker Ticker, stop <-chan struct{}, onTick TickFunc, onExpire ExpireFunc) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
		}

		c.mu.Lock()
		if !c.active || c.token != token {
			c.mu.Unlock()
			return
		}
		if c.remaining > 0 {
			c.remaining--
		}
		remaining := c.remaining
		expired := remaining == 0
		if expired {
			c.stopLocked()
		}
		c.mu.Unlock()

		if expired {
			c.logger.Debug("countdown expired", zap.Uint64("token", uint64(token)))
			if onExpire != nil {
				onExpire(token)
			}
			return
		}

		if onTick != nil {
			onTick(token, remaining)
		}
	}
}
