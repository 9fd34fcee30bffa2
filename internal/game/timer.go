package game

import (
	"sync"
	"time"
)

// countdown is one room's running timer. It computes remaining time from an
// absolute deadline so Extend only has to shift the deadline.
type countdown struct {
	mu       sync.Mutex
	end      time.Time
	stopped  bool
	cancel   chan struct{}
	onTick   func(remaining int) // nil for silent transition holds
	onExpire func()
	lastTick int
}

func startCountdown(d time.Duration, onTick func(int), onExpire func()) *countdown {
	c := &countdown{
		end:      time.Now().Add(d),
		cancel:   make(chan struct{}),
		onTick:   onTick,
		onExpire: onExpire,
	}
	go c.run()
	return c
}

func (c *countdown) run() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.cancel:
			return
		case <-ticker.C:
			left := c.Remaining()
			if left <= 0 {
				c.Stop()
				c.onExpire()
				return
			}
			if c.onTick != nil && left != c.lastTick {
				c.lastTick = left
				c.onTick(left)
			}
		}
	}
}

// Remaining returns whole seconds left, rounded up.
func (c *countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	left := time.Until(c.end)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// Extend pushes the deadline forward.
func (c *countdown) Extend(extra time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.end = c.end.Add(extra)
}

// Stop cancels the countdown; safe to call more than once.
func (c *countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		c.stopped = true
		close(c.cancel)
	}
}
