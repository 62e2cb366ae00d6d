package transport

import (
	"sync"
	"time"
)

type timer struct {
	part string
	at   float64
	fn   func()
	t    *time.Timer
}

// Clock is a real-time transport. Fired callbacks are handed to post, which
// should run them on the sequencer loop.
type Clock struct {
	post func(func())

	mu      sync.Mutex
	running bool
	started time.Time
	elapsed time.Duration
	nextID  int
	timers  map[int]*timer
}

// NewClock returns a stopped clock that delivers callbacks through post.
func NewClock(post func(func())) *Clock {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &Clock{
		post:   post,
		timers: make(map[int]*timer),
	}
}

// Now returns seconds of running time since the last Stop.
func (c *Clock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Seconds()
}

func (c *Clock) now() time.Duration {
	if !c.running {
		return c.elapsed
	}
	return c.elapsed + time.Since(c.started)
}

// ScheduleAt runs fn once the clock reaches at. While the clock is paused
// the callback waits for Start.
func (c *Clock) ScheduleAt(part string, at float64, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	t := &timer{part: part, at: at, fn: fn}
	c.timers[id] = t
	if c.running {
		c.arm(id, t)
	}
}

// arm starts the timer for t. c.mu must be held.
func (c *Clock) arm(id int, t *timer) {
	delay := time.Duration(t.at*float64(time.Second)) - c.now()
	if delay < 0 {
		delay = 0
	}
	var armed *time.Timer
	armed = time.AfterFunc(delay, func() {
		c.mu.Lock()
		cur, ok := c.timers[id]
		// A pause or cancel may have raced with the timer firing.
		ok = ok && cur.t == armed
		if ok {
			delete(c.timers, id)
		}
		c.mu.Unlock()
		if ok {
			c.post(t.fn)
		}
	})
	t.t = armed
}

// CancelAll drops every pending callback of part.
func (c *Clock) CancelAll(part string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		if t.part == part {
			if t.t != nil {
				t.t.Stop()
			}
			delete(c.timers, id)
		}
	}
}

// Start runs the clock and arms waiting callbacks.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.started = time.Now()
	for id, t := range c.timers {
		c.arm(id, t)
	}
}

// Pause freezes the clock. Pending callbacks wait for the next Start.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.elapsed = c.now()
	c.running = false
	for _, t := range c.timers {
		if t.t != nil {
			t.t.Stop()
			t.t = nil
		}
	}
}

// Stop halts the clock, rewinds it and drops every callback.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		if t.t != nil {
			t.t.Stop()
		}
		delete(c.timers, id)
	}
	c.running = false
	c.elapsed = 0
}

// Pending returns the number of callbacks waiting to fire.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
