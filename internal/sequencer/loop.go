package sequencer

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopClosed is returned by Do once Run has returned.
var ErrLoopClosed = errors.New("sequencer loop closed")

// DefaultQueueSize is the capacity of a Loop's queue.
const DefaultQueueSize = 1024

// Loop runs every engine operation on one goroutine, in arrival order.
// Key input, HTTP requests and transport callbacks all enter through it.
type Loop struct {
	queue chan func(*Engine)
	done  chan struct{}

	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
}

// NewLoop returns a loop with a queue of the given capacity.
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		queue: make(chan func(*Engine), size),
		done:  make(chan struct{}),
		subs:  make(map[int]chan Change),
	}
}

// Run drains the queue into e until ctx is done.
func (l *Loop) Run(ctx context.Context, e *Engine) error {
	e.onChange = l.publish
	defer close(l.done)
	defer l.closeSubscribers()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn(e)
		}
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*Engine)) error {
	done := make(chan struct{})
	wrapped := func(e *Engine) {
		defer close(done)
		fn(e)
	}
	select {
	case l.queue <- wrapped:
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View returns a copy of the session taken on the loop.
func (l *Loop) View(ctx context.Context) (SessionView, error) {
	var v SessionView
	err := l.Do(ctx, func(e *Engine) { v = e.View() })
	return v, err
}

// TryDo queues fn without blocking. It reports false if the queue is full.
func (l *Loop) TryDo(fn func(*Engine)) bool {
	return TrySend(l.queue, fn)
}

// Post queues a plain callback. Transports use it to fire on the loop.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- func(*Engine) { fn() }:
	case <-l.done:
	}
}

// Subscribe returns a channel of changes and a func that cancels it.
// Changes are dropped when the channel is full.
func (l *Loop) Subscribe(buf int) (<-chan Change, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	ch := make(chan Change, buf)
	l.subs[id] = ch
	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
}

func (l *Loop) publish(c Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs {
		TrySend(ch, c)
	}
}

func (l *Loop) closeSubscribers() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}

// TrySend sends v on c if there is room. It never blocks.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}
