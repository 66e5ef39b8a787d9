package bus

import (
	"context"
	"sync"
	"time"
)

type memorySub struct {
	event string
	ch    chan Event
	once  sync.Once
}

// close shuts the subscriber channel. Close and the subscriber's stop may
// both run on shutdown in either order; the Once keeps the second a no-op.
func (s *memorySub) close() {
	s.once.Do(func() { close(s.ch) })
}

// MemoryBus implements Bus for a single process. Like the redis
// implementation it drops events for subscribers whose buffer is full rather
// than blocking the publisher.
type MemoryBus struct {
	mu         sync.RWMutex
	subs       map[*memorySub]struct{}
	bufferSize int
	closed     bool
}

// NewMemoryBus creates an in-process Bus. A minimum buffer size of 1 is
// enforced so sends never block.
func NewMemoryBus(bufferSize int) *MemoryBus {
	return &MemoryBus{
		subs:       make(map[*memorySub]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

// Publish sends the event to every subscriber of its name.
func (b *MemoryBus) Publish(_ context.Context, event string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	for sub := range b.subs {
		if sub.event != event {
			continue
		}
		select {
		case sub.ch <- Event{Name: event, Payload: payload}:
		default:
			// Slow consumer; drop rather than block the publisher.
		}
	}
	return nil
}

// Subscribe registers a subscriber for the named event.
func (b *MemoryBus) Subscribe(ctx context.Context, event string) (<-chan Event, func()) {
	sub := &memorySub{event: event, ch: make(chan Event, b.bufferSize)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			delete(b.subs, sub)
			b.mu.Unlock()
			sub.close()
		})
	}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				stop()
			case <-done:
			}
		}()
	}

	return sub.ch, stop
}

// WaitFor blocks until one event with the given name arrives or the timeout
// elapses.
func (b *MemoryBus) WaitFor(ctx context.Context, event string, timeout time.Duration) error {
	ch, stop := b.Subscribe(ctx, event)
	defer stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case _, ok := <-ch:
		if !ok {
			return ErrBusClosed
		}
		return nil
	case <-timer.C:
		return ErrWaitTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the bus down and closes every subscriber channel. It is safe
// to call multiple times.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for sub := range b.subs {
		sub.close()
	}
	clear(b.subs)
	return nil
}
