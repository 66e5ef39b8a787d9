package bus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBus implements Bus on redis pub/sub. Event names map to redis
// channels under a configurable prefix, so independent deployments can share
// one redis without crosstalk.
type RedisBus struct {
	client redis.UniversalClient
	prefix string
	buffer int
}

// NewRedisBus creates a Bus backed by the given redis client.
func NewRedisBus(client redis.UniversalClient, cfg Config) *RedisBus {
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = DefaultConfig().ChannelPrefix
	}
	return &RedisBus{
		client: client,
		prefix: cfg.ChannelPrefix,
		buffer: max(cfg.BufferSize, 1),
	}
}

// Publish sends the event to every instance subscribed to its name.
func (b *RedisBus) Publish(ctx context.Context, event string, payload []byte) error {
	if err := b.client.Publish(ctx, b.prefix+event, payload).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Subscribe registers a subscriber for the named event. The returned stop
// function closes the underlying redis subscription.
func (b *RedisBus) Subscribe(ctx context.Context, event string) (<-chan Event, func()) {
	pubsub := b.client.Subscribe(ctx, b.prefix+event)
	out := make(chan Event, b.buffer)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- Event{Name: event, Payload: []byte(msg.Payload)}:
			default:
				// Slow consumer; drop rather than block the pump.
			}
		}
	}()

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
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

	return out, stop
}

// WaitFor blocks until one event with the given name arrives or the timeout
// elapses.
func (b *RedisBus) WaitFor(ctx context.Context, event string, timeout time.Duration) error {
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
