package bus

import (
	"context"
	"time"
)

// Event is a named message delivered through the cluster bus.
type Event struct {
	Name    string
	Payload []byte
}

// Bus distributes named events to every instance sharing the same backend.
// Delivery is at-most-once and best-effort: implementations drop messages for
// slow consumers rather than blocking publishers.
type Bus interface {
	// Publish sends an event to every current subscriber of its name.
	Publish(ctx context.Context, event string, payload []byte) error

	// Subscribe returns a channel receiving every event published under the
	// given name, plus a stop function that releases the subscription. The
	// channel is closed after stop is called or the context is cancelled.
	Subscribe(ctx context.Context, event string) (<-chan Event, func())

	// WaitFor blocks until one event with the given name arrives or the
	// timeout elapses, returning ErrWaitTimeout in the latter case.
	WaitFor(ctx context.Context, event string, timeout time.Duration) error
}

// AckEvent derives the acknowledgment event name for a socket/room leave
// instruction. The derivation is deterministic so the instructing and the
// acknowledging instance agree on the name without coordination.
func AckEvent(socketID, room string) string {
	return "leave-ack:" + socketID + ":" + room
}
