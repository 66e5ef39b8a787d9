package room

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dmitrymomot/roomkit/pkg/async"
	"github.com/dmitrymomot/roomkit/pkg/bus"
)

// leaveEvent is the cluster-wide instruction stream: any instance owning the
// named socket must drop its local channel subscription for the room.
const leaveEvent = "membership.leave"

type leaveInstruction struct {
	SocketID string `json:"socket_id"`
	Room     string `json:"room"`
}

// Notifier broadcasts "remove socket from channel" instructions to the rest
// of the cluster and runs the receiving side on each instance. None of its
// send operations ever fail the caller: publish errors are logged and
// acknowledgment waits degrade to fire-and-forget on timeout, preferring
// availability over guaranteed delivery.
type Notifier struct {
	bus        bus.Bus
	transport  Transport
	log        *slog.Logger
	ackTimeout time.Duration
	fanout     int
}

// NewNotifier creates a notifier publishing on b and serving the local
// transport's sockets.
func NewNotifier(b bus.Bus, transport Transport, log *slog.Logger, cfg Config) *Notifier {
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = DefaultConfig().AckTimeout
	}
	if cfg.FanoutLimit <= 0 {
		cfg.FanoutLimit = DefaultConfig().FanoutLimit
	}
	return &Notifier{
		bus:        b,
		transport:  transport,
		log:        log,
		ackTimeout: cfg.AckTimeout,
		fanout:     cfg.FanoutLimit,
	}
}

// NotifyLeave publishes the leave instruction for one socket/room pair.
// With wantAck it waits for the owning instance's acknowledgment, bounded by
// the ack timeout; an expired wait resolves silently because the remote
// instance is assumed unreachable or slow.
func (n *Notifier) NotifyLeave(ctx context.Context, socketID, name string, wantAck bool) {
	payload, err := json.Marshal(leaveInstruction{SocketID: socketID, Room: name})
	if err != nil {
		n.log.ErrorContext(ctx, "marshal leave instruction", slog.Any("error", err))
		return
	}

	if !wantAck {
		if err := n.bus.Publish(ctx, leaveEvent, payload); err != nil {
			n.log.WarnContext(ctx, "publish leave instruction",
				slog.String("socket", socketID), slog.String("room", name), slog.Any("error", err))
		}
		return
	}

	// Subscribe before publishing so a fast acknowledgment cannot slip past.
	ackCh, stop := n.bus.Subscribe(ctx, bus.AckEvent(socketID, name))
	defer stop()

	if err := n.bus.Publish(ctx, leaveEvent, payload); err != nil {
		n.log.WarnContext(ctx, "publish leave instruction",
			slog.String("socket", socketID), slog.String("room", name), slog.Any("error", err))
		return
	}

	timer := time.NewTimer(n.ackTimeout)
	defer timer.Stop()

	select {
	case <-ackCh:
	case <-timer.C:
	case <-ctx.Done():
	}
}

// NotifyLeaveAll publishes leave instructions for many sockets with bounded
// fan-out, waiting for each owning instance's acknowledgment. Evictions want
// confirmation that the remote subscription is gone before the caller
// finalizes the roster; the per-socket wait is still bounded by the ack
// timeout, so a dead instance cannot stall the eviction.
func (n *Notifier) NotifyLeaveAll(ctx context.Context, socketIDs []string, name string) {
	async.ForEach(ctx, socketIDs, n.fanout, func(ctx context.Context, socketID string) error {
		n.NotifyLeave(ctx, socketID, name, true)
		return nil
	})
}

// Listen consumes the cluster leave stream until the context is cancelled.
// For every instruction naming a socket this instance owns it drops the
// local channel subscription and publishes the acknowledgment; instructions
// for sockets owned elsewhere are ignored.
func (n *Notifier) Listen(ctx context.Context) {
	events, stop := n.bus.Subscribe(ctx, leaveEvent)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			n.handleLeave(ctx, ev)
		}
	}
}

func (n *Notifier) handleLeave(ctx context.Context, ev bus.Event) {
	var in leaveInstruction
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		n.log.WarnContext(ctx, "malformed leave instruction", slog.Any("error", err))
		return
	}

	if _, owned := n.transport.GetSocket(in.SocketID); !owned {
		return
	}

	if err := n.transport.LeaveChannel(ctx, in.SocketID, in.Room); err != nil {
		n.log.WarnContext(ctx, "drop channel subscription",
			slog.String("socket", in.SocketID), slog.String("room", in.Room), slog.Any("error", err))
	}

	if err := n.bus.Publish(ctx, bus.AckEvent(in.SocketID, in.Room), nil); err != nil {
		n.log.WarnContext(ctx, "publish leave acknowledgment",
			slog.String("socket", in.SocketID), slog.String("room", in.Room), slog.Any("error", err))
	}
}
