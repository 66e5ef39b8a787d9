package room

import (
	"context"
	"log/slog"
)

// FailureKind tags which state component disagreed when a consistency
// failure was observed.
type FailureKind string

const (
	FailureTransportChannel FailureKind = "transportChannel"
	FailureUserRooms        FailureKind = "userRooms"
	FailureRoomUserlist     FailureKind = "roomUserlist"
	FailureUserSockets      FailureKind = "userSockets"
)

// Failure is a structured consistency-failure event: an observed
// disagreement between the shared store's and the local transport's view of
// membership. Failures are emitted for external observers and are never
// treated as fatal by the core.
type Failure struct {
	Kind     FailureKind
	Room     string
	User     string
	SocketID string
	Err      error
}

// FailureSink receives consistency-failure events. Implementations must not
// block and must not panic; the core fires and forgets.
type FailureSink interface {
	ConsistencyFailure(ctx context.Context, f Failure)
}

// LogSink emits consistency failures as error-level log records. It is the
// default sink.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink logging to the given logger.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) ConsistencyFailure(ctx context.Context, f Failure) {
	s.log.ErrorContext(ctx, "membership consistency failure",
		slog.String("kind", string(f.Kind)),
		slog.String("room", f.Room),
		slog.String("user", f.User),
		slog.String("socket", f.SocketID),
		slog.Any("error", f.Err),
	)
}

// recovery funnels all consistency-failure reporting through one path and
// implements join compensation.
type recovery struct {
	store Store
	sink  FailureSink
}

// report emits the failure and returns; it never fails the caller.
func (r *recovery) report(ctx context.Context, f Failure) {
	r.sink.ConsistencyFailure(ctx, f)
}

// compensateJoin rolls back a partially applied join: it undoes the
// membership increment and, when the undo shows the user's count reached
// zero, removes the user from the room roster as well. Compensation failures
// are reported, never propagated; the original cause is always returned so
// the join still fails upstream.
func (r *recovery) compensateJoin(ctx context.Context, cause error, name, user, socketID string) error {
	njoined, _, err := r.store.RemoveSocketFromRoom(ctx, socketID, name)
	if err != nil {
		r.report(ctx, Failure{
			Kind:     FailureUserRooms,
			Room:     name,
			User:     user,
			SocketID: socketID,
			Err:      err,
		})
		return cause
	}

	if njoined == 0 {
		if err := r.store.RemoveRoomMember(ctx, name, user); err != nil {
			r.report(ctx, Failure{
				Kind:     FailureRoomUserlist,
				Room:     name,
				User:     user,
				SocketID: socketID,
				Err:      err,
			})
		}
	}

	return cause
}
