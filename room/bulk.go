package room

import (
	"context"

	"github.com/dmitrymomot/roomkit/pkg/async"
)

// RemoveSocket is the full-disconnect cleanup path: it removes the socket
// from the shared store's per-socket index and, for every room the socket
// was in, broadcasts a cluster leave-notification and finalizes the user's
// roster membership when this was their last socket there. All failures are
// reported as consistency failures and never block completion; invoking it
// on an already-removed socket reports one inconsistency and does nothing
// else, so counts are never decremented twice.
func (s *Service) RemoveSocket(ctx context.Context, socketID string) {
	removed, err := s.store.RemoveSocket(ctx, socketID)
	if err != nil {
		s.recovery.report(ctx, Failure{Kind: FailureUserSockets, SocketID: socketID, Err: err})
		return
	}

	async.ForEach(ctx, removed.Rooms, s.cfg.FanoutLimit, func(ctx context.Context, name string) error {
		s.notifier.NotifyLeave(ctx, socketID, name, false)
		s.reporter.SocketLeftRoom(socketID, name, true)

		if removed.Remaining[name] == 0 {
			// Read the room's configuration before the roster removal can
			// drop the room record entirely.
			updates := true
			if info, err := s.store.GetRoom(ctx, name); err == nil {
				updates = info.UserlistUpdates
			}

			if err := s.store.RemoveRoomMember(ctx, name, removed.User); err != nil {
				s.recovery.report(ctx, Failure{Kind: FailureRoomUserlist, Room: name, User: removed.User, SocketID: socketID, Err: err})
			} else if updates {
				s.reporter.UserLeftRoom(name, removed.User)
			}
		}
		return nil
	})

	s.reporter.SocketDisconnected(socketID)
}

// RemoveFromRoom evicts one user from a room: every socket of the user is
// dropped from the room's shared-store tracking, acknowledged cluster
// leave-notifications go out for each with bounded fan-out, and the
// idempotent roster removal runs last. Store failures along the way are
// reported, never propagated; only a lock timeout fails the call.
func (s *Service) RemoveFromRoom(ctx context.Context, name, user string) error {
	l, err := s.locker.Acquire(ctx, name, s.cfg.LockTTL)
	if err != nil {
		return err
	}
	defer l.Release(ctx)

	socketIDs, err := s.store.RemoveAllSocketsFromRoom(ctx, name, user)
	if err != nil {
		s.recovery.report(ctx, Failure{Kind: FailureUserRooms, Room: name, User: user, Err: err})
	}

	s.notifier.NotifyLeaveAll(ctx, socketIDs, name)

	if len(socketIDs) > 0 {
		s.reporter.UserRemovedFromRoom(name, user)
	}

	if err := s.store.RemoveRoomMember(ctx, name, user); err != nil {
		s.recovery.report(ctx, Failure{Kind: FailureRoomUserlist, Room: name, User: user, Err: err})
	}

	return nil
}

// RemoveRoomUsers evicts many users from a room with bounded fan-out.
// Individual failures are reported and suppressed so one user's failure
// never blocks the others'.
func (s *Service) RemoveRoomUsers(ctx context.Context, name string, users []string) {
	async.ForEach(ctx, users, s.cfg.FanoutLimit, func(ctx context.Context, user string) error {
		if _, err := s.store.GetUser(ctx, user); err != nil {
			s.recovery.report(ctx, Failure{Kind: FailureUserSockets, Room: name, User: user, Err: err})
			return nil
		}
		if err := s.RemoveFromRoom(ctx, name, user); err != nil {
			s.recovery.report(ctx, Failure{Kind: FailureUserRooms, Room: name, User: user, Err: err})
		}
		return nil
	})
}
