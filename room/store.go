package room

import "context"

// StateStore is the shared store's view of rooms, users and socket
// registrations. It is the source of truth for cross-instance rosters; every
// instance of the service talks to the same backend.
type StateStore interface {
	// GetRoom returns the room's roster and configuration, or ErrRoomNotFound.
	GetRoom(ctx context.Context, name string) (Room, error)

	// GetUser returns the user's sockets and rooms, or ErrUserNotFound.
	GetUser(ctx context.Context, name string) (User, error)

	// CreateRoom creates a room with explicit configuration. Creating an
	// existing room updates its configuration and keeps its roster.
	CreateRoom(ctx context.Context, name string, userlistUpdates bool) error

	// AddRoomMember adds the user to the room roster, creating the room
	// lazily with default configuration. Adding an existing member is a no-op.
	AddRoomMember(ctx context.Context, name, user string) error

	// RemoveRoomMember removes the user from the room roster; the room is
	// dropped when its last member leaves. Removing a non-member is a no-op.
	RemoveRoomMember(ctx context.Context, name, user string) error

	// AddSocket registers a live socket for the user, scoped to the owning
	// server instance.
	AddSocket(ctx context.Context, socketID, user string) error

	// SocketUser resolves a registered socket to its user, or
	// ErrSocketNotFound.
	SocketUser(ctx context.Context, socketID string) (string, error)

	// RemoveSocket removes the socket from the per-socket index and every
	// membership count it contributed to, returning what was removed. A
	// second removal of the same id returns ErrSocketNotFound with no side
	// effects.
	RemoveSocket(ctx context.Context, socketID string) (RemovedSocket, error)
}

// MembershipStore tracks which sockets are in which rooms, keyed by
// (room, user). The njoined count it reports is the number of the user's
// distinct sockets currently in the room, and hasChanged reports a 0↔non-zero
// transition of that count.
type MembershipStore interface {
	// AddSocketToRoom records the socket's membership. Re-adding a socket
	// already in the room leaves the count unchanged with hasChanged=false.
	AddSocketToRoom(ctx context.Context, socketID, name string) (njoined int, hasChanged bool, err error)

	// RemoveSocketFromRoom drops the socket's membership. Removing a socket
	// not in the room leaves the count unchanged with hasChanged=false, so
	// compensation of a never-applied increment is a safe no-op.
	RemoveSocketFromRoom(ctx context.Context, socketID, name string) (njoined int, hasChanged bool, err error)

	// RemoveAllSocketsFromRoom drops every membership the user has in the
	// room and returns the affected socket ids.
	RemoveAllSocketsFromRoom(ctx context.Context, name, user string) ([]string, error)
}

// Store combines both shared-store facets. The provided backends implement
// it over one set of records so the two views cannot drift structurally;
// drift remains possible against the transport layer, which is what the
// consistency-failure reporting exists for.
type Store interface {
	StateStore
	MembershipStore
}
