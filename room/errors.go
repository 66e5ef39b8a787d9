package room

import "errors"

var (
	// ErrNoSocket is returned when the local transport has no live
	// connection for an id expected to exist.
	ErrNoSocket = errors.New("room: transport has no socket with that id")

	// ErrRoomNotFound is returned when a room does not exist in the shared store.
	ErrRoomNotFound = errors.New("room: room not found")

	// ErrUserNotFound is returned when a user has no registration in the shared store.
	ErrUserNotFound = errors.New("room: user not found")

	// ErrSocketNotFound is returned when a socket id has no registration in the shared store.
	ErrSocketNotFound = errors.New("room: socket not found")
)
