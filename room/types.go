package room

// Room is the durable roster record for one chat room: which users are
// members, independent of how many sockets each has connected.
type Room struct {
	Name    string
	Members []string

	// UserlistUpdates controls whether membership-change reports
	// (user joined/left) are emitted for this room.
	UserlistUpdates bool
}

// User is the shared-store view of one user: its live socket ids and the
// rooms any of those sockets has joined.
type User struct {
	Name      string
	SocketIDs []string
	Rooms     []string
}

// RemovedSocket is the result of removing a socket from the shared store's
// per-socket index on full disconnect.
type RemovedSocket struct {
	// User is the user the socket belonged to.
	User string

	// Rooms lists the rooms the socket was joined to at removal time.
	Rooms []string

	// Remaining maps each of those rooms to the user's socket count in the
	// room after this socket was removed.
	Remaining map[string]int

	// Connections is the user's remaining connection count across the cluster.
	Connections int
}
