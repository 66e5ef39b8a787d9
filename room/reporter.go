package room

// Reporter receives fire-and-forget membership notifications for external
// presentation layers. Implementations must not block: the core never awaits
// these calls and treats them as already delivered.
//
// Reports (user joined/left/removed) describe another user's membership
// change to room observers; echoes (socket joined/left/disconnected) tell
// the acting connection about its own change.
type Reporter interface {
	UserJoinedRoom(name, user string)
	UserLeftRoom(name, user string)
	UserRemovedFromRoom(name, user string)
	SocketJoinedRoom(socketID, name string, localOrigin bool)
	SocketLeftRoom(socketID, name string, localOrigin bool)
	SocketDisconnected(socketID string)
}

// NopReporter discards every notification. It is the default when no
// presentation layer is wired in.
type NopReporter struct{}

func (NopReporter) UserJoinedRoom(string, string)         {}
func (NopReporter) UserLeftRoom(string, string)           {}
func (NopReporter) UserRemovedFromRoom(string, string)    {}
func (NopReporter) SocketJoinedRoom(string, string, bool) {}
func (NopReporter) SocketLeftRoom(string, string, bool)   {}
func (NopReporter) SocketDisconnected(string)             {}
