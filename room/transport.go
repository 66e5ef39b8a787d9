package room

import (
	"context"
	"sync"
)

// Socket is a live connection handle owned by the local transport layer.
type Socket interface {
	ID() string
	User() string
}

// Transport is the local transport layer's channel-subscription surface.
// Each instance's transport knows only about the sockets it owns; it is the
// source of truth for those and nothing else.
type Transport interface {
	// JoinChannel subscribes the socket to the room's channel.
	JoinChannel(ctx context.Context, socketID, name string) error

	// LeaveChannel drops the socket's subscription to the room's channel.
	LeaveChannel(ctx context.Context, socketID, name string) error

	// GetSocket returns the live socket handle, or false when this instance
	// does not own a connection with that id.
	GetSocket(socketID string) (Socket, bool)
}

type memorySocket struct {
	id   string
	user string
}

func (s memorySocket) ID() string   { return s.id }
func (s memorySocket) User() string { return s.user }

// MemoryTransport implements Transport in process memory, tracking channel
// subscriptions per socket. It backs the test suite and single-process
// deployments that have no real socket layer.
type MemoryTransport struct {
	mu       sync.RWMutex
	sockets  map[string]memorySocket
	channels map[string]map[string]struct{}
}

// NewMemoryTransport creates an empty in-process transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{
		sockets:  make(map[string]memorySocket),
		channels: make(map[string]map[string]struct{}),
	}
}

// Connect registers a live socket for the user.
func (t *MemoryTransport) Connect(socketID, user string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sockets[socketID] = memorySocket{id: socketID, user: user}
}

// Disconnect drops the socket and all of its channel subscriptions.
func (t *MemoryTransport) Disconnect(socketID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sockets, socketID)
	delete(t.channels, socketID)
}

func (t *MemoryTransport) JoinChannel(_ context.Context, socketID, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sockets[socketID]; !ok {
		return ErrNoSocket
	}
	if t.channels[socketID] == nil {
		t.channels[socketID] = make(map[string]struct{})
	}
	t.channels[socketID][name] = struct{}{}
	return nil
}

func (t *MemoryTransport) LeaveChannel(_ context.Context, socketID, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.channels[socketID], name)
	return nil
}

func (t *MemoryTransport) GetSocket(socketID string) (Socket, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sockets[socketID]
	return s, ok
}

// Subscribed reports whether the socket currently holds the room's channel
// subscription.
func (t *MemoryTransport) Subscribed(socketID, name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.channels[socketID][name]
	return ok
}
