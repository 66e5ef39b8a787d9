package room_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/roomkit/pkg/lock"
	"github.com/dmitrymomot/roomkit/pkg/logger"
	"github.com/dmitrymomot/roomkit/room"
)

// recordingReporter captures every notification so tests can assert exact
// emission counts and ordering-independent sets.
type recordingReporter struct {
	mu           sync.Mutex
	userJoined   []string
	userLeft     []string
	userRemoved  []string
	socketJoined []string
	socketLeft   []string
	disconnected []string
}

func (r *recordingReporter) UserJoinedRoom(name, user string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userJoined = append(r.userJoined, name+"|"+user)
}

func (r *recordingReporter) UserLeftRoom(name, user string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userLeft = append(r.userLeft, name+"|"+user)
}

func (r *recordingReporter) UserRemovedFromRoom(name, user string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userRemoved = append(r.userRemoved, name+"|"+user)
}

func (r *recordingReporter) SocketJoinedRoom(socketID, name string, localOrigin bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.socketJoined = append(r.socketJoined, fmt.Sprintf("%s|%s|%t", socketID, name, localOrigin))
}

func (r *recordingReporter) SocketLeftRoom(socketID, name string, localOrigin bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.socketLeft = append(r.socketLeft, fmt.Sprintf("%s|%s|%t", socketID, name, localOrigin))
}

func (r *recordingReporter) SocketDisconnected(socketID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = append(r.disconnected, socketID)
}

func (r *recordingReporter) snapshot() (userJoined, userLeft, userRemoved, socketJoined, socketLeft, disconnected []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.userJoined...),
		append([]string(nil), r.userLeft...),
		append([]string(nil), r.userRemoved...),
		append([]string(nil), r.socketJoined...),
		append([]string(nil), r.socketLeft...),
		append([]string(nil), r.disconnected...)
}

// captureSink collects consistency failures for assertions.
type captureSink struct {
	mu       sync.Mutex
	failures []room.Failure
}

func (c *captureSink) ConsistencyFailure(_ context.Context, f room.Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, f)
}

func (c *captureSink) snapshot() []room.Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]room.Failure(nil), c.failures...)
}

func (c *captureSink) kinds() []room.FailureKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]room.FailureKind, len(c.failures))
	for i, f := range c.failures {
		kinds[i] = f.Kind
	}
	return kinds
}

type fixture struct {
	store     *room.MemoryStore
	transport *room.MemoryTransport
	reporter  *recordingReporter
	sink      *captureSink
	locker    *lock.MemoryLocker
	svc       *room.Service
}

func testLocker() *lock.MemoryLocker {
	return lock.NewMemoryLocker(lock.Config{
		AcquireTimeout: 200 * time.Millisecond,
		RetryInterval:  2 * time.Millisecond,
	})
}

func quietLogger() room.Option {
	return room.WithLogger(logger.New(logger.WithOutput(io.Discard)))
}

func newFixture(t *testing.T, opts ...room.Option) *fixture {
	t.Helper()

	f := &fixture{
		store:     room.NewMemoryStore(),
		transport: room.NewMemoryTransport(),
		reporter:  &recordingReporter{},
		sink:      &captureSink{},
		locker:    testLocker(),
	}

	base := []room.Option{
		room.WithStore(f.store),
		room.WithTransport(f.transport),
		room.WithReporter(f.reporter),
		room.WithFailureSink(f.sink),
		room.WithLocker(f.locker),
		quietLogger(),
	}
	f.svc = room.New(append(base, opts...)...)
	return f
}

// connect brings a socket online at the transport and registers it in the
// shared store, the way a connection handler would.
func (f *fixture) connect(t *testing.T, socketID, user string) {
	t.Helper()
	f.transport.Connect(socketID, user)
	require.NoError(t, f.svc.RegisterSocket(context.Background(), socketID))
}
