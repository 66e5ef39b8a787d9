package room_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/roomkit/room"
)

func (f *fixture) listen(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.svc.Listen(ctx)
	// Give the consumer a moment to subscribe before anything publishes.
	time.Sleep(50 * time.Millisecond)
}

func TestService_RemoveSocket(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *fixture {
		t.Helper()
		f := newFixture(t)
		f.connect(t, "s1", "alice")
		f.connect(t, "s2", "alice")

		for _, name := range []string{"a", "b", "c"} {
			_, err := f.svc.Join(ctx, "s1", name, true)
			require.NoError(t, err)
		}
		_, err := f.svc.Join(ctx, "s2", "a", true)
		require.NoError(t, err)
		return f
	}

	t.Run("disconnect finalizes every room", func(t *testing.T) {
		f := setup(t)
		f.transport.Disconnect("s1")

		f.svc.RemoveSocket(ctx, "s1")

		_, userLeft, _, _, socketLeft, disconnected := f.reporter.snapshot()

		// s2 still holds alice's membership in room a, so only b and c see
		// the user leave.
		assert.ElementsMatch(t, []string{"b|alice", "c|alice"}, userLeft)
		assert.ElementsMatch(t, []string{"s1|a|true", "s1|b|true", "s1|c|true"}, socketLeft)
		assert.Equal(t, []string{"s1"}, disconnected)

		_, err := f.store.GetRoom(ctx, "b")
		assert.ErrorIs(t, err, room.ErrRoomNotFound)
		_, err = f.store.GetRoom(ctx, "c")
		assert.ErrorIs(t, err, room.ErrRoomNotFound)

		info, err := f.store.GetRoom(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, info.Members)

		assert.Empty(t, f.sink.snapshot())
	})

	t.Run("duplicate removal reports once and changes nothing", func(t *testing.T) {
		f := setup(t)
		f.transport.Disconnect("s1")
		f.svc.RemoveSocket(ctx, "s1")

		_, _, _, _, socketLeftBefore, disconnectedBefore := f.reporter.snapshot()

		f.svc.RemoveSocket(ctx, "s1")

		assert.Equal(t, []room.FailureKind{room.FailureUserSockets}, f.sink.kinds())

		_, _, _, _, socketLeftAfter, disconnectedAfter := f.reporter.snapshot()
		assert.Equal(t, socketLeftBefore, socketLeftAfter)
		assert.Equal(t, disconnectedBefore, disconnectedAfter)

		// s2's count in room a did not get decremented twice.
		n, _, err := f.store.AddSocketToRoom(ctx, "s2", "a")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestService_RemoveFromRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("evicts every socket of the user", func(t *testing.T) {
		f := newFixture(t)
		f.listen(t)
		f.connect(t, "s1", "alice")
		f.connect(t, "s2", "alice")
		f.connect(t, "s3", "bob")

		for _, id := range []string{"s1", "s2", "s3"} {
			_, err := f.svc.Join(ctx, id, "lobby", true)
			require.NoError(t, err)
		}

		require.NoError(t, f.svc.RemoveFromRoom(ctx, "lobby", "alice"))

		_, _, userRemoved, _, _, _ := f.reporter.snapshot()
		assert.Equal(t, []string{"lobby|alice"}, userRemoved)

		info, err := f.store.GetRoom(ctx, "lobby")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, info.Members)

		u, err := f.store.GetUser(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, u.Rooms)

		// The eviction waits for the acknowledged leave instructions, so the
		// subscriptions are gone by the time it returns.
		assert.False(t, f.transport.Subscribed("s1", "lobby"))
		assert.False(t, f.transport.Subscribed("s2", "lobby"))
		assert.True(t, f.transport.Subscribed("s3", "lobby"))
	})

	t.Run("user with no sockets in the room is silent", func(t *testing.T) {
		f := newFixture(t)
		f.connect(t, "s1", "alice")
		_, err := f.svc.Join(ctx, "s1", "lobby", true)
		require.NoError(t, err)

		require.NoError(t, f.svc.RemoveFromRoom(ctx, "lobby", "bob"))

		_, _, userRemoved, _, _, _ := f.reporter.snapshot()
		assert.Empty(t, userRemoved)

		info, err := f.store.GetRoom(ctx, "lobby")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, info.Members)
	})
}

func TestService_RemoveRoomUsers(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	f.listen(t)
	f.connect(t, "s1", "alice")
	f.connect(t, "s2", "bob")

	_, err := f.svc.Join(ctx, "s1", "lobby", true)
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, "s2", "lobby", true)
	require.NoError(t, err)

	f.svc.RemoveRoomUsers(ctx, "lobby", []string{"alice", "ghost", "bob"})

	_, _, userRemoved, _, _, _ := f.reporter.snapshot()
	assert.ElementsMatch(t, []string{"lobby|alice", "lobby|bob"}, userRemoved)

	// The unknown user is reported, not fatal for the others.
	assert.Equal(t, []room.FailureKind{room.FailureUserSockets}, f.sink.kinds())

	_, err = f.store.GetRoom(ctx, "lobby")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}
