// Package room is the room-membership coordination core of a
// horizontally-scaled realtime chat service. Multiple server instances share
// membership state through a common store and a cluster event bus; each
// instance also owns the transport-layer channel subscriptions for the
// sockets connected to it. The package keeps those three views — room
// roster, shared membership index, local channel subscriptions — mutually
// consistent despite partial failures, concurrent operations on the same
// room from different instances, and sockets disconnecting at arbitrary
// times.
//
// The consistency model is compensation, not atomicity. Operations on one
// room are serialized cluster-wide by a TTL-bounded distributed lock; within
// an operation the independent mutations run concurrently, and a partial
// join is rolled back while partial leaves and cleanups are completed
// best-effort with every observed mismatch funneled through one structured
// consistency-failure reporting path.
//
//	svc := room.New(
//	    room.WithTransport(transport),
//	    room.WithStore(room.NewRedisStore(client, instanceID, storeCfg)),
//	    room.WithLocker(lock.NewRedisLocker(client, lockCfg)),
//	    room.WithBus(bus.NewRedisBus(client, busCfg)),
//	    room.WithReporter(reporter),
//	)
//	go svc.Listen(ctx)
//
//	njoined, err := svc.Join(ctx, socketID, "lobby", true)
//
// Join failures propagate to the caller after compensation; Leave,
// RemoveSocket, RemoveFromRoom and RemoveRoomUsers are best-effort cleanup
// paths that absorb sub-step failures, because blocking a disconnecting
// socket is worse than a transient, reported inconsistency.
//
// All collaborators default to in-process implementations (MemoryStore,
// MemoryLocker, MemoryBus), which makes a single-instance deployment — and
// the test suite — run without any external backend.
package room
