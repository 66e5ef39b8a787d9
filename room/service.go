package room

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/roomkit/pkg/async"
	"github.com/dmitrymomot/roomkit/pkg/bus"
	"github.com/dmitrymomot/roomkit/pkg/lock"
)

// Service is the room-membership coordination core: the join/leave state
// machine for a single socket plus the bulk operations built on it. It keeps
// three independently-updatable pieces of state consistent — the room
// roster, the shared membership index, and the local transport's channel
// subscriptions — despite partial failures and concurrent operations on the
// same room from different instances.
type Service struct {
	store     Store
	transport Transport
	locker    lock.Locker
	bus       bus.Bus
	reporter  Reporter
	sink      FailureSink
	notifier  *Notifier
	recovery  *recovery
	log       *slog.Logger
	cfg       Config
}

// Option configures the service.
type Option func(*Service)

// WithStore sets the shared store. Defaults to an in-process MemoryStore.
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithTransport sets the local transport layer. Required.
func WithTransport(t Transport) Option {
	return func(s *Service) { s.transport = t }
}

// WithLocker sets the distributed room locker. Defaults to an in-process
// MemoryLocker, which is only safe when a single instance runs.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithBus sets the cluster event bus. Defaults to an in-process MemoryBus.
func WithBus(b bus.Bus) Option {
	return func(s *Service) { s.bus = b }
}

// WithReporter sets the membership notification emitter. Defaults to
// NopReporter.
func WithReporter(r Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithFailureSink sets the consistency-failure sink. Defaults to a LogSink
// on the service logger.
func WithFailureSink(sink FailureSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithConfig overrides the default timings and limits.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// WithLogger sets the service logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New creates a membership service. A transport is required; every other
// collaborator defaults to its in-process implementation so a
// single-instance deployment works out of the box.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:      DefaultConfig(),
		reporter: NopReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.transport == nil {
		// Fail fast on misconfiguration; a membership core without a
		// transport cannot do anything meaningful.
		panic("room: transport is required")
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	if s.locker == nil {
		s.locker = lock.NewMemoryLocker(lock.DefaultConfig())
	}
	if s.bus == nil {
		s.bus = bus.NewMemoryBus(bus.DefaultConfig().BufferSize)
	}
	if s.sink == nil {
		s.sink = NewLogSink(s.log)
	}
	if s.cfg.LockTTL <= 0 {
		s.cfg.LockTTL = DefaultConfig().LockTTL
	}
	if s.cfg.FanoutLimit <= 0 {
		s.cfg.FanoutLimit = DefaultConfig().FanoutLimit
	}

	s.recovery = &recovery{store: s.store, sink: s.sink}
	s.notifier = NewNotifier(s.bus, s.transport, s.log, s.cfg)

	return s
}

// Listen runs the cluster leave-instruction consumer until the context is
// cancelled. Every instance must run this in a goroutine for cross-instance
// socket removal to work.
func (s *Service) Listen(ctx context.Context) {
	s.notifier.Listen(ctx)
}

// RegisterSocket records a connecting socket in the shared store. The
// transport must already own the connection; otherwise ErrNoSocket is
// returned and nothing is registered.
func (s *Service) RegisterSocket(ctx context.Context, socketID string) error {
	sock, ok := s.transport.GetSocket(socketID)
	if !ok {
		return ErrNoSocket
	}
	return s.store.AddSocket(ctx, socketID, sock.User())
}

type joinCounts struct {
	njoined    int
	hasChanged bool
}

// Join adds the socket to the room and returns the user's socket count in
// the room after the join. The whole operation runs under the room's
// distributed lock. The roster is updated first (idempotently), then the
// configuration read, the membership increment and the transport
// subscription run concurrently; if any of the three fails the increment is
// compensated and the error is returned to the caller.
func (s *Service) Join(ctx context.Context, socketID, name string, localOrigin bool) (int, error) {
	sock, ok := s.transport.GetSocket(socketID)
	if !ok {
		return 0, ErrNoSocket
	}
	user := sock.User()

	l, err := s.locker.Acquire(ctx, name, s.cfg.LockTTL)
	if err != nil {
		return 0, err
	}
	defer l.Release(ctx)

	if err := s.store.AddRoomMember(ctx, name, user); err != nil {
		return 0, err
	}

	cfgF := async.Go(ctx, func(ctx context.Context) (Room, error) {
		return s.store.GetRoom(ctx, name)
	})
	incF := async.Go(ctx, func(ctx context.Context) (joinCounts, error) {
		njoined, hasChanged, err := s.store.AddSocketToRoom(ctx, socketID, name)
		return joinCounts{njoined: njoined, hasChanged: hasChanged}, err
	})
	subF := async.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transport.JoinChannel(ctx, socketID, name)
	})

	info, cfgErr := cfgF.Await()
	counts, incErr := incF.Await()
	_, subErr := subF.Await()

	if err := firstError(cfgErr, incErr, subErr); err != nil {
		return 0, s.recovery.compensateJoin(ctx, err, name, user, socketID)
	}

	// hasChanged is authoritative for report emission; njoined is payload.
	if counts.hasChanged && info.UserlistUpdates {
		s.reporter.UserJoinedRoom(name, user)
	}
	s.reporter.SocketJoinedRoom(socketID, name, localOrigin)

	return counts.njoined, nil
}

// Leave removes the socket from the room and returns the user's remaining
// socket count in the room. Sub-step failures are absorbed and reported as
// consistency failures rather than propagated: a disconnecting socket must
// never be blocked indefinitely by secondary-state mismatches. Only a
// missing socket registration or a lock timeout fails the call.
func (s *Service) Leave(ctx context.Context, socketID, name string, localOrigin bool) (int, error) {
	user, err := s.store.SocketUser(ctx, socketID)
	if err != nil {
		return 0, err
	}

	l, err := s.locker.Acquire(ctx, name, s.cfg.LockTTL)
	if err != nil {
		return 0, err
	}
	defer l.Release(ctx)

	cfgF := async.Go(ctx, func(ctx context.Context) (Room, error) {
		return s.store.GetRoom(ctx, name)
	})
	decF := async.Go(ctx, func(ctx context.Context) (joinCounts, error) {
		njoined, hasChanged, err := s.store.RemoveSocketFromRoom(ctx, socketID, name)
		return joinCounts{njoined: njoined, hasChanged: hasChanged}, err
	})
	subF := async.Go(ctx, func(ctx context.Context) (struct{}, error) {
		err := s.transport.LeaveChannel(ctx, socketID, name)
		s.notifier.NotifyLeave(ctx, socketID, name, false)
		return struct{}{}, err
	})

	info, cfgErr := cfgF.Await()
	counts, decErr := decF.Await()
	_, subErr := subF.Await()

	if cfgErr != nil {
		s.recovery.report(ctx, Failure{Kind: FailureRoomUserlist, Room: name, User: user, SocketID: socketID, Err: cfgErr})
	}
	if decErr != nil {
		s.recovery.report(ctx, Failure{Kind: FailureUserRooms, Room: name, User: user, SocketID: socketID, Err: decErr})
	}
	if subErr != nil {
		s.recovery.report(ctx, Failure{Kind: FailureTransportChannel, Room: name, User: user, SocketID: socketID, Err: subErr})
	}

	if decErr == nil && counts.njoined == 0 {
		if err := s.store.RemoveRoomMember(ctx, name, user); err != nil {
			s.recovery.report(ctx, Failure{Kind: FailureRoomUserlist, Room: name, User: user, SocketID: socketID, Err: err})
		}
	}

	if decErr == nil && counts.hasChanged {
		if cfgErr == nil && info.UserlistUpdates {
			s.reporter.UserLeftRoom(name, user)
		}
		s.reporter.SocketLeftRoom(socketID, name, localOrigin)
	}

	return counts.njoined, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
