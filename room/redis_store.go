package room

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a shared redis backend. All instances of
// the service point at the same redis, which makes it the cluster's source
// of truth for rosters and membership counts.
//
// Key schema under the configured prefix:
//
//	room:<name>:users        roster set of user names
//	room:<name>:opts         hash of room configuration
//	presence:<name>:<user>   set of the user's socket ids in the room
//	socket:<id>              hash: user, instance
//	socket:<id>:rooms        set of rooms the socket has joined
//	user:<name>:sockets      set of the user's socket ids
//
// Cross-key consistency is protected by the per-room lock held by callers,
// not by transactions, so every mutation stays cheap and single-roundtrip
// where possible.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	instanceID string
}

const userlistUpdatesField = "userlist_updates"

// NewRedisStore creates a Store backed by the given redis client. The
// instanceID scopes socket registrations to the owning server instance and
// must be unique per process.
func NewRedisStore(client redis.UniversalClient, instanceID string, cfg StoreConfig) *RedisStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultStoreConfig().KeyPrefix
	}
	return &RedisStore{
		client:     client,
		prefix:     cfg.KeyPrefix,
		instanceID: instanceID,
	}
}

func (s *RedisStore) rosterKey(name string) string { return s.prefix + "room:" + name + ":users" }
func (s *RedisStore) optsKey(name string) string   { return s.prefix + "room:" + name + ":opts" }

func (s *RedisStore) presenceKey(name, user string) string {
	return s.prefix + "presence:" + name + ":" + user
}

func (s *RedisStore) socketKey(id string) string        { return s.prefix + "socket:" + id }
func (s *RedisStore) socketRoomsKey(id string) string   { return s.prefix + "socket:" + id + ":rooms" }
func (s *RedisStore) userSocketsKey(user string) string { return s.prefix + "user:" + user + ":sockets" }

func (s *RedisStore) GetRoom(ctx context.Context, name string) (Room, error) {
	updates, err := s.client.HGet(ctx, s.optsKey(name), userlistUpdatesField).Result()
	if errors.Is(err, redis.Nil) {
		return Room{}, ErrRoomNotFound
	}
	if err != nil {
		return Room{}, fmt.Errorf("redis store: get room %q: %w", name, err)
	}

	members, err := s.client.SMembers(ctx, s.rosterKey(name)).Result()
	if err != nil {
		return Room{}, fmt.Errorf("redis store: room %q roster: %w", name, err)
	}
	sort.Strings(members)

	return Room{Name: name, Members: members, UserlistUpdates: updates == "1"}, nil
}

func (s *RedisStore) GetUser(ctx context.Context, name string) (User, error) {
	socketIDs, err := s.client.SMembers(ctx, s.userSocketsKey(name)).Result()
	if err != nil {
		return User{}, fmt.Errorf("redis store: user %q sockets: %w", name, err)
	}
	if len(socketIDs) == 0 {
		return User{}, ErrUserNotFound
	}
	sort.Strings(socketIDs)

	roomSet := make(map[string]struct{})
	for _, id := range socketIDs {
		rooms, err := s.client.SMembers(ctx, s.socketRoomsKey(id)).Result()
		if err != nil {
			return User{}, fmt.Errorf("redis store: socket %q rooms: %w", id, err)
		}
		for _, r := range rooms {
			roomSet[r] = struct{}{}
		}
	}

	rooms := make([]string, 0, len(roomSet))
	for r := range roomSet {
		rooms = append(rooms, r)
	}
	sort.Strings(rooms)

	return User{Name: name, SocketIDs: socketIDs, Rooms: rooms}, nil
}

func (s *RedisStore) CreateRoom(ctx context.Context, name string, userlistUpdates bool) error {
	val := "0"
	if userlistUpdates {
		val = "1"
	}
	if err := s.client.HSet(ctx, s.optsKey(name), userlistUpdatesField, val).Err(); err != nil {
		return fmt.Errorf("redis store: create room %q: %w", name, err)
	}
	return nil
}

func (s *RedisStore) AddRoomMember(ctx context.Context, name, user string) error {
	pipe := s.client.TxPipeline()
	// Lazy creation on first join; userlist updates default to enabled.
	pipe.HSetNX(ctx, s.optsKey(name), userlistUpdatesField, "1")
	pipe.SAdd(ctx, s.rosterKey(name), user)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store: add member %q to room %q: %w", user, name, err)
	}
	return nil
}

func (s *RedisStore) RemoveRoomMember(ctx context.Context, name, user string) error {
	if err := s.client.SRem(ctx, s.rosterKey(name), user).Err(); err != nil {
		return fmt.Errorf("redis store: remove member %q from room %q: %w", user, name, err)
	}

	left, err := s.client.SCard(ctx, s.rosterKey(name)).Result()
	if err != nil {
		return fmt.Errorf("redis store: room %q roster size: %w", name, err)
	}
	if left == 0 {
		if err := s.client.Del(ctx, s.rosterKey(name), s.optsKey(name)).Err(); err != nil {
			return fmt.Errorf("redis store: drop empty room %q: %w", name, err)
		}
	}
	return nil
}

func (s *RedisStore) AddSocket(ctx context.Context, socketID, user string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.socketKey(socketID), "user", user, "instance", s.instanceID)
	pipe.SAdd(ctx, s.userSocketsKey(user), socketID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store: add socket %q: %w", socketID, err)
	}
	return nil
}

func (s *RedisStore) SocketUser(ctx context.Context, socketID string) (string, error) {
	user, err := s.client.HGet(ctx, s.socketKey(socketID), "user").Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSocketNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis store: socket %q user: %w", socketID, err)
	}
	return user, nil
}

func (s *RedisStore) RemoveSocket(ctx context.Context, socketID string) (RemovedSocket, error) {
	user, err := s.SocketUser(ctx, socketID)
	if err != nil {
		return RemovedSocket{}, err
	}

	rooms, err := s.client.SMembers(ctx, s.socketRoomsKey(socketID)).Result()
	if err != nil {
		return RemovedSocket{}, fmt.Errorf("redis store: socket %q rooms: %w", socketID, err)
	}
	sort.Strings(rooms)

	remaining := make(map[string]int, len(rooms))
	for _, name := range rooms {
		pipe := s.client.TxPipeline()
		pipe.SRem(ctx, s.presenceKey(name, user), socketID)
		card := pipe.SCard(ctx, s.presenceKey(name, user))
		if _, err := pipe.Exec(ctx); err != nil {
			return RemovedSocket{}, fmt.Errorf("redis store: remove socket %q from room %q: %w", socketID, name, err)
		}
		remaining[name] = int(card.Val())
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.socketRoomsKey(socketID))
	pipe.SRem(ctx, s.userSocketsKey(user), socketID)
	conns := pipe.SCard(ctx, s.userSocketsKey(user))
	pipe.Del(ctx, s.socketKey(socketID))
	if _, err := pipe.Exec(ctx); err != nil {
		return RemovedSocket{}, fmt.Errorf("redis store: forget socket %q: %w", socketID, err)
	}

	return RemovedSocket{
		User:        user,
		Rooms:       rooms,
		Remaining:   remaining,
		Connections: int(conns.Val()),
	}, nil
}

func (s *RedisStore) AddSocketToRoom(ctx context.Context, socketID, name string) (int, bool, error) {
	user, err := s.SocketUser(ctx, socketID)
	if err != nil {
		return 0, false, err
	}

	pipe := s.client.TxPipeline()
	added := pipe.SAdd(ctx, s.presenceKey(name, user), socketID)
	pipe.SAdd(ctx, s.socketRoomsKey(socketID), name)
	njoined := pipe.SCard(ctx, s.presenceKey(name, user))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, false, fmt.Errorf("redis store: add socket %q to room %q: %w", socketID, name, err)
	}

	n := int(njoined.Val())
	return n, added.Val() == 1 && n == 1, nil
}

func (s *RedisStore) RemoveSocketFromRoom(ctx context.Context, socketID, name string) (int, bool, error) {
	user, err := s.SocketUser(ctx, socketID)
	if err != nil {
		return 0, false, err
	}

	pipe := s.client.TxPipeline()
	removed := pipe.SRem(ctx, s.presenceKey(name, user), socketID)
	pipe.SRem(ctx, s.socketRoomsKey(socketID), name)
	njoined := pipe.SCard(ctx, s.presenceKey(name, user))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, false, fmt.Errorf("redis store: remove socket %q from room %q: %w", socketID, name, err)
	}

	n := int(njoined.Val())
	return n, removed.Val() == 1 && n == 0, nil
}

func (s *RedisStore) RemoveAllSocketsFromRoom(ctx context.Context, name, user string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.presenceKey(name, user)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: room %q presence of %q: %w", name, user, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.SRem(ctx, s.socketRoomsKey(id), name)
	}
	pipe.Del(ctx, s.presenceKey(name, user))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis store: evict %q from room %q: %w", user, name, err)
	}

	sort.Strings(ids)
	return ids, nil
}
