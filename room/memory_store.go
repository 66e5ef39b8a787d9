package room

import (
	"context"
	"sort"
	"sync"
)

type memoryRoom struct {
	members         map[string]struct{}
	userlistUpdates bool
}

// MemoryStore implements Store in process memory. It honors the same
// contract as RedisStore and backs tests and single-instance deployments.
type MemoryStore struct {
	mu          sync.RWMutex
	rooms       map[string]*memoryRoom
	socketUser  map[string]string
	socketRooms map[string]map[string]struct{}
	userSockets map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:       make(map[string]*memoryRoom),
		socketUser:  make(map[string]string),
		socketRooms: make(map[string]map[string]struct{}),
		userSockets: make(map[string]map[string]struct{}),
	}
}

// njoined counts the user's sockets currently joined to the room.
// Callers must hold the mutex.
func (s *MemoryStore) njoined(name, user string) int {
	n := 0
	for socketID := range s.userSockets[user] {
		if _, in := s.socketRooms[socketID][name]; in {
			n++
		}
	}
	return n
}

func (s *MemoryStore) GetRoom(_ context.Context, name string) (Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.rooms[name]
	if !ok {
		return Room{}, ErrRoomNotFound
	}

	members := make([]string, 0, len(rec.members))
	for m := range rec.members {
		members = append(members, m)
	}
	sort.Strings(members)

	return Room{Name: name, Members: members, UserlistUpdates: rec.userlistUpdates}, nil
}

func (s *MemoryStore) GetUser(_ context.Context, name string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sockets, ok := s.userSockets[name]
	if !ok || len(sockets) == 0 {
		return User{}, ErrUserNotFound
	}

	socketIDs := make([]string, 0, len(sockets))
	roomSet := make(map[string]struct{})
	for id := range sockets {
		socketIDs = append(socketIDs, id)
		for r := range s.socketRooms[id] {
			roomSet[r] = struct{}{}
		}
	}
	sort.Strings(socketIDs)

	rooms := make([]string, 0, len(roomSet))
	for r := range roomSet {
		rooms = append(rooms, r)
	}
	sort.Strings(rooms)

	return User{Name: name, SocketIDs: socketIDs, Rooms: rooms}, nil
}

func (s *MemoryStore) CreateRoom(_ context.Context, name string, userlistUpdates bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.rooms[name]; ok {
		rec.userlistUpdates = userlistUpdates
		return nil
	}
	s.rooms[name] = &memoryRoom{
		members:         make(map[string]struct{}),
		userlistUpdates: userlistUpdates,
	}
	return nil
}

func (s *MemoryStore) AddRoomMember(_ context.Context, name, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rooms[name]
	if !ok {
		// Lazy creation on first join; userlist updates default to enabled.
		rec = &memoryRoom{
			members:         make(map[string]struct{}),
			userlistUpdates: true,
		}
		s.rooms[name] = rec
	}
	rec.members[user] = struct{}{}
	return nil
}

func (s *MemoryStore) RemoveRoomMember(_ context.Context, name, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rooms[name]
	if !ok {
		return nil
	}
	delete(rec.members, user)
	if len(rec.members) == 0 {
		delete(s.rooms, name)
	}
	return nil
}

func (s *MemoryStore) AddSocket(_ context.Context, socketID, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.socketUser[socketID] = user
	if s.userSockets[user] == nil {
		s.userSockets[user] = make(map[string]struct{})
	}
	s.userSockets[user][socketID] = struct{}{}
	if s.socketRooms[socketID] == nil {
		s.socketRooms[socketID] = make(map[string]struct{})
	}
	return nil
}

func (s *MemoryStore) SocketUser(_ context.Context, socketID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.socketUser[socketID]
	if !ok {
		return "", ErrSocketNotFound
	}
	return user, nil
}

func (s *MemoryStore) RemoveSocket(_ context.Context, socketID string) (RemovedSocket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.socketUser[socketID]
	if !ok {
		return RemovedSocket{}, ErrSocketNotFound
	}

	rooms := make([]string, 0, len(s.socketRooms[socketID]))
	for r := range s.socketRooms[socketID] {
		rooms = append(rooms, r)
	}
	sort.Strings(rooms)

	delete(s.socketRooms, socketID)
	delete(s.userSockets[user], socketID)
	delete(s.socketUser, socketID)

	remaining := make(map[string]int, len(rooms))
	for _, r := range rooms {
		remaining[r] = s.njoined(r, user)
	}

	connections := len(s.userSockets[user])
	if connections == 0 {
		delete(s.userSockets, user)
	}

	return RemovedSocket{
		User:        user,
		Rooms:       rooms,
		Remaining:   remaining,
		Connections: connections,
	}, nil
}

func (s *MemoryStore) AddSocketToRoom(_ context.Context, socketID, name string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.socketUser[socketID]
	if !ok {
		return 0, false, ErrSocketNotFound
	}

	before := s.njoined(name, user)
	if _, in := s.socketRooms[socketID][name]; in {
		return before, false, nil
	}
	s.socketRooms[socketID][name] = struct{}{}

	return before + 1, before == 0, nil
}

func (s *MemoryStore) RemoveSocketFromRoom(_ context.Context, socketID, name string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.socketUser[socketID]
	if !ok {
		return 0, false, ErrSocketNotFound
	}

	if _, in := s.socketRooms[socketID][name]; !in {
		// No-op removal keeps compensation of a never-applied increment safe.
		return s.njoined(name, user), false, nil
	}
	delete(s.socketRooms[socketID], name)

	after := s.njoined(name, user)
	return after, after == 0, nil
}

func (s *MemoryStore) RemoveAllSocketsFromRoom(_ context.Context, name, user string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for socketID := range s.userSockets[user] {
		if _, in := s.socketRooms[socketID][name]; in {
			delete(s.socketRooms[socketID], name)
			removed = append(removed, socketID)
		}
	}
	sort.Strings(removed)
	return removed, nil
}
