package room

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	roomCodeLength   = 6
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxRoomMembers   = 6
)

// Member is one connected player inside a room.
type Member struct {
	ID       string
	Name     string
	JoinedAt time.Time
}

// Room is a lobby of players waiting for or playing a game. Members keep
// join order, which becomes seat order when the game starts.
type Room struct {
	ID         string
	Name       string
	HostID     string
	Members    []*Member
	Started    bool
	GameID     string
	CreateTime time.Time
}

// MemberIDs returns member ids in join order.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

func (r *Room) hasMember(memberID string) bool {
	for _, m := range r.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// Manager tracks all rooms and which room each member is in. A member can be
// in at most one room at a time.
type Manager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	memberTo map[string]string // member id -> room id
	rng      *rand.Rand
	logger   *zap.Logger
}

// NewManager creates a room manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		memberTo: make(map[string]string),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger,
	}
}

// CreateRoom creates a room with the creator as host and sole member.
func (m *Manager) CreateRoom(name, hostID, hostName string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if roomID, ok := m.memberTo[hostID]; ok {
		return nil, fmt.Errorf("member %s is already in room %s", hostID, roomID)
	}

	room := &Room{
		ID:         m.newRoomCode(),
		Name:       name,
		HostID:     hostID,
		CreateTime: time.Now().UTC(),
	}
	room.Members = append(room.Members, &Member{
		ID:       hostID,
		Name:     hostName,
		JoinedAt: room.CreateTime,
	})

	m.rooms[room.ID] = room
	m.memberTo[hostID] = room.ID

	m.logger.Info("room created",
		zap.String("room_id", room.ID),
		zap.String("host_id", hostID),
	)
	return room, nil
}

// JoinRoom adds a member to an existing room.
func (m *Manager) JoinRoom(roomID, memberID, memberName string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s not found", roomID)
	}
	if room.Started {
		return nil, fmt.Errorf("room %s has already started", roomID)
	}
	if room.hasMember(memberID) {
		return room, nil
	}
	if current, ok := m.memberTo[memberID]; ok {
		return nil, fmt.Errorf("member %s is already in room %s", memberID, current)
	}
	if len(room.Members) >= maxRoomMembers {
		return nil, fmt.Errorf("room %s is full", roomID)
	}

	room.Members = append(room.Members, &Member{
		ID:       memberID,
		Name:     memberName,
		JoinedAt: time.Now().UTC(),
	})
	m.memberTo[memberID] = roomID

	m.logger.Info("member joined room",
		zap.String("room_id", roomID),
		zap.String("member_id", memberID),
	)
	return room, nil
}

// LeaveRoom removes a member from their room. When the last member leaves
// the room is disbanded; when the host leaves, the oldest remaining member
// becomes host. It returns the room after removal and whether it was
// disbanded.
func (m *Manager) LeaveRoom(memberID string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomID, ok := m.memberTo[memberID]
	if !ok {
		return nil, false
	}
	room := m.rooms[roomID]
	delete(m.memberTo, memberID)

	kept := room.Members[:0]
	for _, member := range room.Members {
		if member.ID != memberID {
			kept = append(kept, member)
		}
	}
	room.Members = kept

	if len(room.Members) == 0 {
		delete(m.rooms, roomID)
		m.logger.Info("room disbanded", zap.String("room_id", roomID))
		return room, true
	}

	if room.HostID == memberID {
		room.HostID = room.Members[0].ID
		m.logger.Info("room host changed",
			zap.String("room_id", roomID),
			zap.String("host_id", room.HostID),
		)
	}
	return room, false
}

// RoomOf returns the room a member currently belongs to.
func (m *Manager) RoomOf(memberID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roomID, ok := m.memberTo[memberID]
	if !ok {
		return nil, false
	}
	room, ok := m.rooms[roomID]
	return room, ok
}

// GetRoom returns a room by id.
func (m *Manager) GetRoom(roomID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[roomID]
	return room, ok
}

// SetStarted marks a room as playing the given game.
func (m *Manager) SetStarted(roomID, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %s not found", roomID)
	}
	room.Started = true
	room.GameID = gameID
	return nil
}

// ResetGame clears a room's game so it can start another one.
func (m *Manager) ResetGame(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[roomID]; ok {
		room.Started = false
		room.GameID = ""
	}
}

// Rooms returns every open room, for lobby listings.
func (m *Manager) Rooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// newRoomCode generates a short join code not currently in use. Caller must
// hold the write lock.
func (m *Manager) newRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeAlphabet[m.rng.Intn(len(roomCodeAlphabet))]
		}
		if _, taken := m.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}
