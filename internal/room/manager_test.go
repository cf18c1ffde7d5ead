package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateRoom(t *testing.T) {
	m := NewManager(zap.NewNop())

	room, err := m.CreateRoom("Friday Night", "alice", "Alice")
	require.NoError(t, err)
	assert.Len(t, room.ID, 6)
	assert.Equal(t, "alice", room.HostID)
	require.Len(t, room.Members, 1)
	assert.Equal(t, "Alice", room.Members[0].Name)

	got, ok := m.RoomOf("alice")
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestCreateRoomWhileInAnother(t *testing.T) {
	m := NewManager(zap.NewNop())
	_, err := m.CreateRoom("first", "alice", "Alice")
	require.NoError(t, err)

	_, err = m.CreateRoom("second", "alice", "Alice")
	assert.Error(t, err)
}

func TestJoinRoom(t *testing.T) {
	m := NewManager(zap.NewNop())
	room, err := m.CreateRoom("room", "alice", "Alice")
	require.NoError(t, err)

	joined, err := m.JoinRoom(room.ID, "bob", "Bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, joined.MemberIDs())

	// Joining twice is a no-op.
	again, err := m.JoinRoom(room.ID, "bob", "Bob")
	require.NoError(t, err)
	assert.Len(t, again.Members, 2)
}

func TestJoinRoomRejections(t *testing.T) {
	m := NewManager(zap.NewNop())
	room, err := m.CreateRoom("room", "alice", "Alice")
	require.NoError(t, err)

	_, err = m.JoinRoom("ZZZZZZ", "bob", "Bob")
	assert.Error(t, err, "unknown room")

	require.NoError(t, m.SetStarted(room.ID, "game-1"))
	_, err = m.JoinRoom(room.ID, "bob", "Bob")
	assert.Error(t, err, "started room")
}

func TestJoinRoomFull(t *testing.T) {
	m := NewManager(zap.NewNop())
	room, err := m.CreateRoom("room", "host", "Host")
	require.NoError(t, err)

	for i := 0; i < maxRoomMembers-1; i++ {
		_, err := m.JoinRoom(room.ID, string(rune('a'+i)), "Player")
		require.NoError(t, err)
	}

	_, err = m.JoinRoom(room.ID, "overflow", "Overflow")
	assert.Error(t, err)
}

func TestLeaveRoomPromotesHost(t *testing.T) {
	m := NewManager(zap.NewNop())
	room, err := m.CreateRoom("room", "alice", "Alice")
	require.NoError(t, err)
	_, err = m.JoinRoom(room.ID, "bob", "Bob")
	require.NoError(t, err)

	after, disbanded := m.LeaveRoom("alice")
	require.NotNil(t, after)
	assert.False(t, disbanded)
	assert.Equal(t, "bob", after.HostID)

	_, ok := m.RoomOf("alice")
	assert.False(t, ok)
}

func TestLeaveRoomDisbandsWhenEmpty(t *testing.T) {
	m := NewManager(zap.NewNop())
	room, err := m.CreateRoom("room", "alice", "Alice")
	require.NoError(t, err)

	_, disbanded := m.LeaveRoom("alice")
	assert.True(t, disbanded)

	_, ok := m.GetRoom(room.ID)
	assert.False(t, ok)
	assert.Empty(t, m.Rooms())
}

func TestLeaveRoomNotInRoom(t *testing.T) {
	m := NewManager(zap.NewNop())
	after, disbanded := m.LeaveRoom("ghost")
	assert.Nil(t, after)
	assert.False(t, disbanded)
}

func TestRoomsListing(t *testing.T) {
	m := NewManager(zap.NewNop())
	_, err := m.CreateRoom("one", "alice", "Alice")
	require.NoError(t, err)
	_, err = m.CreateRoom("two", "bob", "Bob")
	require.NoError(t, err)

	assert.Len(t, m.Rooms(), 2)
}
