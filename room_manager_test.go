package bombarena

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, options ...ManagerOption) *RoomManager {
	t.Helper()

	opts := append([]ManagerOption{
		WithManagerRoomConfig(lobbyConfig()),
		WithManagerLogger(NullLoggerConfig()),
		WithMapGenerator(openArena),
	}, options...)
	m, err := NewRoomManager(opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		defer cancel()
		_ = m.Shutdown(ctx)
	})
	return m
}

func TestNewRoomManager_Options(t *testing.T) {
	tests := []struct {
		name    string
		option  ManagerOption
		wantErr error
	}{
		{"invalid room config", WithManagerRoomConfig(RoomConfig{}), ErrInvalidMaxPlayers},
		{"nil logger", WithManagerLogger(nil), ErrLoggerNil},
		{"nil serializer", WithManagerSerializer(nil), ErrSerializerNil},
		{"nil map generator keeps default", WithMapGenerator(nil), nil},
		{"nil random keeps default", WithManagerRandom(nil), nil},
		{"msgpack", WithManagerSerializer(MessagePackSerializer{}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewRoomManager(tt.option)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, m.generateMap)
			assert.NotNil(t, m.rng)
		})
	}
}

func TestRoomManager_ReusesWaitingRoom(t *testing.T) {
	m := newTestManager(t)

	first, err := m.FindAvailableRoom()
	require.NoError(t, err)
	second, err := m.FindAvailableRoom()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Len())
	assert.Regexp(t, `^room_[0-9a-f]{8}$`, first.ID())

	got, ok := m.Room(first.ID())
	assert.True(t, ok)
	assert.Same(t, first, got)
}

func TestRoomManager_SkipsRoomInCountdown(t *testing.T) {
	m := newTestManager(t)

	first, err := m.FindAvailableRoom()
	require.NoError(t, err)
	registerPlayers(t, first, "alice", "bob")
	require.Eventually(t, func() bool { return first.Status() == StatusCountdown }, waitFor, time.Millisecond)

	second, err := m.FindAvailableRoom()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, []*Room{first, second}, m.Rooms())
}

func TestRoomManager_SkipsFullRoom(t *testing.T) {
	cfg := lobbyConfig()
	cfg.MaxPlayers = 2
	m := newTestManager(t, WithManagerRoomConfig(cfg))

	first, err := m.FindAvailableRoom()
	require.NoError(t, err)
	registerPlayers(t, first, "alice", "bob")

	second, err := m.FindAvailableRoom()
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	// the oldest open room wins over newer ones
	third, err := m.FindAvailableRoom()
	require.NoError(t, err)
	assert.Same(t, second, third)
}

func TestRoomManager_RemovesRetiredRoom(t *testing.T) {
	m := newTestManager(t)

	room, err := m.FindAvailableRoom()
	require.NoError(t, err)

	c := joinClient(t, room, "client_a")
	room.Leave(c)

	<-room.Done()
	assert.Eventually(t, func() bool { return m.Len() == 0 }, waitFor, time.Millisecond)
	_, ok := m.Room(room.ID())
	assert.False(t, ok)

	next, err := m.FindAvailableRoom()
	require.NoError(t, err)
	assert.NotEqual(t, room.ID(), next.ID())
}

func TestRoomManager_MapGeneratorPerRoom(t *testing.T) {
	var calls atomic.Int32
	cfg := lobbyConfig()
	cfg.MaxPlayers = 2
	m := newTestManager(t, WithManagerRoomConfig(cfg), WithMapGenerator(func() Grid {
		calls.Add(1)
		return openArena()
	}))

	first, err := m.FindAvailableRoom()
	require.NoError(t, err)
	_, err = m.FindAvailableRoom()
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())

	registerPlayers(t, first, "alice", "bob")
	_, err = m.FindAvailableRoom()
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestRoomManager_Stats(t *testing.T) {
	m := newTestManager(t)

	room, err := m.FindAvailableRoom()
	require.NoError(t, err)
	registerPlayers(t, room, "alice")
	joinClient(t, room, "client_lurker")

	require.Eventually(t, func() bool { return room.ClientCount() == 2 }, waitFor, time.Millisecond)

	stats := m.Stats()
	assert.Equal(t, 1, stats.TotalRooms)
	assert.Equal(t, 2, stats.TotalClients)
	assert.Equal(t, 1, stats.RegisteredPlayers)
	require.Len(t, stats.Rooms, 1)
	assert.Equal(t, room.ID(), stats.Rooms[0].ID)
	assert.Equal(t, StatusWaiting, stats.Rooms[0].Status)
	assert.False(t, stats.Timestamp.IsZero())
}

func TestRoomManager_Shutdown(t *testing.T) {
	cfg := lobbyConfig()
	cfg.MaxPlayers = 2
	m := newTestManager(t, WithManagerRoomConfig(cfg))

	first, err := m.FindAvailableRoom()
	require.NoError(t, err)
	clients := registerPlayers(t, first, "alice", "bob")
	second, err := m.FindAvailableRoom()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))

	assert.True(t, first.Closed())
	assert.True(t, second.Closed())
	for _, c := range clients {
		expectClosed(t, c)
	}

	_, err = m.FindAvailableRoom()
	assert.ErrorIs(t, err, ErrNoRoomAvailable)
	assert.NoError(t, m.Shutdown(ctx), "a second shutdown is a no-op")
}
