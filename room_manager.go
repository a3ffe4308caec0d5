// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"context"
	"sync"
	"time"
)

type ManagerOption func(*RoomManager) error

func WithManagerRoomConfig(config RoomConfig) ManagerOption {
	return func(m *RoomManager) error {
		if err := config.Validate(); err != nil {
			return err
		}
		m.roomConfig = config
		return nil
	}
}

func WithManagerLogger(logger *LoggerConfig) ManagerOption {
	return func(m *RoomManager) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

func WithManagerSerializer(serializer Serializer) ManagerOption {
	return func(m *RoomManager) error {
		if serializer == nil {
			return ErrSerializerNil
		}
		m.serializer = serializer
		return nil
	}
}

// WithMapGenerator replaces the map every new room starts with.
func WithMapGenerator(generate func() Grid) ManagerOption {
	return func(m *RoomManager) error {
		if generate != nil {
			m.generateMap = generate
		}
		return nil
	}
}

func WithManagerRandom(rng RandomSource) ManagerOption {
	return func(m *RoomManager) error {
		if rng != nil {
			m.rng = rng
		}
		return nil
	}
}

// RoomManager keeps the live rooms of the process and hands new connections
// to a room that still accepts players.
type RoomManager struct {
	rooms       *SharedCollection[*Room, string]
	roomConfig  RoomConfig
	logger      *LoggerConfig
	serializer  Serializer
	rng         RandomSource
	generateMap func() Grid

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	mu     sync.Mutex
}

func NewRoomManager(options ...ManagerOption) (*RoomManager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &RoomManager{
		rooms:       NewSharedCollection[*Room, string](),
		roomConfig:  DefaultRoomConfig(),
		logger:      DefaultLoggerConfig(),
		serializer:  JSONSerializer{},
		rng:         DefaultRandom,
		generateMap: GenerateMap,
		ctx:         ctx,
		cancel:      cancel,
	}

	for _, o := range options {
		if err := o(m); err != nil {
			cancel()
			return nil, err
		}
	}

	return m, nil
}

func (m *RoomManager) RoomConfig() RoomConfig {
	return m.roomConfig
}

func (m *RoomManager) Serializer() Serializer {
	return m.serializer
}

// FindAvailableRoom returns the oldest room that is still waiting and has a
// free seat, creating a room when there is none.
func (m *RoomManager) FindAvailableRoom() (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrNoRoomAvailable
	}

	for _, room := range m.rooms.Values() {
		if room.Closed() {
			continue
		}
		if room.Status() == StatusWaiting && room.RegisteredCount() < m.roomConfig.MaxPlayers {
			return room, nil
		}
	}

	return m.createRoom(), nil
}

func (m *RoomManager) createRoom() *Room {
	id := GenerateRoomID()
	for m.rooms.Has(id) {
		id = GenerateRoomID()
	}

	room := NewRoom(id, m.generateMap(),
		WithRoomConfig(m.roomConfig),
		WithRoomLogger(m.logger),
		WithRoomSerializer(m.serializer),
		WithRoomRandom(m.rng),
		WithRetireFunc(m.remove),
	)
	m.rooms.Add(room, id)

	SafeGoroutine(m.logger, "Room "+id, func() {
		room.Run(m.ctx)
	})

	m.logger.Log(LogTypeRoom, LogLevelInfo, "Room %s created (rooms: %d)", id, m.rooms.Len())
	return room
}

// remove runs on the room's own goroutine after it shut down.
func (m *RoomManager) remove(room *Room) {
	if m.rooms.Remove(room.ID()) {
		m.logger.Log(LogTypeRoom, LogLevelInfo, "Room %s removed (rooms: %d)", room.ID(), m.rooms.Len())
	}
}

func (m *RoomManager) Room(id string) (*Room, bool) {
	return m.rooms.Get(id)
}

// Rooms returns the live rooms, oldest first.
func (m *RoomManager) Rooms() []*Room {
	return m.rooms.Values()
}

func (m *RoomManager) Len() int {
	return m.rooms.Len()
}

func (m *RoomManager) Stats() ManagerStats {
	stats := ManagerStats{Timestamp: time.Now()}
	for _, room := range m.rooms.Values() {
		rs := room.Stat()
		stats.TotalClients += rs.ClientCount
		stats.RegisteredPlayers += rs.RegisteredCount
		stats.Rooms = append(stats.Rooms, rs)
	}
	stats.TotalRooms = len(stats.Rooms)
	return stats
}

// Shutdown stops every room and waits for them to finish or for ctx to
// expire. The manager creates no rooms afterwards.
func (m *RoomManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	rooms := m.rooms.Values()
	m.cancel()
	m.mu.Unlock()

	m.logger.Log(LogTypeServer, LogLevelInfo, "Shutting down %d rooms", len(rooms))

	for _, room := range rooms {
		select {
		case <-room.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
