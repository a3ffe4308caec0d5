package bombarena

import (
	"time"
)

type RoomStat struct {
	ID              string     `json:"id"`
	Status          RoomStatus `json:"status"`
	ClientCount     int        `json:"client_count"`
	RegisteredCount int        `json:"registered_count"`
	CreatedAt       time.Time  `json:"created_at,omitempty"`
}

type ManagerStats struct {
	TotalRooms        int        `json:"total_rooms"`
	TotalClients      int        `json:"total_clients"`
	RegisteredPlayers int        `json:"registered_players"`
	Rooms             []RoomStat `json:"rooms"`
	Timestamp         time.Time  `json:"timestamp"`
}

type Stats struct {
	// Connections
	ActiveConnections int            `json:"active_connections"`
	ConnectionsPerIP  map[string]int `json:"connections_per_ip,omitempty"`

	// Rooms
	ManagerStats

	// Meta
	Uptime time.Duration `json:"uptime"`
}

func (r *Room) Stat() RoomStat {
	return RoomStat{
		ID:              r.id,
		Status:          r.Status(),
		ClientCount:     r.ClientCount(),
		RegisteredCount: r.RegisteredCount(),
		CreatedAt:       r.createdAt,
	}
}
