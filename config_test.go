package bombarena

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoomConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*RoomConfig)
		expected error
	}{
		{"defaults", func(*RoomConfig) {}, nil},
		{"two players", func(c *RoomConfig) { c.MaxPlayers = 2 }, nil},
		{"one player", func(c *RoomConfig) { c.MaxPlayers = 1 }, ErrInvalidMaxPlayers},
		{"more players than corners", func(c *RoomConfig) { c.MaxPlayers = 5 }, ErrInvalidMaxPlayers},
		{"zero countdown", func(c *RoomConfig) { c.ShortCountdown = 0 }, nil},
		{"negative countdown", func(c *RoomConfig) { c.FullCountdown = -1 }, ErrInvalidCountdown},
		{"zero tick", func(c *RoomConfig) { c.TickInterval = 0 }, ErrInvalidTickInterval},
		{"zero fuse", func(c *RoomConfig) { c.BombFuse = 0 }, ErrInvalidBombFuse},
		{"no lives", func(c *RoomConfig) { c.StartingLives = 0 }, ErrInvalidStartingLives},
		{"no inbound buffer", func(c *RoomConfig) { c.InboundBufSize = 0 }, ErrBufferSizeLessThanOne},
		{"no outbound buffer", func(c *RoomConfig) { c.MessageChanBufSize = 0 }, ErrBufferSizeLessThanOne},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRoomConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestDefaultConfigs(t *testing.T) {
	room := DefaultRoomConfig()
	assert.Equal(t, 4, room.MaxPlayers)
	assert.Equal(t, 2, room.ShortCountdown)
	assert.Equal(t, 10, room.FullCountdown)
	assert.Equal(t, time.Second, room.TickInterval)
	assert.Equal(t, 3, room.StartingLives)
	assert.Equal(t, PowerupChance, room.PowerupChance)

	handler := DefaultHandlerConfig()
	assert.Greater(t, handler.PongWait, handler.PingPeriod)
	assert.Equal(t, 3, handler.JoinAttempts)

	server := DefaultServerConfig()
	assert.Equal(t, 8080, server.Port)
	assert.Equal(t, "/ws", server.Path)
}
