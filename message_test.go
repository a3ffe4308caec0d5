package bombarena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError error
		check       func(t *testing.T, msg Inbound)
	}{
		{
			name:  "register trims the nickname",
			input: `{"type":"register","nickname":"  bob  "}`,
			check: func(t *testing.T, msg Inbound) {
				m, ok := msg.(*RegisterMessage)
				require.True(t, ok)
				assert.Equal(t, "bob", m.Nickname)
			},
		},
		{
			name:        "register with blank nickname",
			input:       `{"type":"register","nickname":"   "}`,
			expectError: ErrMalformedMessage,
		},
		{
			name:  "chat",
			input: `{"type":"chat","message":"hi all"}`,
			check: func(t *testing.T, msg Inbound) {
				m, ok := msg.(*ChatRequest)
				require.True(t, ok)
				assert.Equal(t, "hi all", m.Message)
			},
		},
		{
			name:        "chat with blank message",
			input:       `{"type":"chat","message":" "}`,
			expectError: ErrMalformedMessage,
		},
		{
			name:  "player move keeps the original frame",
			input: `{"type":"player_move","nickname":"bob","position":{"x":60.5,"y":50,"direction":"right","frame":2}}`,
			check: func(t *testing.T, msg Inbound) {
				m, ok := msg.(*PlayerMoveMessage)
				require.True(t, ok)
				assert.Equal(t, 60.5, m.Position.X)
				assert.Equal(t, "right", m.Position.Direction)
				assert.JSONEq(t, `{"type":"player_move","nickname":"bob","position":{"x":60.5,"y":50,"direction":"right","frame":2}}`, string(m.Raw()))
			},
		},
		{
			name:  "bomb placed",
			input: `{"type":"bomb_placed","nickname":"bob","position":{"row":1,"col":2,"range":3}}`,
			check: func(t *testing.T, msg Inbound) {
				m, ok := msg.(*BombPlacedMessage)
				require.True(t, ok)
				assert.Equal(t, BombPosition{Row: 1, Col: 2, Range: 3}, m.Position)
				assert.NotEmpty(t, m.Raw())
			},
		},
		{
			name:  "explosion",
			input: `{"type":"explosion","row":3,"col":4,"range":2,"owner":"bob"}`,
			check: func(t *testing.T, msg Inbound) {
				m, ok := msg.(*ExplosionMessage)
				require.True(t, ok)
				assert.Equal(t, "bob", m.Owner)
			},
		},
		{
			name:  "ability removal",
			input: `{"type":"ability","nickname":"bob","action":"remove","ability":{"id":"a1","row":3,"col":5,"type":"speed_powerup"}}`,
			check: func(t *testing.T, msg Inbound) {
				m, ok := msg.(*AbilityMessage)
				require.True(t, ok)
				assert.Equal(t, AbilityRemove, m.Action)
				assert.Equal(t, 5, m.Ability.Col)
			},
		},
		{
			name:        "unknown type",
			input:       `{"type":"dance"}`,
			expectError: ErrUnknownMessageType,
		},
		{
			name:        "missing type",
			input:       `{"nickname":"bob"}`,
			expectError: ErrMalformedMessage,
		},
		{
			name:        "not json",
			input:       `register:bob`,
			expectError: ErrMalformedMessage,
		},
		{
			name:        "wrong field type",
			input:       `{"type":"register","nickname":42}`,
			expectError: ErrMalformedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeInbound(JSONSerializer{}, []byte(tt.input))
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, msg)
				return
			}
			require.NoError(t, err)
			tt.check(t, msg)
		})
	}
}

func TestDecodeInbound_MessagePack(t *testing.T) {
	s := MessagePackSerializer{}
	data, err := s.Marshal(map[string]interface{}{"type": "register", "nickname": "alice"})
	require.NoError(t, err)

	msg, err := DecodeInbound(s, data)
	require.NoError(t, err)

	m, ok := msg.(*RegisterMessage)
	require.True(t, ok)
	assert.Equal(t, "alice", m.Nickname)
}

func TestOutboundMessages_WireNames(t *testing.T) {
	s := JSONSerializer{}

	data, err := s.Marshal(PlayerCountMessage{Type: TypePlayerCount, Count: 2, RoomID: "room_1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"player_count","count":2,"roomId":"room_1"}`, string(data))

	data, err = s.Marshal(PlayerKilledMessage{Type: TypePlayerKilled, Nickname: "bob"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"player_killed","nickname":"bob","livesLeft":0}`, string(data))

	data, err = s.Marshal(BlockDestroyedMessage{Type: TypeBlockDestroyed, Position: TileChange{Row: 1, Col: 2, NewTile: TileFlamePowerup}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"block_destroyed","position":{"row":1,"col":2,"newTile":4}}`, string(data))

	data, err = s.Marshal(BlockDestroyedMessage{
		Type:     TypeBlockDestroyed,
		Position: TileChange{Row: 1, Col: 2, NewTile: TileFlamePowerup},
		Ability:  &Ability{ID: "ability_1", Row: 1, Col: 2, Type: "flame_powerup"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"block_destroyed","position":{"row":1,"col":2,"newTile":4},"ability":{"id":"ability_1","row":1,"col":2,"type":"flame_powerup"}}`, string(data))

	data, err = s.Marshal(GameOverMessage{Type: TypeGameOver})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"game_over","winner":""}`, string(data))
}
