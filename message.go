package bombarena

import "strings"

// MessageType is the "type" discriminator carried by every frame.
type MessageType string

// client -> server
const (
	TypeRegister   MessageType = "register"
	TypeChat       MessageType = "chat"
	TypePlayerMove MessageType = "player_move"
	TypeBombPlaced MessageType = "bomb_placed"
	TypeExplosion  MessageType = "explosion"
	TypeAbility    MessageType = "ability"
)

// server -> client
const (
	TypeNicknameTaken  MessageType = "nickname_taken"
	TypeRoomFull       MessageType = "room_full"
	TypePlayerCount    MessageType = "player_count"
	TypeCountdown      MessageType = "countdown"
	TypeStartGame      MessageType = "start_game"
	TypeBlockDestroyed MessageType = "block_destroyed"
	TypePlayerHit      MessageType = "player_hit"
	TypePlayerKilled   MessageType = "player_killed"
	TypeGameOver       MessageType = "game_over"
)

// Inbound is a decoded client frame. The concrete type is one of
// *RegisterMessage, *ChatRequest, *PlayerMoveMessage, *BombPlacedMessage,
// *ExplosionMessage or *AbilityMessage.
type Inbound interface {
	Type() MessageType
}

// Relayed is an Inbound forwarded to the other players byte for byte.
type Relayed interface {
	Inbound
	Raw() []byte
}

type relay struct {
	raw []byte
}

func (r *relay) Raw() []byte { return r.raw }

type RegisterMessage struct {
	Nickname string `json:"nickname"`
}

func (*RegisterMessage) Type() MessageType { return TypeRegister }

type ChatRequest struct {
	Message string `json:"message"`
}

func (*ChatRequest) Type() MessageType { return TypeChat }

type PlayerPosition struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
	Frame     int     `json:"frame"`
}

type PlayerMoveMessage struct {
	relay
	Nickname string         `json:"nickname,omitempty"`
	Position PlayerPosition `json:"position"`
}

func (*PlayerMoveMessage) Type() MessageType { return TypePlayerMove }

type BombPosition struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Range int `json:"range"`
}

type BombPlacedMessage struct {
	relay
	Nickname string       `json:"nickname,omitempty"`
	Position BombPosition `json:"position"`
}

func (*BombPlacedMessage) Type() MessageType { return TypeBombPlaced }

type ExplosionMessage struct {
	relay
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Range int    `json:"range"`
	Owner string `json:"owner"`
}

func (*ExplosionMessage) Type() MessageType { return TypeExplosion }

type AbilityAction string

const (
	AbilityAdd    AbilityAction = "add"
	AbilityRemove AbilityAction = "remove"
)

type Ability struct {
	ID   string `json:"id"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Type string `json:"type"`
}

type AbilityMessage struct {
	relay
	Nickname string        `json:"nickname,omitempty"`
	Ability  Ability       `json:"ability"`
	Action   AbilityAction `json:"action"`
}

func (*AbilityMessage) Type() MessageType { return TypeAbility }

type envelope struct {
	Type MessageType `json:"type"`
}

// DecodeInbound parses a client frame into its concrete message kind.
// Unknown kinds yield ErrUnknownMessageType; anything unparsable or missing a
// required field yields ErrMalformedMessage.
func DecodeInbound(s Serializer, data []byte) (Inbound, error) {
	var env envelope
	if err := s.Unmarshal(data, &env); err != nil {
		return nil, newMalformedMessageError(err)
	}

	var msg Inbound
	switch env.Type {
	case TypeRegister:
		msg = &RegisterMessage{}
	case TypeChat:
		msg = &ChatRequest{}
	case TypePlayerMove:
		msg = &PlayerMoveMessage{}
	case TypeBombPlaced:
		msg = &BombPlacedMessage{}
	case TypeExplosion:
		msg = &ExplosionMessage{}
	case TypeAbility:
		msg = &AbilityMessage{}
	case "":
		return nil, newMalformedFieldError("type")
	default:
		return nil, newUnknownMessageTypeError(env.Type)
	}

	if err := s.Unmarshal(data, msg); err != nil {
		return nil, newMalformedMessageError(err)
	}

	switch m := msg.(type) {
	case *RegisterMessage:
		m.Nickname = strings.TrimSpace(m.Nickname)
		if m.Nickname == "" {
			return nil, newMalformedFieldError("nickname")
		}
	case *ChatRequest:
		if strings.TrimSpace(m.Message) == "" {
			return nil, newMalformedFieldError("message")
		}
	case *PlayerMoveMessage:
		m.raw = data
	case *BombPlacedMessage:
		m.raw = data
	case *ExplosionMessage:
		m.raw = data
	case *AbilityMessage:
		m.raw = data
	}

	return msg, nil
}

// ===== Outbound =====

type NoticeMessage struct {
	Type MessageType `json:"type"`
}

type PlayerCountMessage struct {
	Type   MessageType `json:"type"`
	Count  int         `json:"count"`
	RoomID string      `json:"roomId"`
}

type CountdownMessage struct {
	Type    MessageType `json:"type"`
	Seconds int         `json:"seconds"`
}

// ChatMessage is both broadcast and stored in the room's history.
type ChatMessage struct {
	Type      MessageType `json:"type"`
	Nickname  string      `json:"nickname"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"`
	RoomID    string      `json:"roomId"`
}

type PlayerInfo struct {
	Nickname string `json:"nickname"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

type StartGameMessage struct {
	Type    MessageType  `json:"type"`
	Players []PlayerInfo `json:"players"`
	Map     Grid         `json:"map"`
}

type TileChange struct {
	Row     int      `json:"row"`
	Col     int      `json:"col"`
	NewTile TileType `json:"newTile"`
}

// BlockDestroyedMessage reports one destroyed block. Ability is set when the
// block left a power-up, and its ID is what a pickup refers to.
type BlockDestroyedMessage struct {
	Type     MessageType `json:"type"`
	Position TileChange  `json:"position"`
	Ability  *Ability    `json:"ability,omitempty"`
}

type PlayerHitMessage struct {
	Type     MessageType `json:"type"`
	Nickname string      `json:"nickname"`
	Lives    int         `json:"lives"`
}

type PlayerKilledMessage struct {
	Type      MessageType `json:"type"`
	Nickname  string      `json:"nickname"`
	LivesLeft int         `json:"livesLeft"`
}

// GameOverMessage carries an empty Winner when the last players fell together.
type GameOverMessage struct {
	Type   MessageType `json:"type"`
	Winner string      `json:"winner"`
}
