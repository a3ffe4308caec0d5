// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"cmp"
	"errors"
	"slices"
	"time"
)

func (r *Room) dispatch(c *Client, data []byte) {
	if !r.clients.Has(c.ID) {
		r.logger.Log(LogTypeMessage, LogLevelDebug, "Room %s: dropping frame from departed client %s", r.id, c.ID)
		return
	}

	msg, err := DecodeInbound(r.codec, data)
	if err != nil {
		if errors.Is(err, ErrUnknownMessageType) {
			r.logger.Log(LogTypeMessage, LogLevelDebug, "Room %s: ignoring frame from %s: %v", r.id, c.ID, err)
			return
		}
		r.logger.Log(LogTypeMessage, LogLevelWarn, "Room %s: dropping frame from %s: %v", r.id, c.ID, err)
		return
	}

	switch m := msg.(type) {
	case *RegisterMessage:
		r.handleRegister(c, m)
	case *ChatRequest:
		r.handleChat(c, m)
	case *PlayerMoveMessage:
		r.handlePlayerMove(c, m)
	case *BombPlacedMessage:
		r.handleBombPlaced(c, m)
	case *ExplosionMessage:
		if c.IsRegistered() {
			r.relay(c, m)
		}
	case *AbilityMessage:
		r.handleAbility(c, m)
	}
}

func (r *Room) handleRegister(c *Client, m *RegisterMessage) {
	if c.IsRegistered() {
		r.logger.Log(LogTypeClient, LogLevelDebug, "Client %s already registered as %s", c.ID, c.Nickname())
		return
	}

	if r.IsNicknameTaken(m.Nickname) {
		r.logger.Log(LogTypeClient, LogLevelInfo, "Client %s: nickname %q taken in room %s", c.ID, m.Nickname, r.id)
		r.sendTo(c, NoticeMessage{Type: TypeNicknameTaken})
		return
	}

	if r.Status() == StatusInGame || r.RegisteredCount() >= r.config.MaxPlayers {
		r.logger.Log(LogTypeClient, LogLevelInfo, "Client %s: room %s is full", c.ID, r.id)
		r.reject(c)
		return
	}

	r.nextSeq++
	c.register(m.Nickname, r.nextSeq)
	r.registered.Add(1)
	r.logger.Log(LogTypeClient, LogLevelInfo, "Client %s registered as %s in room %s (%d/%d)",
		c.ID, m.Nickname, r.id, r.RegisteredCount(), r.config.MaxPlayers)

	for _, h := range r.history {
		r.sendTo(c, h)
	}

	r.broadcastPlayerCount()
	r.checkAutoStart()
}

// reject turns away a client that cannot take a seat. It gets room_full, then
// the connection closes with CloseRoomFull. The players never see it leave.
func (r *Room) reject(c *Client) {
	r.sendTo(c, NoticeMessage{Type: TypeRoomFull})
	r.clients.Remove(c.ID)
	c.CloseWith(CloseRoomFull, string(TypeRoomFull))
}

func (r *Room) handleChat(c *Client, m *ChatRequest) {
	if !c.IsRegistered() {
		r.logger.Log(LogTypeMessage, LogLevelDebug, "Room %s: chat from unregistered client %s dropped", r.id, c.ID)
		return
	}

	msg := ChatMessage{
		Type:      TypeChat,
		Nickname:  c.Nickname(),
		Message:   m.Message,
		Timestamp: time.Now().UnixMilli(),
		RoomID:    r.id,
	}

	r.history = append(r.history, msg)
	if limit := r.config.ChatHistoryLimit; limit > 0 && len(r.history) > limit {
		r.history = slices.Delete(r.history, 0, len(r.history)-limit)
	}

	r.broadcast(msg)
}

func (r *Room) broadcastPlayerCount() {
	r.broadcast(PlayerCountMessage{
		Type:   TypePlayerCount,
		Count:  r.RegisteredCount(),
		RoomID: r.id,
	})
}

// checkAutoStart (re)arms or cancels the countdown for the current number of
// registered players. Every call restarts the countdown from its full length.
// Dropping below two registered players cancels a running countdown and moves
// the room back from countdown to waiting, the one backward status edge.
func (r *Room) checkAutoStart() {
	if r.Status() == StatusInGame {
		return
	}

	n := r.RegisteredCount()
	switch {
	case n >= r.config.MaxPlayers:
		r.startCountdown(r.config.FullCountdown)
	case n >= 2:
		r.startCountdown(r.config.ShortCountdown)
	default:
		if r.countdown != nil {
			r.logger.Log(LogTypeRoom, LogLevelInfo, "Room %s countdown cancelled (%d registered)", r.id, n)
			r.stopCountdown()
		}
		r.setStatus(StatusWaiting)
	}
}

func (r *Room) startCountdown(seconds int) {
	r.stopCountdown()
	r.countdown = &countdown{
		ticker:    time.NewTicker(r.config.TickInterval),
		remaining: seconds,
	}
	r.setStatus(StatusCountdown)
	r.logger.Log(LogTypeRoom, LogLevelInfo, "Room %s countdown started: %ds", r.id, seconds)
}

func (r *Room) stopCountdown() {
	if r.countdown == nil {
		return
	}
	r.countdown.ticker.Stop()
	r.countdown = nil
}

// countdownC is nil while no countdown runs, which disables its select case.
func (r *Room) countdownC() <-chan time.Time {
	if r.countdown == nil {
		return nil
	}
	return r.countdown.ticker.C
}

func (r *Room) tickCountdown() {
	cd := r.countdown
	if cd == nil {
		return
	}

	r.broadcast(CountdownMessage{Type: TypeCountdown, Seconds: cd.remaining})
	if cd.remaining <= 0 {
		r.stopCountdown()
		r.startGame()
		return
	}
	cd.remaining--
}

// startGame assigns spawn corners in registration order and sends everyone
// the roster and the map.
func (r *Room) startGame() {
	r.setStatus(StatusInGame)

	var registrants []*Client
	r.clients.ForEach(func(_ string, c *Client) {
		if c.IsRegistered() {
			registrants = append(registrants, c)
		}
	})
	slices.SortFunc(registrants, func(a, b *Client) int {
		return cmp.Compare(a.registrationSeq(), b.registrationSeq())
	})
	if len(registrants) > len(SpawnCorners) {
		registrants = registrants[:len(SpawnCorners)]
	}

	players := make([]PlayerInfo, 0, len(registrants))
	r.roster = make([]*Player, 0, len(registrants))
	for i, c := range registrants {
		corner := SpawnCorners[i]
		x, y := corner.Pixels()
		players = append(players, PlayerInfo{
			Nickname: c.Nickname(),
			X:        x,
			Y:        y,
			Row:      corner.Row,
			Col:      corner.Col,
		})
		r.roster = append(r.roster, &Player{
			Nickname: c.Nickname(),
			X:        float64(x),
			Y:        float64(y),
			Lives:    r.config.StartingLives,
		})
	}

	r.logger.Log(LogTypeMatch, LogLevelInfo, "Room %s match started with %d players", r.id, len(players))
	r.broadcast(StartGameMessage{
		Type:    TypeStartGame,
		Players: players,
		Map:     r.grid,
	})
}
