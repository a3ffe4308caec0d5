// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"slices"
	"time"
)

// Player is one participant of a running match.
type Player struct {
	Nickname string
	X, Y     float64 // last reported pixel position
	Lives    int
}

func (p *Player) Tile() Coord {
	return PixelToTile(p.X, p.Y)
}

// Bomb is a bomb the room is tracking until its fuse runs out.
type Bomb struct {
	ID       string
	Row      int
	Col      int
	Range    int
	Owner    string
	PlacedAt time.Time

	timer *time.Timer
}

func (b *Bomb) stop() {
	if b.timer != nil {
		b.timer.Stop()
	}
}

const maxBombRange = Cols

func (r *Room) player(nickname string) *Player {
	for _, p := range r.roster {
		if p.Nickname == nickname {
			return p
		}
	}
	return nil
}

func (r *Room) handlePlayerMove(c *Client, m *PlayerMoveMessage) {
	if !c.IsRegistered() {
		return
	}
	r.relay(c, m)

	if r.Status() != StatusInGame {
		return
	}
	if p := r.player(c.Nickname()); p != nil {
		p.X, p.Y = m.Position.X, m.Position.Y
	}
}

func (r *Room) handleBombPlaced(c *Client, m *BombPlacedMessage) {
	if !c.IsRegistered() {
		return
	}
	r.relay(c, m)

	if r.Status() != StatusInGame {
		return
	}
	if p := r.player(c.Nickname()); p != nil {
		r.placeBomb(p, m.Position)
	}
}

func (r *Room) placeBomb(p *Player, pos BombPosition) {
	if !CanPlaceBomb(pos.Row, pos.Col, &r.grid) {
		r.logger.Log(LogTypeMatch, LogLevelDebug, "Room %s: %s cannot place a bomb at (%d,%d)", r.id, p.Nickname, pos.Row, pos.Col)
		return
	}

	b := &Bomb{
		ID:       generateBombID(),
		Row:      pos.Row,
		Col:      pos.Col,
		Range:    min(max(pos.Range, 1), maxBombRange),
		Owner:    p.Nickname,
		PlacedAt: time.Now(),
	}
	r.grid.Set(b.Row, b.Col, TileBomb)
	r.bombs[b.ID] = b

	id := b.ID
	b.timer = time.AfterFunc(r.config.BombFuse, func() {
		select {
		case r.detonate <- id:
		case <-r.done:
		}
	})

	r.logger.Log(LogTypeMatch, LogLevelDebug, "Room %s: %s placed bomb %s at (%d,%d) range %d",
		r.id, p.Nickname, b.ID, b.Row, b.Col, b.Range)
}

func (r *Room) detonateBomb(id string) {
	b, ok := r.bombs[id]
	if !ok {
		return
	}
	delete(r.bombs, id)

	if r.grid.At(b.Row, b.Col) == TileBomb {
		r.grid.Set(b.Row, b.Col, TileEmpty)
	}

	tiles := CalculateExplosion(b.Row, b.Col, b.Range, &r.grid)
	r.logger.Log(LogTypeMatch, LogLevelDebug, "Room %s: bomb %s exploded over %d tiles", r.id, id, len(tiles))

	for _, t := range tiles {
		c := Coord{Row: t.Row, Col: t.Col}
		next, destroyed := ResolveBreakable(&r.grid, c, r.rng, r.config.PowerupChance)
		if !destroyed {
			continue
		}
		msg := BlockDestroyedMessage{
			Type:     TypeBlockDestroyed,
			Position: TileChange{Row: c.Row, Col: c.Col, NewTile: next},
		}
		if next.IsPowerup() {
			a := Ability{ID: generateAbilityID(), Row: c.Row, Col: c.Col, Type: next.String()}
			r.abilities[c] = a
			msg.Ability = &a
		}
		r.broadcast(msg)
	}

	r.resolveHits(tiles)
}

// resolveHits takes one life from every player standing in the blast and
// removes those left with none.
func (r *Room) resolveHits(tiles []ExplosionTile) {
	var fallen []*Player
	for _, p := range r.roster {
		if !IsPlayerInExplosion(p.Tile(), tiles) {
			continue
		}
		p.Lives--
		r.logger.Log(LogTypeMatch, LogLevelInfo, "Room %s: %s hit, %d lives left", r.id, p.Nickname, p.Lives)
		r.broadcast(PlayerHitMessage{Type: TypePlayerHit, Nickname: p.Nickname, Lives: p.Lives})
		if p.Lives <= 0 {
			fallen = append(fallen, p)
		}
	}

	if len(fallen) == 0 {
		return
	}
	for _, p := range fallen {
		r.eliminate(p)
	}
	r.checkWinner()
}

func (r *Room) eliminate(p *Player) {
	r.roster = slices.DeleteFunc(r.roster, func(q *Player) bool { return q == p })
	r.logger.Log(LogTypeMatch, LogLevelInfo, "Room %s: %s eliminated (%d remaining)", r.id, p.Nickname, len(r.roster))
	r.broadcast(PlayerKilledMessage{Type: TypePlayerKilled, Nickname: p.Nickname, LivesLeft: max(p.Lives, 0)})
}

func (r *Room) checkWinner() {
	switch len(r.roster) {
	case 0:
		r.logger.Log(LogTypeMatch, LogLevelInfo, "Room %s: match ended in a draw", r.id)
		r.broadcast(GameOverMessage{Type: TypeGameOver})
		r.retire("draw")
	case 1:
		winner := r.roster[0].Nickname
		r.logger.Log(LogTypeMatch, LogLevelInfo, "Room %s: %s wins", r.id, winner)
		r.broadcast(GameOverMessage{Type: TypeGameOver, Winner: winner})
		r.retire("winner")
	}
}

// handleAbility relays the frame and clears a collected power-up from the
// room's map. A pickup naming an ID must match the power-up at its
// coordinate; an anonymous one takes whatever is there.
func (r *Room) handleAbility(c *Client, m *AbilityMessage) {
	if !c.IsRegistered() {
		return
	}
	r.relay(c, m)

	if r.Status() != StatusInGame || m.Action != AbilityRemove {
		return
	}
	pos := Coord{Row: m.Ability.Row, Col: m.Ability.Col}
	a, ok := r.abilities[pos]
	if !ok {
		return
	}
	if m.Ability.ID != "" && m.Ability.ID != a.ID {
		r.logger.Log(LogTypeMatch, LogLevelDebug, "Room %s: %s tried stale power-up %s at (%d,%d)", r.id, c.Nickname(), m.Ability.ID, pos.Row, pos.Col)
		return
	}
	if r.grid.At(pos.Row, pos.Col).IsPowerup() {
		r.grid.Set(pos.Row, pos.Col, TileEmpty)
	}
	delete(r.abilities, pos)
	r.logger.Log(LogTypeMatch, LogLevelDebug, "Room %s: %s collected %s %s at (%d,%d)", r.id, c.Nickname(), a.Type, a.ID, pos.Row, pos.Col)
}
