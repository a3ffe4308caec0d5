// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type RoomStatus int32

const (
	StatusWaiting RoomStatus = iota
	StatusCountdown
	StatusInGame
)

func (s RoomStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusCountdown:
		return "countdown"
	case StatusInGame:
		return "ingame"
	default:
		return "unknown"
	}
}

func (s RoomStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type RoomOption func(*Room)

func WithRoomConfig(config RoomConfig) RoomOption {
	return func(r *Room) {
		r.config = config
	}
}

func WithRoomLogger(logger *LoggerConfig) RoomOption {
	return func(r *Room) {
		r.logger = logger
	}
}

func WithRoomSerializer(serializer Serializer) RoomOption {
	return func(r *Room) {
		r.codec = serializer
	}
}

func WithRoomRandom(rng RandomSource) RoomOption {
	return func(r *Room) {
		r.rng = rng
	}
}

// WithRetireFunc registers fn to run on the room goroutine once the room has
// shut down.
func WithRetireFunc(fn func(*Room)) RoomOption {
	return func(r *Room) {
		r.onRetire = fn
	}
}

type inboundFrame struct {
	client *Client
	data   []byte
}

type countdown struct {
	ticker    *time.Ticker
	remaining int
}

// Room owns one match. All of its state below the channel block is touched
// only by the goroutine running Run; other goroutines talk to it through
// Join, Leave and Deliver.
type Room struct {
	id        string
	createdAt time.Time
	config    RoomConfig
	logger    *LoggerConfig
	codec     Serializer
	rng       RandomSource
	onRetire  func(*Room)

	clients   *SharedCollection[*Client, string]
	history   []ChatMessage
	grid      Grid
	countdown *countdown
	bombs     map[string]*Bomb
	abilities map[Coord]Ability
	roster    []*Player
	nextSeq   int
	retired   bool

	status     atomic.Int32
	registered atomic.Int32
	started    atomic.Bool

	join     chan *Client
	leave    chan *Client
	inbound  chan inboundFrame
	detonate chan string
	quit     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewRoom(id string, grid Grid, options ...RoomOption) *Room {
	r := &Room{
		id:        id,
		createdAt: time.Now(),
		config:    DefaultRoomConfig(),
		logger:    NullLoggerConfig(),
		codec:     JSONSerializer{},
		rng:       DefaultRandom,
		clients:   NewSharedCollection[*Client, string](4),
		grid:      grid,
		bombs:     make(map[string]*Bomb),
		abilities: make(map[Coord]Ability),
	}

	for _, o := range options {
		o(r)
	}

	r.join = make(chan *Client)
	r.leave = make(chan *Client)
	r.inbound = make(chan inboundFrame, r.config.InboundBufSize)
	r.detonate = make(chan string, 8)
	r.quit = make(chan struct{})
	r.done = make(chan struct{})

	return r
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Room) Status() RoomStatus {
	return RoomStatus(r.status.Load())
}

// RegisteredCount is safe to call from any goroutine.
func (r *Room) RegisteredCount() int {
	return int(r.registered.Load())
}

func (r *Room) ClientCount() int {
	return r.clients.Len()
}

// IsNicknameTaken reports whether a registered client already holds name.
func (r *Room) IsNicknameTaken(name string) bool {
	taken := false
	r.clients.ForEach(func(_ string, c *Client) {
		if c.IsRegistered() && c.Nickname() == name {
			taken = true
		}
	})
	return taken
}

// Done is closed once the room has shut down.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) Closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Join hands a freshly accepted connection to the room. It fails with
// ErrRoomClosed if the room has already shut down.
func (r *Room) Join(c *Client) error {
	select {
	case r.join <- c:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

// Leave reports that the client's connection closed.
func (r *Room) Leave(c *Client) {
	select {
	case r.leave <- c:
	case <-r.done:
		c.Close()
	}
}

// Deliver queues one inbound frame from c. Frames from one client are
// processed in the order they are delivered.
func (r *Room) Deliver(c *Client, data []byte) error {
	if r.Closed() {
		return ErrRoomClosed
	}
	select {
	case r.inbound <- inboundFrame{client: c, data: data}:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

// Stop asks the room to shut down. It does not wait; use Done for that.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.quit)
	})
}

// Run is the room's event loop. Every handler and timer callback runs here to
// completion before the next one starts. Run returns when ctx is cancelled,
// Stop is called or the match retires the room.
func (r *Room) Run(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	defer r.shutdown()

	r.logger.Log(LogTypeRoom, LogLevelInfo, "Room %s started", r.id)

	for !r.retired {
		select {
		case <-ctx.Done():
			return
		case <-r.quit:
			return
		case c := <-r.join:
			r.addClient(c)
		case c := <-r.leave:
			r.removeClient(c)
		case f := <-r.inbound:
			r.dispatch(f.client, f.data)
		case <-r.countdownC():
			r.tickCountdown()
		case id := <-r.detonate:
			r.detonateBomb(id)
		}
	}
}

func (r *Room) shutdown() {
	close(r.done)

	r.stopCountdown()
	for id, b := range r.bombs {
		b.stop()
		delete(r.bombs, id)
	}

	r.clients.ForEach(func(_ string, c *Client) {
		c.Close()
	})

	r.logger.Log(LogTypeRoom, LogLevelInfo, "Room %s closed (%d clients)", r.id, r.clients.Len())

	if r.onRetire != nil {
		r.onRetire(r)
	}
}

// retire ends the room after the current event has been handled.
func (r *Room) retire(reason string) {
	if r.retired {
		return
	}
	r.retired = true
	r.logger.Log(LogTypeRoom, LogLevelInfo, "Room %s retiring: %s", r.id, reason)
}

func (r *Room) setStatus(s RoomStatus) {
	if old := RoomStatus(r.status.Swap(int32(s))); old != s {
		r.logger.Log(LogTypeRoom, LogLevelDebug, "Room %s status %s -> %s", r.id, old, s)
	}
}

func (r *Room) addClient(c *Client) {
	r.clients.Add(c, c.ID)
	r.logger.Log(LogTypeClient, LogLevelInfo, "Client %s joined room %s (clients: %d)", c.ID, r.id, r.clients.Len())
}

func (r *Room) removeClient(c *Client) {
	c.Close()
	if !r.clients.Remove(c.ID) {
		return
	}

	nickname := c.Nickname()
	if c.IsRegistered() {
		r.registered.Add(-1)
	}
	r.logger.Log(LogTypeClient, LogLevelInfo, "Client %s (%s) left room %s", c.ID, nickname, r.id)

	r.broadcastPlayerCount()
	r.checkAutoStart()

	if r.Status() == StatusInGame {
		if p := r.player(nickname); p != nil {
			r.eliminate(p)
			r.checkWinner()
		}
	}

	if !r.retired && r.clients.Len() == 0 {
		r.retire("empty")
	}
}

// broadcast encodes v once and queues it for every client in join order. A
// closed or saturated client is skipped.
func (r *Room) broadcast(v interface{}) {
	data, err := r.codec.Marshal(v)
	if err != nil {
		r.logger.Log(LogTypeError, LogLevelError, "Room %s: %v", r.id, newSerializeError(err))
		return
	}

	r.clients.ForEach(func(_ string, c *Client) {
		r.deliverTo(c, data)
	})
}

func (r *Room) sendTo(c *Client, v interface{}) {
	data, err := r.codec.Marshal(v)
	if err != nil {
		r.logger.Log(LogTypeError, LogLevelError, "Room %s: %v", r.id, newSerializeError(err))
		return
	}
	r.deliverTo(c, data)
}

// relay forwards the original frame to every other registered client.
func (r *Room) relay(sender *Client, m Relayed) {
	nickname := sender.Nickname()
	r.clients.ForEach(func(_ string, c *Client) {
		if c == sender || !c.IsRegistered() || c.Nickname() == nickname {
			return
		}
		r.deliverTo(c, m.Raw())
	})
}

func (r *Room) deliverTo(c *Client, data []byte) {
	if err := c.Send(data); err != nil {
		r.logger.Log(LogTypeMessage, LogLevelWarn, "Room %s: skipping %s: %v", r.id, c.ID, err)
	}
}
