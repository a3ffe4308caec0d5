// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"sync"

	"github.com/gorilla/websocket"
)

// CloseRoomFull is the close code sent to a client turned away by a full or
// running room. Clients should reconnect to be routed to another room.
const CloseRoomFull = websocket.CloseTryAgainLater

// ConnectionInfo describes where a client connected from.
type ConnectionInfo struct {
	ClientIP  string
	UserAgent string
	Origin    string
}

// Client is the session record of one connection. The owning room is the
// only writer of the nickname and registration fields; the transport drains
// Outbound and writes each frame to the socket.
type Client struct {
	ID       string
	ConnInfo *ConnectionInfo

	messageChan chan []byte
	nickname    string
	registered  bool
	seq         int // registration order, set by the room
	closed      bool
	closeCode   int
	closeReason string
	mu          sync.RWMutex
}

// NewClient creates a client whose outbound queue holds messageChanBufSize
// frames.
func NewClient(id string, messageChanBufSize int) *Client {
	if messageChanBufSize <= 0 {
		messageChanBufSize = 1
	}
	return &Client{
		ID:          id,
		messageChan: make(chan []byte, messageChanBufSize),
	}
}

// Send queues a frame without blocking. It returns ErrClientClosed once the
// client is closed and ErrClientFull when the queue is saturated.
//
// This method is safe to call concurrently.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.messageChan <- data:
		return nil
	default:
		return ErrClientFull
	}
}

// Outbound yields queued frames and is closed when the client is closed.
// Frames queued before Close are still delivered.
func (c *Client) Outbound() <-chan []byte {
	return c.messageChan
}

// Close marks the client closed and closes its outbound queue. It is
// idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.messageChan)
}

// CloseWith closes the client like Close and records the close code and reason
// the transport should send to the peer.
func (c *Client) CloseWith(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closeCode = code
	c.closeReason = reason
	c.closed = true
	close(c.messageChan)
}

// CloseStatus returns the code and reason recorded by CloseWith, or a normal
// closure when the client was closed with Close.
func (c *Client) CloseStatus() (int, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closeCode == 0 {
		return websocket.CloseNormalClosure, ""
	}
	return c.closeCode, c.closeReason
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) Nickname() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nickname
}

func (c *Client) IsRegistered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registered
}

func (c *Client) register(nickname string, seq int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nickname = nickname
	c.registered = true
	c.seq = seq
}

func (c *Client) registrationSeq() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq
}
