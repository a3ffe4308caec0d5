// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"net/http"
	"time"
)

// RoomConfig holds the lobby and match rules of a room.
type RoomConfig struct {
	MaxPlayers         int
	ShortCountdown     int           // seconds, used for 2..MaxPlayers-1 registered players
	FullCountdown      int           // seconds, used once MaxPlayers are registered
	TickInterval       time.Duration // one countdown step
	BombFuse           time.Duration
	StartingLives      int
	PowerupChance      float64
	ChatHistoryLimit   int // 0 keeps every message
	InboundBufSize     int
	MessageChanBufSize int
}

type HandlerConfig struct {
	MaxConnections      int
	MaxConnectionsPerIP int
	MessageSize         int64
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	PingPeriod          time.Duration
	PongWait            time.Duration
	AllowedOrigins      []string
	JoinAttempts        int
	RateLimit           RateLimiterConfig
}

type RateLimiterConfig struct {
	PerClientRate          float64
	PerClientBurst         int
	PerIPRate              float64
	PerIPBurst             int
	MaxRateLimitViolations int
	CleanupInterval        time.Duration
	EntryTTL               time.Duration
}

type ServerConfig struct {
	Port       int
	Path       string
	StaticDir  string
	EnableCORS bool
	EnableSSL  bool
	CertFile   string
	KeyFile    string
}

type Middleware func(http.Handler) http.Handler

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		MaxPlayers:         4,
		ShortCountdown:     2,
		FullCountdown:      10,
		TickInterval:       time.Second,
		BombFuse:           1500 * time.Millisecond,
		StartingLives:      3,
		PowerupChance:      PowerupChance,
		ChatHistoryLimit:   200,
		InboundBufSize:     64,
		MessageChanBufSize: 256,
	}
}

// Validate reports the first invalid field.
func (c RoomConfig) Validate() error {
	switch {
	case c.MaxPlayers < 2 || c.MaxPlayers > len(SpawnCorners):
		return ErrInvalidMaxPlayers
	case c.ShortCountdown < 0 || c.FullCountdown < 0:
		return ErrInvalidCountdown
	case c.TickInterval <= 0:
		return ErrInvalidTickInterval
	case c.BombFuse <= 0:
		return ErrInvalidBombFuse
	case c.StartingLives <= 0:
		return ErrInvalidStartingLives
	case c.InboundBufSize <= 0 || c.MessageChanBufSize <= 0:
		return ErrBufferSizeLessThanOne
	}
	return nil
}

func DefaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		MaxConnections:      1000,
		MaxConnectionsPerIP: 16,
		MessageSize:         64 * 1024,
		ReadTimeout:         60 * time.Second,
		WriteTimeout:        10 * time.Second,
		PingPeriod:          54 * time.Second,
		PongWait:            60 * time.Second,
		JoinAttempts:        3,
		RateLimit:           DefaultRateLimiterConfig(),
	}
}

func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		PerClientRate:          240, // one move per frame on a 144 Hz display, with headroom
		PerClientBurst:         480,
		PerIPRate:              10,
		PerIPBurst:             20,
		MaxRateLimitViolations: 50,
		CleanupInterval:        time.Minute,
		EntryTTL:               5 * time.Minute,
	}
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:       8080,
		Path:       "/ws",
		StaticDir:  "./public",
		EnableCORS: true,
		EnableSSL:  false,
	}
}
