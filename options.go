// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"strings"
	"time"
)

// UniversalOption configures a Handler or the Handler inside a Server.
type UniversalOption func(HasHandler) error

type HasHandler interface {
	Handler() *Handler
}

// ===== Handler options =====

// WithMaxConnections caps the number of live sockets.
func WithMaxConnections(max int) UniversalOption {
	return func(hh HasHandler) error {
		if max <= 0 {
			return ErrMaxConnectionsLessThanOne
		}
		hh.Handler().config.MaxConnections = max
		return nil
	}
}

// WithMaxConnectionsPerIP caps the live sockets of one client IP. Zero
// disables the per IP cap.
func WithMaxConnectionsPerIP(max int) UniversalOption {
	return func(hh HasHandler) error {
		if max < 0 {
			return ErrMaxConnectionsLessThanOne
		}
		hh.Handler().config.MaxConnectionsPerIP = max
		return nil
	}
}

func WithMessageSize(size int64) UniversalOption {
	return func(hh HasHandler) error {
		if size <= 0 {
			return ErrMessageSizeLessThanOne
		}
		hh.Handler().config.MessageSize = size
		return nil
	}
}

func WithTimeout(read, write time.Duration) UniversalOption {
	return func(hh HasHandler) error {
		if read <= 0 || write <= 0 {
			return ErrTimeoutsLessThanOne
		}
		cfg := hh.Handler().config
		cfg.ReadTimeout = read
		cfg.WriteTimeout = write
		return nil
	}
}

// WithPingPong sets how often the server pings and how long it waits for any
// frame before dropping the socket.
func WithPingPong(pingPeriod, pongWait time.Duration) UniversalOption {
	return func(hh HasHandler) error {
		if pingPeriod <= 0 || pongWait <= 0 {
			return ErrPingPongLessThanOne
		}
		if pongWait <= pingPeriod {
			return ErrPongWaitLessThanPing
		}
		cfg := hh.Handler().config
		cfg.PingPeriod = pingPeriod
		cfg.PongWait = pongWait
		return nil
	}
}

// WithAllowedOrigins restricts the Origin header of upgrade requests. An empty
// list accepts any origin.
func WithAllowedOrigins(origins []string) UniversalOption {
	return func(hh HasHandler) error {
		hh.Handler().config.AllowedOrigins = origins
		return nil
	}
}

func WithJoinAttempts(attempts int) UniversalOption {
	return func(hh HasHandler) error {
		hh.Handler().config.JoinAttempts = max(attempts, 1)
		return nil
	}
}

func WithRateLimit(config RateLimiterConfig) UniversalOption {
	return func(hh HasHandler) error {
		if config.PerClientRate <= 0 || config.PerClientBurst <= 0 || config.PerIPRate <= 0 || config.PerIPBurst <= 0 {
			return ErrInvalidRateLimit
		}
		hh.Handler().config.RateLimit = config
		return nil
	}
}

func WithSerializer(serializer Serializer) UniversalOption {
	return func(hh HasHandler) error {
		if serializer == nil {
			return ErrSerializerNil
		}
		hh.Handler().serializer = serializer
		return nil
	}
}

// WithEncoding picks the wire codec by name: "json" or "msgpack".
func WithEncoding(name string) UniversalOption {
	return func(hh HasHandler) error {
		serializer, err := SerializerFor(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return err
		}
		hh.Handler().serializer = serializer
		return nil
	}
}

func WithMiddleware(middleware Middleware) UniversalOption {
	return func(hh HasHandler) error {
		h := hh.Handler()
		h.middlewares = append(h.middlewares, middleware)
		return nil
	}
}

// WithLogger logs every log type at level through logger.
func WithLogger(logger Logger, level LogLevel) UniversalOption {
	return func(hh HasHandler) error {
		if logger == nil {
			return ErrLoggerNil
		}
		hh.Handler().logger = NewLoggerConfig(logger, level)
		return nil
	}
}

func WithLoggerConfig(config *LoggerConfig) UniversalOption {
	return func(hh HasHandler) error {
		if config == nil || config.Logger == nil {
			return ErrLoggerNil
		}
		hh.Handler().logger = config
		return nil
	}
}

// WithGameConfig sets the lobby and match rules of every room.
func WithGameConfig(config RoomConfig) UniversalOption {
	return func(hh HasHandler) error {
		if err := config.Validate(); err != nil {
			return err
		}
		hh.Handler().gameConfig = config
		return nil
	}
}

// WithRoomManager makes the handler use manager instead of creating one. The
// manager's codec and rules take precedence over WithSerializer and
// WithGameConfig.
func WithRoomManager(manager *RoomManager) UniversalOption {
	return func(hh HasHandler) error {
		if manager == nil {
			return ErrRoomManagerNil
		}
		hh.Handler().manager = manager
		return nil
	}
}

// ===== Server options =====

func WithPort(port int) UniversalOption {
	return serverOption(func(s *Server) error {
		if port <= 0 || port > 65535 {
			return NewInvalidPortError(port)
		}
		s.config.Port = port
		return nil
	})
}

// WithPath sets where the WebSocket endpoint is mounted.
func WithPath(path string) UniversalOption {
	return serverOption(func(s *Server) error {
		if !strings.HasPrefix(path, "/") {
			return ErrInvalidPath
		}
		s.config.Path = path
		return nil
	})
}

// WithStaticDir serves the browser client from dir. An empty dir disables
// static files.
func WithStaticDir(dir string) UniversalOption {
	return serverOption(func(s *Server) error {
		s.config.StaticDir = dir
		return nil
	})
}

func WithCORS(enabled bool) UniversalOption {
	return serverOption(func(s *Server) error {
		s.config.EnableCORS = enabled
		return nil
	})
}

func WithSSL(certFile, keyFile string) UniversalOption {
	return serverOption(func(s *Server) error {
		if certFile == "" || keyFile == "" {
			return ErrSSLFilesEmpty
		}
		s.config.EnableSSL = true
		s.config.CertFile = certFile
		s.config.KeyFile = keyFile
		return nil
	})
}

func serverOption(fn func(*Server) error) UniversalOption {
	return func(hh HasHandler) error {
		s, ok := hh.(*Server)
		if !ok {
			return ErrServerOnlyOption
		}
		return fn(s)
	}
}
