// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

type LogType string

const (
	LogTypeServer     LogType = "server"     // for server lifecycle events
	LogTypeRoom       LogType = "room"       // for room creation, status changes and teardown
	LogTypeClient     LogType = "client"     // for client registration and departure
	LogTypeConnection LogType = "connection" // for upgrade and socket events
	LogTypeMessage    LogType = "message"    // for frames sent and received
	LogTypeMatch      LogType = "match"      // for bombs, hits and winners
	LogTypeRateLimit  LogType = "ratelimit"  // for rate limit events
	LogTypeError      LogType = "error"      // for internal errors and connection errors
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// ParseLogLevel maps "none", "error", "warn", "info" and "debug" to a level.
// Anything else yields LogLevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "none":
		return LogLevelNone
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

type Logger interface {
	Log(logType LogType, level LogLevel, msg string, args ...interface{})
}

// ZerologLogger writes one structured line per entry with the log type as a
// field.
type ZerologLogger struct {
	zl zerolog.Logger
}

func NewZerologLogger(w io.Writer) *ZerologLogger {
	return &ZerologLogger{
		zl: zerolog.New(w).With().Timestamp().Logger(),
	}
}

func (l *ZerologLogger) Log(logType LogType, level LogLevel, msg string, args ...interface{}) {
	var event *zerolog.Event
	switch level {
	case LogLevelError:
		event = l.zl.Error()
	case LogLevelWarn:
		event = l.zl.Warn()
	case LogLevelInfo:
		event = l.zl.Info()
	case LogLevelDebug:
		event = l.zl.Debug()
	default:
		return
	}
	event.Str("type", string(logType)).Msg(fmt.Sprintf(msg, args...))
}

type NullLogger struct{}

func (l *NullLogger) Log(logType LogType, level LogLevel, msg string, args ...interface{}) {}

// LoggerConfig filters entries per log type before handing them to Logger.
type LoggerConfig struct {
	Logger Logger
	Level  map[LogType]LogLevel
}

func DefaultLoggerConfig() *LoggerConfig {
	return NewLoggerConfig(NewZerologLogger(os.Stdout), LogLevelInfo)
}

// NewLoggerConfig applies the same level to every log type.
func NewLoggerConfig(logger Logger, level LogLevel) *LoggerConfig {
	return &LoggerConfig{
		Logger: logger,
		Level: map[LogType]LogLevel{
			LogTypeServer:     level,
			LogTypeRoom:       level,
			LogTypeClient:     level,
			LogTypeConnection: level,
			LogTypeMessage:    level,
			LogTypeMatch:      level,
			LogTypeRateLimit:  level,
			LogTypeError:      level,
		},
	}
}

// NullLoggerConfig discards everything.
func NullLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Logger: &NullLogger{}, Level: map[LogType]LogLevel{}}
}

func (c *LoggerConfig) Log(logType LogType, level LogLevel, msg string, args ...interface{}) {
	if c == nil || c.Logger == nil {
		return
	}

	lvl, ok := c.Level[logType]
	if !ok {
		lvl = LogLevelNone
	}

	if level <= lvl {
		c.Logger.Log(logType, level, msg, args...)
	}
}
