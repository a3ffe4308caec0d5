// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
)

func GenerateClientID() string {
	return "client_" + uuid.NewString()
}

// GenerateRoomID returns ids of the form room_1a2b3c4d.
func GenerateRoomID() string {
	return "room_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func generateBombID() string {
	return "bomb_" + uuid.NewString()
}

func generateAbilityID() string {
	return "ability_" + uuid.NewString()
}

// SafeGoroutine runs fn on a new goroutine and logs instead of crashing the
// process if it panics.
func SafeGoroutine(logger Logger, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Log(LogTypeError, LogLevelError, "PANIC RECOVERED in %s: %v\nStack trace:\n%s",
					name, r, string(debug.Stack()))
			}
		}()
		fn()
	}()
}
