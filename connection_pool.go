// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"sync"
)

// ConnectionPool caps live sockets in total and per client IP.
type ConnectionPool struct {
	maxConnections      int
	maxConnectionsPerIP int
	activeConns         map[string]int // IP -> connection count
	totalActive         int
	mu                  sync.RWMutex
	semaphore           chan struct{}
}

func NewConnectionPool(maxTotal, maxPerIP int) *ConnectionPool {
	return &ConnectionPool{
		maxConnections:      maxTotal,
		maxConnectionsPerIP: maxPerIP,
		activeConns:         make(map[string]int),
		semaphore:           make(chan struct{}, maxTotal),
	}
}

// AcquireConnection takes a slot for clientIP or fails without blocking.
func (cp *ConnectionPool) AcquireConnection(clientIP string) error {
	select {
	case cp.semaphore <- struct{}{}:
	default:
		return ErrMaxConnReached
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()

	if cp.maxConnectionsPerIP > 0 && cp.activeConns[clientIP] >= cp.maxConnectionsPerIP {
		<-cp.semaphore
		return NewMaxConnPerIPError(clientIP)
	}

	cp.activeConns[clientIP]++
	cp.totalActive++
	return nil
}

func (cp *ConnectionPool) ReleaseConnection(clientIP string) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	count, ok := cp.activeConns[clientIP]
	if !ok || count == 0 {
		return
	}
	if count == 1 {
		delete(cp.activeConns, clientIP)
	} else {
		cp.activeConns[clientIP] = count - 1
	}
	cp.totalActive--

	<-cp.semaphore
}

func (cp *ConnectionPool) GetStats() (total int, perIP map[string]int) {
	cp.mu.RLock()
	defer cp.mu.RUnlock()

	ipCopy := make(map[string]int, len(cp.activeConns))
	for ip, count := range cp.activeConns {
		ipCopy[ip] = count
	}

	return cp.totalActive, ipCopy
}
