// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests to WebSocket sessions and hands each one to
// a room picked by its RoomManager.
type Handler struct {
	manager    *RoomManager
	config     *HandlerConfig
	gameConfig RoomConfig
	serializer Serializer

	upgrader    websocket.Upgrader
	middlewares []Middleware
	startedAt   time.Time
	initOnce    sync.Once
	initErr     error

	connectionPool *ConnectionPool
	logger         *LoggerConfig
	rateLimiter    RateLimiter
}

// NewHandler returns a Handler with the default limits, a JSON codec and a
// fresh RoomManager unless WithRoomManager supplies one.
func NewHandler(options ...UniversalOption) (*Handler, error) {
	h := newHandler()

	for _, o := range options {
		if err := o(h); err != nil {
			return nil, err
		}
	}

	if err := h.init(); err != nil {
		return nil, err
	}
	return h, nil
}

func newHandler() *Handler {
	return &Handler{
		config:     DefaultHandlerConfig(),
		gameConfig: DefaultRoomConfig(),
		serializer: JSONSerializer{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		startedAt: time.Now(),
		logger:    DefaultLoggerConfig(),
	}
}

// init builds the parts that depend on the final configuration.
func (h *Handler) init() error {
	h.initOnce.Do(func() {
		h.upgrader.CheckOrigin = h.checkOrigin
		h.rateLimiter = NewRateLimiterManager(h.config.RateLimit)
		h.initConnectionPool()

		if h.manager != nil {
			h.serializer = h.manager.Serializer()
			h.gameConfig = h.manager.RoomConfig()
			return
		}
		h.manager, h.initErr = NewRoomManager(
			WithManagerRoomConfig(h.gameConfig),
			WithManagerLogger(h.logger),
			WithManagerSerializer(h.serializer),
		)
	})
	return h.initErr
}

func (h *Handler) Handler() *Handler {
	return h
}

func (h *Handler) Config() HandlerConfig {
	return *h.config
}

func (h *Handler) Manager() *RoomManager {
	return h.manager
}

func (h *Handler) Serializer() Serializer {
	return h.serializer
}

func (h *Handler) Middlewares() []Middleware {
	return h.middlewares
}

func (h *Handler) Logger() *LoggerConfig {
	return h.logger
}

// ===== CONTROLLERS =====

// ServeHTTP applies the configured middlewares and then serves the WebSocket
// endpoint.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.ApplyMiddlewares(http.HandlerFunc(h.HandleWebSocket)).ServeHTTP(w, r)
}

// ApplyMiddlewares wraps handler so the first added middleware runs first.
func (h *Handler) ApplyMiddlewares(handler http.Handler) http.Handler {
	finalHandler := handler
	for i := len(h.middlewares) - 1; i >= 0; i-- {
		finalHandler = h.middlewares[i](finalHandler)
	}
	return finalHandler
}

// HandleWebSocket upgrades the request, joins the new client to a room and
// starts its read and write pumps.
//
// This method is safe to call concurrently.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Log(LogTypeError, LogLevelError, "PANIC RECOVERED in HandleWebSocket: %v\nStack trace:\n%s", rec, string(debug.Stack()))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}()

	clientIP := getClientIPFromRequest(r)

	if !h.rateLimiter.AllowIP(clientIP) {
		h.logger.Log(LogTypeRateLimit, LogLevelInfo, "Connection from %s rate limited", clientIP)
		http.Error(w, ErrRateLimitExceeded.Error(), http.StatusTooManyRequests)
		return
	}

	if h.connectionPool != nil {
		if err := h.connectionPool.AcquireConnection(clientIP); err != nil {
			h.logger.Log(LogTypeConnection, LogLevelWarn, "Connection rejected for %s: %v", clientIP, err)
			http.Error(w, "Too many connections", http.StatusTooManyRequests)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.releaseConnection(clientIP)
		h.logger.Log(LogTypeConnection, LogLevelWarn, "%v", NewUpgradeFailedError(err))
		return
	}

	client := NewClient(GenerateClientID(), h.gameConfig.MessageChanBufSize)
	client.ConnInfo = &ConnectionInfo{
		ClientIP:  clientIP,
		UserAgent: r.Header.Get("User-Agent"),
		Origin:    r.Header.Get("Origin"),
	}

	conn.SetReadLimit(h.config.MessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(h.config.PongWait)); err != nil {
		h.logger.Log(LogTypeError, LogLevelDebug, "%s: %v", client.ID, NewSetReadDeadlineError(err))
		_ = conn.Close()
		h.releaseConnection(clientIP)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.config.PongWait))
	})

	room, err := h.join(client)
	if err != nil {
		h.logger.Log(LogTypeConnection, LogLevelWarn, "Client %s could not join a room: %v", client.ID, err)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(h.config.WriteTimeout),
		)
		_ = conn.Close()
		h.releaseConnection(clientIP)
		return
	}

	h.logger.Log(LogTypeConnection, LogLevelInfo, "%s connected from %s to room %s", client.ID, clientIP, room.ID())

	SafeGoroutine(h.logger, "ClientWrite", func() {
		h.handleClientWrite(client, conn)
	})

	SafeGoroutine(h.logger, "ClientRead", func() {
		h.handleClientRead(client, conn, room)
	})
}

// join retries when the chosen room retires between lookup and join.
func (h *Handler) join(client *Client) (*Room, error) {
	attempts := max(h.config.JoinAttempts, 1)

	var lastErr error
	for i := 0; i < attempts; i++ {
		room, err := h.manager.FindAvailableRoom()
		if err != nil {
			return nil, err
		}
		if lastErr = room.Join(client); lastErr == nil {
			return room, nil
		}
	}
	return nil, lastErr
}

// handleClientWrite drains the client's queue into the socket and pings it
// every PingPeriod. When the queue is closed it sends a close frame and
// closes the socket.
func (h *Handler) handleClientWrite(client *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(h.config.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	frameType := websocket.TextMessage
	if h.serializer.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-client.Outbound():
			if !ok {
				h.logger.Log(LogTypeMessage, LogLevelDebug, "%s write channel closed", client.ID)
				code, reason := client.CloseStatus()
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(h.config.WriteTimeout))
				return
			}

			if err := conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout)); err != nil {
				h.logger.Log(LogTypeError, LogLevelDebug, "%s: %v", client.ID, NewSetWriteDeadlineError(err))
				return
			}

			if err := conn.WriteMessage(frameType, message); err != nil {
				h.logger.Log(LogTypeMessage, LogLevelWarn, "%s write error: %v", client.ID, err)
				return
			}
			h.logger.Log(LogTypeMessage, LogLevelDebug, "%s wrote %d bytes", client.ID, len(message))

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.config.WriteTimeout)); err != nil {
				h.logger.Log(LogTypeMessage, LogLevelDebug, "%s ping error: %v", client.ID, err)
				return
			}
		}
	}
}

// handleClientRead feeds every frame to the room until the socket fails, the
// client exceeds its rate limit or the room shuts down.
func (h *Handler) handleClientRead(client *Client, conn *websocket.Conn, room *Room) {
	defer h.cleanupClient(client, conn, room)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Log(LogTypeConnection, LogLevelWarn, "%s read error: %v", client.ID, err)
			}
			return
		}

		if err := conn.SetReadDeadline(time.Now().Add(h.config.PongWait)); err != nil {
			h.logger.Log(LogTypeError, LogLevelDebug, "%s: %v", client.ID, NewSetReadDeadlineError(err))
			return
		}

		if !h.rateLimiter.AllowClient(client.ID) {
			if h.rateLimiter.Exceeded(client.ID) {
				h.logger.Log(LogTypeRateLimit, LogLevelWarn, "Disconnecting %s after %d rate limit violations", client.ID, h.rateLimiter.Violations(client.ID))
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, ErrRateLimitExceeded.Error()),
					time.Now().Add(h.config.WriteTimeout),
				)
				return
			}
			h.logger.Log(LogTypeRateLimit, LogLevelDebug, "Dropping frame from %s: rate limited", client.ID)
			continue
		}

		if err := room.Deliver(client, data); err != nil {
			h.logger.Log(LogTypeMessage, LogLevelDebug, "%s: %v", client.ID, err)
			return
		}
	}
}

func (h *Handler) cleanupClient(client *Client, conn *websocket.Conn, room *Room) {
	room.Leave(client)
	_ = conn.Close()
	h.rateLimiter.Forget(client.ID)
	h.releaseConnection(client.ConnInfo.ClientIP)
	h.logger.Log(LogTypeConnection, LogLevelInfo, "%s disconnected", client.ID)
}

func (h *Handler) releaseConnection(clientIP string) {
	if h.connectionPool != nil {
		h.connectionPool.ReleaseConnection(clientIP)
	}
}

func (h *Handler) initConnectionPool() {
	if h.config.MaxConnections > 0 {
		h.connectionPool = NewConnectionPool(h.config.MaxConnections, h.config.MaxConnectionsPerIP)
		h.logger.Log(LogTypeConnection, LogLevelDebug,
			"Connection pool initialized: max_total=%d, max_per_ip=%d",
			h.config.MaxConnections, h.config.MaxConnectionsPerIP)
	} else {
		h.logger.Log(LogTypeConnection, LogLevelWarn, "Connection pool disabled: MaxConnections is 0")
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.config.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.config.AllowedOrigins, r.Header.Get("Origin"))
}

func (h *Handler) GetConnectionStats() (int, map[string]int) {
	if h.connectionPool == nil {
		return 0, nil
	}
	return h.connectionPool.GetStats()
}

func (h *Handler) Stats() Stats {
	total, perIP := h.GetConnectionStats()
	return Stats{
		ActiveConnections: total,
		ConnectionsPerIP:  perIP,
		ManagerStats:      h.manager.Stats(),
		Uptime:            time.Since(h.startedAt),
	}
}

// Shutdown stops every room, which closes every session, and waits for the
// rooms to finish or ctx to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	defer h.rateLimiter.Stop()
	return h.manager.Shutdown(ctx)
}

// getClientIPFromRequest prefers X-Real-Ip, then the first X-Forwarded-For
// hop, then the remote address.
func getClientIPFromRequest(r *http.Request) string {
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return strings.TrimSpace(ip)
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
