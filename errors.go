package bombarena

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMaxConnectionsLessThanOne = errors.New("max connections must be greater than 0")
	ErrMessageSizeLessThanOne    = errors.New("message size must be greater than 0")
	ErrTimeoutsLessThanOne       = errors.New("read and write timeouts must be greater than 0")
	ErrPingPongLessThanOne       = errors.New("ping and pong wait periods must be greater than 0")
	ErrPongWaitLessThanPing      = errors.New("pong wait must be greater than ping period")
	ErrBufferSizeLessThanOne     = errors.New("message buffer size must be greater than 0")
	ErrSSLFilesEmpty             = errors.New("certFile or keyFile is empty")
	ErrInvalidPort               = errors.New("invalid port")
	ErrInvalidTickInterval       = errors.New("tick interval must be greater than 0")
	ErrInvalidBombFuse           = errors.New("bomb fuse must be greater than 0")
	ErrInvalidCountdown          = errors.New("countdown seconds must not be negative")
	ErrInvalidStartingLives      = errors.New("starting lives must be greater than 0")
	ErrInvalidMaxPlayers         = errors.New("max players must be between 2 and 4")
	ErrInvalidRateLimit          = errors.New("rate limit must be greater than 0")
	ErrSerializerNil             = errors.New("serializer cannot be nil")
	ErrLoggerNil                 = errors.New("logger cannot be nil")
	ErrRoomManagerNil            = errors.New("room manager cannot be nil")
	ErrInvalidPath               = errors.New("path must start with /")
	ErrServerOnlyOption          = errors.New("option only applies to a server")

	// Client errors
	ErrClientClosed = errors.New("client is closed")
	ErrClientFull   = errors.New("client message channel is full")

	// Room errors
	ErrRoomClosed          = errors.New("room is closed")
	ErrNoRoomAvailable     = errors.New("no room available")
	ErrMalformedMessage    = errors.New("malformed message")
	ErrUnknownMessageType  = errors.New("unknown message type")
	ErrSerializeData       = errors.New("failed to serialize data")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// Handler errors
	ErrSetWriteDeadline  = errors.New("failed to set write deadline")
	ErrSetReadDeadline   = errors.New("failed to set read deadline")
	ErrUpgradeFailed     = errors.New("websocket upgrade failed")
	ErrMaxConnReached    = errors.New("maximum connections reached")
	ErrMaxConnPerIP      = errors.New("maximum connections per ip reached")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Server errors
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrServerNotRunning     = errors.New("server is not running")
)

func newMalformedMessageError(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
}

func newMalformedFieldError(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedMessage, field)
}

func newUnknownMessageTypeError(t MessageType) error {
	return fmt.Errorf("%w: %q", ErrUnknownMessageType, t)
}

func newSerializeError(err error) error {
	return fmt.Errorf("%w: %w", ErrSerializeData, err)
}

func NewUnsupportedEncodingError(encoding string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
}

func NewSetWriteDeadlineError(err error) error {
	return fmt.Errorf("%w: %w", ErrSetWriteDeadline, err)
}

func NewSetReadDeadlineError(err error) error {
	return fmt.Errorf("%w: %w", ErrSetReadDeadline, err)
}

func NewUpgradeFailedError(err error) error {
	return fmt.Errorf("%w: %w", ErrUpgradeFailed, err)
}

func NewMaxConnPerIPError(ip string) error {
	return fmt.Errorf("%w: %s", ErrMaxConnPerIP, ip)
}

func NewInvalidPortError(port int) error {
	return fmt.Errorf("%w: %d", ErrInvalidPort, port)
}
