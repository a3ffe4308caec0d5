package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/FilipeJohansson/bombarena"
	"github.com/gobuffalo/envy"
)

func main() {
	port := flag.Int("port", envInt("PORT", 8080), "HTTP port")
	path := flag.String("path", envy.Get("WS_PATH", "/ws"), "WebSocket endpoint path")
	static := flag.String("static", envy.Get("STATIC_DIR", "./public"), "directory with the browser client, empty to disable")
	level := flag.String("log-level", envy.Get("LOG_LEVEL", "info"), "none, error, warn, info or debug")
	encoding := flag.String("encoding", envy.Get("WIRE_ENCODING", "json"), "wire encoding: json or msgpack")
	flag.Parse()

	logger := bombarena.NewZerologLogger(os.Stdout)

	server, err := bombarena.NewServer(
		bombarena.WithLogger(logger, bombarena.ParseLogLevel(*level)),
		bombarena.WithEncoding(*encoding),
		bombarena.WithPort(*port),
		bombarena.WithPath(*path),
		bombarena.WithStaticDir(*static),
	)
	if err != nil {
		logger.Log(bombarena.LogTypeServer, bombarena.LogLevelError, "invalid configuration: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.StartWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log(bombarena.LogTypeServer, bombarena.LogLevelError, "%v", err)
		os.Exit(1)
	}
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(envy.Get(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}
