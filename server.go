// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Filipe Johansson

package bombarena

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/cors"
	"github.com/unrolled/secure"
)

// Server serves the game: the WebSocket endpoint, health and stats probes
// and the static browser client.
type Server struct {
	handler   *Handler
	config    *ServerConfig
	server    *http.Server
	isRunning bool
	mu        sync.RWMutex
}

// NewServer returns a Server with the default configuration adjusted by
// options. Handler options apply to the embedded Handler.
func NewServer(options ...UniversalOption) (*Server, error) {
	s := &Server{
		handler: newHandler(),
		config:  DefaultServerConfig(),
	}

	for _, o := range options {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	if err := s.handler.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Handler() *Handler {
	return s.handler
}

func (s *Server) Config() ServerConfig {
	return *s.config
}

func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Routes returns the full HTTP surface wrapped in the security headers and,
// when enabled, CORS.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, s.handler)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	if s.config.StaticDir != "" {
		mux.Handle("/", staticHandler(s.config.StaticDir))
	}

	var handler http.Handler = mux

	handler = secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !s.config.EnableSSL,
	}).Handler(handler)

	if s.config.EnableCORS {
		origins := s.handler.config.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		handler = cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		}).Handler(handler)
	}

	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.handler.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// staticHandler serves files from dir and falls back to index.html for any
// path that is not a file, so client side routes resolve.
func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err != nil || (info.IsDir() && !hasIndex(name)) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}

func hasIndex(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "index.html"))
	return err == nil
}

func (s *Server) prepare() (*http.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil, ErrServerAlreadyRunning
	}
	if s.config.EnableSSL && (s.config.CertFile == "" || s.config.KeyFile == "") {
		return nil, ErrSSLFilesEmpty
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: s.handler.config.ReadTimeout,
	}
	s.isRunning = true
	return s.server, nil
}

func (s *Server) listen(srv *http.Server) error {
	s.handler.logger.Log(LogTypeServer, LogLevelInfo, "Server starting on port %d, path %s", s.config.Port, s.config.Path)

	if s.config.EnableSSL {
		return srv.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile)
	}
	return srv.ListenAndServe()
}

// Start listens on the configured port and blocks until the server is
// stopped.
func (s *Server) Start() error {
	srv, err := s.prepare()
	if err != nil {
		return err
	}

	err = s.listen(srv)

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	if errors.Is(err, http.ErrServerClosed) {
		s.handler.logger.Log(LogTypeServer, LogLevelInfo, "Server stopped")
		return nil
	}
	return fmt.Errorf("server error: %w", err)
}

// StartWithContext is Start that shuts the server down gracefully once ctx
// is cancelled, returning ctx.Err().
func (s *Server) StartWithContext(ctx context.Context) error {
	srv, err := s.prepare()
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.listen(srv)
	}()

	select {
	case <-ctx.Done():
		if err := s.StopGracefully(5 * time.Second); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		s.handler.logger.Log(LogTypeServer, LogLevelInfo, "Server stopped by context")
		return ctx.Err()

	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		_ = s.handler.Shutdown(context.Background())

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// Stop closes the listener and every session immediately.
func (s *Server) Stop() error {
	srv, err := s.markStopped()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.handler.Shutdown(ctx)

	return srv.Close()
}

// StopGracefully stops the rooms, which closes their sessions, and then
// shuts the HTTP server down within timeout.
func (s *Server) StopGracefully(timeout time.Duration) error {
	srv, err := s.markStopped()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.handler.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return srv.Shutdown(ctx)
}

func (s *Server) markStopped() (*http.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning || s.server == nil {
		return nil, ErrServerNotRunning
	}
	s.isRunning = false
	return s.server, nil
}
