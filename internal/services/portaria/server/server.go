// Package server wires the portaria runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/diariourbano/portaria/internal/platform/config"
	"github.com/diariourbano/portaria/internal/platform/timeouts"
	"github.com/diariourbano/portaria/internal/services/portaria/api/httpapi"
	"github.com/diariourbano/portaria/internal/services/portaria/app"
	"github.com/diariourbano/portaria/internal/services/portaria/auth"
	portariasqlite "github.com/diariourbano/portaria/internal/services/portaria/storage/sqlite"
)

type serverEnv struct {
	DBPath string `env:"PORTARIA_DB_PATH"`
	Roles  string `env:"PORTARIA_ROLES"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "portaria.db")
	}
	return cfg
}

// Server hosts the portaria HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *portariasqlite.Store
}

// New creates a configured portaria server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured portaria server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := openPortariaStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	service := app.NewService(store, app.WithAuthorizer(auth.NewStaticRoles(env.Roles)))
	handler := httpapi.NewHandler(service)
	httpServer := &http.Server{
		Handler:           handler.Routes(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		listener:   listener,
		httpServer: httpServer,
		store:      store,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a portaria server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("portaria server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

// Close releases the server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close portaria store: %v", err)
		}
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func openPortariaStore(path string) (*portariasqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := portariasqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open portaria sqlite store: %w", err)
	}
	return store, nil
}
