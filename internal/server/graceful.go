// Package server runs the travelrisk HTTP server and shuts it down gracefully
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds the whole shutdown sequence when none is configured
const DefaultShutdownTimeout = 30 * time.Second

// Shutdownable represents a component that can be gracefully shut down
type Shutdownable interface {
	Shutdown(ctx context.Context) error
	Name() string
}

// ShutdownFunc wraps a function to implement Shutdownable
type ShutdownFunc struct {
	name string
	fn   func(context.Context) error
}

// NewShutdownFunc creates a Shutdownable from a function
func NewShutdownFunc(name string, fn func(context.Context) error) *ShutdownFunc {
	return &ShutdownFunc{name: name, fn: fn}
}

// Name returns the component name
func (s *ShutdownFunc) Name() string {
	return s.name
}

// Shutdown calls the wrapped function
func (s *ShutdownFunc) Shutdown(ctx context.Context) error {
	return s.fn(ctx)
}

// CloseTracer returns a Shutdownable that flushes an OpenTelemetry tracer provider
func CloseTracer(shutdownFunc func(context.Context) error) Shutdownable {
	return NewShutdownFunc("tracer", shutdownFunc)
}

// Config holds configuration for graceful shutdown
type Config struct {
	Server          *http.Server
	Logger          *zap.Logger
	Shutdownables   []Shutdownable
	ShutdownTimeout time.Duration
}

// GracefulShutdown serves HTTP until a signal or context cancellation, then
// drains the server and shuts down the registered components in order.
type GracefulShutdown struct {
	server          *http.Server
	logger          *zap.Logger
	shutdownTimeout time.Duration

	mu            sync.Mutex
	shutdownables []Shutdownable
}

// New creates a new GracefulShutdown manager
func New(cfg Config) *GracefulShutdown {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &GracefulShutdown{
		server:          cfg.Server,
		logger:          cfg.Logger.With(zap.String("component", "server")),
		shutdownables:   cfg.Shutdownables,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// AddShutdownFunc adds a shutdown function as a component
func (g *GracefulShutdown) AddShutdownFunc(name string, fn func(context.Context) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shutdownables = append(g.shutdownables, NewShutdownFunc(name, fn))
}

// ListenAndServe serves on the configured address until SIGINT/SIGTERM
func (g *GracefulShutdown) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return g.Run(ctx)
}

// Run listens on the server address and serves until ctx is done
func (g *GracefulShutdown) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.server.Addr)
	if err != nil {
		return err
	}
	return g.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or the server fails, then shuts
// everything down. A server failure is returned after shutdown.
func (g *GracefulShutdown) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("Server listening", zap.String("addr", ln.Addr().String()))
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		g.logger.Info("Shutdown requested", zap.Error(context.Cause(ctx)))
	case serveErr = <-errCh:
		if serveErr != nil {
			g.logger.Error("Server error", zap.Error(serveErr))
		}
	}

	g.Shutdown()
	return serveErr
}

// Shutdown drains the HTTP server, then shuts components down in
// registration order within the configured timeout.
func (g *GracefulShutdown) Shutdown() {
	g.logger.Info("Starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), g.shutdownTimeout)
	defer cancel()

	if g.server != nil {
		if err := g.server.Shutdown(ctx); err != nil {
			g.logger.Warn("Server shutdown incomplete, forcing close", zap.Error(err))
			g.server.Close()
		}
	}

	g.mu.Lock()
	components := append([]Shutdownable(nil), g.shutdownables...)
	g.mu.Unlock()

	for _, s := range components {
		if err := s.Shutdown(ctx); err != nil {
			g.logger.Error("Error shutting down component",
				zap.String("name", s.Name()), zap.Error(err))
			continue
		}
		g.logger.Info("Component shutdown complete", zap.String("name", s.Name()))
	}

	g.logger.Info("Graceful shutdown complete")
}
