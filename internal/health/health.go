// Package health provides the HTTP health check and metrics endpoints.
//
// Docker and Kubernetes use /healthz and /readyz to monitor the daemon.
// When the daemon is running and its voice catalog has been loaded, both
// return 200 OK. Prometheus scrapes /metrics on the same port.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is a lightweight HTTP server that exposes /healthz, /readyz and,
// optionally, /metrics.
type Server struct {
	port    int
	metrics bool
	ready   atomic.Bool
	server  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves the default Prometheus registry on /metrics.
func WithMetrics() Option {
	return func(s *Server) { s.metrics = true }
}

// New creates a new health check server.
func New(port int, opts ...Option) *Server {
	s := &Server{port: port}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Ready reports the last value passed to SetReady.
func (s *Server) Ready() bool { return s.ready.Load() }

// Handler returns the health routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.status)
	mux.HandleFunc("GET /readyz", s.status)
	if s.metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port, "metrics", s.metrics)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
