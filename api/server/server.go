package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"task-dispatch/api"
	"task-dispatch/api/middleware"
	"task-dispatch/logger"
)

// Options configures the HTTP surface of a dispatched job.
type Options struct {
	Address         string
	Version         string
	ShutdownTimeout time.Duration
	Jobs            api.JobLister
}

// Server wraps http.Server with graceful shutdown capabilities
type Server struct {
	httpServer *http.Server
	opts       Options
	logger     *logger.Logger
}

// New creates a server exposing d
func New(d api.Dispatcher, opts Options, lg *logger.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:        opts.Address,
			Handler:     NewRouter(d, opts, lg),
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		opts:   opts,
		logger: lg,
	}
}

// NewRouter registers every route behind the logging middleware.
func NewRouter(d api.Dispatcher, opts Options, lg *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/invoke", api.NewInvokeHandler(d, lg))
	mux.HandleFunc("/invocations/{index}", api.NewInvocationStatusHandler(d, lg))
	mux.HandleFunc("/health", api.NewHealthHandler(opts.Version, opts.Jobs, d, lg))

	return middleware.Logging(lg)(mux)
}

// Start listens on the configured address and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", map[string]any{
			"address": ln.Addr().String(),
		})
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Error("server failed", map[string]any{
			"error": err.Error(),
		})
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	return s.shutdown()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("server shutdown complete")
	return nil
}
