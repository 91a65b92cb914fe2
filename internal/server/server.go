// Package server owns the HTTP listeners and their lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/janisto/argo-greeting/internal/config"
	"github.com/janisto/argo-greeting/internal/http/health"
	applog "github.com/janisto/argo-greeting/internal/platform/logging"
	"github.com/janisto/argo-greeting/internal/platform/metrics"
)

// Server pairs the public API listener with the optional admin listener.
type Server struct {
	cfg     *config.Config
	probe   *health.Probe
	metrics *metrics.Metrics
	public  *http.Server
	admin   *http.Server
}

// New wires the handlers for cfg. Nothing listens until Run or Serve is called.
func New(cfg *config.Config, version string) *Server {
	s := &Server{
		cfg:     cfg,
		probe:   health.NewProbe(),
		metrics: metrics.New(),
	}
	s.public = s.httpServer(cfg.Addr(), NewRouter(cfg, version, s.metrics, s.probe))
	if addr := cfg.MetricsAddr(); addr != "" {
		s.admin = s.httpServer(addr, NewAdminRouter(s.metrics))
	}
	return s
}

func (s *Server) httpServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    64 << 10,
	}
}

// Handler returns the public handler.
func (s *Server) Handler() http.Handler {
	return s.public.Handler
}

// AdminHandler returns the admin handler, or nil when metrics are disabled.
func (s *Server) AdminHandler() http.Handler {
	if s.admin == nil {
		return nil
	}
	return s.admin.Handler
}

// Probe exposes the readiness probe.
func (s *Server) Probe() *health.Probe {
	return s.probe
}

// Run binds the configured addresses and calls Serve.
func (s *Server) Run(ctx context.Context) error {
	publicLn, err := net.Listen("tcp", s.public.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.public.Addr, err)
	}
	var adminLn net.Listener
	if s.admin != nil {
		adminLn, err = net.Listen("tcp", s.admin.Addr)
		if err != nil {
			_ = publicLn.Close()
			return fmt.Errorf("listen %s: %w", s.admin.Addr, err)
		}
	}
	return s.Serve(ctx, publicLn, adminLn)
}

// Serve runs both listeners until ctx is cancelled or one of them fails. It then
// marks the instance not ready and shuts both servers down within the configured
// ShutdownTimeout. A nil adminLn skips the admin server. The first serve or
// shutdown error is returned; a clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, publicLn, adminLn net.Listener) error {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error { return serve(gctx, "public", s.public, publicLn) })
	if s.admin != nil && adminLn != nil {
		group.Go(func() error { return serve(gctx, "admin", s.admin, adminLn) })
	}

	group.Go(func() error {
		<-gctx.Done()
		s.probe.Drain()
		applog.LogInfo(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := s.public.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("public shutdown: %w", err))
		}
		if s.admin != nil {
			if err := s.admin.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("admin shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	err := group.Wait()
	if err != nil {
		applog.LogError(ctx, "server stopped with error", err)
		return err
	}
	applog.LogInfo(ctx, "server exited")
	return nil
}

func serve(ctx context.Context, name string, srv *http.Server, ln net.Listener) error {
	applog.LogInfo(ctx, "server listening", zap.String("listener", name), zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s listener: %w", name, err)
	}
	return nil
}
