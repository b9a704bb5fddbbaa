package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ControlPlaneServer exposes the HTTP API the CLI and other tools drive
// the daemon with.
type ControlPlaneServer struct {
	addr   string
	server *http.Server
}

func NewControlPlaneServer(addr string, rc *RouteConfig) *ControlPlaneServer {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: SetupRoutes(rc),
		// timeouts shed slow clients; the websocket feed clears its
		// deadlines on upgrade and is not affected
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &ControlPlaneServer{
		addr:   addr,
		server: httpServer,
	}
}

func (s *ControlPlaneServer) Start(ctx context.Context) error {
	slog.Info("control plane start", "addr", fmt.Sprintf("http://%s", s.addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start control plane: %w", err)
	}
	return nil
}

func (s *ControlPlaneServer) Stop(ctx context.Context) error {
	slog.Info("control plane stop")
	return s.server.Shutdown(ctx)
}
