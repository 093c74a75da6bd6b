// Package statusapi exposes a read-only HTTP surface reporting batch
// job history and Prometheus metrics. It never mutates job state —
// internal/jobqueue and internal/pipeline own that — it only reports
// what internal/datastore already has on file.
package statusapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/datastore"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/metrics"
)

// Server serves the status API over HTTP.
type Server struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// New builds a Server with routes registered but not yet listening.
func New(settings *conf.Settings, ds datastore.Interface, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		Echo:     echo.New(),
		DS:       ds,
		Settings: settings,
		Metrics:  m,
		Logger:   logger,
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.Logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "error", v.Error)
			return nil
		},
	}))

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/healthz", s.handleHealthz)
	s.Echo.GET("/api/v1/jobs", s.handleListJobs)
	s.Echo.GET("/api/v1/jobs/:id", s.handleGetJob)
	s.Echo.GET("/api/v1/config", s.handleGetConfig)
	if s.Metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
}

// Start begins listening on settings.Server.Listen in a background
// goroutine and returns immediately. Errors are logged, not returned,
// since the server runs for the lifetime of the process.
func (s *Server) Start() {
	addr := s.Settings.Server.Listen
	if addr == "" {
		addr = ":8090"
	}

	go func() {
		if err := s.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("status api server stopped", "error", err)
		}
	}()

	s.Logger.Info("status api server started", "listen", addr)
}

// Shutdown gracefully stops the server, waiting up to the context
// deadline for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.Echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shut down status api server: %w", err)
	}
	return nil
}

// handleHealthz reports process liveness plus a snapshot of host resource
// usage, for use by container orchestrators, uptime checks, and operators
// sizing Pipeline.WorkerCount against available headroom. Sampling errors
// are reported per-field rather than failing the whole request — a
// host without disk stats support (e.g. an unusual filesystem) still
// gets a useful CPU/memory reading.
func (s *Server) handleHealthz(c echo.Context) error {
	resp := map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		resp["cpu_percent"] = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp["memory_used_percent"] = vm.UsedPercent
	}
	if storePath := s.Settings.Store.Path; storePath != "" {
		if du, err := disk.Usage(filepath.Dir(storePath)); err == nil {
			resp["store_disk_free_bytes"] = du.Free
			resp["store_disk_used_percent"] = du.UsedPercent
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// handleGetConfig reports the effective settings tree as YAML, for
// operators diagnosing which layer (embedded default, env var, CLI
// flag) a running value came from.
func (s *Server) handleGetConfig(c echo.Context) error {
	out, err := s.Settings.DumpYAML()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.Blob(http.StatusOK, "application/x-yaml", out)
}
