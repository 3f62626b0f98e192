// Package app initializes and orchestrates the main components of the pocket-points
// application. It wires together the configuration, roster, thumbnail loading and
// the HTTP server.
package app

import (
	"log/slog"
	"sync"

	"github.com/sevigo/pocket-points/internal/config"
	"github.com/sevigo/pocket-points/internal/imaging"
	"github.com/sevigo/pocket-points/internal/jobs"
	"github.com/sevigo/pocket-points/internal/loader"
	"github.com/sevigo/pocket-points/internal/roster"
	"github.com/sevigo/pocket-points/internal/server"
)

// App holds the main application components.
type App struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Roster  roster.Service
	Decoder *imaging.Decoder
	Pool    *jobs.Pool

	server *server.Server

	mu           sync.Mutex
	coordinators []*loader.Coordinator
	stopped      bool
}

// NewApp assembles the application from its already constructed parts.
func NewApp(cfg *config.Config, svc roster.Service, decoder *imaging.Decoder, pool *jobs.Pool, srv *server.Server, logger *slog.Logger) *App {
	logger.Info("pocket-points application initialized",
		"decode_workers", pool.Workers(),
		"thumbnail_width", cfg.Thumbnails.Width,
		"thumbnail_height", cfg.Thumbnails.Height)

	return &App{
		Cfg:     cfg,
		Logger:  logger,
		Roster:  svc,
		Decoder: decoder,
		Pool:    pool,
		server:  srv,
	}
}

// NewCoordinator creates a thumbnail coordinator that decodes on the shared
// worker pool at the configured thumbnail size. It is closed by Stop.
func (a *App) NewCoordinator(opts ...loader.Option) *loader.Coordinator {
	c := loader.NewCoordinator(a.Decoder, a.Pool, a.Cfg.Thumbnails.Width, a.Cfg.Thumbnails.Height, a.Logger, opts...)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		c.Close()
		return c
	}
	a.coordinators = append(a.coordinators, c)
	return c
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.Logger.Info("starting pocket-points",
		"server_port", a.Cfg.Server.Port,
		"photo_dir", a.Cfg.PhotoDir)

	if err := a.server.Start(); err != nil {
		a.Logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly. The database is closed by the
// cleanup function returned alongside the App.
func (a *App) Stop() error {
	a.Logger.Info("shutting down pocket-points services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.Logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.mu.Lock()
	a.stopped = true
	coordinators := a.coordinators
	a.coordinators = nil
	a.mu.Unlock()

	for _, c := range coordinators {
		c.Close()
	}

	// Queued decodes run against cancelled contexts and finish quickly.
	a.Pool.Stop()

	if serverErr != nil {
		a.Logger.Error("pocket-points stopped with errors", "error", serverErr)
		return serverErr
	}

	a.Logger.Info("pocket-points stopped successfully")
	return nil
}
