package wire

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/wire"

	"github.com/sevigo/pocket-points/internal/app"
	"github.com/sevigo/pocket-points/internal/config"
	"github.com/sevigo/pocket-points/internal/core"
	"github.com/sevigo/pocket-points/internal/db"
	"github.com/sevigo/pocket-points/internal/imaging"
	"github.com/sevigo/pocket-points/internal/jobs"
	"github.com/sevigo/pocket-points/internal/logger"
	"github.com/sevigo/pocket-points/internal/roster"
	"github.com/sevigo/pocket-points/internal/server"
	"github.com/sevigo/pocket-points/internal/storage"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	config.LoadConfig,
	roster.New,
	db.NewDatabase,
	provideStore,
	provideDecoder,
	providePool,
	provideLoggerConfig,
	provideLogWriter,
	provideSlogLogger,
	provideDBConfig,
	wire.Bind(new(core.Decoder), new(*imaging.Decoder)),
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideLogWriter(cfg logger.Config) (io.Writer, func(), error) {
	w, closeFn, err := logger.OpenOutput(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log output: %w", err)
	}
	return w, closeFn, nil
}

func provideSlogLogger(cfg logger.Config, writer io.Writer) *slog.Logger {
	l := logger.NewLogger(cfg, writer)
	slog.SetDefault(l)
	return l
}

func provideDecoder(cfg *config.Config) *imaging.Decoder {
	return imaging.NewDecoder(imaging.WithMaxPixels(cfg.Thumbnails.MaxPixels))
}

func providePool(cfg *config.Config, logger *slog.Logger) *jobs.Pool {
	return jobs.NewPool(cfg.Thumbnails.Workers, cfg.Thumbnails.QueueSize, logger)
}

func provideStore(conn *db.DB) storage.Store {
	return storage.NewStore(conn.DB)
}
