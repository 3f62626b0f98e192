// Package config loads the application configuration from the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/pocket-points/internal/logger"
)

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// ThumbnailConfig controls thumbnail decoding.
type ThumbnailConfig struct {
	Width     int // Target width in pixels; also the placeholder width.
	Height    int // Target height in pixels; also the placeholder height.
	Workers   int
	QueueSize int
	MaxPixels int64 // Larger source images are rejected before decoding.
}

// ServerConfig holds the HTTP and terminal front-end settings.
type ServerConfig struct {
	Port  string
	Theme string
}

// Config holds the application's configuration values.
type Config struct {
	Server     ServerConfig
	Logging    logger.Config
	Database   DBConfig
	Thumbnails ThumbnailConfig
	PhotoDir   string
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("THEME", "cyan")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stderr")
	viper.SetDefault("LOG_FILE", "pocket-points.log")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_NAME", "pocket_points")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	viper.SetDefault("PHOTO_DIR", "photos")
	viper.SetDefault("THUMB_WIDTH", 16)
	viper.SetDefault("THUMB_HEIGHT", 16)
	viper.SetDefault("DECODE_WORKERS", 4)
	viper.SetDefault("DECODE_QUEUE_SIZE", 256)
	viper.SetDefault("DECODE_MAX_PIXELS", 64<<20)
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates the result. It uses the Viper library
// to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to read config file", "error", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:  viper.GetString("SERVER_PORT"),
			Theme: strings.ToLower(viper.GetString("THEME")),
		},
		Logging: logger.Config{
			Level:  strings.ToLower(viper.GetString("LOG_LEVEL")),
			Format: strings.ToLower(viper.GetString("LOG_FORMAT")),
			Output: strings.ToLower(viper.GetString("LOG_OUTPUT")),
			File:   viper.GetString("LOG_FILE"),
		},
		Database: DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		Thumbnails: ThumbnailConfig{
			Width:     viper.GetInt("THUMB_WIDTH"),
			Height:    viper.GetInt("THUMB_HEIGHT"),
			Workers:   viper.GetInt("DECODE_WORKERS"),
			QueueSize: viper.GetInt("DECODE_QUEUE_SIZE"),
			MaxPixels: viper.GetInt64("DECODE_MAX_PIXELS"),
		},
		PhotoDir: viper.GetString("PHOTO_DIR"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT must be set")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Logging.Format)
	}
	if c.Database.Host == "" || c.Database.Database == "" {
		return fmt.Errorf("DB_HOST and DB_NAME must be set")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT out of range: %d", c.Database.Port)
	}
	if c.Thumbnails.Width <= 0 || c.Thumbnails.Height <= 0 {
		return fmt.Errorf("thumbnail size must be positive, got %dx%d", c.Thumbnails.Width, c.Thumbnails.Height)
	}
	if c.Thumbnails.Workers <= 0 {
		return fmt.Errorf("DECODE_WORKERS must be positive, got %d", c.Thumbnails.Workers)
	}
	if c.Thumbnails.QueueSize <= 0 {
		return fmt.Errorf("DECODE_QUEUE_SIZE must be positive, got %d", c.Thumbnails.QueueSize)
	}
	if c.Thumbnails.MaxPixels <= 0 {
		return fmt.Errorf("DECODE_MAX_PIXELS must be positive, got %d", c.Thumbnails.MaxPixels)
	}
	return nil
}

// PhotoPath resolves a stored image name against PhotoDir. Absolute names are
// returned unchanged and an empty name stays empty.
func (c *Config) PhotoPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.PhotoDir, name)
}
