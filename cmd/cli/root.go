package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/pocket-points/internal/app"
	"github.com/sevigo/pocket-points/internal/wire"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
	stickerColor = color.New(color.FgHiYellow)
)

var rootCmd = &cobra.Command{
	Use:          "pocket-points",
	Short:        "pocket-points manages the class roster and its sticker chart.",
	Long:         `A CLI for the pocket-points roster: add and remove students, import a class list, award stickers and check that every photo can be shown.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("photo-dir", "", "Directory student photos are read from")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		"PHOTO_DIR": "photo-dir",
		"LOG_LEVEL": "log-level",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			slog.Error("Error binding flag", "flag", flag, "error", err)
			os.Exit(1)
		}
	}
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// withApp initializes the application services, runs fn and shuts them down.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx := context.Background()

	a, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize app services: %w", err)
	}
	defer cleanup()
	defer func() {
		if err := a.Stop(); err != nil {
			slog.Error("failed to stop application", "error", err)
		}
	}()

	return fn(ctx, a)
}
