package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/pocket-points/internal/app"
	"github.com/sevigo/pocket-points/internal/core"
)

var stickerCmd = &cobra.Command{
	Use:   "sticker",
	Short: "Award or take back stickers",
}

func stickerRunE(change func(ctx context.Context, a *app.App, id int64) (*core.Student, error)) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		id, err := parseStudentID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			student, err := change(ctx, a, id)
			if err != nil {
				return err
			}
			successColor.Printf("✓ %s: ", student.Name)
			stickerColor.Printf("%s", strings.Repeat("★", min(student.NumStickers, 20)))
			dimColor.Printf(" %d\n", student.NumStickers)
			return nil
		})
	}
}

var stickerAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Award one sticker",
	Args:  cobra.ExactArgs(1),
	RunE: stickerRunE(func(ctx context.Context, a *app.App, id int64) (*core.Student, error) {
		return a.Roster.AddSticker(ctx, id)
	}),
}

var stickerRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Take back the most recent sticker",
	Args:  cobra.ExactArgs(1),
	RunE: stickerRunE(func(ctx context.Context, a *app.App, id int64) (*core.Student, error) {
		return a.Roster.RemoveLastSticker(ctx, id)
	}),
}

var stickerClearCmd = &cobra.Command{
	Use:   "clear <id>",
	Short: "Clear every sticker of a student",
	Args:  cobra.ExactArgs(1),
	RunE: stickerRunE(func(ctx context.Context, a *app.App, id int64) (*core.Student, error) {
		return a.Roster.ClearStickers(ctx, id)
	}),
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	stickerCmd.AddCommand(stickerAddCmd, stickerRemoveCmd, stickerClearCmd)
	rootCmd.AddCommand(stickerCmd)
}
