package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/pocket-points/internal/app"
	"github.com/sevigo/pocket-points/internal/wire"
)

func initializeAppCmd() tea.Cmd {
	return func() tea.Msg {
		app, cleanup, err := wire.InitializeApp(context.Background())
		if err != nil {
			return appInitializedMsg{err: err}
		}
		return appInitializedMsg{app: app, cleanup: cleanup}
	}
}

func loadStudentsCmd(app *app.App) tea.Cmd {
	return func() tea.Msg {
		students, err := app.Roster.List(context.Background())
		return studentsLoadedMsg{students: students, err: err}
	}
}

func addStickerCmd(app *app.App, id int64) tea.Cmd {
	return func() tea.Msg {
		student, err := app.Roster.AddSticker(context.Background(), id)
		return stickerChangedMsg{student: student, err: err}
	}
}

func removeStickerCmd(app *app.App, id int64) tea.Cmd {
	return func() tea.Msg {
		student, err := app.Roster.RemoveLastSticker(context.Background(), id)
		return stickerChangedMsg{student: student, err: err}
	}
}
