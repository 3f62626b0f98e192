package main

import (
	"github.com/sevigo/pocket-points/internal/app"
	"github.com/sevigo/pocket-points/internal/core"
)

// Indicates that the core application services have been initialized.
type appInitializedMsg struct {
	app     *app.App
	cleanup func()
	err     error
}

type studentsLoadedMsg struct {
	students []*core.Student
	err      error
}

type stickerChangedMsg struct {
	student *core.Student
	err     error
}

// Carries a thumbnail completion from a decode worker onto the update loop.
type thumbnailReadyMsg struct {
	apply func()
}

// A generic error message for reporting failures from commands.
type errorMsg struct{ err error }

func (e errorMsg) Error() string {
	return e.err.Error()
}
