package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/pocket-points/internal/config"
	"github.com/sevigo/pocket-points/internal/core"
)

func main() {
	// Logs written to the terminal would tear the alternate screen.
	if os.Getenv("LOG_OUTPUT") == "" {
		_ = os.Setenv("LOG_OUTPUT", "file")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	themeFlag := flag.String("theme", "", "UI theme (cyan, matrix, amber, dracula, crayon)")
	listThemes := flag.Bool("list-themes", false, "List all available themes")
	flag.Parse()

	if *listThemes {
		fmt.Println("Available themes:")
		for _, theme := range ListThemes() {
			fmt.Printf("  - %s\n", theme)
		}
		os.Exit(0)
	}

	selectedTheme := *themeFlag
	if selectedTheme == "" {
		selectedTheme = cfg.Server.Theme
	}
	theme := ThemeName(selectedTheme)
	if !slices.Contains(ListThemes(), theme) {
		fmt.Printf("Invalid theme '%s'. Use --list-themes to see available options.\n", theme)
		os.Exit(1)
	}

	m := initialModel(theme)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.poster = core.PostFunc(func(fn func()) {
		p.Send(thumbnailReadyMsg{apply: fn})
	})

	_, runErr := p.Run()

	if m.app != nil {
		if err := m.app.Stop(); err != nil {
			slog.Error("failed to stop application", "error", err)
		}
	}
	if m.cleanup != nil {
		m.cleanup()
	}

	if runErr != nil {
		slog.Error("error running program", "error", runErr)
		fmt.Printf("Error running program: %v\n", runErr)
		os.Exit(1)
	}
}
