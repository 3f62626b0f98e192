package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	app      lipgloss.Style
	header   lipgloss.Style
	row      lipgloss.Style
	selected lipgloss.Style
	name     lipgloss.Style
	stickers lipgloss.Style
	footer   lipgloss.Style
	inactive lipgloss.Style
	error    lipgloss.Style
	success  lipgloss.Style
}

type ThemeName string

const (
	ThemeCyan    ThemeName = "cyan"
	ThemeMatrix  ThemeName = "matrix"
	ThemeAmber   ThemeName = "amber"
	ThemeDracula ThemeName = "dracula"
	ThemeCrayon  ThemeName = "crayon"
)

type ThemePalette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Sticker   lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Inactive  lipgloss.Color
}

var palettes = map[ThemeName]ThemePalette{
	ThemeCyan: {
		Primary:   lipgloss.Color("51"),
		Secondary: lipgloss.Color("33"),
		Sticker:   lipgloss.Color("226"),
		Success:   lipgloss.Color("46"),
		Error:     lipgloss.Color("196"),
		Inactive:  lipgloss.Color("240"),
	},
	ThemeMatrix: {
		Primary:   lipgloss.Color("82"),
		Secondary: lipgloss.Color("46"),
		Sticker:   lipgloss.Color("190"),
		Success:   lipgloss.Color("82"),
		Error:     lipgloss.Color("196"),
		Inactive:  lipgloss.Color("240"),
	},
	ThemeAmber: {
		Primary:   lipgloss.Color("220"),
		Secondary: lipgloss.Color("214"),
		Sticker:   lipgloss.Color("208"),
		Success:   lipgloss.Color("220"),
		Error:     lipgloss.Color("196"),
		Inactive:  lipgloss.Color("240"),
	},
	ThemeDracula: {
		Primary:   lipgloss.Color("141"),
		Secondary: lipgloss.Color("117"),
		Sticker:   lipgloss.Color("212"),
		Success:   lipgloss.Color("84"),
		Error:     lipgloss.Color("203"),
		Inactive:  lipgloss.Color("240"),
	},
	ThemeCrayon: {
		Primary:   lipgloss.Color("202"), // orange
		Secondary: lipgloss.Color("27"),  // blue
		Sticker:   lipgloss.Color("226"), // gold star
		Success:   lipgloss.Color("34"),
		Error:     lipgloss.Color("160"),
		Inactive:  lipgloss.Color("245"),
	},
}

func GetTheme(theme ThemeName) styles {
	if palette, ok := palettes[theme]; ok {
		return newStylesFromPalette(palette)
	}
	return newStylesFromPalette(palettes[ThemeCyan])
}

func ListThemes() []ThemeName {
	return []ThemeName{
		ThemeCyan,
		ThemeMatrix,
		ThemeAmber,
		ThemeDracula,
		ThemeCrayon,
	}
}

func newStylesFromPalette(p ThemePalette) styles {
	return styles{
		app: lipgloss.NewStyle().Margin(0, 1),
		header: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(0, 2),
		row: lipgloss.NewStyle().
			Border(lipgloss.HiddenBorder(), false, false, false, true).
			PaddingLeft(1),
		selected: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(p.Secondary).
			PaddingLeft(1),
		name:     lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		stickers: lipgloss.NewStyle().Foreground(p.Sticker),
		footer: lipgloss.NewStyle().
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.Primary),
		inactive: lipgloss.NewStyle().Foreground(p.Inactive),
		error:    lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		success:  lipgloss.NewStyle().Foreground(p.Success).Bold(true),
	}
}
