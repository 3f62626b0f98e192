package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/pocket-points/internal/app"
	"github.com/sevigo/pocket-points/internal/core"
	"github.com/sevigo/pocket-points/internal/loader"
	"github.com/sevigo/pocket-points/internal/roster"
)

// Lines taken by the header, status line and footer.
const chromeHeight = 8

const maxDrawnStickers = 20

const manualMarkdown = `# Pocket Points

Every student on the roster collects stickers for good work.

| Key | Action |
|-----|--------|
| ↑ / k | select previous student |
| ↓ / j | select next student |
| + | award a sticker |
| - | take back the last sticker |
| r | reload the roster and photos |
| ? | toggle this help |
| q | quit |

Photos are read from the configured photo directory and shrunk in the
background. Rows show a silhouette until their photo is ready.
`

// row is one recycled display position of the roster list.
type row struct {
	slot    *loader.Slot
	surface *thumbSurface
}

type model struct {
	styles  styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	manual  viewport.Model

	app       *app.App
	cleanup   func()
	coord     *loader.Coordinator
	poster    core.Poster
	photoPath func(*core.Student) string

	thumbWidth  int
	thumbHeight int

	students   []*core.Student
	rows       []*row
	cursor     int
	offset     int
	width      int
	height     int
	showManual bool
	status     string
	err        error
}

func initialModel(theme ThemeName) *model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(palettes[ThemeCyan].Primary)

	return &model{
		styles:      GetTheme(theme),
		keys:        defaultKeys,
		help:        help.New(),
		spinner:     sp,
		manual:      viewport.New(0, 0),
		thumbWidth:  16,
		thumbHeight: 16,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(initializeAppCmd(), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case thumbnailReadyMsg:
		msg.apply()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.manual.Width = msg.Width - 2
		m.manual.Height = max(msg.Height-chromeHeight, 1)
		m.layout()
		return m, nil

	case appInitializedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to start: %w", msg.err)
			return m, nil
		}
		m.app = msg.app
		m.cleanup = msg.cleanup
		m.photoPath = msg.app.Roster.PhotoPath
		m.thumbWidth = msg.app.Cfg.Thumbnails.Width
		m.thumbHeight = msg.app.Cfg.Thumbnails.Height
		var opts []loader.Option
		if m.poster != nil {
			opts = append(opts, loader.WithPoster(m.poster))
		}
		m.coord = msg.app.NewCoordinator(opts...)
		return m, loadStudentsCmd(m.app)

	case studentsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.students = msg.students
		m.status = fmt.Sprintf("%d students", len(m.students))
		m.layout()
		return m, nil

	case stickerChangedMsg:
		switch {
		case errors.Is(msg.err, roster.ErrNoStickers):
			m.status = m.styles.inactive.Render("no stickers to take back")
		case msg.err != nil:
			m.err = msg.err
		default:
			m.err = nil
			m.replace(msg.student)
			m.status = m.styles.success.Render(fmt.Sprintf("%s now has %d stickers", msg.student.Name, msg.student.NumStickers))
		}
		return m, nil

	case errorMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.app != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.showManual {
		switch {
		case key.Matches(msg, m.keys.Help), msg.Type == tea.KeyEsc:
			m.showManual = false
			return nil
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		}
		var cmd tea.Cmd
		m.manual, cmd = m.manual.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Help):
		m.openManual()
	case m.app == nil:
		return nil
	case key.Matches(msg, m.keys.Reload):
		m.status = "reloading..."
		return loadStudentsCmd(m.app)
	case key.Matches(msg, m.keys.AddSticker):
		if s := m.selected(); s != nil {
			return addStickerCmd(m.app, s.ID)
		}
	case key.Matches(msg, m.keys.RemoveSticker):
		if s := m.selected(); s != nil {
			return removeStickerCmd(m.app, s.ID)
		}
	}
	return nil
}

func (m *model) openManual() {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(m.manual.Width, 40)),
	)
	content := manualMarkdown
	if err == nil {
		if out, renderErr := r.Render(manualMarkdown); renderErr == nil {
			content = out
		}
	}
	m.manual.SetContent(content)
	m.manual.GotoTop()
	m.showManual = true
}

func (m *model) selected() *core.Student {
	if m.cursor < 0 || m.cursor >= len(m.students) {
		return nil
	}
	return m.students[m.cursor]
}

func (m *model) replace(student *core.Student) {
	for i, s := range m.students {
		if s.ID == student.ID {
			m.students[i] = student
			return
		}
	}
}

func (m *model) rowHeight() int {
	return max((m.thumbHeight+1)/2, 2)
}

func (m *model) visibleRows() int {
	return max((m.height-chromeHeight)/m.rowHeight(), 1)
}

// layout sizes the row pool to the window and binds every row. Rows that no
// longer fit are released so late decodes for them are dropped.
func (m *model) layout() {
	if m.coord == nil {
		return
	}
	want := m.visibleRows()
	for len(m.rows) > want {
		last := m.rows[len(m.rows)-1]
		last.slot.Release()
		m.rows = m.rows[:len(m.rows)-1]
	}
	for len(m.rows) < want {
		surface := newThumbSurface(m.thumbWidth, m.thumbHeight)
		m.rows = append(m.rows, &row{slot: loader.NewSlot(surface), surface: surface})
	}
	m.clamp()
	m.bind()
}

func (m *model) clamp() {
	m.cursor = min(max(m.cursor, 0), max(len(m.students)-1, 0))
	visible := len(m.rows)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.students)-visible, 0))
}

func (m *model) move(delta int) {
	offset := m.offset
	m.cursor += delta
	m.clamp()
	if m.offset != offset {
		m.bind()
	}
}

// bind points every row at the student it now displays. Rows past the end of
// the roster show the placeholder.
func (m *model) bind() {
	if m.coord == nil {
		return
	}
	for i, r := range m.rows {
		locator := ""
		if idx := m.offset + i; idx < len(m.students) && m.photoPath != nil {
			locator = m.photoPath(m.students[idx])
		}
		m.coord.RequestLoad(locator, r.slot)
	}
}

func (m *model) View() string {
	if m.app == nil {
		if m.err != nil {
			return "\n  " + m.styles.error.Render(m.err.Error()) + "\n\n  press q to quit\n"
		}
		return fmt.Sprintf("\n  %s loading roster...\n\n", m.spinner.View())
	}

	header := m.styles.header.Render("POCKET POINTS")
	footer := m.styles.footer.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.statsLine(),
		m.help.View(m.keys),
	))

	if m.showManual {
		return m.styles.app.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.manual.View(), footer))
	}

	var rows []string
	for i, r := range m.rows {
		idx := m.offset + i
		if idx >= len(m.students) {
			break
		}
		rows = append(rows, m.renderRow(r, m.students[idx], idx == m.cursor))
	}
	if len(rows) == 0 {
		rows = append(rows, m.styles.inactive.Render("The roster is empty. Add students with the pocket-points CLI."))
	}

	status := m.status
	if m.err != nil {
		status = m.styles.error.Render("⚠ " + m.err.Error())
	}

	return m.styles.app.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		status,
		footer,
	))
}

func (m *model) renderRow(r *row, s *core.Student, selected bool) string {
	stars := strings.Repeat("★", min(s.NumStickers, maxDrawnStickers))
	if s.NumStickers > maxDrawnStickers {
		stars += "…"
	}
	text := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.name.Render(s.Name),
		m.styles.stickers.Render(stars)+m.styles.inactive.Render(fmt.Sprintf(" %d", s.NumStickers)),
	)

	style := m.styles.row
	if selected {
		style = m.styles.selected
	}
	return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, r.surface.View(), "  ", text))
}

func (m *model) statsLine() string {
	if m.coord == nil {
		return ""
	}
	st := m.coord.Stats()
	return m.styles.inactive.Render(fmt.Sprintf(
		"photos  pending %d · shown %d · superseded %d · dropped %d · failed %d",
		st.Pending(), st.Applied, st.Superseded, st.Discarded, st.Failed,
	))
}
