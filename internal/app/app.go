// Package app wires the Bubble Tea program: screen stack, frame layout
// and global key handling.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/jtoivan/ripasso/internal/router"
	"github.com/jtoivan/ripasso/internal/screen"
	"github.com/jtoivan/ripasso/internal/screens/home"
	"github.com/jtoivan/ripasso/internal/store"
	"github.com/jtoivan/ripasso/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	home   *home.Model
	width  int
	height int
	due    int
}

func newAppModel(st *store.Store) AppModel {
	homeScreen := home.New(st)
	return AppModel{
		router: router.New(homeScreen),
		home:   homeScreen,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.home.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.DueCountMsg:
		m.due = int(msg)
		return m, nil

	case router.PopScreenMsg:
		cmd := m.router.Pop()
		if m.router.Depth() == 1 {
			// Back on the home screen: due counts may have changed.
			return m, tea.Batch(cmd, m.home.Refresh())
		}
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.due, m.width)

	var footerHints []layout.KeyHint
	if provider, ok := active.(screen.KeyHintProvider); ok {
		footerHints = provider.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program over an opened store.
func Run(st *store.Store) error {
	p := tea.NewProgram(newAppModel(st))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
