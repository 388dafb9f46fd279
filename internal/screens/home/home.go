// Package home implements the start screen: one menu entry per pack and
// direction, plus history.
package home

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/router"
	"github.com/jtoivan/ripasso/internal/screen"
	"github.com/jtoivan/ripasso/internal/screens/drill"
	"github.com/jtoivan/ripasso/internal/screens/historyview"
	"github.com/jtoivan/ripasso/internal/screens/verbdrill"
	"github.com/jtoivan/ripasso/internal/store"
	"github.com/jtoivan/ripasso/internal/ui/components"
	"github.com/jtoivan/ripasso/internal/ui/theme"
)

// Model is the home screen.
type Model struct {
	store *store.Store

	generation int
	loading    bool
	loadErr    error

	menu components.Menu
}

type loadedMsg struct {
	generation int
	metas      []pack.Meta
	due        int
	err        error
}

// New creates the home screen.
func New(st *store.Store) *Model {
	return &Model{store: st, loading: true}
}

func (m *Model) Init() tea.Cmd {
	m.generation++
	gen := m.generation
	st := m.store

	return func() tea.Msg {
		userDir, err := pack.UserPackDir()
		if err != nil {
			return loadedMsg{generation: gen, err: err}
		}
		metas, err := pack.Available(userDir)
		if err != nil {
			return loadedMsg{generation: gen, err: err}
		}
		cards, err := st.AllCards(context.Background())
		if err != nil {
			return loadedMsg{generation: gen, err: err}
		}

		now := time.Now().UnixMilli()
		due := 0
		for _, card := range cards {
			if card.Attempts > 0 && card.IsDue(now) {
				due++
			}
		}
		return loadedMsg{generation: gen, metas: metas, due: due}
	}
}

func (m *Model) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.menu = m.buildMenu(msg.metas)
		return m, func() tea.Msg { return screen.DueCountMsg(msg.due) }

	case tea.KeyMsg:
		if m.loading || m.loadErr != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) buildMenu(metas []pack.Meta) components.Menu {
	var items []components.MenuItem

	// Screens are built at selection time so every drill starts fresh.
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	for _, meta := range metas {
		meta := meta
		switch meta.Kind {
		case pack.KindVocab:
			items = append(items,
				components.MenuItem{
					Label: meta.Title,
					Hint:  "recall",
					Action: push(func() screen.Screen {
						return drill.New(m.store, meta, pack.SrcToDst)
					}),
				},
				components.MenuItem{
					Label: meta.Title,
					Hint:  "produce",
					Action: push(func() screen.Screen {
						return drill.New(m.store, meta, pack.DstToSrc)
					}),
				},
			)
		case pack.KindVerbs:
			items = append(items, components.MenuItem{
				Label: meta.Title,
				Hint:  "conjugation",
				Action: push(func() screen.Screen {
					return verbdrill.New(m.store, meta)
				}),
			})
		}
	}

	items = append(items,
		components.MenuItem{
			Label: "History",
			Action: push(func() screen.Screen {
				return historyview.New(m.store)
			}),
		},
		components.MenuItem{
			Label: "Quit",
			Action: func() tea.Cmd {
				return tea.Quit
			},
		},
	)
	return components.NewMenu(items)
}

func (m *Model) Title() string {
	return "Choose a drill"
}

func (m *Model) View(width, height int) string {
	if m.loading {
		return components.CenterFrame(theme.Hint.Render("Loading packs..."), width, height)
	}
	if m.loadErr != nil {
		return components.CenterFrame(
			theme.Incorrect.Render("Could not load packs: "+m.loadErr.Error()),
			width, height)
	}

	title := theme.Title.Render("Ripasso") + "\n" +
		theme.Subtitle.Render("Italian drills, one word at a time") + "\n"
	body := lipgloss.JoinVertical(lipgloss.Center, title, m.menu.View())
	return components.CenterFrame(body, width, height)
}

// Refresh reloads the pack list and due counts, used when returning from
// a drill.
func (m *Model) Refresh() tea.Cmd {
	m.loading = true
	return m.Init()
}
