// Package drill implements the vocabulary drill screen: an SRS-ordered
// queue of typed prompt/answer cards with one-retry near-miss handling.
package drill

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/router"
	"github.com/jtoivan/ripasso/internal/screen"
	"github.com/jtoivan/ripasso/internal/session"
	"github.com/jtoivan/ripasso/internal/srs"
	"github.com/jtoivan/ripasso/internal/store"
	"github.com/jtoivan/ripasso/internal/ui/components"
	"github.com/jtoivan/ripasso/internal/ui/layout"
	"github.com/jtoivan/ripasso/internal/ui/theme"
)

// Model is the vocabulary drill screen.
type Model struct {
	store     *store.Store
	meta      pack.Meta
	direction pack.Direction

	// generation guards async results: responses carrying a stale
	// generation are dropped.
	generation int

	loading bool
	loadErr error
	saveErr error

	pack  *pack.VocabPack
	state session.State
	input components.AnswerInput

	// showRecap delays the end-of-session view until the learner has
	// acknowledged the last card's feedback.
	showRecap bool
	endMenu   components.Menu
}

type loadedMsg struct {
	generation int
	pack       *pack.VocabPack
	state      session.State
	err        error
}

type savedMsg struct {
	generation int
	err        error
}

// New creates a vocabulary drill screen for one pack and direction.
func New(st *store.Store, meta pack.Meta, direction pack.Direction) *Model {
	return &Model{
		store:     st,
		meta:      meta,
		direction: direction,
		loading:   true,
		input:     components.NewAnswerInput("type your answer"),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.input.Init(), m.load())
}

func (m *Model) load() tea.Cmd {
	m.generation++
	gen := m.generation
	st, meta, direction := m.store, m.meta, m.direction

	return func() tea.Msg {
		p, err := meta.LoadVocab()
		if err != nil {
			return loadedMsg{generation: gen, err: err}
		}
		cards, err := st.CardsForPack(context.Background(), p.ID)
		if err != nil {
			return loadedMsg{generation: gen, err: err}
		}
		order := srs.BuildOrder(p.ItemIDs(), direction, cards, srs.QueueOptions{
			Now:         time.Now().UnixMilli(),
			SessionSize: srs.DefaultSessionSize,
			MaxNew:      srs.DefaultSessionSize,
			MaxReview:   srs.DefaultSessionSize,
		})
		return loadedMsg{generation: gen, pack: p, state: session.New(p, direction, order)}
	}
}

// recordReview persists a resolved answer without blocking the UI.
func (m *Model) recordReview(itemID string, correct bool) tea.Cmd {
	gen := m.generation
	st := m.store
	seed := srs.Seed{PackID: m.pack.ID, ItemID: itemID, Direction: m.direction}
	input := srs.ReviewInput{Correct: correct, Now: time.Now().UnixMilli()}

	return func() tea.Msg {
		_, err := st.RecordReview(context.Background(), seed, input)
		return savedMsg{generation: gen, err: err}
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
		m.pack = msg.pack
		m.state = msg.state
		if len(m.state.Order) == 0 {
			m.state.Complete = true
			m.showRecap = true
			m.setupEndMenu()
		}
		return m, nil

	case savedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.saveErr = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if !m.loading && !m.state.Complete {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	if m.loadErr != nil {
		if msg.String() == "enter" {
			return m, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return m, nil
	}

	if m.state.Complete && m.showRecap {
		var cmd tea.Cmd
		m.endMenu, cmd = m.endMenu.Update(msg)
		return m, cmd
	}
	if m.state.Complete {
		if msg.String() == "enter" {
			m.showRecap = true
		}
		return m, nil
	}

	if msg.String() != "enter" {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch m.state.LastResult {
	case session.ResultCorrect, session.ResultIncorrect:
		m.state = session.NextCard(m.state)
		m.input.Reset()
		return m, nil

	default:
		answer := m.input.Value()
		if answer == "" {
			return m, nil
		}
		item, ok := session.CurrentItem(m.pack, m.state)
		if !ok {
			return m, nil
		}
		m.state = session.SubmitAnswer(m.pack, m.state, answer)

		switch m.state.LastResult {
		case session.ResultAlmost:
			m.input.Reset()
			return m, nil
		case session.ResultCorrect, session.ResultIncorrect:
			m.input.Submit(m.state.LastResult == session.ResultCorrect)
			if m.state.Complete {
				m.setupEndMenu()
			}
			return m, m.recordReview(item.ID, m.state.LastResult == session.ResultCorrect)
		}
		return m, nil
	}
}

func (m *Model) setupEndMenu() {
	items := []components.MenuItem{}
	if n := len(m.state.IncorrectItems); n > 0 {
		items = append(items, components.MenuItem{
			Label: fmt.Sprintf("Redo missed words (%d)", n),
			Action: func() tea.Cmd {
				m.state = session.RedoIncorrect(m.pack, m.state)
				m.showRecap = false
				m.input.Reset()
				return nil
			},
		})
	}
	items = append(items, components.MenuItem{
		Label: "Back to menu",
		Action: func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		},
	})
	m.endMenu = components.NewMenu(items)
}

func (m *Model) Title() string {
	return m.meta.Title
}

// KeyHints provides drill-specific footer hints.
func (m *Model) KeyHints() []layout.KeyHint {
	if m.state.Complete {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit / Next"},
		{Key: "Esc", Description: "Leave drill"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m *Model) View(width, height int) string {
	cw := components.ContentWidth(width)

	switch {
	case m.loading:
		return components.CenterFrame(theme.Hint.Render("Loading pack..."), width, height)
	case m.loadErr != nil:
		body := theme.Incorrect.Render("Could not start the drill") + "\n\n" +
			theme.Body.Render(m.loadErr.Error()) + "\n\n" +
			theme.Hint.Render("Press Enter to go back")
		return components.CenterFrame(components.PromptCard(body, cw), width, height)
	case m.state.Complete && m.showRecap:
		return components.CenterFrame(m.completeView(cw), width, height)
	}

	return components.CenterFrame(m.drillView(cw), width, height)
}

func (m *Model) drillView(cw int) string {
	item, ok := session.CurrentItem(m.pack, m.state)
	if !ok {
		return ""
	}

	progress := theme.Subtitle.Render(fmt.Sprintf(
		"Word %d of %d    %d correct   %d missed",
		m.state.CurrentIndex+1, len(m.state.Order),
		m.state.SessionCorrect, m.state.SessionIncorrect,
	))

	prompt := theme.Title.Render(session.PromptText(item, m.state.Direction))
	if item.IPA != "" && m.state.Direction == pack.DstToSrc {
		prompt += "\n" + theme.Hint.Render("/"+item.IPA+"/")
	}

	parts := []string{
		progress,
		"",
		components.PromptCard(prompt, cw),
		"",
		m.input.View(),
	}

	switch m.state.LastResult {
	case session.ResultCorrect:
		note := ""
		if m.state.AccentIssue {
			note = session.AnswerText(item, m.state.Direction)
		}
		parts = append(parts, "", components.FeedbackCorrect(note))
		if len(item.Examples) > 0 {
			ex := item.Examples[0]
			example := theme.Hint.Render(ex.Src)
			if ex.Dst != "" {
				example += "\n" + theme.Hint.Render(ex.Dst)
			}
			parts = append(parts, "", example)
		}
		parts = append(parts, "", theme.Hint.Render("Press Enter to continue"))
	case session.ResultAlmost:
		parts = append(parts, "", components.FeedbackAlmost())
	case session.ResultIncorrect:
		parts = append(parts, "",
			components.FeedbackIncorrect(session.AnswerText(item, m.state.Direction)),
			"", theme.Hint.Render("Press Enter to continue"))
	}

	if m.saveErr != nil {
		parts = append(parts, "", theme.Incorrect.Render("Warning: progress not saved: "+m.saveErr.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) completeView(cw int) string {
	total := m.state.SessionCorrect + m.state.SessionIncorrect
	headline := theme.Title.Render("Session complete!")
	score := theme.Body.Render(fmt.Sprintf("%d of %d correct", m.state.SessionCorrect, total))
	if total == 0 {
		score = theme.Body.Render("Nothing to review in this pack right now.")
	}

	bar := components.NewProgressBar("", percentOf(m.state.SessionCorrect, total), true, cw-8)

	parts := []string{
		headline,
		"",
		score,
		bar.View(),
		"",
		m.endMenu.View(),
	}
	return components.PromptCard(lipgloss.JoinVertical(lipgloss.Center, parts...), cw)
}

func percentOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
