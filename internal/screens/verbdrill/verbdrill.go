// Package verbdrill implements the verb drill screen: infinitive,
// six present-tense persons, then a scored recap per verb.
package verbdrill

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/router"
	"github.com/jtoivan/ripasso/internal/screen"
	"github.com/jtoivan/ripasso/internal/srs"
	"github.com/jtoivan/ripasso/internal/store"
	"github.com/jtoivan/ripasso/internal/ui/components"
	"github.com/jtoivan/ripasso/internal/ui/layout"
	"github.com/jtoivan/ripasso/internal/ui/theme"
	"github.com/jtoivan/ripasso/internal/verbsession"
)

var personLabels = map[pack.Person]string{
	pack.PersonIo:     "io",
	pack.PersonTu:     "tu",
	pack.PersonLuiLei: "lui/lei",
	pack.PersonNoi:    "noi",
	pack.PersonVoi:    "voi",
	pack.PersonLoro:   "loro",
}

// Model is the verb drill screen.
type Model struct {
	store *store.Store
	meta  pack.Meta

	generation int

	loading bool
	loadErr error
	saveErr error

	pack  *pack.VerbPack
	state verbsession.State
	input components.AnswerInput

	showRecap bool
	endMenu   components.Menu
}

type loadedMsg struct {
	generation int
	pack       *pack.VerbPack
	state      verbsession.State
	err        error
}

type savedMsg struct {
	generation int
	err        error
}

// New creates a verb drill screen for one pack.
func New(st *store.Store, meta pack.Meta) *Model {
	return &Model{
		store:   st,
		meta:    meta,
		loading: true,
		input:   components.NewAnswerInput("type the form"),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.input.Init(), m.load())
}

func (m *Model) load() tea.Cmd {
	m.generation++
	gen := m.generation
	st, meta := m.store, m.meta

	return func() tea.Msg {
		p, err := meta.LoadVerbs()
		if err != nil {
			return loadedMsg{generation: gen, err: err}
		}
		cards, err := st.CardsForPack(context.Background(), p.ID)
		if err != nil {
			return loadedMsg{generation: gen, err: err}
		}
		order := srs.BuildOrder(p.ItemIDs(), pack.SrcToDst, cards, srs.QueueOptions{
			Now:         time.Now().UnixMilli(),
			SessionSize: srs.DefaultSessionSize,
			MaxNew:      srs.DefaultSessionSize,
			MaxReview:   srs.DefaultSessionSize,
		})
		return loadedMsg{generation: gen, pack: p, state: verbsession.New(p, order)}
	}
}

// recordReview persists one finalized verb with its SM-2 quality.
func (m *Model) recordReview(itemID string, summary verbsession.ScoreSummary) tea.Cmd {
	gen := m.generation
	st := m.store
	seed := srs.Seed{PackID: m.pack.ID, ItemID: itemID, Direction: pack.SrcToDst}
	input := srs.ReviewInput{
		Correct:    summary.Correct,
		Now:        time.Now().UnixMilli(),
		Quality:    float64(summary.Quality),
		HasQuality: true,
	}

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

	if !m.loading && !m.state.Complete && m.state.Phase != verbsession.PhaseRecap {
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

	if m.state.Complete {
		if !m.showRecap {
			if msg.String() == "enter" {
				m.showRecap = true
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.endMenu, cmd = m.endMenu.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+s":
		// Skip the rest of this verb; unanswered steps count as revealed.
		if m.state.Phase != verbsession.PhaseRecap {
			item, _ := verbsession.CurrentItem(m.pack, m.state)
			m.state = verbsession.ForceComplete(m.pack, m.state)
			m.input.Reset()
			if m.state.LastScore != nil {
				return m, m.recordReview(item.ID, *m.state.LastScore)
			}
		}
		return m, nil

	case "enter":
		return m.handleEnter()

	default:
		if m.state.Phase != verbsession.PhaseRecap {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleEnter() (screen.Screen, tea.Cmd) {
	item, ok := verbsession.CurrentItem(m.pack, m.state)
	if !ok {
		return m, nil
	}

	switch m.state.Phase {
	case verbsession.PhaseInfinitive:
		answer := m.input.Value()
		if answer == "" {
			return m, nil
		}
		m.state = verbsession.SubmitInfinitive(m.pack, m.state, answer)
		m.input.Reset()
		return m, nil

	case verbsession.PhaseConjugation:
		person, ok := m.activePerson()
		if !ok {
			return m, nil
		}
		answer := m.input.Value()
		if answer == "" {
			return m, nil
		}
		m.state = verbsession.SubmitConjugation(m.pack, m.state, person, answer)
		m.input.Reset()
		if m.state.Phase == verbsession.PhaseRecap && m.state.LastScore != nil {
			return m, m.recordReview(item.ID, *m.state.LastScore)
		}
		return m, nil

	case verbsession.PhaseRecap:
		m.state = verbsession.NextStep(m.state)
		if m.state.Complete {
			m.showRecap = true
			m.setupEndMenu()
		}
		return m, nil
	}
	return m, nil
}

// activePerson returns the first unresolved person in drill order.
func (m *Model) activePerson() (pack.Person, bool) {
	for i, person := range pack.Persons {
		if m.state.Persons[i].Result == "" {
			return person, true
		}
	}
	return "", false
}

func (m *Model) setupEndMenu() {
	items := []components.MenuItem{}
	if n := len(m.state.IncorrectItems); n > 0 {
		items = append(items, components.MenuItem{
			Label: fmt.Sprintf("Redo missed verbs (%d)", n),
			Action: func() tea.Cmd {
				m.state = verbsession.RedoIncorrect(m.pack, m.state)
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

// KeyHints provides verb-drill footer hints.
func (m *Model) KeyHints() []layout.KeyHint {
	if m.state.Complete {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+S", Description: "Skip verb"},
		{Key: "Esc", Description: "Leave drill"},
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

	item, ok := verbsession.CurrentItem(m.pack, m.state)
	if !ok {
		return ""
	}

	var body string
	switch m.state.Phase {
	case verbsession.PhaseInfinitive:
		body = m.infinitiveView(item, cw)
	case verbsession.PhaseConjugation:
		body = m.conjugationView(item, cw)
	case verbsession.PhaseRecap:
		body = m.recapView(item, cw)
	}
	return components.CenterFrame(body, width, height)
}

func (m *Model) infinitiveView(item pack.VerbItem, cw int) string {
	progress := theme.Subtitle.Render(fmt.Sprintf(
		"Verb %d of %d", m.state.CurrentIndex+1, len(m.state.Order)))

	prompt := theme.Title.Render(item.Dst) + "\n" +
		theme.Hint.Render("What is the infinitive?")

	parts := []string{
		progress,
		"",
		components.PromptCard(prompt, cw),
		"",
		m.input.View(),
	}
	if m.state.InfinitiveFeedback == verbsession.FeedbackAlmost {
		parts = append(parts, "", components.FeedbackAlmost())
	}
	if m.saveErr != nil {
		parts = append(parts, "", theme.Incorrect.Render("Warning: progress not saved: "+m.saveErr.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) conjugationView(item pack.VerbItem, cw int) string {
	progress := theme.Subtitle.Render(fmt.Sprintf(
		"Verb %d of %d", m.state.CurrentIndex+1, len(m.state.Order)))

	header := theme.Title.Render(item.Src.Display())
	if m.state.Infinitive.Result == verbsession.StepRevealed {
		header += "  " + theme.Incorrect.Render("(revealed)")
	}

	var table string
	activeSeen := false
	for i, person := range pack.Persons {
		step := m.state.Persons[i]
		label := fmt.Sprintf("%-8s", personLabels[person])
		expected := item.Conjugations.Present[person]

		switch {
		case step.Result == verbsession.StepCorrectFirst, step.Result == verbsession.StepCorrectSecond:
			table += theme.Correct.Render("  ✓ "+label) + theme.Body.Render(expected.Display()) + "\n"
		case step.Result == verbsession.StepRevealed:
			table += theme.Incorrect.Render("  ✗ "+label) + theme.Body.Render(expected.Display()) + "\n"
		case !activeSeen:
			activeSeen = true
			line := theme.Selected.Render("  ▸ "+label) + m.input.View()
			if m.state.PersonFeedback[i] == verbsession.FeedbackAlmost {
				line += "  " + components.FeedbackAlmost()
			}
			table += line + "\n"
		default:
			table += theme.Hint.Render("    "+label+"···") + "\n"
		}
	}

	parts := []string{
		progress,
		"",
		components.PromptCard(header+"\n\n"+table, cw),
	}
	if m.saveErr != nil {
		parts = append(parts, "", theme.Incorrect.Render("Warning: progress not saved: "+m.saveErr.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) recapView(item pack.VerbItem, cw int) string {
	summary := m.state.LastScore
	if summary == nil {
		return ""
	}

	headline := theme.Title.Render(item.Src.Display())
	score := theme.Body.Render(fmt.Sprintf("%.1f / %d points", summary.Points, summary.MaxPoints))
	verdict := theme.Correct.Render("Passed")
	if !summary.Correct {
		verdict = theme.Incorrect.Render("Needs another round")
	}

	var table string
	for i, person := range pack.Persons {
		label := fmt.Sprintf("%-8s", personLabels[person])
		expected := item.Conjugations.Present[person].Display()
		switch m.state.Persons[i].Result {
		case verbsession.StepCorrectFirst:
			table += theme.Correct.Render("  ✓ "+label) + theme.Body.Render(expected) + "\n"
		case verbsession.StepCorrectSecond:
			table += theme.Almost.Render("  ~ "+label) + theme.Body.Render(expected) + "\n"
		default:
			table += theme.Incorrect.Render("  ✗ "+label) + theme.Body.Render(expected) + "\n"
		}
	}

	parts := []string{
		headline,
		"",
		score + "  " + verdict,
		"",
		table,
		theme.Hint.Render("Press Enter to continue"),
	}
	return components.PromptCard(lipgloss.JoinVertical(lipgloss.Center, parts...), cw)
}

func (m *Model) completeView(cw int) string {
	total := m.state.SessionCorrect + m.state.SessionIncorrect
	headline := theme.Title.Render("Verb session complete!")
	score := theme.Body.Render(fmt.Sprintf("%d of %d verbs passed", m.state.SessionCorrect, total))
	if total == 0 {
		score = theme.Body.Render("Nothing to review in this pack right now.")
	}

	parts := []string{
		headline,
		"",
		score,
		"",
		m.endMenu.View(),
	}
	return components.PromptCard(lipgloss.JoinVertical(lipgloss.Center, parts...), cw)
}
