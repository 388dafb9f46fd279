// Package historyview implements the review history screen: overall
// totals, per-pack accuracy and a recent daily activity strip.
package historyview

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/jtoivan/ripasso/internal/history"
	"github.com/jtoivan/ripasso/internal/screen"
	"github.com/jtoivan/ripasso/internal/store"
	"github.com/jtoivan/ripasso/internal/ui/components"
	"github.com/jtoivan/ripasso/internal/ui/theme"
)

// ActivityDays is how many trailing days the activity strip covers.
const ActivityDays = 14

// Model is the history screen.
type Model struct {
	store *store.Store

	generation int
	loading    bool
	loadErr    error

	summary  history.Summary
	packs    []history.PackSummary
	activity []history.DailyAttemptCount
}

type loadedMsg struct {
	generation int
	summary    history.Summary
	packs      []history.PackSummary
	activity   []history.DailyAttemptCount
	err        error
}

// New creates the history screen.
func New(st *store.Store) *Model {
	return &Model{store: st, loading: true}
}

func (m *Model) Init() tea.Cmd {
	m.generation++
	gen := m.generation
	st := m.store

	return func() tea.Msg {
		ctx := context.Background()
		events, err := st.AllEvents(ctx)
		if err != nil {
			return loadedMsg{generation: gen, err: err}
		}
		cards, err := st.AllCards(ctx)
		if err != nil {
			return loadedMsg{generation: gen, err: err}
		}
		now := time.Now().UnixMilli()
		return loadedMsg{
			generation: gen,
			summary:    history.BuildSummary(events, cards),
			packs:      history.BuildPackSummaries(events),
			activity:   history.DailyAttemptCounts(events, now, ActivityDays),
		}
	}
}

func (m *Model) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	loaded, ok := msg.(loadedMsg)
	if !ok || loaded.generation != m.generation {
		return m, nil
	}
	m.loading = false
	if loaded.err != nil {
		m.loadErr = loaded.err
		return m, nil
	}
	m.summary = loaded.summary
	m.packs = loaded.packs
	m.activity = loaded.activity
	return m, nil
}

func (m *Model) Title() string {
	return "History"
}

func (m *Model) View(width, height int) string {
	cw := components.ContentWidth(width)

	if m.loading {
		return components.CenterFrame(theme.Hint.Render("Loading history..."), width, height)
	}
	if m.loadErr != nil {
		return components.CenterFrame(
			theme.Incorrect.Render("Could not load history: "+m.loadErr.Error()),
			width, height)
	}
	if m.summary.TotalAttempts == 0 {
		return components.CenterFrame(
			theme.Hint.Render("No reviews yet. Finish a drill first!"),
			width, height)
	}

	parts := []string{
		m.totalsView(cw),
		"",
		m.packsView(),
		"",
		m.activityView(),
	}
	return components.CenterFrame(lipgloss.JoinVertical(lipgloss.Center, parts...), width, height)
}

func (m *Model) totalsView(cw int) string {
	s := m.summary
	lines := theme.Body.Render(fmt.Sprintf("Attempts: %d    Correct: %d    Missed: %d",
		s.TotalAttempts, s.Correct, s.Incorrect)) + "\n" +
		theme.Body.Render(fmt.Sprintf("Words seen: %d", s.UniqueItems)) + "\n\n" +
		components.NewProgressBar("Accuracy", float64(s.Accuracy)/100, true, cw-10).View()

	if s.FirstReviewedAt > 0 {
		first := time.UnixMilli(s.FirstReviewedAt).Format("2 Jan 2006")
		last := time.UnixMilli(s.LastReviewedAt).Format("2 Jan 2006")
		lines += "\n" + theme.Hint.Render(fmt.Sprintf("Reviewing since %s, last on %s", first, last))
	}
	return components.PromptCard(lines, cw)
}

func (m *Model) packsView() string {
	header := theme.Subtitle.Render("Per pack")
	var rows string
	for _, p := range m.packs {
		rows += theme.Body.Render(fmt.Sprintf("  %-24s %4d attempts  %3d%%", p.PackID, p.Attempts, p.Accuracy)) + "\n"
	}
	return header + "\n" + rows
}

func (m *Model) activityView() string {
	header := theme.Subtitle.Render(fmt.Sprintf("Last %d days", ActivityDays))

	peak := 1
	for _, day := range m.activity {
		if day.Count > peak {
			peak = day.Count
		}
	}

	blocks := []rune(" ▁▂▃▄▅▆▇█")
	var strip string
	for _, day := range m.activity {
		idx := day.Count * (len(blocks) - 1) / peak
		strip += string(blocks[idx])
	}

	today := m.activity[len(m.activity)-1]
	return header + "\n" +
		theme.Body.Render(strip) + "\n" +
		theme.Hint.Render(fmt.Sprintf("today: %d answers", today.Count))
}
