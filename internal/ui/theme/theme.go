package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#10B981") // Emerald
	Secondary = lipgloss.Color("#38BDF8") // Sky
	Accent    = lipgloss.Color("#FBBF24") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F59E0B") // Dark Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Almost = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)
