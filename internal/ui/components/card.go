package components

import (
	"charm.land/lipgloss/v2"

	"github.com/jtoivan/ripasso/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for drill sections so
// prompt card, input and recap visually align.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

// PromptCard wraps a drill prompt in a rounded-border card at the given
// content width.
func PromptCard(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// CenterFrame centers content within the given dimensions.
func CenterFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
