package components

import (
	"fmt"

	"github.com/jtoivan/ripasso/internal/ui/theme"
)

// FeedbackCorrect renders the correct-answer banner, with an optional
// accent note when the answer matched only after stripping diacritics.
func FeedbackCorrect(accentNote string) string {
	s := theme.Correct.Render("✓ Correct!")
	if accentNote != "" {
		s += "\n" + theme.Hint.Render("Watch the accents: "+accentNote)
	}
	return s
}

// FeedbackAlmost renders the one-retry near-miss banner.
func FeedbackAlmost() string {
	return theme.Almost.Render("~ Almost! One more try.")
}

// FeedbackIncorrect renders the miss banner with the expected answer.
func FeedbackIncorrect(expected string) string {
	return theme.Incorrect.Render("✗ Incorrect.") + " " +
		theme.Body.Render(fmt.Sprintf("Answer: %s", expected))
}
