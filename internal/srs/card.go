// Package srs implements the SM-2 style review scheduler and the session
// queue builder. All functions are pure: they take state values and return
// new state values.
package srs

import (
	"fmt"
	"math"

	"github.com/jtoivan/ripasso/internal/pack"
)

// Result is the outcome of a resolved review.
type Result string

const (
	ResultCorrect   Result = "correct"
	ResultIncorrect Result = "incorrect"
)

// Valid reports whether r is a known review result.
func (r Result) Valid() bool {
	return r == ResultCorrect || r == ResultIncorrect
}

const (
	// DefaultEaseFactor is the ease factor assigned to new cards.
	DefaultEaseFactor = 2.3
	// MinEaseFactor is the SM-2 floor below which ease never drops.
	MinEaseFactor = 1.3
	// DayMillis is one day in epoch milliseconds.
	DayMillis = 24 * 60 * 60 * 1000
)

// Card is the spaced-repetition state for one (pack, item, direction)
// triple. All timestamps are epoch milliseconds; zero means "never".
type Card struct {
	ID             string         `json:"id"`
	PackID         string         `json:"packId"`
	ItemID         string         `json:"itemId"`
	Direction      pack.Direction `json:"direction"`
	Attempts       int            `json:"attempts"`
	Correct        int            `json:"correct"`
	Incorrect      int            `json:"incorrect"`
	Streak         int            `json:"streak"`
	Lapses         int            `json:"lapses"`
	LastResult     Result         `json:"lastResult,omitempty"`
	LastReviewedAt int64          `json:"lastReviewedAt,omitempty"`
	LastQuality    int            `json:"lastQuality,omitempty"`
	EF             float64        `json:"ef"`
	IntervalDays   int            `json:"intervalDays"`
	Repetitions    int            `json:"repetitions"`
	DueAt          int64          `json:"dueAt,omitempty"`
}

// Seed identifies the card created on first review of an item.
type Seed struct {
	PackID    string
	ItemID    string
	Direction pack.Direction
}

// CardID builds the composite card key.
func CardID(packID, itemID string, direction pack.Direction) string {
	return fmt.Sprintf("%s:%s:%s", packID, itemID, direction)
}

// NewCard returns a fresh, never-reviewed card for the seed.
func NewCard(seed Seed) Card {
	return Card{
		ID:        CardID(seed.PackID, seed.ItemID, seed.Direction),
		PackID:    seed.PackID,
		ItemID:    seed.ItemID,
		Direction: seed.Direction,
		EF:        DefaultEaseFactor,
	}
}

// IsDue reports whether the card should be reviewed at now. A card that has
// never been scheduled is always due.
func (c Card) IsDue(now int64) bool {
	return c.DueAt == 0 || c.DueAt <= now
}

// ReviewInput describes one resolved answer. Quality overrides the default
// quality derived from Correct (4 for correct, 2 for incorrect) and is
// clamped to [0,5].
type ReviewInput struct {
	Correct bool
	Now     int64
	Quality float64
	// HasQuality marks Quality as explicitly provided.
	HasQuality bool
}

// ApplyReviewResult returns the card state after one review. The input card
// is never mutated.
func ApplyReviewResult(card Card, input ReviewInput) Card {
	quality := 2
	if input.Correct {
		quality = 4
	}
	if input.HasQuality {
		quality = clampQuality(input.Quality)
	}

	next := card
	next.EF = nextEaseFactor(card.EF, quality)
	next.Attempts++
	if input.Correct {
		next.Correct++
		next.LastResult = ResultCorrect
	} else {
		next.Incorrect++
		next.LastResult = ResultIncorrect
	}

	if quality < 3 {
		// Lapse: progress resets, the card returns tomorrow.
		next.Repetitions = 0
		next.IntervalDays = 1
		next.Streak = 0
		next.Lapses++
	} else {
		next.Repetitions = card.Repetitions + 1
		next.IntervalDays = nextIntervalDays(next.Repetitions, card.IntervalDays, next.EF)
		next.Streak = card.Streak + 1
	}

	next.LastReviewedAt = input.Now
	next.LastQuality = quality
	next.DueAt = input.Now + int64(next.IntervalDays)*DayMillis
	return next
}

func clampQuality(value float64) int {
	if value < 0 {
		return 0
	}
	if value > 5 {
		return 5
	}
	return int(math.Round(value))
}

func nextEaseFactor(ef float64, quality int) float64 {
	q := float64(quality)
	adjusted := ef + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	rounded := math.Round(adjusted*100) / 100
	return math.Max(MinEaseFactor, rounded)
}

func nextIntervalDays(repetitions, previousInterval int, ef float64) int {
	if repetitions <= 1 {
		return 1
	}
	if repetitions == 2 {
		return 6
	}
	base := previousInterval
	if base <= 0 {
		base = 1
	}
	return int(math.Round(float64(base) * ef))
}
