package history

import (
	"encoding/json"
	"fmt"

	"github.com/jtoivan/ripasso/internal/srs"
)

// ExportVersion is the document version this build reads and writes.
const ExportVersion = 1

// Export is the versioned history document used for backup and transfer.
type Export struct {
	Version   int        `json:"version"`
	CreatedAt int64      `json:"createdAt"`
	Cards     []srs.Card `json:"cards"`
	Events    []Event    `json:"events"`
}

// NewExport snapshots cards and events into an export document.
func NewExport(cards []srs.Card, events []Event, now int64) Export {
	if cards == nil {
		cards = []srs.Card{}
	}
	if events == nil {
		events = []Event{}
	}
	return Export{
		Version:   ExportVersion,
		CreatedAt: now,
		Cards:     cards,
		Events:    events,
	}
}

// ParseExport decodes and fully validates an export document. It fails
// before any entry is usable, so a bad document can never be partially
// imported.
func ParseExport(raw []byte) (Export, error) {
	var doc Export
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Export{}, fmt.Errorf("invalid history JSON: %w", err)
	}
	if doc.Version != ExportVersion {
		return Export{}, fmt.Errorf("unsupported history version %d, want %d", doc.Version, ExportVersion)
	}
	for i, card := range doc.Cards {
		if err := validateCard(card); err != nil {
			return Export{}, fmt.Errorf("card %d: %w", i, err)
		}
	}
	for i, event := range doc.Events {
		if err := validateEvent(event); err != nil {
			return Export{}, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return doc, nil
}

func validateCard(card srs.Card) error {
	if card.ID == "" || card.PackID == "" || card.ItemID == "" {
		return fmt.Errorf("missing id, packId or itemId")
	}
	if !card.Direction.Valid() {
		return fmt.Errorf("invalid direction %q", card.Direction)
	}
	if card.LastResult != "" && !card.LastResult.Valid() {
		return fmt.Errorf("invalid lastResult %q", card.LastResult)
	}
	if card.Attempts < 0 || card.Correct < 0 || card.Incorrect < 0 {
		return fmt.Errorf("negative counter")
	}
	if card.Attempts != card.Correct+card.Incorrect {
		return fmt.Errorf("attempts %d != correct %d + incorrect %d", card.Attempts, card.Correct, card.Incorrect)
	}
	if card.EF < srs.MinEaseFactor {
		return fmt.Errorf("ease factor %.2f below %.1f", card.EF, srs.MinEaseFactor)
	}
	if card.LastQuality < 0 || card.LastQuality > 5 {
		return fmt.Errorf("quality %d out of range", card.LastQuality)
	}
	if card.IntervalDays < 0 || card.Repetitions < 0 || card.Lapses < 0 || card.Streak < 0 {
		return fmt.Errorf("negative scheduling field")
	}
	return nil
}

func validateEvent(event Event) error {
	if event.ID == "" || event.PackID == "" || event.ItemID == "" {
		return fmt.Errorf("missing id, packId or itemId")
	}
	if !event.Direction.Valid() {
		return fmt.Errorf("invalid direction %q", event.Direction)
	}
	if !event.Result.Valid() {
		return fmt.Errorf("invalid result %q", event.Result)
	}
	if event.Timestamp <= 0 {
		return fmt.Errorf("invalid timestamp %d", event.Timestamp)
	}
	return nil
}
