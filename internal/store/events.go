package store

import (
	"context"
	"fmt"

	"github.com/jtoivan/ripasso/internal/history"
	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/srs"
)

// eventRow mirrors the review_events table.
type eventRow struct {
	ID        string `db:"id"`
	PackID    string `db:"pack_id"`
	ItemID    string `db:"item_id"`
	Direction string `db:"direction"`
	Result    string `db:"result"`
	Timestamp int64  `db:"timestamp"`
}

func (r eventRow) toEvent() history.Event {
	return history.Event{
		ID:        r.ID,
		PackID:    r.PackID,
		ItemID:    r.ItemID,
		Direction: pack.Direction(r.Direction),
		Result:    srs.Result(r.Result),
		Timestamp: r.Timestamp,
	}
}

// AllEvents returns every stored event, oldest first.
func (s *Store) AllEvents(ctx context.Context) ([]history.Event, error) {
	var rows []eventRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM review_events ORDER BY timestamp, id`)
	if err != nil {
		return nil, fmt.Errorf("all events: %w", err)
	}
	return eventsFromRows(rows), nil
}

// EventsForPack returns a pack's events, oldest first.
func (s *Store) EventsForPack(ctx context.Context, packID string) ([]history.Event, error) {
	var rows []eventRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM review_events WHERE pack_id = ? ORDER BY timestamp, id`, packID)
	if err != nil {
		return nil, fmt.Errorf("events for pack %s: %w", packID, err)
	}
	return eventsFromRows(rows), nil
}

// EventsBetween returns a pack's events with from <= timestamp <= to,
// oldest first.
func (s *Store) EventsBetween(ctx context.Context, packID string, from, to int64) ([]history.Event, error) {
	var rows []eventRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM review_events
		WHERE pack_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp, id`, packID, from, to)
	if err != nil {
		return nil, fmt.Errorf("events for pack %s in range: %w", packID, err)
	}
	return eventsFromRows(rows), nil
}

func eventsFromRows(rows []eventRow) []history.Event {
	events := make([]history.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEvent()
	}
	return events
}

// ImportHistory replaces all stored cards and events with the export's
// contents in a single transaction (last write wins). The document must
// already be validated; nothing is written when any statement fails.
func (s *Store) ImportHistory(ctx context.Context, doc history.Export) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM review_cards`); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM review_events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}

	for _, card := range doc.Cards {
		if _, err := tx.NamedExecContext(ctx, upsertCardSQL, rowFromCard(card)); err != nil {
			return fmt.Errorf("import card %s: %w", card.ID, err)
		}
	}
	for _, event := range doc.Events {
		if err := insertEvent(ctx, tx, event); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
