package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jtoivan/ripasso/internal/history"
	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/srs"
)

// cardRow mirrors the review_cards table.
type cardRow struct {
	ID             string  `db:"id"`
	PackID         string  `db:"pack_id"`
	ItemID         string  `db:"item_id"`
	Direction      string  `db:"direction"`
	Attempts       int     `db:"attempts"`
	Correct        int     `db:"correct"`
	Incorrect      int     `db:"incorrect"`
	Streak         int     `db:"streak"`
	Lapses         int     `db:"lapses"`
	LastResult     string  `db:"last_result"`
	LastReviewedAt int64   `db:"last_reviewed_at"`
	LastQuality    int     `db:"last_quality"`
	EF             float64 `db:"ef"`
	IntervalDays   int     `db:"interval_days"`
	Repetitions    int     `db:"repetitions"`
	DueAt          int64   `db:"due_at"`
}

func (r cardRow) toCard() srs.Card {
	return srs.Card{
		ID:             r.ID,
		PackID:         r.PackID,
		ItemID:         r.ItemID,
		Direction:      pack.Direction(r.Direction),
		Attempts:       r.Attempts,
		Correct:        r.Correct,
		Incorrect:      r.Incorrect,
		Streak:         r.Streak,
		Lapses:         r.Lapses,
		LastResult:     srs.Result(r.LastResult),
		LastReviewedAt: r.LastReviewedAt,
		LastQuality:    r.LastQuality,
		EF:             r.EF,
		IntervalDays:   r.IntervalDays,
		Repetitions:    r.Repetitions,
		DueAt:          r.DueAt,
	}
}

func rowFromCard(c srs.Card) cardRow {
	return cardRow{
		ID:             c.ID,
		PackID:         c.PackID,
		ItemID:         c.ItemID,
		Direction:      string(c.Direction),
		Attempts:       c.Attempts,
		Correct:        c.Correct,
		Incorrect:      c.Incorrect,
		Streak:         c.Streak,
		Lapses:         c.Lapses,
		LastResult:     string(c.LastResult),
		LastReviewedAt: c.LastReviewedAt,
		LastQuality:    c.LastQuality,
		EF:             c.EF,
		IntervalDays:   c.IntervalDays,
		Repetitions:    c.Repetitions,
		DueAt:          c.DueAt,
	}
}

const upsertCardSQL = `
	INSERT INTO review_cards (
		id, pack_id, item_id, direction,
		attempts, correct, incorrect, streak, lapses,
		last_result, last_reviewed_at, last_quality,
		ef, interval_days, repetitions, due_at
	) VALUES (
		:id, :pack_id, :item_id, :direction,
		:attempts, :correct, :incorrect, :streak, :lapses,
		:last_result, :last_reviewed_at, :last_quality,
		:ef, :interval_days, :repetitions, :due_at
	)
	ON CONFLICT(id) DO UPDATE SET
		attempts = excluded.attempts,
		correct = excluded.correct,
		incorrect = excluded.incorrect,
		streak = excluded.streak,
		lapses = excluded.lapses,
		last_result = excluded.last_result,
		last_reviewed_at = excluded.last_reviewed_at,
		last_quality = excluded.last_quality,
		ef = excluded.ef,
		interval_days = excluded.interval_days,
		repetitions = excluded.repetitions,
		due_at = excluded.due_at
`

// GetCard fetches a card by composite id. Returns nil when no card exists.
func (s *Store) GetCard(ctx context.Context, id string) (*srs.Card, error) {
	var row cardRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM review_cards WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", id, err)
	}
	card := row.toCard()
	return &card, nil
}

// PutCard upserts a card.
func (s *Store) PutCard(ctx context.Context, card srs.Card) error {
	if _, err := s.db.NamedExecContext(ctx, upsertCardSQL, rowFromCard(card)); err != nil {
		return fmt.Errorf("put card %s: %w", card.ID, err)
	}
	return nil
}

// CardsForPack returns all cards for a pack, ordered by item id.
func (s *Store) CardsForPack(ctx context.Context, packID string) ([]srs.Card, error) {
	var rows []cardRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM review_cards WHERE pack_id = ? ORDER BY item_id, direction`, packID)
	if err != nil {
		return nil, fmt.Errorf("cards for pack %s: %w", packID, err)
	}
	return cardsFromRows(rows), nil
}

// AllCards returns every stored card.
func (s *Store) AllCards(ctx context.Context) ([]srs.Card, error) {
	var rows []cardRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM review_cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("all cards: %w", err)
	}
	return cardsFromRows(rows), nil
}

func cardsFromRows(rows []cardRow) []srs.Card {
	cards := make([]srs.Card, len(rows))
	for i, row := range rows {
		cards[i] = row.toCard()
	}
	return cards
}

// RecordReview applies one resolved answer atomically: it loads (or
// creates) the card, runs the scheduler, writes the card back and appends
// the review event, all in one transaction. Returns the updated card.
func (s *Store) RecordReview(ctx context.Context, seed srs.Seed, input srs.ReviewInput) (srs.Card, error) {
	id := srs.CardID(seed.PackID, seed.ItemID, seed.Direction)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return srs.Card{}, fmt.Errorf("begin review tx: %w", err)
	}
	defer tx.Rollback()

	base := srs.NewCard(seed)
	var row cardRow
	err = tx.GetContext(ctx, &row, `SELECT * FROM review_cards WHERE id = ?`, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First review of this triple; keep the fresh card.
	case err != nil:
		return srs.Card{}, fmt.Errorf("load card %s: %w", id, err)
	default:
		base = row.toCard()
	}

	updated := srs.ApplyReviewResult(base, input)
	if _, err := tx.NamedExecContext(ctx, upsertCardSQL, rowFromCard(updated)); err != nil {
		return srs.Card{}, fmt.Errorf("save card %s: %w", id, err)
	}

	result := srs.ResultIncorrect
	if input.Correct {
		result = srs.ResultCorrect
	}
	event := history.Event{
		ID:        uuid.NewString(),
		PackID:    seed.PackID,
		ItemID:    seed.ItemID,
		Direction: seed.Direction,
		Result:    result,
		Timestamp: input.Now,
	}
	if err := insertEvent(ctx, tx, event); err != nil {
		return srs.Card{}, err
	}

	if err := tx.Commit(); err != nil {
		return srs.Card{}, fmt.Errorf("commit review: %w", err)
	}
	return updated, nil
}

func insertEvent(ctx context.Context, tx *sqlx.Tx, event history.Event) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO review_events (id, pack_id, item_id, direction, result, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.PackID, event.ItemID, string(event.Direction), string(event.Result), event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append event %s: %w", event.ID, err)
	}
	return nil
}
