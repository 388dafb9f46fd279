package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtoivan/ripasso/internal/history"
	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/srs"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSeed() srs.Seed {
	return srs.Seed{PackID: "p1", ItemID: "ciao", Direction: pack.SrcToDst}
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cards, err := s.AllCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)

	events, err := s.AllEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGetCard_MissingReturnsNil(t *testing.T) {
	s := openTestStore(t)

	card, err := s.GetCard(context.Background(), "p1:nope:src-to-dst")
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestPutCard_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	card := srs.NewCard(testSeed())
	card.Attempts = 2
	card.Correct = 1
	card.Incorrect = 1
	card.LastResult = srs.ResultIncorrect
	card.LastReviewedAt = 5000
	card.LastQuality = 2
	card.IntervalDays = 1
	card.DueAt = 5000 + srs.DayMillis

	require.NoError(t, s.PutCard(ctx, card))

	got, err := s.GetCard(ctx, card.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, card, *got)
}

func TestPutCard_UpsertsByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	card := srs.NewCard(testSeed())
	require.NoError(t, s.PutCard(ctx, card))

	card.Attempts = 1
	card.Correct = 1
	card.Streak = 3
	require.NoError(t, s.PutCard(ctx, card))

	got, err := s.GetCard(ctx, card.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Streak)

	all, err := s.AllCards(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordReview_NewCard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	updated, err := s.RecordReview(ctx, testSeed(), srs.ReviewInput{Correct: true, Now: 10_000})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Attempts)
	assert.Equal(t, 1, updated.Correct)
	assert.Equal(t, srs.ResultCorrect, updated.LastResult)
	assert.Equal(t, 1, updated.IntervalDays)
	assert.Equal(t, int64(10_000+srs.DayMillis), updated.DueAt)

	stored, err := s.GetCard(ctx, updated.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, updated, *stored)

	events, err := s.AllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "p1", events[0].PackID)
	assert.Equal(t, srs.ResultCorrect, events[0].Result)
	assert.Equal(t, int64(10_000), events[0].Timestamp)
	assert.NotEmpty(t, events[0].ID)
}

func TestRecordReview_AdvancesExistingCard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed := testSeed()

	first, err := s.RecordReview(ctx, seed, srs.ReviewInput{Correct: true, Now: 10_000})
	require.NoError(t, err)
	second, err := s.RecordReview(ctx, seed, srs.ReviewInput{Correct: true, Now: 20_000})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Attempts)
	assert.Equal(t, 2, second.Repetitions)
	assert.Equal(t, 6, second.IntervalDays)

	all, err := s.AllCards(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	events, err := s.AllEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestRecordReview_IncorrectEvent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	updated, err := s.RecordReview(ctx, testSeed(), srs.ReviewInput{Correct: false, Now: 10_000})
	require.NoError(t, err)
	assert.Equal(t, srs.ResultIncorrect, updated.LastResult)
	assert.Equal(t, 1, updated.Lapses)

	events, err := s.AllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, srs.ResultIncorrect, events[0].Result)
}

func TestCardsForPack_FiltersAndOrders(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, seed := range []srs.Seed{
		{PackID: "p1", ItemID: "b", Direction: pack.SrcToDst},
		{PackID: "p1", ItemID: "a", Direction: pack.SrcToDst},
		{PackID: "p2", ItemID: "z", Direction: pack.SrcToDst},
	} {
		_, err := s.RecordReview(ctx, seed, srs.ReviewInput{Correct: true, Now: 10_000})
		require.NoError(t, err)
	}

	cards, err := s.CardsForPack(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "a", cards[0].ItemID)
	assert.Equal(t, "b", cards[1].ItemID)
}

func TestEventsForPackAndBetween(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed := testSeed()

	for _, now := range []int64{1000, 2000, 3000} {
		_, err := s.RecordReview(ctx, seed, srs.ReviewInput{Correct: true, Now: now})
		require.NoError(t, err)
	}
	_, err := s.RecordReview(ctx, srs.Seed{PackID: "p2", ItemID: "x", Direction: pack.SrcToDst},
		srs.ReviewInput{Correct: true, Now: 1500})
	require.NoError(t, err)

	events, err := s.EventsForPack(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(1000), events[0].Timestamp)
	assert.Equal(t, int64(3000), events[2].Timestamp)

	ranged, err := s.EventsBetween(ctx, "p1", 1500, 2500)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, int64(2000), ranged[0].Timestamp)
}

func TestImportHistory_ReplacesEverything(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.RecordReview(ctx, testSeed(), srs.ReviewInput{Correct: true, Now: 1000})
	require.NoError(t, err)

	card := srs.NewCard(srs.Seed{PackID: "imported", ItemID: "x", Direction: pack.DstToSrc})
	card.Attempts = 1
	card.Correct = 1
	doc := history.NewExport(
		[]srs.Card{card},
		[]history.Event{{
			ID:        "ev-1",
			PackID:    "imported",
			ItemID:    "x",
			Direction: pack.DstToSrc,
			Result:    srs.ResultCorrect,
			Timestamp: 2000,
		}},
		3000,
	)

	require.NoError(t, s.ImportHistory(ctx, doc))

	cards, err := s.AllCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "imported", cards[0].PackID)

	events, err := s.AllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)
}

func TestImportHistory_EmptyDocumentClears(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.RecordReview(ctx, testSeed(), srs.ReviewInput{Correct: true, Now: 1000})
	require.NoError(t, err)

	require.NoError(t, s.ImportHistory(ctx, history.NewExport(nil, nil, 2000)))

	cards, err := s.AllCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)

	events, err := s.AllEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDefaultDBPath_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "nested", "my.db")
	t.Setenv("RIPASSO_DB", want)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
