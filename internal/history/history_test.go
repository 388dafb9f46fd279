package history

import (
	"testing"

	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/srs"
)

func ev(id, packID, itemID string, result srs.Result, ts int64) Event {
	return Event{
		ID:        id,
		PackID:    packID,
		ItemID:    itemID,
		Direction: pack.SrcToDst,
		Result:    result,
		Timestamp: ts,
	}
}

func TestBuildSummary(t *testing.T) {
	events := []Event{
		ev("e1", "p1", "a", srs.ResultCorrect, 3000),
		ev("e2", "p1", "b", srs.ResultIncorrect, 1000),
		ev("e3", "p2", "a", srs.ResultCorrect, 2000),
	}
	cards := []srs.Card{
		{PackID: "p1", ItemID: "a"}, // overlaps e1
		{PackID: "p3", ItemID: "z"},
	}

	s := BuildSummary(events, cards)
	if s.TotalAttempts != 3 || s.Correct != 2 || s.Incorrect != 1 {
		t.Errorf("totals = %+v", s)
	}
	if s.Accuracy != 67 {
		t.Errorf("Accuracy = %d, want 67", s.Accuracy)
	}
	if s.FirstReviewedAt != 1000 || s.LastReviewedAt != 3000 {
		t.Errorf("timestamps = %d..%d", s.FirstReviewedAt, s.LastReviewedAt)
	}
	// p1:a, p1:b, p2:a, p3:z
	if s.UniqueItems != 4 {
		t.Errorf("UniqueItems = %d, want 4", s.UniqueItems)
	}
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(nil, nil)
	if s.TotalAttempts != 0 || s.Accuracy != 0 || s.UniqueItems != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	if s.FirstReviewedAt != 0 || s.LastReviewedAt != 0 {
		t.Errorf("timestamps should stay zero: %+v", s)
	}
}

func TestBuildPackSummaries(t *testing.T) {
	events := []Event{
		ev("e1", "beta", "a", srs.ResultCorrect, 100),
		ev("e2", "beta", "b", srs.ResultIncorrect, 300),
		ev("e3", "alpha", "a", srs.ResultCorrect, 200),
		ev("e4", "gamma", "a", srs.ResultCorrect, 50),
	}

	got := BuildPackSummaries(events)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].PackID != "beta" {
		t.Errorf("most attempts first: %+v", got[0])
	}
	// alpha and gamma both have one attempt; id breaks the tie.
	if got[1].PackID != "alpha" || got[2].PackID != "gamma" {
		t.Errorf("tiebreak order: %v, %v", got[1].PackID, got[2].PackID)
	}
	if got[0].Attempts != 2 || got[0].Correct != 1 || got[0].Accuracy != 50 {
		t.Errorf("beta summary = %+v", got[0])
	}
	if got[0].FirstReviewedAt != 100 || got[0].LastReviewedAt != 300 {
		t.Errorf("beta timestamps = %+v", got[0])
	}
}

func TestDayKeyAndStartOfLocalDay(t *testing.T) {
	ts := int64(1756600000000) // some time on 2025-08-31 UTC
	key := DayKey(ts)
	start := StartOfLocalDay(ts)

	if DayKey(start) != key {
		t.Errorf("midnight of %q keyed as %q", key, DayKey(start))
	}
	if start > ts {
		t.Errorf("start of day %d after timestamp %d", start, ts)
	}
	if ts-start >= 24*60*60*1000 {
		t.Errorf("timestamp more than a day past its midnight")
	}
}

func TestDailyAttemptCounts(t *testing.T) {
	now := int64(1756600000000)
	today := StartOfLocalDay(now)
	yesterday := today - 24*60*60*1000

	events := []Event{
		ev("e1", "p1", "a", srs.ResultCorrect, now),
		ev("e2", "p1", "b", srs.ResultCorrect, now-1000),
		ev("e3", "p1", "c", srs.ResultIncorrect, yesterday+1000),
	}

	series := DailyAttemptCounts(events, now, 3)
	if len(series) != 3 {
		t.Fatalf("len = %d, want 3", len(series))
	}
	if series[2].DayKey != DayKey(now) || series[2].Count != 2 {
		t.Errorf("today = %+v", series[2])
	}
	if series[1].Count != 1 {
		t.Errorf("yesterday = %+v", series[1])
	}
	if series[0].Count != 0 {
		t.Errorf("empty day = %+v", series[0])
	}
}

func TestDailyAttemptCounts_ClampsDays(t *testing.T) {
	series := DailyAttemptCounts(nil, 1756600000000, 0)
	if len(series) != 1 {
		t.Errorf("len = %d, want 1", len(series))
	}
}
