// Package history derives summaries from review events and cards and
// defines the versioned export document.
package history

import (
	"sort"
	"time"

	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/srs"
)

// Event is one immutable log entry: a submitted answer that resolved a
// card. Timestamp is epoch milliseconds.
type Event struct {
	ID        string         `json:"id"`
	PackID    string         `json:"packId"`
	ItemID    string         `json:"itemId"`
	Direction pack.Direction `json:"direction"`
	Result    srs.Result     `json:"result"`
	Timestamp int64          `json:"timestamp"`
}

// Summary aggregates all review activity. Zero timestamps mean "never".
type Summary struct {
	TotalAttempts   int
	Correct         int
	Incorrect       int
	Accuracy        int // rounded percent, 0 when no attempts
	FirstReviewedAt int64
	LastReviewedAt  int64
	UniqueItems     int
}

// PackSummary aggregates activity for a single pack.
type PackSummary struct {
	PackID          string
	Attempts        int
	Correct         int
	Incorrect       int
	Accuracy        int
	FirstReviewedAt int64
	LastReviewedAt  int64
}

// BuildSummary computes overall totals from the event log and the card set.
// Unique items are counted across both, keyed by pack and item.
func BuildSummary(events []Event, cards []srs.Card) Summary {
	s := Summary{TotalAttempts: len(events)}

	itemKeys := make(map[string]bool)
	for _, card := range cards {
		itemKeys[card.PackID+":"+card.ItemID] = true
	}
	for _, event := range events {
		if event.Result == srs.ResultCorrect {
			s.Correct++
		} else {
			s.Incorrect++
		}
		if s.FirstReviewedAt == 0 || event.Timestamp < s.FirstReviewedAt {
			s.FirstReviewedAt = event.Timestamp
		}
		if event.Timestamp > s.LastReviewedAt {
			s.LastReviewedAt = event.Timestamp
		}
		itemKeys[event.PackID+":"+event.ItemID] = true
	}

	s.Accuracy = percent(s.Correct, s.TotalAttempts)
	s.UniqueItems = len(itemKeys)
	return s
}

// BuildPackSummaries groups events per pack, sorted by attempt count
// descending.
func BuildPackSummaries(events []Event) []PackSummary {
	byPack := make(map[string]*PackSummary)
	for _, event := range events {
		summary := byPack[event.PackID]
		if summary == nil {
			summary = &PackSummary{
				PackID:          event.PackID,
				FirstReviewedAt: event.Timestamp,
				LastReviewedAt:  event.Timestamp,
			}
			byPack[event.PackID] = summary
		}
		summary.Attempts++
		if event.Result == srs.ResultCorrect {
			summary.Correct++
		} else {
			summary.Incorrect++
		}
		if event.Timestamp < summary.FirstReviewedAt {
			summary.FirstReviewedAt = event.Timestamp
		}
		if event.Timestamp > summary.LastReviewedAt {
			summary.LastReviewedAt = event.Timestamp
		}
	}

	summaries := make([]PackSummary, 0, len(byPack))
	for _, summary := range byPack {
		summary.Accuracy = percent(summary.Correct, summary.Attempts)
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Attempts != summaries[j].Attempts {
			return summaries[i].Attempts > summaries[j].Attempts
		}
		return summaries[i].PackID < summaries[j].PackID
	})
	return summaries
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(part)/float64(total)*100 + 0.5)
}

// DailyAttemptCount is the number of resolved answers on one local
// calendar day.
type DailyAttemptCount struct {
	DayKey string
	Count  int
}

// DayKey maps an epoch-ms timestamp to its local calendar-day key.
func DayKey(timestamp int64) string {
	return time.UnixMilli(timestamp).In(time.Local).Format("2006-01-02")
}

// StartOfLocalDay returns midnight of the timestamp's local day, in
// epoch milliseconds.
func StartOfLocalDay(timestamp int64) int64 {
	t := time.UnixMilli(timestamp).In(time.Local)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	return midnight.UnixMilli()
}

// DailyAttemptCounts builds a fixed-length, zero-filled daily series
// ending at now. days is clamped to at least 1.
func DailyAttemptCounts(events []Event, now int64, days int) []DailyAttemptCount {
	if days < 1 {
		days = 1
	}

	countsByDay := make(map[string]int)
	for _, event := range events {
		countsByDay[DayKey(event.Timestamp)]++
	}

	dayStart := time.UnixMilli(StartOfLocalDay(now)).In(time.Local)
	series := make([]DailyAttemptCount, 0, days)
	for offset := days - 1; offset >= 0; offset-- {
		day := dayStart.AddDate(0, 0, -offset)
		key := day.Format("2006-01-02")
		series = append(series, DailyAttemptCount{DayKey: key, Count: countsByDay[key]})
	}
	return series
}
