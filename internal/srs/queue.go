package srs

import (
	"math/rand"
	"sort"

	"github.com/jtoivan/ripasso/internal/pack"
)

// DefaultSessionSize is how many items a session serves by default.
const DefaultSessionSize = 20

// Rand yields a uniform float in [0,1). Injectable so that ordering is
// deterministic in tests; nil selects the process-wide default source.
type Rand func() float64

func orDefault(rng Rand) Rand {
	if rng == nil {
		return rand.Float64
	}
	return rng
}

// QueueOptions bounds and parameterizes BuildOrder.
type QueueOptions struct {
	Now         int64
	SessionSize int
	MaxNew      int
	MaxReview   int
	Rand        Rand
}

// BuildOrder blends due reviews, new items and upcoming items into a
// bounded queue of item indices. Due cards come first (earliest due,
// tie-broken by item id), then up to MaxNew shuffled never-reviewed items,
// then upcoming cards to fill out SessionSize. Cards referencing items no
// longer in itemIDs are skipped.
func BuildOrder(itemIDs []string, direction pack.Direction, cards []Card, opts QueueOptions) []int {
	if len(itemIDs) == 0 || opts.SessionSize <= 0 {
		return []int{}
	}

	rng := orDefault(opts.Rand)
	indexByID := make(map[string]int, len(itemIDs))
	for i, id := range itemIDs {
		indexByID[id] = i
	}

	reviewed := make(map[string]bool)
	var due, upcoming []Card
	for _, card := range cards {
		if card.Direction != direction {
			continue
		}
		reviewed[card.ItemID] = true
		if _, ok := indexByID[card.ItemID]; !ok {
			continue
		}
		if card.IsDue(opts.Now) {
			due = append(due, card)
		} else {
			upcoming = append(upcoming, card)
		}
	}

	sort.Slice(due, func(i, j int) bool { return dueLess(due[i], due[j]) })
	sort.Slice(upcoming, func(i, j int) bool { return dueLess(upcoming[i], upcoming[j]) })

	var order []int
	used := make(map[string]bool)

	maxReview := opts.MaxReview
	if maxReview < 0 {
		maxReview = 0
	}
	if maxReview > len(due) {
		maxReview = len(due)
	}
	for _, card := range due[:maxReview] {
		order = append(order, indexByID[card.ItemID])
		used[card.ItemID] = true
	}

	var fresh []string
	for _, id := range itemIDs {
		if !reviewed[id] {
			fresh = append(fresh, id)
		}
	}
	shuffleStrings(fresh, rng)

	newLimit := opts.SessionSize - len(order)
	if opts.MaxNew < newLimit {
		newLimit = opts.MaxNew
	}
	for i := 0; i < len(fresh) && i < newLimit; i++ {
		if used[fresh[i]] {
			continue
		}
		order = append(order, indexByID[fresh[i]])
		used[fresh[i]] = true
	}

	for _, card := range upcoming {
		if len(order) >= opts.SessionSize {
			break
		}
		if used[card.ItemID] {
			continue
		}
		order = append(order, indexByID[card.ItemID])
		used[card.ItemID] = true
	}

	if len(order) > opts.SessionSize {
		order = order[:opts.SessionSize]
	}
	if order == nil {
		order = []int{}
	}
	return order
}

func dueLess(a, b Card) bool {
	if a.DueAt != b.DueAt {
		return a.DueAt < b.DueAt
	}
	return a.ItemID < b.ItemID
}

// ShuffleIndices returns 0..n-1 in Fisher-Yates order driven by rng.
func ShuffleIndices(n int, rng Rand) []int {
	rng = orDefault(rng)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(rng() * float64(i+1))
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices
}

// BuildSessionOrder returns a plain shuffled order of at most sessionSize
// item indices, used when SRS ordering is not wanted.
func BuildSessionOrder(totalItems, sessionSize int, rng Rand) []int {
	indices := ShuffleIndices(totalItems, rng)
	if sessionSize < len(indices) {
		indices = indices[:sessionSize]
	}
	return indices
}

func shuffleStrings(values []string, rng Rand) {
	for i := len(values) - 1; i > 0; i-- {
		j := int(rng() * float64(i+1))
		values[i], values[j] = values[j], values[i]
	}
}
