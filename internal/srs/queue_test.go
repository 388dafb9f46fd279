package srs

import (
	"testing"

	"github.com/jtoivan/ripasso/internal/pack"
)

// keepOrder drives Fisher-Yates so that every element stays in place.
func keepOrder() float64 { return 0.9999999 }

func dueCard(itemID string, dueAt int64) Card {
	return Card{
		ID:        CardID("p1", itemID, pack.SrcToDst),
		PackID:    "p1",
		ItemID:    itemID,
		Direction: pack.SrcToDst,
		Attempts:  1,
		Correct:   1,
		EF:        DefaultEaseFactor,
		DueAt:     dueAt,
	}
}

func TestBuildOrder_DueBeforeNewBeforeUpcoming(t *testing.T) {
	items := []string{"i0", "i1", "i2", "i3"}
	cards := []Card{
		dueCard("i2", 500),
		dueCard("i1", 1500),
	}
	opts := QueueOptions{Now: 1000, SessionSize: 4, MaxNew: 2, MaxReview: 4, Rand: keepOrder}

	got := BuildOrder(items, pack.SrcToDst, cards, opts)
	want := []int{2, 0, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBuildOrder_DueSortedByDueAtThenID(t *testing.T) {
	items := []string{"a", "b", "c"}
	cards := []Card{
		dueCard("c", 300),
		dueCard("b", 100),
		dueCard("a", 300),
	}
	opts := QueueOptions{Now: 1000, SessionSize: 3, MaxNew: 0, MaxReview: 3, Rand: keepOrder}

	got := BuildOrder(items, pack.SrcToDst, cards, opts)
	want := []int{1, 0, 2} // b first (earliest), then a before c (id tiebreak)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBuildOrder_MaxReviewCapsDue(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	cards := []Card{
		dueCard("a", 100),
		dueCard("b", 200),
		dueCard("c", 300),
	}
	opts := QueueOptions{Now: 1000, SessionSize: 4, MaxNew: 4, MaxReview: 1, Rand: keepOrder}

	got := BuildOrder(items, pack.SrcToDst, cards, opts)
	if len(got) == 0 || got[0] != 0 {
		t.Fatalf("order = %v, want due card a first", got)
	}
	// Only one review slot; d is the only new candidate.
	if len(got) != 2 || got[1] != 3 {
		t.Fatalf("order = %v, want [0 3]", got)
	}
}

func TestBuildOrder_NewCappedBySessionSize(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	opts := QueueOptions{Now: 1000, SessionSize: 2, MaxNew: 5, MaxReview: 5, Rand: keepOrder}

	got := BuildOrder(items, pack.SrcToDst, nil, opts)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestBuildOrder_DirectionFiltered(t *testing.T) {
	items := []string{"a", "b"}
	reverse := dueCard("a", 100)
	reverse.Direction = pack.DstToSrc
	opts := QueueOptions{Now: 1000, SessionSize: 2, MaxNew: 2, MaxReview: 2, Rand: keepOrder}

	got := BuildOrder(items, pack.SrcToDst, []Card{reverse}, opts)
	// The reverse-direction card is invisible: both items count as new.
	if len(got) != 2 {
		t.Fatalf("order = %v, want both items as new", got)
	}
}

func TestBuildOrder_SkipsCardsForRemovedItems(t *testing.T) {
	items := []string{"a"}
	cards := []Card{dueCard("gone", 100)}
	opts := QueueOptions{Now: 1000, SessionSize: 2, MaxNew: 2, MaxReview: 2, Rand: keepOrder}

	got := BuildOrder(items, pack.SrcToDst, cards, opts)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("order = %v, want [0]", got)
	}
}

func TestBuildOrder_EmptyInputs(t *testing.T) {
	opts := QueueOptions{Now: 1000, SessionSize: 4, MaxNew: 2, MaxReview: 2, Rand: keepOrder}
	if got := BuildOrder(nil, pack.SrcToDst, nil, opts); len(got) != 0 {
		t.Errorf("empty items: %v", got)
	}

	opts.SessionSize = 0
	if got := BuildOrder([]string{"a"}, pack.SrcToDst, nil, opts); len(got) != 0 {
		t.Errorf("zero session size: %v", got)
	}

	opts.SessionSize = -3
	if got := BuildOrder([]string{"a"}, pack.SrcToDst, nil, opts); len(got) != 0 {
		t.Errorf("negative session size: %v", got)
	}
}

func TestBuildSessionOrder_SizeAndUniqueness(t *testing.T) {
	got := BuildSessionOrder(25, 20, nil)
	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	seen := make(map[int]bool)
	for _, idx := range got {
		if idx < 0 || idx >= 25 {
			t.Fatalf("index %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("duplicate index %d", idx)
		}
		seen[idx] = true
	}
}

func TestBuildSessionOrder_SmallPool(t *testing.T) {
	got := BuildSessionOrder(3, 20, keepOrder)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
}

func TestShuffleIndices_Deterministic(t *testing.T) {
	a := ShuffleIndices(10, keepOrder)
	b := ShuffleIndices(10, keepOrder)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same rng produced different orders: %v vs %v", a, b)
		}
	}
}
