// Package session implements the single-step vocabulary drill state
// machine. Every operation takes a state value and returns a new state
// value; the caller owns the single mutable "current state" cell.
package session

import (
	"fmt"

	"github.com/jtoivan/ripasso/internal/match"
	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/srs"
)

// Result tags the outcome of the most recent submission.
type Result string

const (
	ResultCorrect   Result = "correct"
	ResultIncorrect Result = "incorrect"
	// ResultAlmost grants a single retry for a one-edit-away answer.
	// It is transient and never scored.
	ResultAlmost Result = "almost"
)

// IncorrectEntry records a missed item, deduplicated by item and direction
// with the most recent attempt winning.
type IncorrectEntry struct {
	Key       string
	ItemIndex int
	Prompt    string
	Expected  string
	Answer    string
}

// State is the full vocabulary drill session state.
type State struct {
	PackID           string
	Direction        pack.Direction
	Order            []int
	CurrentIndex     int
	SessionCorrect   int
	SessionIncorrect int
	IncorrectItems   []IncorrectEntry
	LastResult       Result // empty while the current card is unresolved
	AccentIssue      bool
	Attempts         []string
	AnswerInput      string
	Complete         bool
}

// New creates a session over the given order of item indices.
func New(p *pack.VocabPack, direction pack.Direction, order []int) State {
	return State{
		PackID:    p.ID,
		Direction: direction,
		Order:     order,
	}
}

// StartNew creates a session with a freshly shuffled default-size order.
func StartNew(p *pack.VocabPack, direction pack.Direction, rng srs.Rand) State {
	order := srs.BuildSessionOrder(len(p.Items), srs.DefaultSessionSize, rng)
	return New(p, direction, order)
}

// CurrentItem returns the item at the session cursor.
func CurrentItem(p *pack.VocabPack, state State) (pack.VocabItem, bool) {
	if state.CurrentIndex < 0 || state.CurrentIndex >= len(state.Order) {
		return pack.VocabItem{}, false
	}
	idx := state.Order[state.CurrentIndex]
	if idx < 0 || idx >= len(p.Items) {
		return pack.VocabItem{}, false
	}
	return p.Items[idx], true
}

// PromptText returns the side of the item shown to the learner.
func PromptText(item pack.VocabItem, direction pack.Direction) string {
	if direction == pack.SrcToDst {
		return item.Src
	}
	return item.Dst
}

// AnswerText returns the side of the item the learner must produce.
func AnswerText(item pack.VocabItem, direction pack.Direction) string {
	if direction == pack.SrcToDst {
		return item.Dst
	}
	return item.Src
}

// SubmitAnswer evaluates one answer. A first-attempt near miss yields
// ResultAlmost and stays on the card; anything else resolves the card as
// correct or incorrect. No-op once the card is resolved or the session is
// complete.
func SubmitAnswer(p *pack.VocabPack, state State, answer string) State {
	if state.Complete || state.LastResult == ResultCorrect || state.LastResult == ResultIncorrect {
		return state
	}
	item, ok := CurrentItem(p, state)
	if !ok {
		return state
	}

	expected := AnswerText(item, state.Direction)
	attempts := append(append([]string{}, state.Attempts...), answer)

	correct := match.IsCorrect(expected, answer)
	almost := !correct && match.IsAlmost(expected, answer) && len(attempts) == 1

	next := state
	next.Attempts = attempts
	next.AnswerInput = answer
	next.AccentIssue = correct && match.IsAccentIssue(expected, answer)

	switch {
	case correct:
		next.LastResult = ResultCorrect
		next.SessionCorrect++
	case almost:
		next.LastResult = ResultAlmost
	default:
		next.LastResult = ResultIncorrect
		next.SessionIncorrect++
		next.IncorrectItems = upsertIncorrect(state.IncorrectItems, IncorrectEntry{
			Key:       incorrectKey(item.ID, state.Direction),
			ItemIndex: state.Order[state.CurrentIndex],
			Prompt:    PromptText(item, state.Direction),
			Expected:  expected,
			Answer:    answer,
		})
	}

	if !almost && state.CurrentIndex == len(state.Order)-1 {
		next.Complete = true
	}
	return next
}

// NextCard advances to the next item, clearing per-card transient state.
// No-op unless the current card is resolved and the session is still open.
func NextCard(state State) State {
	if state.Complete || (state.LastResult != ResultCorrect && state.LastResult != ResultIncorrect) {
		return state
	}
	if state.CurrentIndex >= len(state.Order)-1 {
		return state
	}

	next := state
	next.CurrentIndex++
	next.AnswerInput = ""
	next.LastResult = ""
	next.AccentIssue = false
	next.Attempts = nil
	return next
}

// RedoIncorrect builds a fresh session drilling exactly the missed items,
// in the order they were recorded. No-op when nothing was missed.
func RedoIncorrect(p *pack.VocabPack, state State) State {
	if len(state.IncorrectItems) == 0 {
		return state
	}
	order := make([]int, len(state.IncorrectItems))
	for i, entry := range state.IncorrectItems {
		order[i] = entry.ItemIndex
	}
	return New(p, state.Direction, order)
}

func incorrectKey(itemID string, direction pack.Direction) string {
	return fmt.Sprintf("%s:%s", itemID, direction)
}

func upsertIncorrect(entries []IncorrectEntry, entry IncorrectEntry) []IncorrectEntry {
	next := append([]IncorrectEntry{}, entries...)
	for i, existing := range next {
		if existing.Key == entry.Key {
			next[i] = entry
			return next
		}
	}
	return append(next, entry)
}
