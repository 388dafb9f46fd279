// Package verbsession implements the multi-step verb drill: an infinitive
// step followed by six present-tense conjugation steps, scored together.
// Operations are pure old-state to new-state transitions.
package verbsession

import (
	"fmt"

	"github.com/jtoivan/ripasso/internal/match"
	"github.com/jtoivan/ripasso/internal/pack"
	"github.com/jtoivan/ripasso/internal/srs"
)

// Phase is the per-item stage of the drill.
type Phase string

const (
	PhaseInfinitive  Phase = "infinitive"
	PhaseConjugation Phase = "conjugation"
	PhaseRecap       Phase = "recap"
)

// StepResult is the resolved outcome of a single step.
type StepResult string

const (
	// StepCorrectFirst is a correct answer on the first try: 1 point.
	StepCorrectFirst StepResult = "correct-first"
	// StepCorrectSecond is a correct answer after one retry: 0.5 points.
	StepCorrectSecond StepResult = "correct-second"
	// StepRevealed means the answer was shown: 0 points.
	StepRevealed StepResult = "revealed"
)

// StepFeedback is the transient feedback tag shown after a submission.
type StepFeedback string

const (
	FeedbackCorrect  StepFeedback = "correct"
	FeedbackAlmost   StepFeedback = "almost"
	FeedbackRetry    StepFeedback = "retry"
	FeedbackRevealed StepFeedback = "revealed"
)

// MaxPoints is the score ceiling per item: infinitive plus six persons.
const MaxPoints = 7

// AnswerStep tracks attempts and the resolution of one step.
type AnswerStep struct {
	Attempts    []string
	Result      StepResult // empty while unresolved
	AccentIssue bool
}

// PersonResult is a resolved conjugation step captured for recaps and
// incorrect entries.
type PersonResult struct {
	Person   pack.Person
	Expected string
	Attempts []string
	Result   StepResult
}

// ScoreSummary is the per-item score computed at recap.
type ScoreSummary struct {
	Points    float64
	MaxPoints int
	Quality   int
	Correct   bool
}

// IncorrectEntry captures every step of a missed verb, deduplicated by
// item with the most recent run winning.
type IncorrectEntry struct {
	Key                string
	ItemIndex          int
	Prompt             string
	InfinitiveExpected string
	InfinitiveAttempts []string
	InfinitiveResult   StepResult
	PersonResults      []PersonResult
	Points             float64
	MaxPoints          int
	Quality            int
}

// State is the full verb drill session state.
type State struct {
	PackID             string
	Order              []int
	CurrentIndex       int
	Phase              Phase
	Infinitive         AnswerStep
	Persons            []AnswerStep // one per pack.Persons, in order
	InfinitiveInput    string
	PersonInputs       []string
	InfinitiveFeedback StepFeedback
	PersonFeedback     []StepFeedback
	SessionCorrect     int
	SessionIncorrect   int
	IncorrectItems     []IncorrectEntry
	Complete           bool
	LastScore          *ScoreSummary
}

// New creates a verb session over the given order of item indices.
func New(p *pack.VerbPack, order []int) State {
	return State{
		PackID:         p.ID,
		Order:          order,
		Phase:          PhaseInfinitive,
		Persons:        make([]AnswerStep, len(pack.Persons)),
		PersonInputs:   make([]string, len(pack.Persons)),
		PersonFeedback: make([]StepFeedback, len(pack.Persons)),
	}
}

// StartNew creates a session with a freshly shuffled default-size order.
func StartNew(p *pack.VerbPack, rng srs.Rand) State {
	order := srs.BuildSessionOrder(len(p.Items), srs.DefaultSessionSize, rng)
	return New(p, order)
}

// CurrentItem returns the verb at the session cursor.
func CurrentItem(p *pack.VerbPack, state State) (pack.VerbItem, bool) {
	if state.CurrentIndex < 0 || state.CurrentIndex >= len(state.Order) {
		return pack.VerbItem{}, false
	}
	idx := state.Order[state.CurrentIndex]
	if idx < 0 || idx >= len(p.Items) {
		return pack.VerbItem{}, false
	}
	return p.Items[idx], true
}

// SubmitInfinitive evaluates an infinitive answer. A first-attempt near
// miss keeps the step open for one retry; any other outcome resolves the
// step and moves the item to the conjugation phase.
func SubmitInfinitive(p *pack.VerbPack, state State, answer string) State {
	if state.Complete || state.Phase != PhaseInfinitive || state.Infinitive.Result != "" {
		return state
	}
	item, ok := CurrentItem(p, state)
	if !ok {
		return state
	}

	attempts := append(append([]string{}, state.Infinitive.Attempts...), answer)
	correct := match.IsCorrectSpec(item.Src, answer)
	almost := !correct && match.IsAlmostSpec(item.Src, answer) && len(attempts) == 1

	next := state
	next.Infinitive = AnswerStep{
		Attempts:    attempts,
		AccentIssue: correct && match.IsAccentIssueSpec(item.Src, answer),
	}
	next.InfinitiveInput = answer

	switch {
	case correct:
		next.Infinitive.Result = resultForAttempt(len(attempts))
		next.InfinitiveFeedback = FeedbackCorrect
		next.Phase = PhaseConjugation
	case almost:
		next.InfinitiveFeedback = FeedbackAlmost
	default:
		next.Infinitive.Result = StepRevealed
		next.InfinitiveFeedback = FeedbackRevealed
		next.Phase = PhaseConjugation
	}
	return next
}

// SubmitConjugation evaluates one person's answer with the same
// first-miss/almost/retry/reveal policy, tracked independently per person.
// Once all six persons are resolved the item finalizes into recap.
func SubmitConjugation(p *pack.VerbPack, state State, person pack.Person, answer string) State {
	if state.Complete || state.Phase != PhaseConjugation {
		return state
	}
	personIndex := indexOfPerson(person)
	if personIndex < 0 {
		return state
	}
	step := state.Persons[personIndex]
	if step.Result != "" {
		return state
	}
	item, ok := CurrentItem(p, state)
	if !ok {
		return state
	}

	expected := item.Conjugations.Present[person]
	attempts := append(append([]string{}, step.Attempts...), answer)
	correct := match.IsCorrectSpec(expected, answer)
	almost := !correct && match.IsAlmostSpec(expected, answer) && len(attempts) == 1

	next := state
	next.Persons = append([]AnswerStep{}, state.Persons...)
	next.PersonInputs = append([]string{}, state.PersonInputs...)
	next.PersonFeedback = append([]StepFeedback{}, state.PersonFeedback...)
	next.PersonInputs[personIndex] = answer

	updated := AnswerStep{
		Attempts:    attempts,
		AccentIssue: correct && match.IsAccentIssueSpec(expected, answer),
	}

	switch {
	case correct:
		updated.Result = resultForAttempt(len(attempts))
		next.PersonFeedback[personIndex] = FeedbackCorrect
	case almost:
		next.PersonFeedback[personIndex] = FeedbackAlmost
	default:
		updated.Result = StepRevealed
		next.PersonFeedback[personIndex] = FeedbackRevealed
	}
	next.Persons[personIndex] = updated

	if updated.Result != "" {
		return finalizeIfComplete(p, next)
	}
	return next
}

// NextStep advances past a recap: to the next verb, or to session
// completion after the last one. No-op in other phases.
func NextStep(state State) State {
	if state.Complete {
		return state
	}
	if state.Phase != PhaseRecap {
		return state
	}
	if state.CurrentIndex >= len(state.Order)-1 {
		next := state
		next.Complete = true
		return next
	}
	return startNextVerb(state)
}

// ForceComplete reveals every unresolved step and finalizes the item.
// Used when the learner skips or abandons a verb.
func ForceComplete(p *pack.VerbPack, state State) State {
	if state.Complete || state.Phase == PhaseRecap {
		return state
	}

	next := state
	if next.Infinitive.Result == "" {
		next.Infinitive.Result = StepRevealed
		next.InfinitiveFeedback = FeedbackRevealed
	}
	next.Persons = append([]AnswerStep{}, state.Persons...)
	next.PersonFeedback = append([]StepFeedback{}, state.PersonFeedback...)
	for i, step := range next.Persons {
		if step.Result == "" {
			step.Result = StepRevealed
			next.Persons[i] = step
			next.PersonFeedback[i] = FeedbackRevealed
		}
	}
	return finalize(p, next)
}

// RedoIncorrect builds a fresh session drilling exactly the missed verbs,
// in the order they were recorded. No-op when nothing was missed.
func RedoIncorrect(p *pack.VerbPack, state State) State {
	if len(state.IncorrectItems) == 0 {
		return state
	}
	order := make([]int, len(state.IncorrectItems))
	for i, entry := range state.IncorrectItems {
		order[i] = entry.ItemIndex
	}
	return New(p, order)
}

func resultForAttempt(attempt int) StepResult {
	if attempt == 1 {
		return StepCorrectFirst
	}
	return StepCorrectSecond
}

func indexOfPerson(person pack.Person) int {
	for i, p := range pack.Persons {
		if p == person {
			return i
		}
	}
	return -1
}

func startNextVerb(state State) State {
	next := state
	next.CurrentIndex++
	next.Phase = PhaseInfinitive
	next.Infinitive = AnswerStep{}
	next.Persons = make([]AnswerStep, len(pack.Persons))
	next.InfinitiveInput = ""
	next.PersonInputs = make([]string, len(pack.Persons))
	next.InfinitiveFeedback = ""
	next.PersonFeedback = make([]StepFeedback, len(pack.Persons))
	next.LastScore = nil
	return next
}

func finalizeIfComplete(p *pack.VerbPack, state State) State {
	for _, step := range state.Persons {
		if step.Result == "" {
			return state
		}
	}
	return finalize(p, state)
}

func finalize(p *pack.VerbPack, state State) State {
	item, ok := CurrentItem(p, state)
	if !ok {
		return state
	}

	summary := scoreSummary(state)
	next := state
	next.Phase = PhaseRecap
	next.InfinitiveFeedback = ""
	next.LastScore = &summary
	if summary.Correct {
		next.SessionCorrect++
	} else {
		next.SessionIncorrect++
		next.IncorrectItems = upsertIncorrect(state.IncorrectItems, buildIncorrectEntry(item, state, summary))
	}
	return next
}

func scoreSummary(state State) ScoreSummary {
	points := pointsFor(state.Infinitive.Result)
	for _, step := range state.Persons {
		points += pointsFor(step.Result)
	}
	quality := int(float64(points)/MaxPoints*5 + 0.5)
	return ScoreSummary{
		Points:    points,
		MaxPoints: MaxPoints,
		Quality:   quality,
		Correct:   quality >= 3,
	}
}

func pointsFor(result StepResult) float64 {
	switch result {
	case StepCorrectFirst:
		return 1
	case StepCorrectSecond:
		return 0.5
	default:
		return 0
	}
}

func buildIncorrectEntry(item pack.VerbItem, state State, summary ScoreSummary) IncorrectEntry {
	personResults := make([]PersonResult, len(pack.Persons))
	for i, person := range pack.Persons {
		personResults[i] = PersonResult{
			Person:   person,
			Expected: item.Conjugations.Present[person].Display(),
			Attempts: append([]string{}, state.Persons[i].Attempts...),
			Result:   state.Persons[i].Result,
		}
	}
	return IncorrectEntry{
		Key:                fmt.Sprintf("%s:verbs", item.ID),
		ItemIndex:          state.Order[state.CurrentIndex],
		Prompt:             item.Dst,
		InfinitiveExpected: item.Src.Display(),
		InfinitiveAttempts: append([]string{}, state.Infinitive.Attempts...),
		InfinitiveResult:   state.Infinitive.Result,
		PersonResults:      personResults,
		Points:             summary.Points,
		MaxPoints:          summary.MaxPoints,
		Quality:            summary.Quality,
	}
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
