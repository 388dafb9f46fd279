package verbsession

import (
	"testing"

	"github.com/jtoivan/ripasso/internal/pack"
)

func testVerbPack() *pack.VerbPack {
	return &pack.VerbPack{
		Type: "verbs",
		ID:   "test-verbs",
		Items: []pack.VerbItem{
			{
				ID:  "parlare",
				Src: pack.AnswerSpec{"parlare"},
				Dst: "puhua",
				Conjugations: pack.Conjugations{Present: map[pack.Person]pack.AnswerSpec{
					pack.PersonIo:     {"parlo"},
					pack.PersonTu:     {"parli"},
					pack.PersonLuiLei: {"parla"},
					pack.PersonNoi:    {"parliamo"},
					pack.PersonVoi:    {"parlate"},
					pack.PersonLoro:   {"parlano"},
				}},
			},
			{
				ID:  "essere",
				Src: pack.AnswerSpec{"essere"},
				Dst: "olla",
				Conjugations: pack.Conjugations{Present: map[pack.Person]pack.AnswerSpec{
					pack.PersonIo:     {"sono"},
					pack.PersonTu:     {"sei"},
					pack.PersonLuiLei: {"è"},
					pack.PersonNoi:    {"siamo"},
					pack.PersonVoi:    {"siete"},
					pack.PersonLoro:   {"sono"},
				}},
			},
		},
	}
}

func answerAllCorrect(p *pack.VerbPack, s State) State {
	item, _ := CurrentItem(p, s)
	s = SubmitInfinitive(p, s, item.Src[0])
	for _, person := range pack.Persons {
		s = SubmitConjugation(p, s, person, item.Conjugations.Present[person][0])
	}
	return s
}

func TestNew_InitialState(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0, 1})

	if s.Phase != PhaseInfinitive {
		t.Errorf("Phase = %q, want infinitive", s.Phase)
	}
	if len(s.Persons) != len(pack.Persons) {
		t.Errorf("Persons len = %d", len(s.Persons))
	}
	if s.Complete || s.CurrentIndex != 0 {
		t.Errorf("fresh session: %+v", s)
	}
}

func TestFullCorrectRun(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0})

	s = answerAllCorrect(p, s)
	if s.Phase != PhaseRecap {
		t.Fatalf("Phase = %q, want recap", s.Phase)
	}
	if s.LastScore == nil {
		t.Fatal("LastScore not set at recap")
	}
	if s.LastScore.Points != 7 || s.LastScore.Quality != 5 || !s.LastScore.Correct {
		t.Errorf("score = %+v, want 7 points quality 5", s.LastScore)
	}
	if s.SessionCorrect != 1 || s.SessionIncorrect != 0 {
		t.Errorf("tallies = %d/%d", s.SessionCorrect, s.SessionIncorrect)
	}

	s = NextStep(s)
	if !s.Complete {
		t.Error("advancing past the last recap should complete the session")
	}
}

func TestSubmitInfinitive_AlmostThenCorrect(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0})

	s = SubmitInfinitive(p, s, "parlarre")
	if s.Phase != PhaseInfinitive || s.Infinitive.Result != "" {
		t.Fatalf("near miss should keep the step open: %+v", s.Infinitive)
	}
	if s.InfinitiveFeedback != FeedbackAlmost {
		t.Errorf("feedback = %q, want almost", s.InfinitiveFeedback)
	}

	s = SubmitInfinitive(p, s, "parlare")
	if s.Infinitive.Result != StepCorrectSecond {
		t.Errorf("Result = %q, want correct-second", s.Infinitive.Result)
	}
	if s.Phase != PhaseConjugation {
		t.Errorf("Phase = %q, want conjugation", s.Phase)
	}
}

func TestSubmitInfinitive_FarMissReveals(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0})

	s = SubmitInfinitive(p, s, "mangiare")
	if s.Infinitive.Result != StepRevealed {
		t.Errorf("Result = %q, want revealed", s.Infinitive.Result)
	}
	if s.Phase != PhaseConjugation {
		t.Errorf("Phase = %q, want conjugation", s.Phase)
	}
}

func TestScoring_CorrectSecondIsHalfPoint(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0})

	// Infinitive on the second try, everything else first try.
	s = SubmitInfinitive(p, s, "parlarre")
	s = SubmitInfinitive(p, s, "parlare")
	item, _ := CurrentItem(p, s)
	for _, person := range pack.Persons {
		s = SubmitConjugation(p, s, person, item.Conjugations.Present[person][0])
	}

	if s.LastScore == nil {
		t.Fatal("LastScore not set")
	}
	if s.LastScore.Points != 6.5 {
		t.Errorf("Points = %v, want 6.5", s.LastScore.Points)
	}
	// 6.5/7*5 = 4.64 rounds to 5.
	if s.LastScore.Quality != 5 || !s.LastScore.Correct {
		t.Errorf("summary = %+v", s.LastScore)
	}
}

func TestScoring_RevealedStepsCountZero(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0})
	item, _ := CurrentItem(p, s)

	s = SubmitInfinitive(p, s, "xx") // revealed
	for i, person := range pack.Persons {
		if i < 3 {
			s = SubmitConjugation(p, s, person, "zz") // revealed
		} else {
			s = SubmitConjugation(p, s, person, item.Conjugations.Present[person][0])
		}
	}

	if s.LastScore == nil {
		t.Fatal("LastScore not set")
	}
	// 3 of 7 points: 3/7*5 = 2.14 rounds to 2, below the pass bar.
	if s.LastScore.Points != 3 || s.LastScore.Quality != 2 || s.LastScore.Correct {
		t.Errorf("summary = %+v", s.LastScore)
	}
	if s.SessionIncorrect != 1 || len(s.IncorrectItems) != 1 {
		t.Fatalf("miss not recorded: %+v", s)
	}

	entry := s.IncorrectItems[0]
	if entry.Key != "parlare:verbs" || entry.InfinitiveResult != StepRevealed {
		t.Errorf("entry = %+v", entry)
	}
	if len(entry.PersonResults) != len(pack.Persons) {
		t.Errorf("PersonResults len = %d", len(entry.PersonResults))
	}
}

func TestSubmitConjugation_AlternativeAnswerAccepted(t *testing.T) {
	p := testVerbPack()
	p.Items[0].Conjugations.Present[pack.PersonLuiLei] = pack.AnswerSpec{"può", "puo'"}
	s := New(p, []int{0})
	s = SubmitInfinitive(p, s, "parlare")

	s = SubmitConjugation(p, s, pack.PersonLuiLei, "puo'")
	if s.Persons[2].Result != StepCorrectFirst {
		t.Errorf("alternative spelling rejected: %+v", s.Persons[2])
	}
}

func TestSubmitConjugation_ResolvedStepIsNoOp(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0})
	s = SubmitInfinitive(p, s, "parlare")
	s = SubmitConjugation(p, s, pack.PersonIo, "parlo")

	again := SubmitConjugation(p, s, pack.PersonIo, "wrong")
	if again.Persons[0].Result != StepCorrectFirst || len(again.Persons[0].Attempts) != 1 {
		t.Errorf("resolved step changed: %+v", again.Persons[0])
	}
}

func TestForceComplete_RevealsRemaining(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0})
	s = SubmitInfinitive(p, s, "parlare")
	s = SubmitConjugation(p, s, pack.PersonIo, "parlo")

	s = ForceComplete(p, s)
	if s.Phase != PhaseRecap {
		t.Fatalf("Phase = %q, want recap", s.Phase)
	}
	for i, step := range s.Persons {
		if step.Result == "" {
			t.Errorf("person %d left unresolved", i)
		}
	}
	// 2 of 7 points: infinitive plus io.
	if s.LastScore == nil || s.LastScore.Points != 2 || s.LastScore.Correct {
		t.Errorf("summary = %+v", s.LastScore)
	}
}

func TestNextStep_AdvancesAndResets(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0, 1})

	// NextStep outside recap is a no-op.
	if moved := NextStep(s); moved.CurrentIndex != 0 || moved.Complete {
		t.Error("NextStep advanced outside recap")
	}

	s = answerAllCorrect(p, s)
	s = NextStep(s)
	if s.CurrentIndex != 1 || s.Phase != PhaseInfinitive {
		t.Fatalf("next verb not started: %+v", s)
	}
	if s.LastScore != nil || s.Infinitive.Result != "" {
		t.Errorf("per-verb state not reset: %+v", s)
	}
	for _, step := range s.Persons {
		if step.Result != "" || len(step.Attempts) != 0 {
			t.Errorf("person steps not reset: %+v", s.Persons)
		}
	}
}

func TestRedoIncorrect(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0, 1})

	s = ForceComplete(p, s) // verb 0 missed entirely
	s = NextStep(s)
	s = answerAllCorrect(p, s) // verb 1 perfect
	s = NextStep(s)

	if !s.Complete || s.SessionIncorrect != 1 {
		t.Fatalf("session end state: %+v", s)
	}

	redo := RedoIncorrect(p, s)
	if len(redo.Order) != 1 || redo.Order[0] != 0 {
		t.Fatalf("redo order = %v, want [0]", redo.Order)
	}
	if redo.Phase != PhaseInfinitive || redo.Complete {
		t.Errorf("redo must be a fresh session: %+v", redo)
	}
}

func TestRedoIncorrect_NoMisses(t *testing.T) {
	p := testVerbPack()
	s := New(p, []int{0})
	s = answerAllCorrect(p, s)
	s = NextStep(s)

	if redo := RedoIncorrect(p, s); !redo.Complete {
		t.Error("RedoIncorrect with no misses should return the state unchanged")
	}
}
