package studyset

import "strings"

// Evaluate reports whether answer is correct for q.
//
// Rules:
// - Multiple choice: answer must equal the id of the option marked correct.
//   A question with no correct option never matches.
// - Text input: answer matches any accepted answer after trimming
//   surrounding whitespace and lower-casing both sides.
func Evaluate(q Question, answer string) bool {
	switch v := q.(type) {
	case *MultipleChoice:
		opt := v.CorrectOption()
		return opt != nil && answer == opt.ID
	case *TextInput:
		got := normalizeText(answer)
		for _, want := range v.CorrectAnswers {
			if got == normalizeText(want) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// State is the position of a question in its answer lifecycle.
type State int

const (
	StateUnanswered State = iota // No answer recorded
	StateAnswered                // Learner submitted a value
	StateRevealed                // Learner gave up; correct answer shown
)

func (s State) String() string {
	switch s {
	case StateAnswered:
		return "answered"
	case StateRevealed:
		return "revealed"
	default:
		return "unanswered"
	}
}

// StateOf derives the lifecycle state from the persisted answer fields.
func StateOf(q Question) State {
	a := q.Meta().Answer
	switch {
	case a.IsGivenUp():
		return StateRevealed
	case a.IsSet():
		return StateAnswered
	default:
		return StateUnanswered
	}
}

// Record stores an answer on q. A nil answer records a give-up and forces
// the verdict to incorrect. It returns the resulting verdict.
func Record(q Question, answer *string) Verdict {
	m := q.Meta()
	if answer == nil {
		m.Answer = GaveUp()
		m.Verdict = VerdictIncorrect
		return m.Verdict
	}
	m.Answer = Given(*answer)
	m.Verdict = VerdictOf(Evaluate(q, *answer))
	return m.Verdict
}

// Clear returns q to the unanswered state.
func Clear(q Question) {
	m := q.Meta()
	m.Answer = NoAnswer()
	m.Verdict = VerdictUnknown
}
