package studyset

// Kind identifies the question variant on the wire.
type Kind string

const (
	KindMultipleChoice Kind = "multiple-choice"
	KindTextInput      Kind = "text-input"
)

// Question is a closed set of question variants: *MultipleChoice and
// *TextInput. Callers dispatch with a type switch.
type Question interface {
	// Kind returns the wire discriminator of the variant.
	Kind() Kind

	// Meta returns the fields shared by every variant.
	Meta() *Common

	sealed()
}

// Common holds the fields every question carries.
type Common struct {
	// ID is unique within a study set.
	ID string

	// Text is the question body, one entry per paragraph. May contain
	// inline LaTeX delimited by \( and \).
	Text []string

	// Answer is the learner's recorded response.
	Answer Answer

	// Verdict records whether Answer was judged correct.
	Verdict Verdict
}

// Meta implements Question for every variant embedding Common.
func (c *Common) Meta() *Common { return c }

// Option is one choice of a multiple-choice question.
type Option struct {
	ID        string
	Text      string
	IsCorrect bool
}

// MultipleChoice is answered by picking one option id.
type MultipleChoice struct {
	Common

	// Options holds at least two choices, exactly one marked correct.
	Options []Option
}

func (*MultipleChoice) Kind() Kind { return KindMultipleChoice }
func (*MultipleChoice) sealed()    {}

// CorrectOption returns the option marked correct, or nil when none is.
func (q *MultipleChoice) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// TextInput is answered with free text compared against CorrectAnswers.
type TextInput struct {
	Common

	// CorrectAnswers lists every accepted answer.
	CorrectAnswers []string

	// Explanation is an optional worked solution shown after answering.
	Explanation string
}

func (*TextInput) Kind() Kind { return KindTextInput }
func (*TextInput) sealed()    {}

// answerState distinguishes the three shapes an Answer can take.
type answerState uint8

const (
	answerUnset answerState = iota
	answerGivenUp
	answerValue
)

// Answer is a tri-state learner response: never attempted, given up
// (answer revealed), or a concrete value. The zero value is unset.
type Answer struct {
	state answerState
	value string
}

// NoAnswer returns the unset answer.
func NoAnswer() Answer { return Answer{} }

// GaveUp returns the answer recorded when the learner asks to reveal the
// correct answer.
func GaveUp() Answer { return Answer{state: answerGivenUp} }

// Given returns an answer holding the learner's input.
func Given(value string) Answer { return Answer{state: answerValue, value: value} }

// IsSet reports whether the learner has either answered or given up.
func (a Answer) IsSet() bool { return a.state != answerUnset }

// IsGivenUp reports whether the answer records a give-up.
func (a Answer) IsGivenUp() bool { return a.state == answerGivenUp }

// Value returns the learner's input and whether one exists.
func (a Answer) Value() (string, bool) {
	return a.value, a.state == answerValue
}

// Verdict is the tri-state correctness of a recorded answer.
type Verdict int8

const (
	VerdictUnknown Verdict = iota
	VerdictCorrect
	VerdictIncorrect
)

// VerdictOf maps a boolean evaluation result to a Verdict.
func VerdictOf(correct bool) Verdict {
	if correct {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictIncorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// Settings holds per-set behavior flags.
type Settings struct {
	// PersistSession controls whether the set is written to the store.
	// Defaults to true when absent from input.
	PersistSession bool
}

// StudySet is an ordered list of questions with metadata.
type StudySet struct {
	ID           string
	Title        string
	CreatedAt    int64 // ms since epoch
	LastAccessed int64 // ms since epoch
	IsPinned     bool
	Settings     Settings
	Questions    []Question
}

// New returns a study set with default settings.
func New(title string, questions ...Question) *StudySet {
	return &StudySet{
		Title:     title,
		Settings:  Settings{PersistSession: true},
		Questions: questions,
	}
}

// Find returns the question with the given id and its position.
func (s *StudySet) Find(id string) (Question, int) {
	for i, q := range s.Questions {
		if q.Meta().ID == id {
			return q, i
		}
	}
	return nil, -1
}

// Clone returns a deep copy of the study set.
func (s *StudySet) Clone() *StudySet {
	if s == nil {
		return nil
	}
	out := *s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = cloneQuestion(q)
	}
	return &out
}

func cloneQuestion(q Question) Question {
	switch v := q.(type) {
	case *MultipleChoice:
		c := *v
		c.Text = append([]string(nil), v.Text...)
		c.Options = append([]Option(nil), v.Options...)
		return &c
	case *TextInput:
		c := *v
		c.Text = append([]string(nil), v.Text...)
		c.CorrectAnswers = append([]string(nil), v.CorrectAnswers...)
		return &c
	default:
		panic("studyset: unknown question variant")
	}
}
