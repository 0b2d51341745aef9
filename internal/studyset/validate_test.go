package studyset

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		rule   Rule
		qID    string
		substr string
	}{
		{
			name: "missing title",
			doc:  `{"questions": [{"id": "q1", "type": "text-input", "text": ["a"], "correctAnswers": ["a"]}]}`,
			rule: RuleMissingTitle,
		},
		{
			name: "missing questions",
			doc:  `{"title": "T", "questions": []}`,
			rule: RuleMissingQuestions,
		},
		{
			name:   "missing id",
			doc:    `{"title": "T", "questions": [{"type": "text-input", "text": ["a"], "correctAnswers": ["a"]}]}`,
			rule:   RuleMissingID,
			substr: "index 0",
		},
		{
			name: "bad type",
			doc:  `{"title": "T", "questions": [{"id": "q7", "type": "essay", "text": ["a"]}]}`,
			rule: RuleInvalidType,
			qID:  "q7",
		},
		{
			name: "missing text",
			doc:  `{"title": "T", "questions": [{"id": "q1", "type": "text-input", "correctAnswers": ["a"]}]}`,
			rule: RuleMissingText,
			qID:  "q1",
		},
		{
			name: "empty text",
			doc:  `{"title": "T", "questions": [{"id": "q1", "type": "text-input", "text": [], "correctAnswers": ["a"]}]}`,
			rule: RuleMissingText,
			qID:  "q1",
		},
		{
			name: "missing options",
			doc:  `{"title": "T", "questions": [{"id": "m1", "type": "multiple-choice", "text": ["a"]}]}`,
			rule: RuleMissingOptions,
			qID:  "m1",
		},
		{
			name: "one option",
			doc: `{"title": "T", "questions": [{"id": "m1", "type": "multiple-choice", "text": ["a"],
			  "options": [{"id": "a", "text": "x", "isCorrect": true}]}]}`,
			rule: RuleTooFewOptions,
			qID:  "m1",
		},
		{
			name: "no correct option",
			doc: `{"title": "T", "questions": [{"id": "m2", "type": "multiple-choice", "text": ["a"],
			  "options": [{"id": "a", "text": "x"}, {"id": "b", "text": "y"}]}]}`,
			rule: RuleNoCorrectOption,
			qID:  "m2",
		},
		{
			name: "multiple correct options",
			doc: `{"title": "T", "questions": [{"id": "m3", "type": "multiple-choice", "text": ["a"],
			  "options": [{"id": "a", "text": "x", "isCorrect": true}, {"id": "b", "text": "y", "isCorrect": true}]}]}`,
			rule: RuleMultipleCorrect,
			qID:  "m3",
		},
		{
			name: "option missing id",
			doc: `{"title": "T", "questions": [{"id": "m4", "type": "multiple-choice", "text": ["a"],
			  "options": [{"text": "x", "isCorrect": true}, {"id": "b", "text": "y"}]}]}`,
			rule: RuleOptionMissingID,
			qID:  "m4",
		},
		{
			name: "duplicate option id",
			doc: `{"title": "T", "questions": [{"id": "m5", "type": "multiple-choice", "text": ["a"],
			  "options": [{"id": "a", "text": "x", "isCorrect": true}, {"id": "a", "text": "y"}]}]}`,
			rule: RuleDuplicateOptionID,
			qID:  "m5",
		},
		{
			name: "missing correctAnswers",
			doc:  `{"title": "T", "questions": [{"id": "t1", "type": "text-input", "text": ["a"]}]}`,
			rule: RuleMissingAnswers,
			qID:  "t1",
		},
		{
			name: "duplicate question id",
			doc: `{"title": "T", "questions": [
			  {"id": "d", "type": "text-input", "text": ["a"], "correctAnswers": ["a"]},
			  {"id": "d", "type": "text-input", "text": ["b"], "correctAnswers": ["b"]}]}`,
			rule: RuleDuplicateQuestionID,
			qID:  "d",
		},
		{
			name: "string isCorrect",
			doc: `{"title": "T", "questions": [{"id": "m6", "type": "multiple-choice", "text": ["a"],
			  "options": [{"id": "a", "text": "x", "isCorrect": "true"}, {"id": "b", "text": "y"}]}]}`,
			rule:   RuleMalformedOption,
			qID:    "m6",
			substr: "options.isCorrect",
		},
		{
			name:   "options not an array",
			doc:    `{"title": "T", "questions": [{"id": "m7", "type": "multiple-choice", "text": ["a"], "options": "abc"}]}`,
			rule:   RuleMissingOptions,
			qID:    "m7",
			substr: "options",
		},
		{
			name: "explanation not a string",
			doc:  `{"title": "T", "questions": [{"id": "t2", "type": "text-input", "text": ["a"], "correctAnswers": ["a"], "explanation": 3}]}`,
			rule: RuleFieldType,
			qID:  "t2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import([]byte(tc.doc))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Rule != tc.rule {
				t.Fatalf("expected rule %q, got %q", tc.rule, verr.Rule)
			}
			if verr.QuestionID != tc.qID {
				t.Fatalf("expected question id %q, got %q", tc.qID, verr.QuestionID)
			}
			if !strings.Contains(err.Error(), string(tc.rule)) {
				t.Fatalf("message %q does not name rule %q", err.Error(), tc.rule)
			}
			if tc.qID != "" && !strings.Contains(err.Error(), tc.qID) {
				t.Fatalf("message %q does not name question %q", err.Error(), tc.qID)
			}
			if tc.substr != "" && !strings.Contains(err.Error(), tc.substr) {
				t.Fatalf("message %q does not contain %q", err.Error(), tc.substr)
			}
		})
	}
}

func TestValidate_CustomChain(t *testing.T) {
	set := New("T", &TextInput{Common: Common{ID: "t1", Text: []string{"?"}}})

	// Without the answer-key validator an empty answer list passes.
	if err := Validate(set, &StructuralValidator{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(set, DefaultValidators()...); err == nil {
		t.Fatal("expected missing correctAnswers error")
	}
}

func TestCheckShape(t *testing.T) {
	ok := `{"title": "T", "questions": [{"id": "q", "type": "text-input", "text": ["a"]}]}`
	if err := CheckShape([]byte(ok)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []string{
		`{"title": "", "questions": [{"id": "q", "type": "text-input", "text": ["a"]}]}`,
		`{"title": "T", "questions": []}`,
		`{"title": "T"}`,
		`{"title": "T", "questions": [{"id": "q", "type": "essay", "text": ["a"]}]}`,
	}
	for _, doc := range bad {
		if err := CheckShape([]byte(doc)); err == nil {
			t.Errorf("expected schema error for %s", doc)
		}
	}
}
