package studyset

import (
	"fmt"
	"strings"
)

// Rule names a single document constraint.
type Rule string

const (
	RuleMissingTitle        Rule = "missing title"
	RuleMissingQuestions    Rule = "missing questions"
	RuleMissingID           Rule = "missing id"
	RuleInvalidType         Rule = "invalid or missing type"
	RuleMissingText         Rule = "missing text"
	RuleMissingOptions      Rule = "missing options"
	RuleTooFewOptions       Rule = "fewer than 2 options"
	RuleOptionMissingID     Rule = "option missing id"
	RuleDuplicateOptionID   Rule = "duplicate option id"
	RuleNoCorrectOption     Rule = "no correct option marked"
	RuleMultipleCorrect     Rule = "multiple correct options marked"
	RuleMissingAnswers      Rule = "missing correctAnswers"
	RuleNonStringAnswer     Rule = "non-string correctAnswers entry"
	RuleDuplicateQuestionID Rule = "duplicate question id"
	RuleMalformedOption     Rule = "malformed option"
	RuleFieldType           Rule = "field has the wrong type"
)

// ValidationError reports which question broke which rule.
type ValidationError struct {
	QuestionID string // Empty for set-level rules or when the id itself is missing
	Index      int    // Position in the questions array, -1 for set-level rules
	Rule       Rule
	Detail     string // Optional extra context, e.g. the offending option id
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	switch {
	case e.Index < 0:
		b.WriteString("study set")
	case e.QuestionID != "":
		fmt.Fprintf(&b, "question %q", e.QuestionID)
	default:
		fmt.Fprintf(&b, "question at index %d", e.Index)
	}
	b.WriteString(": ")
	b.WriteString(string(e.Rule))
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

// Validator checks a single question. Implementations are stateless.
type Validator interface {
	// Name returns a short identifier, e.g. "structural".
	Name() string

	// Validate returns nil when the question passes.
	Validate(q Question) *ValidationError
}

// DefaultValidators returns the chain applied to imported and generated
// documents.
func DefaultValidators() []Validator {
	return []Validator{
		&StructuralValidator{},
		&ChoiceValidator{},
		&AnswerKeyValidator{},
	}
}

// Validate checks set-level rules and then runs every validator over
// each question. The first failure is returned.
func Validate(s *StudySet, validators ...Validator) error {
	if strings.TrimSpace(s.Title) == "" {
		return &ValidationError{Index: -1, Rule: RuleMissingTitle}
	}
	if len(s.Questions) == 0 {
		return &ValidationError{Index: -1, Rule: RuleMissingQuestions}
	}

	seen := make(map[string]bool, len(s.Questions))
	for i, q := range s.Questions {
		for _, v := range validators {
			if verr := v.Validate(q); verr != nil {
				verr.Index = i
				return verr
			}
		}
		id := q.Meta().ID
		if seen[id] {
			return &ValidationError{QuestionID: id, Index: i, Rule: RuleDuplicateQuestionID}
		}
		seen[id] = true
	}
	return nil
}

// StructuralValidator checks the fields shared by every variant.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q Question) *ValidationError {
	m := q.Meta()
	if m.ID == "" {
		return &ValidationError{Rule: RuleMissingID}
	}
	if len(m.Text) == 0 {
		return &ValidationError{QuestionID: m.ID, Rule: RuleMissingText}
	}
	return nil
}

// ChoiceValidator checks the option list of multiple-choice questions.
type ChoiceValidator struct{}

func (v *ChoiceValidator) Name() string { return "choice" }

func (v *ChoiceValidator) Validate(q Question) *ValidationError {
	mc, ok := q.(*MultipleChoice)
	if !ok {
		return nil
	}
	switch {
	case len(mc.Options) == 0:
		return &ValidationError{QuestionID: mc.ID, Rule: RuleMissingOptions}
	case len(mc.Options) < 2:
		return &ValidationError{QuestionID: mc.ID, Rule: RuleTooFewOptions}
	}

	ids := make(map[string]bool, len(mc.Options))
	correct := 0
	for i, o := range mc.Options {
		if o.ID == "" {
			return &ValidationError{QuestionID: mc.ID, Rule: RuleOptionMissingID, Detail: fmt.Sprintf("option %d", i)}
		}
		if ids[o.ID] {
			return &ValidationError{QuestionID: mc.ID, Rule: RuleDuplicateOptionID, Detail: o.ID}
		}
		ids[o.ID] = true
		if o.IsCorrect {
			correct++
		}
	}

	switch {
	case correct == 0:
		return &ValidationError{QuestionID: mc.ID, Rule: RuleNoCorrectOption}
	case correct > 1:
		return &ValidationError{QuestionID: mc.ID, Rule: RuleMultipleCorrect}
	}
	return nil
}

// AnswerKeyValidator checks the accepted answers of text-input questions.
type AnswerKeyValidator struct{}

func (v *AnswerKeyValidator) Name() string { return "answer-key" }

func (v *AnswerKeyValidator) Validate(q Question) *ValidationError {
	ti, ok := q.(*TextInput)
	if !ok {
		return nil
	}
	if len(ti.CorrectAnswers) == 0 {
		return &ValidationError{QuestionID: ti.ID, Rule: RuleMissingAnswers}
	}
	return nil
}
