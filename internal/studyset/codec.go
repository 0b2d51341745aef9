package studyset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// setJSON is the wire shape of a study set.
type setJSON struct {
	ID           string         `json:"id,omitempty"`
	Title        string         `json:"title"`
	CreatedAt    int64          `json:"createdAt,omitempty"`
	LastAccessed int64          `json:"lastAccessed,omitempty"`
	IsPinned     bool           `json:"isPinned"`
	Settings     settingsJSON   `json:"settings"`
	Questions    []questionJSON `json:"questions"`
}

type settingsJSON struct {
	PersistSession bool `json:"persistSession"`
}

type questionJSON struct {
	ID             string       `json:"id"`
	Type           Kind         `json:"type"`
	Text           []string     `json:"text"`
	Options        []optionJSON `json:"options,omitempty"`
	CorrectAnswers []string     `json:"correctAnswers,omitempty"`
	Explanation    string       `json:"explanation,omitempty"`
	Answer         *string      `json:"answer"`
	IsUserCorrect  *bool        `json:"isUserCorrect"`
}

type optionJSON struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect,omitempty"`
}

// rawSet is the permissive decode shape. Fields that need rule-level
// diagnostics stay as raw JSON until a question is built.
type rawSet struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	CreatedAt    int64             `json:"createdAt"`
	LastAccessed int64             `json:"lastAccessed"`
	IsPinned     bool              `json:"isPinned"`
	Settings     *rawSettings      `json:"settings"`
	Questions    []json.RawMessage `json:"questions"`
}

type rawSettings struct {
	PersistSession *bool `json:"persistSession"`
}

type rawQuestion struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Text           json.RawMessage   `json:"text"`
	Options        []optionJSON      `json:"options"`
	CorrectAnswers []json.RawMessage `json:"correctAnswers"`
	Explanation    string            `json:"explanation"`
	Answer         json.RawMessage   `json:"answer"`
	IsUserCorrect  *bool             `json:"isUserCorrect"`
}

// MarshalJSON encodes the study set in its document format. A given-up
// answer is written as "answer": null with "isUserCorrect": false, which
// keeps it distinct from an unattempted question (both null).
func (s *StudySet) MarshalJSON() ([]byte, error) {
	out := setJSON{
		ID:           s.ID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		LastAccessed: s.LastAccessed,
		IsPinned:     s.IsPinned,
		Settings:     settingsJSON{PersistSession: s.Settings.PersistSession},
		Questions:    make([]questionJSON, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		out.Questions = append(out.Questions, encodeQuestion(q))
	}
	return json.Marshal(out)
}

func encodeQuestion(q Question) questionJSON {
	m := q.Meta()
	qj := questionJSON{
		ID:   m.ID,
		Type: q.Kind(),
		Text: m.Text,
	}
	if v, ok := m.Answer.Value(); ok {
		qj.Answer = &v
	}
	switch m.Verdict {
	case VerdictCorrect:
		qj.IsUserCorrect = boolPtr(true)
	case VerdictIncorrect:
		qj.IsUserCorrect = boolPtr(false)
	}
	if m.Answer.IsGivenUp() {
		qj.IsUserCorrect = boolPtr(false)
	}

	switch v := q.(type) {
	case *MultipleChoice:
		qj.Options = make([]optionJSON, len(v.Options))
		for i, o := range v.Options {
			qj.Options[i] = optionJSON(o)
		}
	case *TextInput:
		qj.CorrectAnswers = v.CorrectAnswers
		qj.Explanation = v.Explanation
	}
	return qj
}

// UnmarshalJSON decodes a document without running the validators.
// Use Decode for untrusted input.
func (s *StudySet) UnmarshalJSON(data []byte) error {
	set, err := decode(data)
	if err != nil {
		return err
	}
	*s = *set
	return nil
}

// Decode parses and validates a study-set document, keeping any
// recorded progress.
func Decode(data []byte, validators ...Validator) (*StudySet, error) {
	set, err := decode(data)
	if err != nil {
		return nil, err
	}
	if len(validators) == 0 {
		validators = DefaultValidators()
	}
	if err := Validate(set, validators...); err != nil {
		return nil, err
	}
	return set, nil
}

// Import parses and validates a document supplied by the user. Runtime
// fields in the input are discarded.
func Import(data []byte) (*StudySet, error) {
	set, err := Decode(data)
	if err != nil {
		return nil, err
	}
	ResetProgress(set)
	return set, nil
}

func decode(data []byte) (*StudySet, error) {
	var raw rawSet
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse study set: %w", err)
	}

	set := &StudySet{
		ID:           raw.ID,
		Title:        raw.Title,
		CreatedAt:    raw.CreatedAt,
		LastAccessed: raw.LastAccessed,
		IsPinned:     raw.IsPinned,
		Settings:     Settings{PersistSession: true},
	}
	if raw.Settings != nil && raw.Settings.PersistSession != nil {
		set.Settings.PersistSession = *raw.Settings.PersistSession
	}

	for i, msg := range raw.Questions {
		q, err := decodeQuestion(i, msg)
		if err != nil {
			return nil, err
		}
		set.Questions = append(set.Questions, q)
	}
	return set, nil
}

func decodeQuestion(index int, msg json.RawMessage) (Question, error) {
	var rq rawQuestion
	if err := json.Unmarshal(msg, &rq); err != nil {
		return nil, typeError(index, msg, err)
	}
	if rq.ID == "" {
		return nil, &ValidationError{Index: index, Rule: RuleMissingID}
	}

	text, ok := decodeText(rq.Text)
	if !ok {
		return nil, &ValidationError{QuestionID: rq.ID, Index: index, Rule: RuleMissingText}
	}
	common := Common{ID: rq.ID, Text: text}
	common.Answer, common.Verdict = decodeProgress(rq.Answer, rq.IsUserCorrect)

	switch Kind(rq.Type) {
	case KindMultipleChoice:
		q := &MultipleChoice{Common: common}
		if rq.Options != nil {
			q.Options = make([]Option, len(rq.Options))
			for i, o := range rq.Options {
				q.Options[i] = Option(o)
			}
		}
		return q, nil
	case KindTextInput:
		q := &TextInput{Common: common, Explanation: rq.Explanation}
		for _, entry := range rq.CorrectAnswers {
			var s string
			if err := json.Unmarshal(entry, &s); err != nil {
				return nil, &ValidationError{QuestionID: rq.ID, Index: index, Rule: RuleNonStringAnswer}
			}
			q.CorrectAnswers = append(q.CorrectAnswers, s)
		}
		return q, nil
	default:
		return nil, &ValidationError{QuestionID: rq.ID, Index: index, Rule: RuleInvalidType}
	}
}

// typeError turns a field of the wrong JSON type into a ValidationError
// naming the question and the rule it breaks.
func typeError(index int, msg json.RawMessage, err error) error {
	var head struct {
		ID any `json:"id"`
	}
	if jerr := json.Unmarshal(msg, &head); jerr != nil {
		return fmt.Errorf("parse question at index %d: %w", index, err)
	}
	id, _ := head.ID.(string)
	verr := &ValidationError{QuestionID: id, Index: index, Rule: RuleFieldType}

	var terr *json.UnmarshalTypeError
	if !errors.As(err, &terr) {
		verr.Detail = err.Error()
		return verr
	}
	verr.Detail = fmt.Sprintf("%s must be %s, got %s", terr.Field, terr.Type, terr.Value)
	switch {
	case terr.Field == "id":
		verr.Rule = RuleMissingID
	case terr.Field == "type":
		verr.Rule = RuleInvalidType
	case terr.Field == "options":
		verr.Rule = RuleMissingOptions
	case strings.HasPrefix(terr.Field, "options."):
		verr.Rule = RuleMalformedOption
	}
	return verr
}

// decodeText accepts an array of strings or a single string paragraph.
func decodeText(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	var paragraphs []string
	if err := json.Unmarshal(raw, &paragraphs); err == nil {
		return paragraphs, true
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, true
	}
	return nil, false
}

// decodeProgress maps the (answer, isUserCorrect) pair back to the
// tri-state model. Non-string answers are treated as unset.
func decodeProgress(rawAnswer json.RawMessage, isCorrect *bool) (Answer, Verdict) {
	var value *string
	if len(rawAnswer) > 0 {
		var s string
		if err := json.Unmarshal(rawAnswer, &s); err == nil {
			value = &s
		}
	}

	switch {
	case value != nil && isCorrect == nil:
		return Given(*value), VerdictUnknown
	case value != nil:
		return Given(*value), VerdictOf(*isCorrect)
	case isCorrect != nil && !*isCorrect:
		return GaveUp(), VerdictIncorrect
	default:
		return NoAnswer(), VerdictUnknown
	}
}

func boolPtr(b bool) *bool { return &b }
