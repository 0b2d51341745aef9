package studyset

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mixedDoc = `{
  "title": "Mixed",
  "questions": [
    {"id": "q1", "type": "multiple-choice", "text": ["2+2?"],
     "options": [{"id": "a", "text": "3"}, {"id": "b", "text": "4", "isCorrect": true}],
     "answer": "a", "isUserCorrect": false},
    {"id": "q2", "type": "multiple-choice", "text": ["Sky?"],
     "options": [{"id": "x", "text": "blue", "isCorrect": true}, {"id": "y", "text": "green"}]},
    {"id": "q3", "type": "text-input", "text": "Capital of France?",
     "correctAnswers": ["Paris"], "explanation": "It is Paris.",
     "answer": null, "isUserCorrect": false}
  ]
}`

func TestDecode_KeepsProgress(t *testing.T) {
	set, err := Decode([]byte(mixedDoc))
	require.NoError(t, err)

	require.Len(t, set.Questions, 3)
	assert.True(t, set.Settings.PersistSession, "persistSession defaults to true")

	q1 := set.Questions[0].(*MultipleChoice)
	v, ok := q1.Answer.Value()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, VerdictIncorrect, q1.Verdict)

	assert.Equal(t, StateUnanswered, StateOf(set.Questions[1]))

	q3 := set.Questions[2].(*TextInput)
	assert.Equal(t, []string{"Capital of France?"}, q3.Text)
	assert.Equal(t, StateRevealed, StateOf(q3))
	assert.Equal(t, "It is Paris.", q3.Explanation)
}

func TestImport_ResetsRuntimeFields(t *testing.T) {
	set, err := Import([]byte(mixedDoc))
	require.NoError(t, err)

	for _, q := range set.Questions {
		assert.Equal(t, StateUnanswered, StateOf(q), "question %s", q.Meta().ID)
		assert.Equal(t, VerdictUnknown, q.Meta().Verdict, "question %s", q.Meta().ID)
	}
}

func TestMarshal_RoundTripsGiveUp(t *testing.T) {
	set, err := Decode([]byte(mixedDoc))
	require.NoError(t, err)

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var wire struct {
		Questions []map[string]any `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(data, &wire))

	assert.Equal(t, "a", wire.Questions[0]["answer"])
	assert.Equal(t, false, wire.Questions[0]["isUserCorrect"])
	assert.Nil(t, wire.Questions[1]["answer"])
	assert.Nil(t, wire.Questions[1]["isUserCorrect"])
	assert.Nil(t, wire.Questions[2]["answer"])
	assert.Equal(t, false, wire.Questions[2]["isUserCorrect"])

	again, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, set, again)
}

func TestDecode_PersistSessionFalse(t *testing.T) {
	doc := `{"title": "T", "settings": {"persistSession": false},
	  "questions": [{"id": "q", "type": "text-input", "text": ["?"], "correctAnswers": ["x"]}]}`
	set, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.False(t, set.Settings.PersistSession)
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"title": `))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse study set"))
}

func TestDecode_NonStringCorrectAnswer(t *testing.T) {
	doc := `{"title": "T", "questions": [
	  {"id": "n1", "type": "text-input", "text": ["1+1"], "correctAnswers": ["2", 2]}]}`
	_, err := Decode([]byte(doc))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, RuleNonStringAnswer, verr.Rule)
	assert.Equal(t, "n1", verr.QuestionID)
	assert.Contains(t, err.Error(), `"n1"`)
}

func TestClone_IsDeep(t *testing.T) {
	set, err := Decode([]byte(mixedDoc))
	require.NoError(t, err)

	c := set.Clone()
	c.Questions[1].Meta().Text[0] = "changed"
	c.Questions[0].(*MultipleChoice).Options[0].Text = "changed"
	Clear(c.Questions[0])

	assert.Equal(t, "Sky?", set.Questions[1].Meta().Text[0])
	assert.Equal(t, "3", set.Questions[0].(*MultipleChoice).Options[0].Text)
	assert.Equal(t, StateAnswered, StateOf(set.Questions[0]))
}
