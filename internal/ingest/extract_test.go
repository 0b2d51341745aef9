package ingest

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"surrounding noise", `noise {"a":{"b":1}} trailing`, `{"a":{"b":1}}`},
		{"brace in string", `{"t":"a } b","n":{}} tail`, `{"t":"a } b","n":{}}`},
		{"escaped quote in string", `x {"t":"say \"}\" now"} y`, `{"t":"say \"}\" now"}`},
		{"markdown fence", "```json\n{\"title\":\"T\"}\n```", `{"title":"T"}`},
		{"first object wins", `{"a":1} {"b":2}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ExtractJSON = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON_Unbalanced(t *testing.T) {
	for _, in := range []string{"", "no json here", `{"a":1`, `{"a":"}"`} {
		if _, err := ExtractJSON(in); !errors.Is(err, ErrNoJSON) {
			t.Errorf("ExtractJSON(%q) err = %v, want ErrNoJSON", in, err)
		}
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"line comment", "{\"a\":1 // one\n}", "{\"a\":1 \n}"},
		{"block comment", `{"a":/* x */1}`, `{"a":1}`},
		{"trailing comma object", `{"a":1,}`, `{"a":1}`},
		{"trailing comma array", `{"a":[1,2 , ]}`, `{"a":[1,2  ]}`},
		{"bare key", `{a:1, b_2 : "x"}`, `{"a":1, "b_2" : "x"}`},
		{"bare literal kept", `{"a":[1, true, null]}`, `{"a":[1, true, null]}`},
		{"invalid escape doubled", `{"m":"\( x \)"}`, `{"m":"\\( x \\)"}`},
		{"valid escapes kept", `{"m":"a\n\"b\"é\\"}`, `{"m":"a\n\"b\"é\\"}`},
		{"comment markers in string", `{"u":"http://x/*y*/"}`, `{"u":"http://x/*y*/"}`},
		{"latex frac", `{"m":"\frac{1}{2}"}`, `{"m":"\\frac{1}{2}"}`},
		{"latex times", `{"m":"a \times b"}`, `{"m":"a \\times b"}`},
		{"latex mixed", `{"m":"\( \frac{1}{2} \)"}`, `{"m":"\\( \\frac{1}{2} \\)"}`},
		{"escape before other word kept", `{"m":"one\nothing\tab"}`, `{"m":"one\nothing\tab"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repair(tt.in); got != tt.want {
				t.Fatalf("Repair(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepair_ModelOutput(t *testing.T) {
	in := `{
  // generated
  title: "Math",
  "questions": [
    {"id": "q1", "type": "text-input", "text": ["Solve \( x+1=3 \)"], "correctAnswers": ["2",],}, /* end */
  ],
}`
	out := Repair(in)
	if !json.Valid([]byte(out)) {
		t.Fatalf("repaired text is not valid JSON:\n%s", out)
	}

	var doc struct {
		Title     string
		Questions []struct {
			Text           []string
			CorrectAnswers []string
		}
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Title != "Math" || len(doc.Questions) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if got := doc.Questions[0].Text[0]; got != `Solve \( x+1=3 \)` {
		t.Fatalf("latex not preserved: %q", got)
	}
}

func TestRepairEscapes(t *testing.T) {
	in := `{"a": [1, 2], "m": "x \neq y\n", "k": "\\frac"}`
	want := `{"a": [1, 2], "m": "x \\neq y\n", "k": "\\frac"}`
	if got := RepairEscapes(in); got != want {
		t.Fatalf("RepairEscapes(%q) = %q, want %q", in, got, want)
	}
}
