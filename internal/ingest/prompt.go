package ingest

import (
	"fmt"
	"strings"

	"github.com/abhisek/studybuddy/internal/studyset"
)

// Mode selects between drafting a new study set and revising one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

const fence = "```"

const schemaExample = `{
  "title": "Your Study Set Title",
  "settings": {
    "persistSession": true
  },
  "questions": [
    // Multiple choice question example
    {
      "id": "q1", // Unique identifier for the question
      "type": "multiple-choice", // Must be either "multiple-choice" or "text-input"
      "text": [
        "Main question text goes here. You can include LaTeX formulas like \\( x^2 + y^2 = z^2 \\)",
        "Optional additional paragraph or hint"
      ],
      "options": [
        {"id": "a", "text": "First option"},
        {"id": "b", "text": "Second option"},
        {"id": "c", "text": "Correct option", "isCorrect": true}, // Mark the correct option
        {"id": "d", "text": "Fourth option"}
      ]
    },
    // Text input question example with complex LaTeX formula
    {
      "id": "q2",
      "type": "text-input",
      "text": [
        "Question that requires text input. For example: solve \\( \\frac{2x + 5}{3} = 15 \\) for x."
      ],
      "correctAnswers": [
        "20", "x=20", "x = 20" // Multiple acceptable answers
      ],
      "explanation": "Optional explanation: \\( \\frac{2x + 5}{3} = 15 \\) → \\( 2x + 5 = 45 \\) → \\( 2x = 40 \\) → \\( x = 20 \\)"
    }
  ]
}`

const requirements = `**Important Requirements:**

1. **Structure:**
   - The JSON must include "title", "settings", and "questions" fields.
   - Each question must have a unique "id".
   - The "text" field must be an array of strings, even if there's only one paragraph.

2. **Question Types:**
   - For multiple-choice questions:
     - Must include "options" array with at least 2 options
     - Exactly one option must have "isCorrect": true
     - Each option needs an "id" (a, b, c, etc.) and "text"

   - For text-input questions:
     - Must include "correctAnswers" array with at least one acceptable answer
     - Can optionally include an "explanation" field

3. **LaTeX Support (VERY IMPORTANT FOR JSON):**
   - Every single backslash in LaTeX MUST be doubled in JSON strings
   - For inline LaTeX use \\( ... \\) - note the DOUBLE backslashes`

// BuildPrompt returns the instruction text for a generation request. Edit
// mode embeds the prior set without its identity or progress.
func BuildPrompt(mode Mode, prompt string, prior *studyset.StudySet) (string, error) {
	var b strings.Builder
	b.WriteString("\nI need help creating a JSON study set for my StudyBuddy app. Please format it exactly according to the schema below.\n\n")
	b.WriteString(fence + "json\n" + schemaExample + "\n" + fence + "\n\n")
	b.WriteString(requirements)
	b.WriteString("\n\n")

	switch mode {
	case ModeEdit:
		if prior == nil {
			return "", fmt.Errorf("edit mode requires an existing study set")
		}
		tmpl, err := studyset.Template(prior)
		if err != nil {
			return "", err
		}
		b.WriteString("Here is the existing study set:\n\n")
		b.WriteString(fence + "json\n")
		b.Write(tmpl)
		b.WriteString("\n" + fence + "\n\n")
		b.WriteString("Please return the complete revised study set in the same format, applying the following changes:\n")
	default:
		b.WriteString("Please create a study set with questions about the following topic:\n")
	}
	b.WriteString(prompt)
	b.WriteString("\n")
	return b.String(), nil
}
