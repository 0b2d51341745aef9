package studyset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const documentSchemaURL = "schema://study-set.json"

// documentSchema describes the outer shape of a study-set document. Per
// question rules are enforced by the Validator chain, which produces
// messages naming the offending question.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []any{"title", "questions"},
	"properties": map[string]any{
		"title": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"settings": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"persistSession": map[string]any{"type": "boolean"},
			},
		},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "type", "text"},
				"properties": map[string]any{
					"id":   map[string]any{"type": "string"},
					"type": map[string]any{"enum": []any{string(KindMultipleChoice), string(KindTextInput)}},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants decoded JSON values, not Go literals.
		def, err := json.Marshal(documentSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(documentSchemaURL, parsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(documentSchemaURL)
	})
	return compiled, compileErr
}

// CheckShape validates raw JSON against the document schema without
// building a StudySet.
func CheckShape(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse study set: %w", err)
	}
	sch, err := documentValidator()
	if err != nil {
		return fmt.Errorf("compile study-set schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("study set does not match schema: %w", err)
	}
	return nil
}
