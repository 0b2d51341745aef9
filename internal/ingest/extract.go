package ingest

import "errors"

// ErrNoJSON is returned when a response holds no balanced JSON object.
var ErrNoJSON = errors.New("Failed to extract valid JSON from the response")

// ExtractJSON returns the first balanced top-level object in text. Braces
// inside string literals are ignored.
func ExtractJSON(text string) (string, error) {
	start := -1
	depth := 0
	inString, escaped := false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if start < 0 {
			if c == '{' {
				start, depth = i, 1
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}
