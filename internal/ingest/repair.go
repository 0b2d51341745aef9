package ingest

import "strings"

// Repair rewrites near-JSON emitted by a model into strict JSON. It makes
// one pass and applies these rules outside string literals:
//
//   - // line comments and /* */ block comments are removed
//   - a comma directly before } or ] is removed
//   - a bare identifier used as an object key is quoted
//
// Inside string literals a backslash that does not start a valid escape
// is doubled, so LaTeX such as \( survives decoding. So is a backslash
// starting a known LaTeX command that happens to begin with a JSON
// escape letter, e.g. \frac or \times.
//
// Repair does not validate its output; callers decode it again.
func Repair(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/16)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			i = copyString(&b, s, i)

		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}

		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += 2 + end + 1
			}

		case c == '}' || c == ']':
			dropTrailingComma(&b)
			b.WriteByte(c)

		case isIdentStart(c) && expectsKey(b.String()):
			j := i
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			ident := s[i:j]
			if nextSignificant(s, j) == ':' {
				b.WriteByte('"')
				b.WriteString(ident)
				b.WriteByte('"')
			} else {
				b.WriteString(ident)
			}
			i = j - 1

		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// copyString writes the string literal starting at s[start] and returns
// the index of its closing quote.
func copyString(b *strings.Builder, s string, start int) int {
	b.WriteByte('"')
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteByte(c)
			return i
		case '\\':
			if validEscape(s, i) && !latexCommand(s, i) {
				b.WriteByte(c)
				i++
				b.WriteByte(s[i])
				continue
			}
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	return len(s)
}

// RepairEscapes applies only the string-literal rules of Repair and
// copies everything outside strings unchanged. It is safe on valid JSON.
func RepairEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/16)
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			i = copyString(&b, s, i)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// latexCommands holds LaTeX control words whose first letter is also a
// single-character JSON escape.
var latexCommands = map[string]bool{
	"backslash": true, "bar": true, "begin": true, "beta": true, "bf": true,
	"big": true, "bigcap": true, "bigcup": true, "binom": true, "bmod": true,
	"bmatrix": true, "boldsymbol": true, "bot": true, "bullet": true,
	"bigg": true, "bigl": true, "bigr": true, "boxed": true,
	"flat": true, "footnote": true, "forall": true, "frac": true, "frown": true,
	"nabla": true, "natural": true, "ne": true, "nearrow": true, "neg": true,
	"neq": true, "newline": true, "nexists": true, "ni": true, "nmid": true,
	"nonumber": true, "not": true, "notin": true, "nu": true, "nleq": true,
	"ngeq": true, "nsubseteq": true,
	"rangle": true, "rbrace": true, "rceil": true, "rfloor": true, "rho": true,
	"right": true, "rightarrow": true, "rightleftharpoons": true, "rm": true,
	"rvert": true, "rVert": true,
	"tan": true, "tanh": true, "tau": true, "text": true, "textbf": true,
	"textit": true, "textrm": true, "tfrac": true, "therefore": true,
	"theta": true, "tilde": true, "times": true, "to": true, "top": true,
	"triangle": true, "tt": true, "textstyle": true,
}

// latexCommand reports whether the backslash at s[i] starts one of
// latexCommands. The command must end at a non-letter.
func latexCommand(s string, i int) bool {
	j := i + 1
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	return latexCommands[s[i+1:j]]
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func validEscape(s string, i int) bool {
	if i+1 >= len(s) {
		return false
	}
	switch s[i+1] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if i+5 >= len(s) {
			return false
		}
		for _, h := range []byte(s[i+2 : i+6]) {
			if !isHex(h) {
				return false
			}
		}
		return true
	}
	return false
}

func dropTrailingComma(b *strings.Builder) {
	out := b.String()
	trimmed := strings.TrimRight(out, " \t\r\n")
	if strings.HasSuffix(trimmed, ",") {
		rest := out[len(trimmed):]
		b.Reset()
		b.WriteString(trimmed[:len(trimmed)-1])
		b.WriteString(rest)
	}
}

// expectsKey reports whether the emitted text ends where an object key
// may start.
func expectsKey(out string) bool {
	trimmed := strings.TrimRight(out, " \t\r\n")
	if trimmed == "" {
		return false
	}
	last := trimmed[len(trimmed)-1]
	return last == '{' || last == ','
}

func nextSignificant(s string, i int) byte {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return s[i]
	}
	return 0
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
