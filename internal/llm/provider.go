package llm

import (
	"context"
	"iter"
	"strings"
)

// Provider is the core abstraction for streaming text generation.
type Provider interface {
	// Stream sends the request and yields text fragments in order. A
	// non-nil error is always the last value yielded. The sequence is
	// single-use; stop ranging over it to abandon the call.
	Stream(ctx context.Context, req Request) iter.Seq2[string, error]

	// ModelID returns the default model identifier of this provider.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// Model overrides the provider's default model when set.
	Model string

	// System is an optional system prompt.
	System string

	// Parts is the ordered user content: text and inline media.
	Parts []Part

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64

	// TopK and TopP tune sampling. Zero leaves the provider default.
	TopK int
	TopP float64
}

// Part is one element of the user message: either text or inline bytes.
type Part struct {
	Text string

	// Data and MIMEType describe inline media, e.g. an image.
	Data     []byte
	MIMEType string
}

// TextPart returns a text Part.
func TextPart(s string) Part { return Part{Text: s} }

// InlinePart returns an inline media Part.
func InlinePart(data []byte, mimeType string) Part {
	return Part{Data: data, MIMEType: mimeType}
}

// IsInline reports whether the part carries media bytes.
func (p Part) IsInline() bool { return len(p.Data) > 0 }

// modelFor returns the model a request should run against.
func modelFor(req Request, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	return fallback
}

// joinText concatenates the text parts of a request. Used by providers
// that take a single string when no media is attached.
func joinText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if !p.IsInline() {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// hasInline reports whether any part carries media.
func hasInline(parts []Part) bool {
	for _, p := range parts {
		if p.IsInline() {
			return true
		}
	}
	return false
}

// Collect drains a stream and returns the concatenated text.
func Collect(seq iter.Seq2[string, error]) (string, error) {
	var b strings.Builder
	for frag, err := range seq {
		if err != nil {
			return b.String(), err
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}
