package llm

import "strings"

const (
	// DefaultMaxTokens is the output budget for standard models.
	DefaultMaxTokens = 8192

	// ExtendedMaxTokens is the output budget for thinking and pro
	// experimental models.
	ExtendedMaxTokens = 65536
)

// extendedModels lists models known to accept ExtendedMaxTokens.
var extendedModels = map[string]bool{
	"gemini-2.0-flash-thinking-exp-01-21": true,
	"gemini-2.5-pro-exp-03-25":            true,
	"gemini-2.5-pro-preview-03-25":        true,
}

// MaxOutputTokens returns the output token budget for a model.
func MaxOutputTokens(model string) int {
	if extendedModels[model] || strings.Contains(model, "-thinking") {
		return ExtendedMaxTokens
	}
	return DefaultMaxTokens
}

// KnownModels lists the model identifiers offered in the generate form.
var KnownModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-thinking-exp-01-21",
	"gemini-2.5-pro-exp-03-25",
}
