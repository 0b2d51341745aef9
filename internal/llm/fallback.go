package llm

import (
	"context"
	"errors"
	"iter"
	"strings"

	"github.com/abhisek/studybuddy/internal/logger"
)

// FallbackProvider is a decorator that retries a request once against a
// preview model when an experimental model is reported missing. No other
// error is retried.
type FallbackProvider struct {
	inner     Provider
	fallbacks map[string]string
	log       *logger.Logger
}

// WithModelFallback wraps a Provider with the experimental-to-preview
// substitution. The map overrides the default "-exp-" to "-preview-"
// renaming for specific models.
func WithModelFallback(p Provider, fallbacks map[string]string, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &FallbackProvider{inner: p, fallbacks: fallbacks, log: log}
}

func (f *FallbackProvider) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		model := modelFor(req, f.inner.ModelID())
		produced := false

		for frag, err := range f.inner.Stream(ctx, req) {
			if err == nil {
				produced = true
				if !yield(frag, nil) {
					return
				}
				continue
			}

			preview, ok := f.previewFor(model)
			var nf *ErrModelNotFound
			if produced || !ok || !errors.As(err, &nf) {
				yield("", err)
				return
			}

			f.log.Warn("experimental model not found, retrying with preview model",
				"model", model, "fallback", preview)
			retry := req
			retry.Model = preview
			for frag, err := range f.inner.Stream(ctx, retry) {
				if !yield(frag, err) || err != nil {
					return
				}
			}
			return
		}
	}
}

func (f *FallbackProvider) ModelID() string {
	return f.inner.ModelID()
}

// previewFor returns the preview identifier for an experimental model.
func (f *FallbackProvider) previewFor(model string) (string, bool) {
	if p, ok := f.fallbacks[model]; ok {
		return p, true
	}
	return PreviewModel(model)
}

// PreviewModel derives the preview variant of an experimental model id,
// e.g. "gemini-2.5-pro-exp-03-25" becomes "gemini-2.5-pro-preview-03-25".
func PreviewModel(model string) (string, bool) {
	if !IsExperimental(model) {
		return "", false
	}
	if strings.HasSuffix(model, "-exp") {
		return strings.TrimSuffix(model, "-exp") + "-preview", true
	}
	return strings.Replace(model, "-exp-", "-preview-", 1), true
}

// IsExperimental reports whether model names an experimental variant.
func IsExperimental(model string) bool {
	return strings.Contains(model, "-exp-") || strings.HasSuffix(model, "-exp")
}
