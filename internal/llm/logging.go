package llm

import (
	"context"
	"iter"
	"time"

	"github.com/abhisek/studybuddy/internal/logger"
)

// LoggingProvider is a decorator that logs every streamed request.
type LoggingProvider struct {
	inner Provider
	log   *logger.Logger
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		start := time.Now()
		model := modelFor(req, l.inner.ModelID())
		fragments, size := 0, 0
		var streamErr error

		l.log.Debug("llm request",
			"purpose", PurposeFrom(ctx),
			"model", model,
			"parts", len(req.Parts),
			"inline_parts", countInline(req.Parts),
			"prompt_chars", len(joinText(req.Parts)),
			"max_tokens", req.MaxTokens,
		)

		defer func() {
			kv := []any{
				"purpose", PurposeFrom(ctx),
				"model", model,
				"latency", time.Since(start),
				"fragments", fragments,
				"bytes", size,
			}
			if streamErr != nil {
				l.log.Warn("llm request failed", append(kv, "error", streamErr.Error())...)
				return
			}
			l.log.Info("llm request completed", kv...)
		}()

		for frag, err := range l.inner.Stream(ctx, req) {
			if err != nil {
				streamErr = err
			} else {
				fragments++
				size += len(frag)
			}
			if !yield(frag, err) {
				return
			}
		}
	}
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func countInline(parts []Part) int {
	n := 0
	for _, p := range parts {
		if p.IsInline() {
			n++
		}
	}
	return n
}
