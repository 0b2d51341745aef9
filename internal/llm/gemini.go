package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"

	"google.golang.org/genai"
)

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash":          "gemini-2.0-flash",
	"gemini-flash-thinking": "gemini-2.0-flash-thinking-exp-01-21",
	"gemini-pro":            "gemini-2.5-pro-exp-03-25",
}

// GeminiProvider implements Provider using the Google Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  resolveModel(cfg.Model, geminiModels),
	}, nil
}

func (p *GeminiProvider) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		model := resolveModel(modelFor(req, p.model), geminiModels)
		config := buildGeminiConfig(req)
		contents := []*genai.Content{{
			Role:  "user",
			Parts: buildGeminiParts(req.Parts),
		}}

		for chunk, err := range p.client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				yield("", mapGeminiError(err, model))
				return
			}
			if text := chunk.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
			if geminiTruncated(chunk) {
				yield("", &ErrMaxTokensExceeded{MaxTokens: req.MaxTokens})
				return
			}
		}
	}
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func buildGeminiConfig(req Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.TopK > 0 {
		k := float32(req.TopK)
		config.TopK = &k
	}
	if req.TopP > 0 {
		tp := float32(req.TopP)
		config.TopP = &tp
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	return config
}

func buildGeminiParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.IsInline() {
			out = append(out, &genai.Part{
				InlineData: &genai.Blob{Data: part.Data, MIMEType: part.MIMEType},
			})
			continue
		}
		out = append(out, &genai.Part{Text: part.Text})
	}
	return out
}

func geminiTruncated(chunk *genai.GenerateContentResponse) bool {
	return len(chunk.Candidates) > 0 && chunk.Candidates[0].FinishReason == "MAX_TOKENS"
}

func mapGeminiError(err error, model string) error {
	code, ok := geminiStatus(err)
	if ok {
		switch {
		case code == http.StatusNotFound:
			return &ErrModelNotFound{Model: model, Err: err}
		case code == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case code >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}

// geminiStatus extracts the HTTP status from an SDK error. The SDK
// returns APIError by value; the pointer form is accepted as well.
func geminiStatus(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}
	return 0, false
}
