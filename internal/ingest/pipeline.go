package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/studybuddy/internal/llm"
	"github.com/abhisek/studybuddy/internal/logger"
	"github.com/abhisek/studybuddy/internal/studyset"
)

var (
	ErrEmptyPrompt      = errors.New("prompt is empty")
	ErrMissingTitle     = errors.New("Generated JSON is missing a title")
	ErrMissingQuestions = errors.New("Generated JSON is missing questions")
)

// Sampling parameters for study-set generation.
const (
	temperature = 0.2
	topK        = 40
	topP        = 0.95
)

// Request is one generation run.
type Request struct {
	Mode        Mode
	Prompt      string
	Model       string
	APIKey      string
	Attachments []Attachment

	// Prior is the set being revised in ModeEdit.
	Prior *studyset.StudySet
}

// ProviderFactory builds a provider for the given credentials. Empty
// arguments select the configured defaults.
type ProviderFactory func(ctx context.Context, apiKey, model string) (llm.Provider, error)

// Prefs remembers the credentials of the last successful run.
type Prefs interface {
	SaveAPIKey(ctx context.Context, key string)
	SaveModel(ctx context.Context, model string)
}

type Options struct {
	Providers ProviderFactory
	Fetcher   *Fetcher
	Prefs     Prefs
	Logger    *logger.Logger
	Now       func() time.Time
}

// Pipeline turns a prompt into a validated study set.
type Pipeline struct {
	providers ProviderFactory
	fetcher   *Fetcher
	prefs     Prefs
	log       *logger.Logger
	now       func() time.Time
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		providers: opts.Providers,
		fetcher:   opts.Fetcher,
		prefs:     opts.Prefs,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if p.fetcher == nil {
		p.fetcher = NewFetcher()
	}
	if p.log == nil {
		p.log = logger.Nop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Generate streams a model response for req and returns the decoded set.
// onUpdate, when set, receives the accumulated text after every fragment.
func (p *Pipeline) Generate(ctx context.Context, req Request, onUpdate func(string)) (*studyset.StudySet, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	prompt, err := BuildPrompt(req.Mode, req.Prompt, req.Prior)
	if err != nil {
		return nil, err
	}

	atts := append([]Attachment(nil), req.Attachments...)
	if err := p.fetcher.Resolve(ctx, atts); err != nil {
		return nil, err
	}

	provider, err := p.providers(ctx, req.APIKey, req.Model)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	model := req.Model
	if model == "" {
		model = provider.ModelID()
	}

	parts := []llm.Part{llm.TextPart(prompt)}
	for _, a := range atts {
		parts = append(parts, a.Parts()...)
	}

	ctx = llm.WithPurpose(ctx, "generate-"+req.Mode.String())
	var text strings.Builder
	for frag, err := range provider.Stream(ctx, llm.Request{
		Model:       model,
		Parts:       parts,
		MaxTokens:   llm.MaxOutputTokens(model),
		Temperature: temperature,
		TopK:        topK,
		TopP:        topP,
	}) {
		if err != nil {
			return nil, err
		}
		text.WriteString(frag)
		if onUpdate != nil {
			onUpdate(text.String())
		}
	}

	set, err := Parse(text.String())
	if err != nil {
		p.log.Warn("generated study set rejected", "model", model, "mode", req.Mode.String(), "error", err.Error())
		return nil, err
	}
	p.normalize(set, req)

	if p.prefs != nil {
		p.prefs.SaveAPIKey(ctx, req.APIKey)
		p.prefs.SaveModel(ctx, req.Model)
	}
	p.log.Info("study set generated",
		"model", model,
		"mode", req.Mode.String(),
		"questions", len(set.Questions),
		"attachments", len(atts),
	)
	return set, nil
}

// Parse extracts the study set from a model response. String escapes are
// always repaired; the structural rules of Repair are applied only when
// the extracted text is not valid JSON.
func Parse(text string) (*studyset.StudySet, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	if json.Valid([]byte(raw)) {
		raw = RepairEscapes(raw)
	} else {
		raw = Repair(raw)
		if !json.Valid([]byte(raw)) {
			return nil, ErrNoJSON
		}
	}

	var head struct {
		Title     any `json:"title"`
		Questions any `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	if s, _ := head.Title.(string); strings.TrimSpace(s) == "" {
		return nil, ErrMissingTitle
	}
	if qs, _ := head.Questions.([]any); len(qs) == 0 {
		return nil, ErrMissingQuestions
	}

	if err := studyset.CheckShape([]byte(raw)); err != nil {
		return nil, err
	}
	return studyset.Decode([]byte(raw))
}

func (p *Pipeline) normalize(set *studyset.StudySet, req Request) {
	now := studyset.Millis(p.now())
	if req.Mode == ModeEdit && req.Prior != nil {
		set.ID = req.Prior.ID
		set.CreatedAt = req.Prior.CreatedAt
		set.IsPinned = req.Prior.IsPinned
	} else {
		set.ID = studyset.NewID()
		set.CreatedAt = now
		set.IsPinned = false
	}
	set.LastAccessed = now
	set.Settings.PersistSession = true
	studyset.ResetProgress(set)
}
