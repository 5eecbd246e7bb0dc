package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/scrivener/internal/chain"
	"github.com/JaimeStill/scrivener/internal/prompts"
	"github.com/JaimeStill/scrivener/internal/providers"
	"github.com/JaimeStill/scrivener/internal/render"
)

// TranslateSchema constrains the translate stage reply.
var TranslateSchema = providers.MustSchema("translation", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"html": map[string]any{
			"type":        "string",
			"description": "Complete HTML document for the translated page.",
		},
	},
	"required":             []any{"html"},
	"additionalProperties": false,
})

// CritiqueSchema constrains the critique stage reply.
var CritiqueSchema = providers.MustSchema("critique", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"need_correction": map[string]any{
			"type":        "boolean",
			"description": "Whether the translation needs another revision.",
		},
		"reasoning": map[string]any{
			"type":        "string",
			"description": "Defects to fix, or a short confirmation.",
		},
	},
	"required":             []any{"need_correction", "reasoning"},
	"additionalProperties": false,
})

// TranslateResult is the decoded translate reply.
type TranslateResult struct {
	HTML string `json:"html"`
}

// CritiqueResult is the decoded critique reply.
type CritiqueResult struct {
	NeedCorrection bool   `json:"need_correction"`
	Reasoning      string `json:"reasoning"`
}

type translateStage struct {
	system   string
	language string
	cycles   int
}

// NewTranslateStage creates the stage that produces page HTML. With cycles
// at zero, or once the cycle budget is spent, it stops the chain.
func NewTranslateStage(params prompts.Params, cycles int) (chain.Stage[Page], error) {
	system, err := prompts.Compose(prompts.StageTranslate, params)
	if err != nil {
		return nil, err
	}
	return &translateStage{system: system, language: params.Language, cycles: cycles}, nil
}

func (s *translateStage) Name() string              { return string(prompts.StageTranslate) }
func (s *translateStage) System() string            { return s.system }
func (s *translateStage) Schema() *providers.Schema { return TranslateSchema }
func (s *translateStage) ConsumesHistory() bool     { return true }
func (s *translateStage) ProducesHistory() bool     { return true }

func (s *translateStage) Prepare(_ context.Context, st *chain.State[Page]) (providers.Message, chain.Signal, error) {
	page := st.Input
	if page.ImagePath == "" {
		return providers.Message{}, chain.Stop, fmt.Errorf("%w: page %d", ErrMissingImage, page.Number)
	}

	if st.Cycle > 0 {
		return providers.UserMessage(providers.Text(prompts.ReviseTranslate())), chain.Continue, nil
	}

	text := prompts.FirstTranslate(prompts.Turn{
		Language: s.language,
		Page:     page.Number,
		Width:    page.Dimensions.Width,
		Height:   page.Dimensions.Height,
	})
	return providers.UserMessage(providers.Text(text), providers.Image(page.ImagePath)), chain.Continue, nil
}

func (s *translateStage) Finish(_ context.Context, st *chain.State[Page], resp providers.Response) (chain.Signal, error) {
	result, err := providers.Decode[TranslateResult](resp, TranslateSchema)
	if err != nil {
		return chain.Stop, err
	}
	if strings.TrimSpace(result.HTML) == "" {
		return chain.Stop, fmt.Errorf("%w: page %d", ErrEmptyTranslation, st.Input.Number)
	}

	st.Answer = result.HTML

	if s.cycles == 0 || st.Cycle == s.cycles {
		return chain.Stop, nil
	}
	return chain.Continue, nil
}

type critiqueStage struct {
	system   string
	renderer render.Service
	dir      string
	logger   *slog.Logger
}

// NewCritiqueStage creates the stage that reviews a rendered screenshot of
// the current answer. A render failure stops the chain with the answer kept.
func NewCritiqueStage(params prompts.Params, renderer render.Service, dir string, logger *slog.Logger) (chain.Stage[Page], error) {
	system, err := prompts.Compose(prompts.StageCritique, params)
	if err != nil {
		return nil, err
	}
	return &critiqueStage{system: system, renderer: renderer, dir: dir, logger: logger}, nil
}

func (s *critiqueStage) Name() string              { return string(prompts.StageCritique) }
func (s *critiqueStage) System() string            { return s.system }
func (s *critiqueStage) Schema() *providers.Schema { return CritiqueSchema }
func (s *critiqueStage) ConsumesHistory() bool     { return false }
func (s *critiqueStage) ProducesHistory() bool     { return false }

func (s *critiqueStage) Prepare(ctx context.Context, st *chain.State[Page]) (providers.Message, chain.Signal, error) {
	page := st.Input

	shot, err := s.renderer.Render(ctx, render.Request{
		HTML:   st.Answer,
		Width:  page.Dimensions.Width,
		Height: page.Dimensions.Height,
		Dir:    s.dir,
	})
	if err != nil {
		if ctx.Err() != nil {
			return providers.Message{}, chain.Stop, ctx.Err()
		}
		s.logger.Warn("render failed, keeping current translation", "page", page.Number, "cycle", st.Cycle, "error", err)
		return providers.Message{}, chain.Stop, nil
	}

	text := prompts.Critique(prompts.Turn{Page: page.Number})
	msg := providers.UserMessage(
		providers.Text(text),
		providers.Image(page.ImagePath),
		providers.Image(shot),
	)
	return msg, chain.Continue, nil
}

func (s *critiqueStage) Finish(_ context.Context, st *chain.State[Page], resp providers.Response) (chain.Signal, error) {
	result, err := providers.Decode[CritiqueResult](resp, CritiqueSchema)
	if err != nil {
		return chain.Stop, err
	}
	if !result.NeedCorrection {
		return chain.Stop, nil
	}

	st.Append(providers.AssistantText(result.Reasoning))
	return chain.Continue, nil
}
