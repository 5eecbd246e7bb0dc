// Package workflow runs the translation pipeline for one document: it
// rasterizes the source, drives the translate and critique stages over every
// page, and assembles the result.
package workflow

import (
	"context"
	"fmt"
	"os"

	"github.com/JaimeStill/scrivener/internal/chain"
	"github.com/JaimeStill/scrivener/internal/markup"
	"github.com/JaimeStill/scrivener/internal/prompts"
)

// Job describes one translation run.
type Job struct {
	SourcePath   string
	Adapter      string
	Language     string
	DocumentType string
	Cycles       int
}

// Hooks observe a run as it advances. Nil hooks are skipped; an error from a
// hook aborts the run.
type Hooks struct {
	Pages      func(ctx context.Context, pages []PageInfo) error
	Progress   ProgressFunc
	Translated func(ctx context.Context) error
}

// Output is the assembled document and the pages it was built from.
type Output struct {
	HTML  string
	Pages []PageInfo
}

// Execute runs job to completion. Page images and screenshots live in a
// temporary directory removed before Execute returns.
func Execute(ctx context.Context, rt *Runtime, job Job, hooks Hooks) (*Output, error) {
	if job.Cycles < 0 {
		return nil, ErrInvalidCycles
	}

	adapter, err := rt.Adapters.Get(job.Adapter)
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp(rt.TempDir, "scrivener-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	logger := rt.Logger.With("adapter", adapter.Config.Name)

	pages, err := rt.Rasterizer.Rasterize(ctx, job.SourcePath, tempDir)
	if err != nil {
		return nil, err
	}
	if err := ValidatePages(pages); err != nil {
		return nil, err
	}

	infos := Infos(pages)
	if hooks.Pages != nil {
		if err := hooks.Pages(ctx, infos); err != nil {
			return nil, err
		}
	}

	logger.Info("document rasterized", "pages", len(pages))

	params := prompts.Params{Language: job.Language, DocumentType: job.DocumentType}

	translate, err := NewTranslateStage(params, job.Cycles)
	if err != nil {
		return nil, err
	}
	critique, err := NewCritiqueStage(params, rt.Renderer, tempDir, logger)
	if err != nil {
		return nil, err
	}

	scheduler := &Scheduler{
		Model:       adapter.Model,
		Stages:      []chain.Stage[Page]{translate, critique},
		Concurrency: adapter.Config.Concurrency,
		Cycles:      job.Cycles,
		Logger:      logger,
		Progress:    hooks.Progress,
	}

	results, err := scheduler.Run(ctx, pages)
	if err != nil {
		return nil, err
	}

	if hooks.Translated != nil {
		if err := hooks.Translated(ctx); err != nil {
			return nil, err
		}
	}

	html, err := Assemble(results, job.Language)
	if err != nil {
		return nil, err
	}

	return &Output{HTML: html, Pages: infos}, nil
}

// Assemble joins page results into one document.
func Assemble(results []Result, language string) (string, error) {
	pages := make([]markup.Page, len(results))
	for i, r := range results {
		pages[i] = markup.Page{
			HTML:       r.HTML,
			Number:     r.Info.PageNumber,
			Dimensions: r.Info.Dimensions,
		}
	}

	return markup.Join(pages, markup.WithLang(languageTag(language)))
}
