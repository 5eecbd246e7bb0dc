package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/scrivener/internal/chain"
	"github.com/JaimeStill/scrivener/internal/providers"
)

// ProgressFunc receives the number of pages translated so far after each
// chunk completes.
type ProgressFunc func(ctx context.Context, done, total int) error

// Scheduler translates pages in chunks sized by Concurrency. Chunks run
// strictly in sequence; the pages of a chunk run concurrently. The first page
// failure cancels its chunk and aborts the run.
type Scheduler struct {
	Model       providers.Model
	Stages      []chain.Stage[Page]
	Concurrency int
	Cycles      int
	Logger      *slog.Logger
	Progress    ProgressFunc
}

// Chunks partitions pages into consecutive groups of at most size pages.
func Chunks[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// Run returns one result per page in input order.
func (s *Scheduler) Run(ctx context.Context, pages []Page) ([]Result, error) {
	if s.Cycles < 0 {
		return nil, ErrInvalidCycles
	}
	if err := ValidatePages(pages); err != nil {
		return nil, err
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]Result, len(pages))
	chunks := Chunks(pages, s.Concurrency)
	offset := 0

	for n, chunk := range chunks {
		g, gctx := errgroup.WithContext(ctx)

		for i, page := range chunk {
			index := offset + i
			g.Go(func() error {
				html, err := s.translate(gctx, page, logger)
				if err != nil {
					return fmt.Errorf("page %d: %w", page.Number, err)
				}
				results[index] = Result{HTML: html, Info: page.Info()}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		offset += len(chunk)
		logger.Info("chunk complete", "chunk", n+1, "chunks", len(chunks), "pages", offset, "total", len(pages))

		if s.Progress != nil {
			if err := s.Progress(ctx, offset, len(pages)); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}

func (s *Scheduler) translate(ctx context.Context, page Page, logger *slog.Logger) (string, error) {
	runner := &chain.Runner[Page]{
		Model:  s.Model,
		Stages: s.Stages,
		Limit:  s.Cycles + 1,
		Logger: logger.With("page", page.Number),
	}

	state := chain.NewState(page)
	if err := runner.Run(ctx, state); err != nil {
		return "", err
	}
	return state.Answer, nil
}
