package processes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/workflow"
	"github.com/JaimeStill/scrivener/pkg/lifecycle"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

// Pipeline messages shown to users.
const (
	MessageConverting = "Converting document to images"
	MessageTranslated = "Translations done"
	MessageCompleted  = "Action completed successfully"
	MessageCanceled   = "Process canceled"
)

const finalizeTimeout = 10 * time.Second

// Pipeline drives a process from its uploaded source to the assembled
// document. Each run is bounded by a single timeout and can be canceled.
type Pipeline struct {
	machine *Machine
	runtime *workflow.Runtime
	blobs   storage.System
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	runs map[uuid.UUID]context.CancelCauseFunc
	base context.Context
	wg   sync.WaitGroup
}

// NewPipeline creates a Pipeline that reads sources from blobs.
func NewPipeline(
	machine *Machine,
	rt *workflow.Runtime,
	blobs storage.System,
	timeout time.Duration,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		machine: machine,
		runtime: rt,
		blobs:   blobs,
		timeout: timeout,
		logger:  logger.With("system", "pipeline"),
		runs:    make(map[uuid.UUID]context.CancelCauseFunc),
		base:    context.Background(),
	}
}

// Start binds submitted runs to the coordinator context and waits for them
// on shutdown.
func (p *Pipeline) Start(lc *lifecycle.Coordinator) {
	p.mu.Lock()
	p.base = lc.Context()
	p.mu.Unlock()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		p.logger.Info("waiting for running pipelines")
		p.wg.Wait()
	})
}

// Submit runs process id in the background.
func (p *Pipeline) Submit(id uuid.UUID) {
	p.mu.Lock()
	base := p.base
	p.mu.Unlock()

	p.wg.Go(func() {
		_ = p.Run(base, id)
	})
}

// Cancel stops the run for id, if any, and reports whether one was running.
func (p *Pipeline) Cancel(id uuid.UUID) bool {
	p.mu.Lock()
	cancel, ok := p.runs[id]
	p.mu.Unlock()

	if ok {
		cancel(ErrCanceled)
	}
	return ok
}

// Running reports whether a run for id is in progress.
func (p *Pipeline) Running(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.runs[id]
	return ok
}

// Run executes process id to completion. Any failure marks the process as
// error with the failure text, unless the process already finished.
func (p *Pipeline) Run(ctx context.Context, id uuid.UUID) error {
	ctx, cancelTimeout := context.WithTimeoutCause(ctx, p.timeout, ErrRunTimeout)
	defer cancelTimeout()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	p.mu.Lock()
	p.runs[id] = cancel
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.runs, id)
		p.mu.Unlock()
	}()

	logger := p.logger.With("process_id", id)
	logger.Info("run started")

	err := p.execute(ctx, id, logger)
	if err == nil {
		logger.Info("run completed")
		return nil
	}

	cause := context.Cause(ctx)
	switch {
	case errors.Is(cause, ErrCanceled):
		logger.Info("run canceled")
		return ErrCanceled
	case errors.Is(cause, ErrRunTimeout):
		err = fmt.Errorf("%w after %s", ErrRunTimeout, p.timeout)
	}

	p.fail(context.WithoutCancel(ctx), id, err, logger)
	return err
}

func (p *Pipeline) execute(ctx context.Context, id uuid.UUID, logger *slog.Logger) error {
	proc, err := p.machine.Update(ctx, id, Patch{
		Status:  ptr(StatusProcessing),
		Message: ptr(MessageConverting),
	})
	if err != nil {
		return err
	}

	source, cleanup, err := p.download(ctx, proc)
	if err != nil {
		return err
	}
	defer cleanup()

	job := workflow.Job{
		SourcePath:   source,
		Adapter:      proc.Config.Adapter,
		Language:     proc.Config.Language,
		DocumentType: proc.Config.DocumentType,
		Cycles:       proc.Config.Cycles,
	}

	hooks := workflow.Hooks{
		Pages: func(ctx context.Context, pages []workflow.PageInfo) error {
			_, err := p.machine.Update(ctx, id, Patch{
				Status:    ptr(StatusTranslating),
				Message:   ptr(fmt.Sprintf("Translate 0/%d", len(pages))),
				PagesInfo: pages,
				Progress:  ptr(0),
			})
			return err
		},
		Progress: func(ctx context.Context, done, total int) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := p.machine.Update(ctx, id, Patch{
				Message:  ptr(fmt.Sprintf("Translate %d/%d", done, total)),
				Progress: ptr(done * 100 / total),
			})
			return err
		},
		Translated: func(ctx context.Context) error {
			_, err := p.machine.Update(ctx, id, Patch{Message: ptr(MessageTranslated)})
			return err
		},
	}

	out, err := workflow.Execute(ctx, p.runtime, job, hooks)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = p.machine.Update(ctx, id, Patch{
		Status:   ptr(StatusCompleted),
		Message:  ptr(MessageCompleted),
		HTML:     ptr(out.HTML),
		Progress: ptr(100),
	})
	if err != nil {
		return err
	}

	logger.Info("document assembled", "pages", len(out.Pages), "bytes", len(out.HTML))
	return nil
}

func (p *Pipeline) download(ctx context.Context, proc *Process) (string, func(), error) {
	body, err := p.blobs.Download(ctx, proc.StorageKey)
	if err != nil {
		return "", nil, fmt.Errorf("download source: %w", err)
	}
	defer body.Close()

	f, err := os.CreateTemp(p.runtime.TempDir, "source-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create source file: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write source file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close source file: %w", err)
	}

	return f.Name(), cleanup, nil
}

func (p *Pipeline) fail(ctx context.Context, id uuid.UUID, runErr error, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, finalizeTimeout)
	defer cancel()

	logger.Error("run failed", "error", runErr)

	current, err := p.machine.Find(ctx, id)
	if err != nil {
		logger.Error("load failed process", "error", err)
		return
	}
	if current.Status.Terminal() {
		logger.Info("run ended after process finished", "status", current.Status)
		return
	}

	msg := runErr.Error()
	if _, err := p.machine.Update(ctx, id, Patch{
		Status:  ptr(StatusError),
		Message: ptr(msg),
		Error:   ptr(msg),
	}); err != nil {
		logger.Error("record run failure", "error", err)
	}
}
