package processes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
)

// InterruptedMessage is recorded on processes failed by the startup sweep.
const InterruptedMessage = "Process interrupted by a service restart"

// Canceler stops the live run of a process.
type Canceler interface {
	Cancel(id uuid.UUID) bool
}

// Watcher fails processes that stopped making progress.
type Watcher struct {
	machine    *Machine
	runs       Canceler
	interval   time.Duration
	staleAfter time.Duration
	logger     *slog.Logger
}

// NewWatcher creates a Watcher that sweeps every interval and fails active
// processes not updated within staleAfter. Runs of failed processes are
// stopped through runs, which may be nil.
func NewWatcher(
	machine *Machine,
	runs Canceler,
	interval, staleAfter time.Duration,
	logger *slog.Logger,
) *Watcher {
	return &Watcher{
		machine:    machine,
		runs:       runs,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     logger.With("system", "watcher"),
	}
}

// Start fails every process left active by a previous instance, then sweeps
// on the configured interval until shutdown.
func (w *Watcher) Start(lc *lifecycle.Coordinator) {
	started := time.Now().UTC()

	lc.OnStartup(func() {
		if _, err := w.Interrupt(lc.Context(), started); err != nil {
			w.logger.Error("startup sweep failed", "error", err)
		}
	})

	lc.Go(func(ctx context.Context) {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := w.Sweep(ctx); err != nil {
					w.logger.Error("sweep failed", "error", err)
				}
			}
		}
	})
}

// Interrupt fails active processes last updated before startedAt. Processes
// created by this instance are left alone.
func (w *Watcher) Interrupt(ctx context.Context, startedAt time.Time) (int, error) {
	return w.fail(ctx, startedAt, InterruptedMessage)
}

// Sweep fails active processes not updated within the stale window.
func (w *Watcher) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-w.staleAfter)
	return w.fail(ctx, cutoff, fmt.Sprintf("Process timed out: no progress for %s", w.staleAfter))
}

func (w *Watcher) fail(ctx context.Context, before time.Time, message string) (int, error) {
	stale, err := w.machine.Store().Active(ctx, &before)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, p := range stale {
		_, err := w.machine.Update(ctx, p.ID, Patch{
			Status:  ptr(StatusError),
			Message: ptr(message),
			Error:   ptr(message),
		})
		if err != nil {
			w.logger.Error("fail stale process", "process_id", p.ID, "error", err)
			continue
		}
		if w.runs != nil {
			w.runs.Cancel(p.ID)
		}
		failed++
	}

	if failed > 0 {
		w.logger.Warn("stale processes failed", "count", failed, "message", message)
	}
	return failed, nil
}
