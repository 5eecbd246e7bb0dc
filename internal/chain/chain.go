// Package chain drives an ordered list of model-backed stages over a single
// input, carrying a conversation history and a cycle counter between passes.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/JaimeStill/scrivener/internal/providers"
)

// ErrCycleLimit is returned when stages keep the chain running past its limit.
var ErrCycleLimit = errors.New("chain exceeded cycle limit")

// Signal tells the driver loop what to do after a stage hook.
type Signal int

const (
	Continue Signal = iota
	Stop
)

func (s Signal) String() string {
	if s == Stop {
		return "stop"
	}
	return "continue"
}

// State is the per-input run state. It is created fresh for each input and
// never shared between runs.
type State[T any] struct {
	Input  T
	Cycle  int
	Answer string

	history []providers.Message
}

// NewState creates run state for input.
func NewState[T any](input T) *State[T] {
	return &State[T]{Input: input}
}

// History returns a copy of the conversation so far.
func (s *State[T]) History() []providers.Message {
	return slices.Clone(s.history)
}

// Append adds turns to the end of the history. Earlier turns are never
// modified.
func (s *State[T]) Append(msgs ...providers.Message) {
	s.history = append(s.history, msgs...)
}

// Stage is one named step of a chain.
//
// Prepare builds the outgoing user turn; returning Stop ends the chain
// without calling the model and keeps the current answer. Finish interprets
// the reply. Errors from either hook are fatal for the run.
type Stage[T any] interface {
	Name() string
	System() string
	Schema() *providers.Schema
	ConsumesHistory() bool
	ProducesHistory() bool
	Prepare(ctx context.Context, state *State[T]) (providers.Message, Signal, error)
	Finish(ctx context.Context, state *State[T], resp providers.Response) (Signal, error)
}

// Runner executes Stages in order, cycle after cycle, until a stage signals
// Stop. Limit bounds the number of cycles; zero means unbounded.
type Runner[T any] struct {
	Model  providers.Model
	Stages []Stage[T]
	Limit  int
	Logger *slog.Logger
}

// Run drives state through the stages and returns when the chain stops.
// On success state.Answer holds the result.
func (r *Runner[T]) Run(ctx context.Context, state *State[T]) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for {
		for _, stage := range r.Stages {
			if err := ctx.Err(); err != nil {
				return err
			}

			sig, err := r.step(ctx, stage, state)
			if err != nil {
				return fmt.Errorf("stage %s: %w", stage.Name(), err)
			}

			logger.Debug(
				"stage finished",
				"stage", stage.Name(),
				"cycle", state.Cycle,
				"signal", sig,
			)

			if sig == Stop {
				return nil
			}
		}

		state.Cycle++
		if r.Limit > 0 && state.Cycle > r.Limit {
			return fmt.Errorf("%w: %d", ErrCycleLimit, r.Limit)
		}
	}
}

func (r *Runner[T]) step(ctx context.Context, stage Stage[T], state *State[T]) (Signal, error) {
	msg, sig, err := stage.Prepare(ctx, state)
	if err != nil {
		return Stop, err
	}
	if sig == Stop {
		return Stop, nil
	}

	var messages []providers.Message
	if stage.ConsumesHistory() {
		messages = state.History()
	}
	messages = append(messages, msg)

	resp, err := r.Model.Generate(ctx, providers.Request{
		System:   stage.System(),
		Messages: messages,
		Schema:   stage.Schema(),
	})
	if err != nil {
		return Stop, err
	}

	if stage.ProducesHistory() {
		state.Append(msg, providers.AssistantText(resp.Text))
	}

	return stage.Finish(ctx, state, resp)
}
