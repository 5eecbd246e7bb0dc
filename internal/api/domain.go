package api

import (
	"github.com/JaimeStill/scrivener/internal/processes"
	"github.com/JaimeStill/scrivener/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Processes processes.System
	Pipeline  *processes.Pipeline
	Watcher   *processes.Watcher
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	machine := processes.NewMachine(
		processes.NewRepository(runtime.Database.Connection()),
		runtime.Logger,
	)

	wf := &workflow.Runtime{
		Rasterizer: workflow.PDFRasterizer{},
		Renderer:   runtime.Renderer,
		Adapters:   runtime.Adapters,
		TempDir:    runtime.Pipeline.TempDir,
		Logger:     runtime.Logger.With("system", "workflow"),
	}

	pipeline := processes.NewPipeline(
		machine,
		wf,
		runtime.Storage,
		runtime.Pipeline.RunTimeoutDuration(),
		runtime.Logger,
	)

	watcher := processes.NewWatcher(
		machine,
		pipeline,
		runtime.Pipeline.WatchIntervalDuration(),
		runtime.Pipeline.StaleAfterDuration(),
		runtime.Logger,
	)

	system := processes.New(
		machine,
		pipeline,
		runtime.Storage,
		runtime.Adapters,
		processes.Options{
			DefaultCycles: runtime.Pipeline.Cycles(),
			MaxCycles:     runtime.Pipeline.MaxCycles,
			Pagination:    runtime.Pagination,
		},
		runtime.Logger,
	)

	return &Domain{
		Processes: system,
		Pipeline:  pipeline,
		Watcher:   watcher,
	}
}

// Start binds the pipeline and watcher to the lifecycle.
func (d *Domain) Start(runtime *Runtime) {
	d.Pipeline.Start(runtime.Lifecycle)
	d.Watcher.Start(runtime.Lifecycle)
}
