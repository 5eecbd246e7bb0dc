// Command translate runs one document through the translation pipeline
// without a database or blob store and writes the assembled HTML.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/internal/infrastructure"
	"github.com/JaimeStill/scrivener/internal/processes"
	"github.com/JaimeStill/scrivener/internal/workflow"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

var (
	adapter      string
	language     string
	cycles       int
	documentType string
	outputPath   string
)

var rootCmd = &cobra.Command{
	Use:   "translate <pdf>",
	Short: "Translate a scanned PDF into a single HTML document",
	Long: `translate rasterizes a PDF, translates every page with the configured
model adapter, refines each page through critique cycles, and writes the
assembled HTML document.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&adapter, "adapter", "a", "", "adapter name (default: configured default)")
	rootCmd.Flags().StringVarP(&language, "language", "l", "", "target language (required)")
	rootCmd.Flags().IntVarP(&cycles, "cycles", "c", -1, "critique cycles (default: configured default)")
	rootCmd.Flags().StringVarP(&documentType, "document-type", "t", "", "document type hint for the prompts")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: <input-name>.html)")
	rootCmd.MarkFlagRequired("language")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	source := args[0]
	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	if outputPath == "" {
		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		outputPath = base + ".html"
	}

	cfg, err := config.LoadPipeline()
	if err != nil {
		return err
	}

	infra, err := infrastructure.NewPipeline(cfg)
	if err != nil {
		return err
	}

	blobDir, err := os.MkdirTemp(cfg.Pipeline.TempDir, "scrivener-blobs-*")
	if err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}
	defer os.RemoveAll(blobDir)

	blobs := storage.NewLocal(blobDir, infra.Logger)
	if err := infra.Start(); err != nil {
		return err
	}
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
	infra.Lifecycle.WaitForStartup()

	machine := processes.NewMachine(processes.NewMemoryStore(), infra.Logger)
	pipeline := processes.NewPipeline(
		machine,
		&workflow.Runtime{
			Rasterizer: workflow.PDFRasterizer{},
			Renderer:   infra.Renderer,
			Adapters:   infra.Adapters,
			TempDir:    cfg.Pipeline.TempDir,
			Logger:     infra.Logger.With("system", "workflow"),
		},
		blobs,
		cfg.Pipeline.RunTimeoutDuration(),
		infra.Logger,
	)
	pipeline.Start(infra.Lifecycle)

	sys := processes.New(machine, pipeline, blobs, infra.Adapters, processes.Options{
		DefaultCycles: cfg.Pipeline.Cycles(),
		MaxCycles:     cfg.Pipeline.MaxCycles,
	}, infra.Logger)

	create := processes.CreateCommand{
		Data:         data,
		Filename:     filepath.Base(source),
		Adapter:      adapter,
		Language:     language,
		DocumentType: documentType,
	}
	if cycles >= 0 {
		create.Cycles = &cycles
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := runProcess(ctx, sys, create)
	if err != nil {
		return err
	}

	html, err := sys.HTML(context.Background(), p.ID)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("wrote %s (%d pages, %s)\n", outputPath, len(p.PagesInfo), p.EndTime.Sub(*p.StartTime).Round(time.Second))
	return nil
}

// runProcess creates the process, prints its events, and waits for it to
// finish. An interrupt cancels the run.
func runProcess(ctx context.Context, sys processes.System, create processes.CreateCommand) (*processes.Process, error) {
	p, err := sys.Create(ctx, create)
	if err != nil {
		return nil, err
	}

	events := make(chan processes.Event, 64)
	unregister := sys.Subscribe(p.ID, func(e processes.Event) {
		select {
		case events <- e:
		default:
		}
	})
	defer unregister()

	// the run may have finished before the listener was registered
	current, err := sys.Find(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	select {
	case events <- current.Event():
	default:
	}

	for {
		select {
		case e := <-events:
			fmt.Printf("[%3d%%] %s\n", e.Progress, e.Message)
			if !e.Status.Terminal() {
				continue
			}

			p, err := sys.Find(context.Background(), p.ID)
			if err != nil {
				return nil, err
			}
			if p.Status != processes.StatusCompleted {
				return nil, fmt.Errorf("translation %s: %s", p.Status, p.Message)
			}
			return p, nil

		case <-ctx.Done():
			if _, err := sys.Cancel(context.Background(), p.ID); err != nil && !errors.Is(err, processes.ErrTerminal) {
				return nil, err
			}
			return nil, ctx.Err()
		}
	}
}
