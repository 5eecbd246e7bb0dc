package processes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/scrivener/internal/providers"
	"github.com/JaimeStill/scrivener/pkg/pagination"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

// System defines the public contract for process domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Process], error)

	Find(ctx context.Context, id uuid.UUID) (*Process, error)
	HTML(ctx context.Context, id uuid.UUID) (string, error)
	Source(ctx context.Context, id uuid.UUID) (*Source, error)
	Create(ctx context.Context, cmd CreateCommand) (*Process, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Process, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Subscribe(id uuid.UUID, fn func(Event)) (unregister func())
	Adapters() []AdapterInfo
}

// Source is an open handle on an uploaded document.
type Source struct {
	Body     io.ReadCloser
	Filename string
}

// Options bounds run configuration.
type Options struct {
	DefaultCycles int
	MaxCycles     int
	Pagination    pagination.Config
}

type service struct {
	machine  *Machine
	pipeline *Pipeline
	blobs    storage.System
	adapters *providers.Registry
	opts     Options
	logger   *slog.Logger
}

// New creates the process System.
func New(
	machine *Machine,
	pipeline *Pipeline,
	blobs storage.System,
	adapters *providers.Registry,
	opts Options,
	logger *slog.Logger,
) System {
	return &service{
		machine:  machine,
		pipeline: pipeline,
		blobs:    blobs,
		adapters: adapters,
		opts:     opts,
		logger:   logger.With("system", "processes"),
	}
}

func (s *service) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, s.opts.Pagination, maxUploadSize)
}

func (s *service) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Process], error) {
	page.Normalize(s.opts.Pagination)
	return s.machine.Store().List(ctx, page, filters)
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*Process, error) {
	return s.machine.Find(ctx, id)
}

func (s *service) HTML(ctx context.Context, id uuid.UUID) (string, error) {
	p, err := s.machine.Find(ctx, id)
	if err != nil {
		return "", err
	}
	if p.Status != StatusCompleted {
		return "", fmt.Errorf("%w: status %s", ErrNotCompleted, p.Status)
	}
	return s.machine.Store().HTML(ctx, id)
}

// Source opens the uploaded document of process id.
func (s *service) Source(ctx context.Context, id uuid.UUID) (*Source, error) {
	p, err := s.machine.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := s.blobs.Download(ctx, p.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download source: %w", err)
	}

	return &Source{Body: body, Filename: p.Filename}, nil
}

// Create validates the upload and run parameters, records the process,
// stores the source, and starts the run in the background.
func (s *service) Create(ctx context.Context, cmd CreateCommand) (*Process, error) {
	cfg, err := s.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	pageCount, err := api.PageCount(bytes.NewReader(cmd.Data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	id := uuid.New()
	filename := sanitizeFilename(cmd.Filename)

	proc, err := s.machine.Create(ctx, Process{
		ID:         id,
		Config:     cfg,
		Filename:   filename,
		StorageKey: buildStorageKey(id, filename),
		PageCount:  &pageCount,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.machine.Update(ctx, id, Patch{
		Status:  ptr(StatusUpload),
		Message: ptr("Uploading document"),
	}); err != nil {
		return nil, err
	}

	if err := s.blobs.Upload(ctx, proc.StorageKey, bytes.NewReader(cmd.Data), "application/pdf"); err != nil {
		msg := fmt.Sprintf("upload source: %v", err)
		if _, uerr := s.machine.Update(ctx, id, Patch{
			Status:  ptr(StatusError),
			Message: ptr(msg),
			Error:   ptr(msg),
		}); uerr != nil {
			s.logger.Error("record upload failure", "process_id", id, "error", uerr)
		}
		return nil, fmt.Errorf("upload source: %w", err)
	}

	s.pipeline.Submit(id)

	return s.machine.Find(ctx, id)
}

func (s *service) resolveConfig(cmd CreateCommand) (Config, error) {
	adapter, err := s.adapters.Get(cmd.Adapter)
	if err != nil {
		return Config{}, err
	}

	language := strings.TrimSpace(cmd.Language)
	if language == "" {
		return Config{}, fmt.Errorf("%w: language required", ErrInvalidConfig)
	}

	cycles := s.opts.DefaultCycles
	if cmd.Cycles != nil {
		cycles = *cmd.Cycles
	}
	cycles = max(0, min(cycles, s.opts.MaxCycles))

	return Config{
		Adapter:      adapter.Config.Name,
		Language:     language,
		Cycles:       cycles,
		DocumentType: strings.TrimSpace(cmd.DocumentType),
	}, nil
}

// Cancel marks an active process canceled and stops its run.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*Process, error) {
	p, err := s.machine.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status.Terminal() {
		return nil, fmt.Errorf("%w: status %s", ErrTerminal, p.Status)
	}

	p, err = s.machine.Update(ctx, id, Patch{
		Status:  ptr(StatusCanceled),
		Message: ptr(MessageCanceled),
	})
	if err != nil {
		return nil, err
	}

	s.pipeline.Cancel(id)
	return p, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.machine.Find(ctx, id)
	if err != nil {
		return err
	}

	s.pipeline.Cancel(id)

	if err := s.machine.Store().Delete(ctx, id); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, p.StorageKey); err != nil {
		s.logger.Warn(
			"blob delete failed after process delete",
			"key", p.StorageKey,
			"error", err,
		)
	}

	s.logger.Info("process deleted", "process_id", id)
	return nil
}

func (s *service) Subscribe(id uuid.UUID, fn func(Event)) func() {
	return s.machine.Subscribe(id, fn)
}

func (s *service) Adapters() []AdapterInfo {
	cfgs := s.adapters.List()
	out := make([]AdapterInfo, len(cfgs))
	for i, c := range cfgs {
		out[i] = AdapterInfo{
			Name:        c.Name,
			Provider:    string(c.Provider),
			Model:       c.Model,
			Concurrency: c.Concurrency,
			Default:     c.Name == s.adapters.Default(),
		}
	}
	return out
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("processes/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	if name == "." || name == "" || name == "/" {
		name = "document.pdf"
	}
	return url.PathEscape(name)
}
