// Package processes owns translation runs: the persisted process record and
// its state machine, the listener notifications tied to it, the stale process
// watcher, and the pipeline that drives a run from upload to assembled HTML.
package processes

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/workflow"
)

// Status is the lifecycle state of a process.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUpload      Status = "upload"
	StatusProcessing  Status = "processing"
	StatusTranslating Status = "translating"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
	StatusCanceled    Status = "canceled"
)

var statuses = []Status{
	StatusPending,
	StatusUpload,
	StatusProcessing,
	StatusTranslating,
	StatusCompleted,
	StatusError,
	StatusCanceled,
}

// ActiveStatuses are the non-terminal statuses.
var ActiveStatuses = []Status{
	StatusPending,
	StatusUpload,
	StatusProcessing,
	StatusTranslating,
}

// Terminal reports whether s ends a process.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCanceled
}

// ParseStatus validates s as a known status.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", ErrInvalidStatus
	}
	return v, nil
}

// Config holds the run parameters chosen at creation.
type Config struct {
	Adapter      string `json:"adapter"`
	Language     string `json:"language"`
	Cycles       int    `json:"cycles"`
	DocumentType string `json:"document_type,omitempty"`
}

// Process is one translation run.
type Process struct {
	ID         uuid.UUID           `json:"id"`
	Status     Status              `json:"status"`
	Message    string              `json:"message"`
	Error      *string             `json:"error"`
	HTML       *string             `json:"-"`
	PagesInfo  []workflow.PageInfo `json:"pages_info"`
	Config     Config              `json:"config"`
	Progress   int                 `json:"progress"`
	Filename   string              `json:"filename"`
	StorageKey string              `json:"-"`
	PageCount  *int                `json:"page_count"`
	StartTime  *time.Time          `json:"start_time"`
	EndTime    *time.Time          `json:"end_time"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Status    *Status
	Message   *string
	Error     *string
	HTML      *string
	PagesInfo []workflow.PageInfo
	Progress  *int
}

// Apply overlays patch onto p at time now.
//
// StartTime is set the first time the process enters pending or processing.
// EndTime is set on entering a terminal status and cleared if the process
// leaves one, so it is non-nil exactly when the status is terminal.
func (p *Process) Apply(patch Patch, now time.Time) {
	if patch.Status != nil {
		wasTerminal := p.Status.Terminal()
		p.Status = *patch.Status

		if (p.Status == StatusPending || p.Status == StatusProcessing) && p.StartTime == nil {
			p.StartTime = &now
		}

		switch {
		case p.Status.Terminal() && (!wasTerminal || p.EndTime == nil):
			p.EndTime = &now
		case !p.Status.Terminal():
			p.EndTime = nil
		}
	}
	if patch.Message != nil {
		p.Message = *patch.Message
	}
	if patch.Error != nil {
		p.Error = patch.Error
	}
	if patch.HTML != nil {
		p.HTML = patch.HTML
	}
	if patch.PagesInfo != nil {
		p.PagesInfo = patch.PagesInfo
	}
	if patch.Progress != nil {
		p.Progress = *patch.Progress
	}
	p.UpdatedAt = now
}

// Event is the state pushed to listeners after every update.
type Event struct {
	ID       uuid.UUID `json:"id"`
	Status   Status    `json:"status"`
	Message  string    `json:"message"`
	Progress int       `json:"progress"`
}

// Event returns the listener view of p.
func (p *Process) Event() Event {
	return Event{
		ID:       p.ID,
		Status:   p.Status,
		Message:  p.Message,
		Progress: p.Progress,
	}
}

// CreateCommand carries an uploaded source document and its run parameters.
// A nil Cycles selects the configured default.
type CreateCommand struct {
	Data         []byte
	Filename     string
	Adapter      string
	Language     string
	Cycles       *int
	DocumentType string
}

// AdapterInfo describes a configured model adapter.
type AdapterInfo struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	Concurrency int    `json:"concurrency"`
	Default     bool   `json:"default"`
}

func ptr[T any](v T) *T {
	return &v
}
