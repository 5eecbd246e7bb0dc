package processes

import (
	"net/url"
	"slices"
	"strings"

	"github.com/JaimeStill/scrivener/internal/workflow"
	"github.com/JaimeStill/scrivener/pkg/query"
	"github.com/JaimeStill/scrivener/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "processes", "p").
	Project("id", "ID").
	Project("status", "Status").
	Project("message", "Message").
	Project("error", "Error").
	Project("pages_info", "PagesInfo").
	Project("config", "Config").
	Project("progress", "Progress").
	Project("filename", "Filename").
	Project("storage_key", "StorageKey").
	Project("page_count", "PageCount").
	Project("start_time", "StartTime").
	Project("end_time", "EndTime").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for process queries.
// An empty Statuses matches every status.
type Filters struct {
	Statuses []Status `json:"statuses,omitempty"`
	Adapter  *string  `json:"adapter,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	query.WhereIn(b, "Status", f.Statuses)
	if f.Adapter != nil {
		b.WhereEquals("p.config->>'adapter'", f.Adapter)
	}
	return b
}

func (f Filters) match(p Process) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, p.Status) {
		return false
	}
	if f.Adapter != nil && p.Config.Adapter != *f.Adapter {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
// status accepts a comma-separated list.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("status"); s != "" {
		for part := range strings.SplitSeq(s, ",") {
			status, err := ParseStatus(strings.TrimSpace(part))
			if err != nil {
				return f, err
			}
			f.Statuses = append(f.Statuses, status)
		}
	}

	if a := values.Get("adapter"); a != "" {
		f.Adapter = &a
	}

	return f, nil
}

func scanProcess(s repository.Scanner) (Process, error) {
	var (
		p     Process
		pages []workflow.PageInfo
	)
	err := s.Scan(
		&p.ID,
		&p.Status,
		&p.Message,
		&p.Error,
		repository.JSONOf(&pages),
		repository.JSONOf(&p.Config),
		&p.Progress,
		&p.Filename,
		&p.StorageKey,
		&p.PageCount,
		&p.StartTime,
		&p.EndTime,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.PagesInfo = pages
	return p, err
}
