package processes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/pagination"
	"github.com/JaimeStill/scrivener/pkg/query"
	"github.com/JaimeStill/scrivener/pkg/repository"
)

var storeErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
	Invalid:   ErrInvalidRecord,
}

type repo struct {
	db *sql.DB
}

// NewRepository creates a PostgreSQL-backed Store.
func NewRepository(db *sql.DB) Store {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, p *Process) error {
	q := `
		INSERT INTO processes(id, status, message, error, pages_info, config, progress, filename, storage_key, page_count, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx, q,
			p.ID,
			p.Status,
			p.Message,
			p.Error,
			repository.JSONOf(&p.PagesInfo),
			repository.JSONOf(&p.Config),
			p.Progress,
			p.Filename,
			p.StorageKey,
			p.PageCount,
			p.StartTime,
			p.EndTime,
			p.CreatedAt,
			p.UpdatedAt,
		)
	})
	if err != nil {
		return storeErrors.Map(err)
	}
	return nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Process, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProcess)
	if err != nil {
		return nil, storeErrors.Map(err)
	}
	return &p, nil
}

func (r *repo) HTML(ctx context.Context, id uuid.UUID) (string, error) {
	html, err := repository.QueryScalar[sql.NullString](ctx, r.db, "SELECT html FROM processes WHERE id = $1", id)
	if err != nil {
		return "", storeErrors.Map(err)
	}
	return html.String, nil
}

// Save writes the mutable fields of p. There is no version check: the last
// write wins.
func (r *repo) Save(ctx context.Context, p *Process) error {
	q := `
		UPDATE processes
		SET status = $2,
			message = $3,
			error = $4,
			html = COALESCE($5, html),
			pages_info = $6,
			progress = $7,
			start_time = $8,
			end_time = $9,
			updated_at = $10
		WHERE id = $1`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx, q,
			p.ID,
			p.Status,
			p.Message,
			p.Error,
			p.HTML,
			repository.JSONOf(&p.PagesInfo),
			p.Progress,
			p.StartTime,
			p.EndTime,
			p.UpdatedAt,
		)
	})
	if err != nil {
		return storeErrors.Map(err)
	}
	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Process], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryScalar[int](ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count processes: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	procs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanProcess)
	if err != nil {
		return nil, fmt.Errorf("query processes: %w", err)
	}

	result := pagination.NewPageResult(procs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Active(ctx context.Context, updatedBefore *time.Time) ([]Process, error) {
	qb := query.NewBuilder(projection, defaultSort)
	query.WhereIn(qb, "Status", ActiveStatuses)
	if updatedBefore != nil {
		qb.WhereBefore("UpdatedAt", *updatedBefore)
	}

	q, args := qb.Build()
	procs, err := repository.QueryMany(ctx, r.db, q, args, scanProcess)
	if err != nil {
		return nil, fmt.Errorf("query active processes: %w", err)
	}
	return procs, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM processes WHERE id = $1", id)
	})
	if err != nil {
		return storeErrors.Map(err)
	}
	return nil
}
