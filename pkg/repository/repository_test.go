package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/scrivener/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
	errInvalid   = errors.New("invalid")
)

func TestErrorsMap(t *testing.T) {
	mapping := repository.Errors{NotFound: errNotFound, Duplicate: errDuplicate, Invalid: errInvalid}
	other := errors.New("some other error")
	fk := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"check violation", &pgconn.PgError{Code: "23514", ConstraintName: "processes_progress_check"}, errInvalid},
		{"not null violation", &pgconn.PgError{Code: "23502"}, errInvalid},
		{"foreign key passthrough", fk, fk},
		{"other passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapping.Map(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Errorf("Map(nil) = %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("Map(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestErrorsMapKeepsConstraint(t *testing.T) {
	mapping := repository.Errors{Invalid: errInvalid}
	in := &pgconn.PgError{Code: "23514", ConstraintName: "processes_status_check"}

	var pgErr *pgconn.PgError
	if !errors.As(mapping.Map(in), &pgErr) || pgErr.ConstraintName != "processes_status_check" {
		t.Error("driver error should stay in the chain")
	}
}

func TestErrorsMapUnsetFieldsPassThrough(t *testing.T) {
	var mapping repository.Errors
	if got := mapping.Map(sql.ErrNoRows); got != sql.ErrNoRows {
		t.Errorf("Map = %v, want sql.ErrNoRows", got)
	}
}

type pageInfo struct {
	Number int `json:"number"`
}

func TestJSONColumn(t *testing.T) {
	in := []pageInfo{{Number: 1}, {Number: 2}}

	v, err := repository.JSONOf(&in).Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != `[{"number":1},{"number":2}]` {
		t.Errorf("Value = %v", v)
	}

	var out []pageInfo
	if err := repository.JSONOf(&out).Scan([]byte(`[{"number":3}]`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(out) != 1 || out[0].Number != 3 {
		t.Errorf("out = %+v", out)
	}

	if err := repository.JSONOf(&out).Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if out != nil {
		t.Errorf("NULL should reset to zero, got %+v", out)
	}

	if err := repository.JSONOf(&out).Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
}
