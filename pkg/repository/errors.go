package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes mapped by Errors.
const (
	codeUniqueViolation  = "23505"
	codeCheckViolation   = "23514"
	codeNotNullViolation = "23502"
)

// Errors names the domain errors a repository reports in place of driver
// errors. A nil field leaves the matching driver error unchanged.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates err into the configured domain error. sql.ErrNoRows maps to
// NotFound, unique violations to Duplicate, and check or not-null violations
// to Invalid. The driver error stays in the chain for Invalid so the
// constraint name reaches the logs.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && e.NotFound != nil {
		return e.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if e.Duplicate != nil {
			return e.Duplicate
		}
	case codeCheckViolation, codeNotNullViolation:
		if e.Invalid != nil {
			return errors.Join(e.Invalid, err)
		}
	}
	return err
}
