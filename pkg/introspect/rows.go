package introspect

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ekaya-inc/ekaya-introspect/pkg/apperrors"
)

// rowScanner is the subset of *sql.Rows a row mapper needs.
type rowScanner interface {
	Scan(dest ...any) error
}

// collectRows checks that the result has exactly width columns, maps every
// row with scan and closes rows. A short or long row is reported as
// apperrors.ErrRowShape instead of being silently misread.
func collectRows[T any](rows *sql.Rows, what string, width int, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read %s columns: %w", what, err)
	}
	if len(cols) != width {
		return nil, fmt.Errorf("%s row has %d columns, want %d: %w", what, len(cols), width, apperrors.ErrRowShape)
	}

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}

// textArrays scans PostgreSQL text[] values delivered through database/sql.
// A pgtype.Map caches scan plans and is not safe for concurrent use, so each
// operation builds its own.
type textArrays struct {
	m *pgtype.Map
}

func newTextArrays() textArrays {
	return textArrays{m: pgtype.NewMap()}
}

// into returns a sql.Scanner writing into dst. NULL leaves dst nil.
func (a textArrays) into(dst *[]string) sql.Scanner {
	return a.m.SQLScanner(dst)
}

// nonEmpty truncates values to length zero when every element is empty,
// which is how aggregates over expression keys or non-btree orderings come back.
func nonEmpty(values []string) []string {
	for _, v := range values {
		if v != "" {
			return values
		}
	}
	return values[:0]
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
