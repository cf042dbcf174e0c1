package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// NamespaceScope is one pooled connection whose search_path is pinned to a
// single namespace. Catalog visibility (pg_table_is_visible) and the output of
// pg_get_indexdef are evaluated against that namespace.
type NamespaceScope struct {
	Conn      *sql.Conn
	Namespace string
}

// Close resets search_path and returns the connection to the pool.
// It MUST be called; the connection is released even when the reset fails.
func (s *NamespaceScope) Close() error {
	if s.Conn == nil {
		return nil
	}
	_, resetErr := s.Conn.ExecContext(context.Background(), "RESET search_path")
	closeErr := s.Conn.Close()
	s.Conn = nil
	return errors.Join(resetErr, closeErr)
}

// WithNamespace acquires a dedicated connection and pins its search_path.
// The namespace travels as a bound parameter; it is quoted so that names with
// commas, spaces or upper-case letters are taken literally by search_path parsing.
// The returned scope MUST be closed with defer scope.Close().
func WithNamespace(ctx context.Context, db *sql.DB, namespace string) (*NamespaceScope, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "SELECT set_config('search_path', $1, false)", pgx.Identifier{namespace}.Sanitize()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set search_path to %q: %w", namespace, err)
	}

	return &NamespaceScope{Conn: conn, Namespace: namespace}, nil
}
