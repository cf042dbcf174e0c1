package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ekaya-inc/ekaya-introspect/pkg/apperrors"
)

// ListTables returns the ordinary tables and views of namespace that are
// visible on its search_path, in catalog order, minus the ignore-list.
// A relation kind other than table or view fails the whole call with
// apperrors.ErrUnknownRelationKind.
func (i *Introspector) ListTables(ctx context.Context, namespace string) ([]TableDescriptor, error) {
	return inScope(ctx, i, namespaceTarget(OpListTables, namespace), func(ctx context.Context, conn *sql.Conn) ([]TableDescriptor, error) {
		rows, err := conn.QueryContext(ctx, listTablesQuery, namespace)
		if err != nil {
			return nil, fmt.Errorf("query tables: %w", err)
		}

		type tableRow struct{ name, kind string }
		raw, err := collectRows(rows, "table", 2, func(r rowScanner) (tableRow, error) {
			var t tableRow
			err := r.Scan(&t.name, &t.kind)
			return t, err
		})
		if err != nil {
			return nil, err
		}

		tables := make([]TableDescriptor, 0, len(raw))
		for _, t := range raw {
			if _, skip := i.ignored[t.name]; skip {
				continue
			}
			kind, err := tableKind(t.kind)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", t.name, err)
			}
			tables = append(tables, TableDescriptor{Name: t.name, Kind: kind})
		}
		return tables, nil
	})
}

func tableKind(relkind string) (TableKind, error) {
	switch relkind {
	case "r":
		return TableKindTable, nil
	case "v":
		return TableKindView, nil
	default:
		return "", fmt.Errorf("relkind %q: %w", relkind, apperrors.ErrUnknownRelationKind)
	}
}
