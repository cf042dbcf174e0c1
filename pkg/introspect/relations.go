package introspect

import (
	"context"
	"database/sql"
	"fmt"
)

// GetRelations maps each local column that starts a foreign key to the
// referenced column and table. Only the first column pair of a multi-column
// foreign key is reported.
func (i *Introspector) GetRelations(ctx context.Context, namespace, table string) (Relations, error) {
	return inScope(ctx, i, tableTarget(OpGetRelations, namespace, table), func(ctx context.Context, conn *sql.Conn) (Relations, error) {
		rows, err := conn.QueryContext(ctx, relationsQuery, table, namespace)
		if err != nil {
			return nil, fmt.Errorf("query relations: %w", err)
		}

		type relationRow struct {
			column string
			rel    Relation
		}
		raw, err := collectRows(rows, "relation", 3, func(r rowScanner) (relationRow, error) {
			var rr relationRow
			err := r.Scan(&rr.column, &rr.rel.ForeignTable, &rr.rel.ForeignColumn)
			return rr, err
		})
		if err != nil {
			return nil, err
		}

		relations := make(Relations, len(raw))
		for _, rr := range raw {
			relations[rr.column] = rr.rel
		}
		return relations, nil
	})
}
