package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// GetIndexes reports, per column, whether a single-column primary key or
// unique index covers it. Multi-column and expression indexes are ignored.
// Columns without any single-column index are absent from the result.
func (i *Introspector) GetIndexes(ctx context.Context, namespace, table string) (IndexSummary, error) {
	return inScope(ctx, i, tableTarget(OpGetIndexes, namespace, table), func(ctx context.Context, conn *sql.Conn) (IndexSummary, error) {
		rows, err := conn.QueryContext(ctx, indexFlagsQuery, table, namespace)
		if err != nil {
			return nil, fmt.Errorf("query indexes: %w", err)
		}

		type indexRow struct {
			column string
			indkey string
			flags  IndexFlags
		}
		raw, err := collectRows(rows, "index", 4, func(r rowScanner) (indexRow, error) {
			var ir indexRow
			err := r.Scan(&ir.column, &ir.indkey, &ir.flags.Unique, &ir.flags.PrimaryKey)
			return ir, err
		})
		if err != nil {
			return nil, err
		}

		summary := make(IndexSummary)
		for _, ir := range raw {
			// int2vector text is space separated; more than one key position
			// means a multi-column index.
			if len(strings.Fields(ir.indkey)) > 1 {
				continue
			}
			prev := summary[ir.column]
			summary[ir.column] = IndexFlags{
				PrimaryKey: prev.PrimaryKey || ir.flags.PrimaryKey,
				Unique:     prev.Unique || ir.flags.Unique,
			}
		}
		return summary, nil
	})
}
