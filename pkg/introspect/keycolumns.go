package introspect

import (
	"context"
	"database/sql"
	"fmt"
)

// GetKeyColumns lists every column of table that takes part in a foreign
// key, with the table and column it references, in catalog order.
func (i *Introspector) GetKeyColumns(ctx context.Context, namespace, table string) ([]KeyColumn, error) {
	return inScope(ctx, i, tableTarget(OpGetKeyColumns, namespace, table), func(ctx context.Context, conn *sql.Conn) ([]KeyColumn, error) {
		rows, err := conn.QueryContext(ctx, keyColumnsQuery, table, namespace)
		if err != nil {
			return nil, fmt.Errorf("query key columns: %w", err)
		}

		keys, err := collectRows(rows, "key column", 3, func(r rowScanner) (KeyColumn, error) {
			var k KeyColumn
			err := r.Scan(&k.Column, &k.ReferencedTable, &k.ReferencedColumn)
			return k, err
		})
		if err != nil {
			return nil, err
		}
		if keys == nil {
			keys = []KeyColumn{}
		}
		return keys, nil
	})
}
