package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// GetConstraints returns every constraint and index of table keyed by name.
//
// Constraints are read from the configured constraint namespace (see
// Options.ConstraintNamespace) and indexes from any namespace holding a table
// with this name. When a constraint and an index share a name, which is
// always the case for primary keys and unique constraints, the constraint
// entry wins.
func (i *Introspector) GetConstraints(ctx context.Context, table string) (Constraints, error) {
	ns := i.constraintNamespace
	return inScope(ctx, i, tableTarget(OpGetConstraints, ns, table), func(ctx context.Context, conn *sql.Conn) (Constraints, error) {
		constraints, err := i.queryConstraints(ctx, conn, ns, table)
		if err != nil {
			return nil, err
		}

		indexes, err := i.queryIndexes(ctx, conn, table)
		if err != nil {
			return nil, err
		}
		for name, idx := range indexes {
			if _, exists := constraints[name]; !exists {
				constraints[name] = idx
			}
		}
		return constraints, nil
	})
}

// PrimaryKeyColumn returns the first column of table's primary key.
// found is false when the table has no primary key.
func (i *Introspector) PrimaryKeyColumn(ctx context.Context, table string) (column string, found bool, err error) {
	constraints, err := i.GetConstraints(ctx, table)
	if err != nil {
		return "", false, err
	}
	column, found = constraints.PrimaryKeyColumn()
	return column, found, nil
}

// PrimaryKeyColumn returns the first column of the first primary key entry,
// visiting entries in name order.
func (c Constraints) PrimaryKeyColumn() (string, bool) {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if entry := c[name]; entry.PrimaryKey && len(entry.Columns) > 0 {
			return entry.Columns[0], true
		}
	}
	return "", false
}

func (i *Introspector) queryConstraints(ctx context.Context, conn *sql.Conn, namespace, table string) (Constraints, error) {
	rows, err := conn.QueryContext(ctx, constraintsQuery, namespace, table)
	if err != nil {
		return nil, fmt.Errorf("query constraints: %w", err)
	}

	type constraintRow struct {
		name string
		c    Constraint
	}
	arrays := newTextArrays()
	raw, err := collectRows(rows, "constraint", 6, func(r rowScanner) (constraintRow, error) {
		var (
			cr         constraintRow
			kind       string
			fkTable    sql.NullString
			fkColumn   sql.NullString
			columns    []string
			relOptions []string
		)
		if err := r.Scan(&cr.name, arrays.into(&columns), &kind, &fkTable, &fkColumn, arrays.into(&relOptions)); err != nil {
			return cr, err
		}

		cr.c = Constraint{
			Columns:    columns,
			PrimaryKey: kind == "p",
			Unique:     kind == "p" || kind == "u",
			Check:      kind == "c",
			Options:    relOptions,
		}
		if cr.c.Columns == nil {
			cr.c.Columns = []string{}
		}
		if kind == "f" && fkTable.Valid && fkColumn.Valid {
			cr.c.ForeignKey = &ForeignKeyRef{Table: fkTable.String, Column: fkColumn.String}
		}
		return cr, nil
	})
	if err != nil {
		return nil, err
	}

	constraints := make(Constraints, len(raw))
	for _, cr := range raw {
		constraints[cr.name] = cr.c
	}
	i.logger.Debug("Read table constraints",
		zap.String("namespace", namespace),
		zap.String("table", table),
		zap.Int("count", len(constraints)))
	return constraints, nil
}

// queryIndexes is filtered by table name only, so same-named tables in other
// namespaces contribute their indexes too.
func (i *Introspector) queryIndexes(ctx context.Context, conn *sql.Conn, table string) (Constraints, error) {
	rows, err := conn.QueryContext(ctx, indexesQuery, table)
	if err != nil {
		return nil, fmt.Errorf("query index definitions: %w", err)
	}

	type indexRow struct {
		name string
		c    Constraint
	}
	arrays := newTextArrays()
	raw, err := collectRows(rows, "index definition", 8, func(r rowScanner) (indexRow, error) {
		var (
			ir         indexRow
			columns    []string
			orders     []string
			method     sql.NullString
			definition sql.NullString
			options    []string
		)
		if err := r.Scan(&ir.name, arrays.into(&columns), &ir.c.Unique, &ir.c.PrimaryKey,
			arrays.into(&orders), &method, &definition, arrays.into(&options)); err != nil {
			return ir, err
		}

		ir.c.Columns = nonEmpty(columns)
		if ir.c.Columns == nil {
			ir.c.Columns = []string{}
		}
		for _, o := range nonEmpty(orders) {
			ir.c.Orders = append(ir.c.Orders, SortOrder(o))
		}
		ir.c.Index = true
		ir.c.Options = options
		ir.c.Definition = stringPtr(definition)
		if method.Valid {
			t := method.String
			if t == "btree" {
				t = IndexSuffix
			}
			ir.c.Type = &t
		}
		return ir, nil
	})
	if err != nil {
		return nil, err
	}

	indexes := make(Constraints, len(raw))
	for _, ir := range raw {
		indexes[ir.name] = ir.c
	}
	return indexes, nil
}
