package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-introspect/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-introspect/pkg/logging"
)

// internalSizes is pg_type.typlen for the types the driver can name;
// -1 marks variable-length types.
var internalSizes = map[string]int64{
	"BOOL":        1,
	"CHAR":        1,
	"INT2":        2,
	"INT4":        4,
	"INT8":        8,
	"OID":         4,
	"FLOAT4":      4,
	"FLOAT8":      8,
	"MONEY":       8,
	"DATE":        4,
	"TIME":        8,
	"TIMESTAMP":   8,
	"TIMESTAMPTZ": 8,
	"INTERVAL":    16,
	"UUID":        16,
	"TEXT":        -1,
	"VARCHAR":     -1,
	"BPCHAR":      -1,
	"NUMERIC":     -1,
	"BYTEA":       -1,
	"JSON":        -1,
	"JSONB":       -1,
}

// maxNumericPrecision is the largest precision numeric accepts. The driver
// decodes an unconstrained numeric (typmod -1) as precision 65535.
const maxNumericPrecision = 1000

type columnInfo struct {
	name     string
	nullable string
	charLen  sql.NullInt64
	def      sql.NullString
}

// DescribeColumns returns one descriptor per column of table in projection
// order. Driver metadata comes from a zero-row SELECT; nullability and
// default come from information_schema. A projected column missing from
// information_schema fails with apperrors.ErrInconsistentMetadata.
func (i *Introspector) DescribeColumns(ctx context.Context, namespace, table string) ([]ColumnDescriptor, error) {
	return inScope(ctx, i, tableTarget(OpDescribeColumns, namespace, table), func(ctx context.Context, conn *sql.Conn) ([]ColumnDescriptor, error) {
		rows, err := conn.QueryContext(ctx, columnInfoQuery, namespace, table)
		if err != nil {
			return nil, fmt.Errorf("query column info: %w", err)
		}
		infos, err := collectRows(rows, "column info", 4, func(r rowScanner) (columnInfo, error) {
			var c columnInfo
			err := r.Scan(&c.name, &c.nullable, &c.charLen, &c.def)
			return c, err
		})
		if err != nil {
			return nil, err
		}
		byName := make(map[string]columnInfo, len(infos))
		for _, c := range infos {
			byName[c.name] = c
		}

		descs, err := i.projectColumns(ctx, conn, namespace, table)
		if err != nil {
			return nil, err
		}

		for idx := range descs {
			info, ok := byName[descs[idx].Name]
			if !ok {
				i.logger.Warn("Projected column has no information_schema row",
					zap.String("namespace", namespace),
					zap.String("table", table),
					zap.String("column", descs[idx].Name))
				return nil, fmt.Errorf("column %q: %w", descs[idx].Name, apperrors.ErrInconsistentMetadata)
			}
			descs[idx].Nullable = info.nullable == "YES"
			descs[idx].Default = stringPtr(info.def)
			// The driver only reports a length for varchar; bpchar comes from the catalog.
			if descs[idx].DisplaySize == nil && info.charLen.Valid {
				n := info.charLen.Int64
				descs[idx].DisplaySize = &n
			}
		}
		return descs, nil
	})
}

// projectColumns reads driver-level column metadata without fetching rows.
func (i *Introspector) projectColumns(ctx context.Context, conn *sql.Conn, namespace, table string) ([]ColumnDescriptor, error) {
	query := "SELECT * FROM " + pgx.Identifier{namespace, table}.Sanitize() + " LIMIT 0"
	i.logger.Debug("Projecting columns", zap.String("query", logging.SanitizeQuery(query)))
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("project columns: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column types: %w", err)
	}

	descs := make([]ColumnDescriptor, 0, len(types))
	for _, ct := range types {
		descs = append(descs, describeColumnType(ct))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projection: %w", err)
	}
	return descs, nil
}

func describeColumnType(ct *sql.ColumnType) ColumnDescriptor {
	d := ColumnDescriptor{
		Name:     ct.Name(),
		TypeCode: ct.DatabaseTypeName(),
	}
	if size, ok := internalSizes[d.TypeCode]; ok {
		d.InternalSize = &size
	}
	// Unbounded text and unmodified varchar report MaxInt64 or a negative length.
	if n, ok := ct.Length(); ok && n >= 0 && n != math.MaxInt64 {
		d.DisplaySize = &n
	}
	if p, s, ok := ct.DecimalSize(); ok && p >= 0 && p <= maxNumericPrecision {
		d.Precision = &p
		d.Scale = &s
	}
	return d
}
