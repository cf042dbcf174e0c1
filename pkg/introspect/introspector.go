// Package introspect reads table, column, index and constraint metadata from
// the PostgreSQL system catalogs, one namespace (schema) at a time.
package introspect

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-introspect/pkg/database"
	"github.com/ekaya-inc/ekaya-introspect/pkg/logging"
	"github.com/ekaya-inc/ekaya-introspect/pkg/metrics"
	pgsql "github.com/ekaya-inc/ekaya-introspect/pkg/sql"
)

// DefaultConstraintNamespace is the namespace GetConstraints reads
// pg_constraint from unless Options says otherwise.
const DefaultConstraintNamespace = "public"

// DefaultIgnoredTables holds golang-migrate's bookkeeping table.
var DefaultIgnoredTables = []string{database.MigrationsTable}

// Operation names used in errors, logs and metrics.
const (
	OpListTables       = "list_tables"
	OpDescribeColumns  = "describe_columns"
	OpGetIndexes       = "get_indexes"
	OpGetRelations     = "get_relations"
	OpGetConstraints   = "get_constraints"
	OpGetKeyColumns    = "get_key_columns"
	OpPrimaryKeyColumn = "primary_key_column"
)

// Options configures an Introspector. The zero value uses the defaults.
type Options struct {
	// IgnoredTables are dropped from ListTables. nil means DefaultIgnoredTables;
	// an empty non-nil slice ignores nothing.
	IgnoredTables []string

	// ConstraintNamespace is where GetConstraints looks up pg_constraint rows.
	ConstraintNamespace string

	Metrics *metrics.Recorder
}

// Introspector answers catalog questions over a database/sql handle backed by
// the pgx driver. It holds no per-call state: every operation takes its own
// connection from the pool, so one value is safe for concurrent use.
type Introspector struct {
	db                  *sql.DB
	ignored             map[string]struct{}
	constraintNamespace string
	metrics             *metrics.Recorder
	logger              *zap.Logger
}

// New creates an Introspector. If logger is nil, a no-op logger is used.
func New(db *sql.DB, opts Options, logger *zap.Logger) *Introspector {
	if logger == nil {
		logger = zap.NewNop()
	}

	ignoredTables := opts.IgnoredTables
	if ignoredTables == nil {
		ignoredTables = DefaultIgnoredTables
	}
	ignored := make(map[string]struct{}, len(ignoredTables))
	for _, name := range ignoredTables {
		ignored[name] = struct{}{}
	}

	constraintNS := opts.ConstraintNamespace
	if constraintNS == "" {
		constraintNS = DefaultConstraintNamespace
	}

	return &Introspector{
		db:                  db,
		ignored:             ignored,
		constraintNamespace: constraintNS,
		metrics:             opts.Metrics,
		logger:              logger.Named("introspect"),
	}
}

// Ping verifies the database is reachable.
func (i *Introspector) Ping(ctx context.Context) error {
	return i.db.PingContext(ctx)
}

// target names what an operation looks at. Table is empty for
// namespace-wide operations.
type target struct {
	op          string
	namespace   string
	table       string
	tableScoped bool
}

func namespaceTarget(op, namespace string) target { return target{op: op, namespace: namespace} }

func tableTarget(op, namespace, table string) target {
	return target{op: op, namespace: namespace, table: table, tableScoped: true}
}

func (t target) validate() error {
	if t.tableScoped {
		return pgsql.CheckIdentifiers("namespace", t.namespace, "table", t.table)
	}
	return pgsql.CheckIdentifier("namespace", t.namespace)
}

// inScope validates the names, pins search_path to the target namespace on a
// dedicated connection, runs fn and releases the connection on every path.
// All failures come back as *OpError.
func inScope[T any](ctx context.Context, i *Introspector, tg target, fn func(context.Context, *sql.Conn) (T, error)) (result T, err error) {
	op, namespace, object := tg.op, tg.namespace, tg.table
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		i.metrics.Observe(op, elapsed, err)
		if err != nil {
			i.logger.Debug("Catalog operation failed",
				zap.String("op", op),
				zap.String("namespace", namespace),
				zap.String("object", object),
				zap.Duration("elapsed", elapsed),
				zap.String("error", logging.SanitizeError(err)))
			return
		}
		i.logger.Debug("Catalog operation done",
			zap.String("op", op),
			zap.String("namespace", namespace),
			zap.String("object", object),
			zap.Duration("elapsed", elapsed))
	}()

	fail := func(cause error) (T, error) {
		var zero T
		return zero, &OpError{Op: op, Namespace: namespace, Object: object, Err: cause}
	}

	if err := tg.validate(); err != nil {
		return fail(err)
	}

	scope, err := database.WithNamespace(ctx, i.db, namespace)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if cerr := scope.Close(); cerr != nil {
			i.logger.Warn("Failed to release namespace scope",
				zap.String("namespace", namespace),
				zap.String("error", logging.SanitizeError(cerr)))
		}
	}()

	out, err := fn(ctx, scope.Conn)
	if err != nil {
		return fail(err)
	}
	return out, nil
}
