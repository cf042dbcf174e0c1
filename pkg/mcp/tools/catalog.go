// Package tools provides the MCP tools of ekaya-introspect.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-introspect/pkg/introspect"
)

// Catalog is the introspection engine as seen by the tools.
// *introspect.Introspector implements it.
type Catalog interface {
	ListTables(ctx context.Context, namespace string) ([]introspect.TableDescriptor, error)
	DescribeColumns(ctx context.Context, namespace, table string) ([]introspect.ColumnDescriptor, error)
	GetIndexes(ctx context.Context, namespace, table string) (introspect.IndexSummary, error)
	GetRelations(ctx context.Context, namespace, table string) (introspect.Relations, error)
	GetConstraints(ctx context.Context, table string) (introspect.Constraints, error)
	GetKeyColumns(ctx context.Context, namespace, table string) ([]introspect.KeyColumn, error)
	PrimaryKeyColumn(ctx context.Context, table string) (string, bool, error)
	DescribeNamespace(ctx context.Context, namespace string) (*introspect.NamespaceSnapshot, error)
}

// CatalogToolDeps contains dependencies for the catalog tools.
type CatalogToolDeps struct {
	Catalog Catalog
	Logger  *zap.Logger
}

// RegisterCatalogTools registers the read-only catalog tools.
func RegisterCatalogTools(s *server.MCPServer, deps *CatalogToolDeps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	registerListTablesTool(s, deps)
	registerTableTool(s, deps, "describe_columns",
		"Describe every column of a table in declaration order: driver type name, storage width, "+
			"declared length, numeric precision and scale, nullability and default expression.",
		func(ctx context.Context, ns, table string) (any, error) {
			return deps.Catalog.DescribeColumns(ctx, ns, table)
		})
	registerTableTool(s, deps, "get_indexes",
		"Report which columns carry a single-column primary key or unique index. "+
			"Multi-column and expression indexes are not included.",
		func(ctx context.Context, ns, table string) (any, error) {
			return deps.Catalog.GetIndexes(ctx, ns, table)
		})
	registerTableTool(s, deps, "get_relations",
		"Map each local column that starts a foreign key to the referenced table and column. "+
			"Composite foreign keys report only their first column pair.",
		func(ctx context.Context, ns, table string) (any, error) {
			return deps.Catalog.GetRelations(ctx, ns, table)
		})
	registerTableTool(s, deps, "get_key_columns",
		"List every column of a table that takes part in a foreign key, with the table and column it references.",
		func(ctx context.Context, ns, table string) (any, error) {
			return deps.Catalog.GetKeyColumns(ctx, ns, table)
		})
	registerConstraintsTool(s, deps)
	registerDescribeNamespaceTool(s, deps)
}

func readOnlyTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append([]mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	}, opts...)
	return mcp.NewTool(name, opts...)
}

func namespaceParam() mcp.ToolOption {
	return mcp.WithString(
		"namespace",
		mcp.Required(),
		mcp.Description("PostgreSQL schema to inspect (e.g., 'public', 'tenant_a')"),
	)
}

func tableParam() mcp.ToolOption {
	return mcp.WithString(
		"table",
		mcp.Required(),
		mcp.Description("Table or view name, case-sensitive (e.g., 'orders')"),
	)
}

func registerListTablesTool(s *server.MCPServer, deps *CatalogToolDeps) {
	tool := readOnlyTool("list_tables",
		"List the ordinary tables and views of a namespace with their kind ('table' or 'view'). "+
			"Example: list_tables(namespace='tenant_a')",
		namespaceParam(),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ns, errResult := requiredString(req, "namespace")
		if errResult != nil {
			return errResult, nil
		}

		tables, err := deps.Catalog.ListTables(ctx, ns)
		if err != nil {
			deps.Logger.Debug("list_tables failed", zap.String("namespace", ns), zap.Error(err))
			return engineErrorResult(err)
		}
		return jsonResult(struct {
			Namespace string                       `json:"namespace"`
			Tables    []introspect.TableDescriptor `json:"tables"`
		}{ns, tables})
	})
}

// registerTableTool adds a tool taking namespace and table whose result is
// returned as JSON under "result".
func registerTableTool(s *server.MCPServer, deps *CatalogToolDeps, name, description string,
	run func(ctx context.Context, ns, table string) (any, error)) {
	tool := readOnlyTool(name, description, namespaceParam(), tableParam())

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ns, errResult := requiredString(req, "namespace")
		if errResult != nil {
			return errResult, nil
		}
		table, errResult := requiredString(req, "table")
		if errResult != nil {
			return errResult, nil
		}

		result, err := run(ctx, ns, table)
		if err != nil {
			deps.Logger.Debug(name+" failed",
				zap.String("namespace", ns),
				zap.String("table", table),
				zap.Error(err))
			return engineErrorResult(err)
		}
		return jsonResult(struct {
			Namespace string `json:"namespace"`
			Table     string `json:"table"`
			Result    any    `json:"result"`
		}{ns, table, result})
	})
}

func registerConstraintsTool(s *server.MCPServer, deps *CatalogToolDeps) {
	tool := readOnlyTool("get_constraints",
		"Return every constraint and index of a table keyed by name, with ordered columns, "+
			"primary key, unique, check and foreign key flags, index type, sort orders and storage options. "+
			"Constraints are read from the server's configured constraint namespace. "+
			"Also reports the first primary key column.",
		tableParam(),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, errResult := requiredString(req, "table")
		if errResult != nil {
			return errResult, nil
		}

		constraints, err := deps.Catalog.GetConstraints(ctx, table)
		if err != nil {
			deps.Logger.Debug("get_constraints failed", zap.String("table", table), zap.Error(err))
			return engineErrorResult(err)
		}
		pk, found := constraints.PrimaryKeyColumn()

		out := struct {
			Table            string                 `json:"table"`
			Constraints      introspect.Constraints `json:"constraints"`
			PrimaryKeyColumn *string                `json:"primary_key_column"`
		}{Table: table, Constraints: constraints}
		if found {
			out.PrimaryKeyColumn = &pk
		}
		return jsonResult(out)
	})
}

func registerDescribeNamespaceTool(s *server.MCPServer, deps *CatalogToolDeps) {
	tool := readOnlyTool("describe_namespace",
		"Describe every table and view of a namespace in one call: columns for all, plus indexes, "+
			"relations, constraints and key columns for tables. Fails as a whole if any table fails.",
		namespaceParam(),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ns, errResult := requiredString(req, "namespace")
		if errResult != nil {
			return errResult, nil
		}

		snap, err := deps.Catalog.DescribeNamespace(ctx, ns)
		if err != nil {
			deps.Logger.Debug("describe_namespace failed", zap.String("namespace", ns), zap.Error(err))
			return engineErrorResult(err)
		}
		return jsonResult(snap)
	})
}
