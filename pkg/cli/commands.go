package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// catalogCmd builds a subcommand that runs one engine call and prints its
// result.
func catalogCmd(a *app, use, short string, args cobra.PositionalArgs, run func(ctx context.Context, b backend, args []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd.Context(), nil, func(b backend) error {
				result, err := run(cmd.Context(), b, args)
				if err != nil {
					return err
				}
				return writeOutput(out(cmd), a.format, result)
			})
		},
	}
}

func newTablesCmd(a *app) *cobra.Command {
	return catalogCmd(a, "tables <namespace>", "List tables and views visible in a namespace", cobra.ExactArgs(1),
		func(ctx context.Context, b backend, args []string) (any, error) {
			return b.ListTables(ctx, args[0])
		})
}

func newColumnsCmd(a *app) *cobra.Command {
	return catalogCmd(a, "columns <namespace> <table>", "Describe the columns of a table", cobra.ExactArgs(2),
		func(ctx context.Context, b backend, args []string) (any, error) {
			return b.DescribeColumns(ctx, args[0], args[1])
		})
}

func newIndexesCmd(a *app) *cobra.Command {
	return catalogCmd(a, "indexes <namespace> <table>", "Show single-column primary key and unique flags per column", cobra.ExactArgs(2),
		func(ctx context.Context, b backend, args []string) (any, error) {
			return b.GetIndexes(ctx, args[0], args[1])
		})
}

func newRelationsCmd(a *app) *cobra.Command {
	return catalogCmd(a, "relations <namespace> <table>", "Map foreign key columns to the column they reference", cobra.ExactArgs(2),
		func(ctx context.Context, b backend, args []string) (any, error) {
			return b.GetRelations(ctx, args[0], args[1])
		})
}

func newConstraintsCmd(a *app) *cobra.Command {
	return catalogCmd(a, "constraints <table>", "Show every constraint and index of a table", cobra.ExactArgs(1),
		func(ctx context.Context, b backend, args []string) (any, error) {
			return b.GetConstraints(ctx, args[0])
		})
}

func newKeyColumnsCmd(a *app) *cobra.Command {
	return catalogCmd(a, "key-columns <namespace> <table>", "List foreign key columns with their referenced table and column", cobra.ExactArgs(2),
		func(ctx context.Context, b backend, args []string) (any, error) {
			return b.GetKeyColumns(ctx, args[0], args[1])
		})
}

func newPrimaryKeyCmd(a *app) *cobra.Command {
	return catalogCmd(a, "primary-key <table>", "Print the first primary key column of a table", cobra.ExactArgs(1),
		func(ctx context.Context, b backend, args []string) (any, error) {
			column, found, err := b.PrimaryKeyColumn(ctx, args[0])
			if err != nil {
				return nil, err
			}
			result := map[string]any{"table": args[0], "primary_key_column": nil}
			if found {
				result["primary_key_column"] = column
			}
			return result, nil
		})
}

func newDescribeCmd(a *app) *cobra.Command {
	return catalogCmd(a, "describe <namespace>", "Describe every table and view of a namespace", cobra.ExactArgs(1),
		func(ctx context.Context, b backend, args []string) (any, error) {
			return b.DescribeNamespace(ctx, args[0])
		})
}
