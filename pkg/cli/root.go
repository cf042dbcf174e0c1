// Package cli implements the ekaya-introspect command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-introspect/pkg/config"
	"github.com/ekaya-inc/ekaya-introspect/pkg/database"
	"github.com/ekaya-inc/ekaya-introspect/pkg/introspect"
	"github.com/ekaya-inc/ekaya-introspect/pkg/logging"
	"github.com/ekaya-inc/ekaya-introspect/pkg/mcp/tools"
	"github.com/ekaya-inc/ekaya-introspect/pkg/metrics"
)

// backend is the engine plus a reachability probe.
type backend interface {
	tools.Catalog
	Ping(ctx context.Context) error
}

// connectFunc opens the engine. The returned func releases it.
type connectFunc func(ctx context.Context, cfg *config.Config, rec *metrics.Recorder, logger *zap.Logger) (backend, func(), error)

type app struct {
	version string
	cfgPath string
	format  string

	cfg    *config.Config
	logger *zap.Logger

	connect connectFunc
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ekaya-introspect",
		Short: "Read table, column, index and constraint metadata from PostgreSQL catalogs",
		Long: `ekaya-introspect reads PostgreSQL system catalogs one namespace (schema) at a time
and prints tables, columns, single-column indexes, foreign keys and constraints.
It can also serve the same operations as read-only MCP tools.`,
		Version:       version(a),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.format != "yaml" && a.format != "json" {
				return fmt.Errorf("unknown format: %s (supported: yaml, json)", a.format)
			}
			cfg, err := config.Load(a.cfgPath, a.version)
			if err != nil {
				return err
			}
			a.cfg = cfg

			if a.logger == nil {
				logger, err := logging.NewLogger(cfg.Log.Level, cfg.Env)
				if err != nil {
					return fmt.Errorf("failed to build logger: %w", err)
				}
				a.logger = logger
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", config.DefaultPath, "path to YAML config file (optional; env vars override)")
	root.PersistentFlags().StringVar(&a.format, "format", "yaml", "output format: yaml or json")

	root.AddCommand(
		newTablesCmd(a),
		newColumnsCmd(a),
		newIndexesCmd(a),
		newRelationsCmd(a),
		newConstraintsCmd(a),
		newKeyColumnsCmd(a),
		newPrimaryKeyCmd(a),
		newDescribeCmd(a),
		newMCPCmd(a),
	)
	return root
}

func version(a *app) string {
	if a.version == "" {
		return "dev"
	}
	return a.version
}

// withBackend opens the engine for the duration of fn.
func (a *app) withBackend(ctx context.Context, rec *metrics.Recorder, fn func(backend) error) error {
	b, release, err := a.connect(ctx, a.cfg, rec, a.logger)
	if err != nil {
		return err
	}
	defer release()
	return fn(b)
}

// connectPostgres builds the pgx pool and the engine on top of it.
func connectPostgres(ctx context.Context, cfg *config.Config, rec *metrics.Recorder, logger *zap.Logger) (backend, func(), error) {
	connStr := cfg.Database.ConnectionString()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Error("Database connection failed",
			zap.String("dsn", logging.SanitizeConnectionString(connStr)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, nil, fmt.Errorf("connecting to database: %s", logging.SanitizeError(err))
	}

	in := introspect.New(db.SQL(), introspect.Options{
		IgnoredTables:       cfg.Introspect.IgnoredTables,
		ConstraintNamespace: cfg.Introspect.ConstraintNamespace,
		Metrics:             rec,
	}, logger)
	return in, db.Close, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{version: version, connect: connectPostgres}
	err := newRootCommand(a).ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
