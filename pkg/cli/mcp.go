package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/ekaya-inc/ekaya-introspect/pkg/mcp"
	"github.com/ekaya-inc/ekaya-introspect/pkg/mcp/tools"
	"github.com/ekaya-inc/ekaya-introspect/pkg/metrics"
	"github.com/ekaya-inc/ekaya-introspect/pkg/middleware"
)

func newMCPCmd(a *app) *cobra.Command {
	var (
		httpAddr    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the catalog operations as read-only MCP tools",
		Long: `Serves list_tables, describe_columns, get_indexes, get_relations, get_constraints,
get_key_columns, describe_namespace and health over stdio, or over streamable HTTP at /mcp
when --http is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if metricsAddr == "" {
				metricsAddr = a.cfg.MetricsAddr
			}

			var rec *metrics.Recorder
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				var err error
				if rec, err = metrics.NewRecorder(reg); err != nil {
					return err
				}
				go func() {
					if err := metrics.Serve(ctx, metricsAddr, reg, a.logger); err != nil {
						a.logger.Error("Metrics listener failed", zap.Error(err))
					}
				}()
			}

			return a.withBackend(ctx, rec, func(b backend) error {
				srv := buildMCPServer(a.version, b, a.logger)
				if httpAddr != "" {
					return serveMCPHTTP(ctx, srv, httpAddr, a.logger)
				}
				return srv.ServeStdio()
			})
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (overrides metrics_addr)")
	return cmd
}

func buildMCPServer(version string, b backend, logger *zap.Logger) *mcpserver.Server {
	srv := mcpserver.NewServer("ekaya-introspect", version, logger)
	tools.RegisterCatalogTools(srv.MCP(), &tools.CatalogToolDeps{Catalog: b, Logger: logger})
	tools.RegisterHealthTool(srv.MCP(), version, b)
	return srv
}

func serveMCPHTTP(ctx context.Context, srv *mcpserver.Server, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", middleware.AccessLog(logger)(srv.NewStreamableHTTPServer()))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP HTTP shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Serving MCP over HTTP", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
