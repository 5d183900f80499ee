package cmd

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/typeahead/internal/server"
	"github.com/Aman-CERP/typeahead/internal/suggest"
)

func newServeCmd() *cobra.Command {
	var (
		addr     string
		simulate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve suggestions over HTTP",
		Long: `Serve suggestions over HTTP.

Routes:
  GET /v1/suggest?q=<prefix>&limit=<n>
  GET /v1/metrics
  GET /healthz

limit defaults to backend.max_results and is capped there; the applied
cap is returned in the "limit" field.

Another typeahead can use this server as its backend with
backend.kind: remote and backend.remote_url pointing here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr, simulate)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Apply simulated latency and failures to served lookups")

	return cmd
}

func runServe(cmd *cobra.Command, addr string, simulate bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Simulation.Enabled = simulate
	if addr != "" {
		cfg.Server.Addr = addr
	}

	if !debugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	logger := slog.Default()
	stack, err := suggest.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = stack.Close() }()
	warmStack(ctx, stack, logger)

	opts := []server.Option{server.WithLogger(logger)}
	metrics := openMetrics(cfg)
	defer closeMetrics(metrics)
	if metrics != nil {
		opts = append(opts, server.WithMetrics(metrics))
	}

	srv, err := server.New(stack.Lookup, server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxResults:     cfg.Backend.MaxResults,
		LookupTimeout:  cfg.LookupTimeoutDuration(),
	}, opts...)
	if err != nil {
		return err
	}

	cmd.PrintErrf("Serving suggestions on %s (backend: %s)\n", srv.Addr(), cfg.Backend.Kind)
	return srv.ListenAndServe(ctx)
}
