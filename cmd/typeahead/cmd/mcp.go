package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/typeahead/internal/mcp"
	"github.com/Aman-CERP/typeahead/internal/suggest"
)

func newMCPCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start a Model Context Protocol server exposing the suggest and
lookup_stats tools.

stdout carries the protocol, so logs always go to the log file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "Transport (default from server.transport)")

	return cmd
}

func runMCP(cmd *cobra.Command, transport string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Tools answer immediately; simulation is a front-end concern.
	cfg.Simulation.Enabled = false
	if transport == "" {
		transport = cfg.Server.Transport
	}

	useFileLogging(cfg.LogLevel)
	logger := slog.Default()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	stack, err := suggest.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = stack.Close() }()

	srv, err := mcp.NewServer(stack.Lookup,
		mcp.WithLogger(logger),
		mcp.WithBackendName(cfg.Backend.Kind),
		mcp.WithMaxResults(cfg.Backend.MaxResults),
	)
	if err != nil {
		return err
	}

	metrics := openMetrics(cfg)
	defer closeMetrics(metrics)
	if metrics != nil {
		srv.SetMetrics(metrics)
	}

	return srv.Serve(ctx, transport)
}
