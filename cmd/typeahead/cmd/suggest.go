package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
	"github.com/Aman-CERP/typeahead/internal/ui"
)

func newSuggestCmd() *cobra.Command {
	var (
		format   string
		limit    int
		simulate bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Look up suggestions once and print them",
		Long: `Look up suggestions for a prefix through the configured backend stack.

Simulated latency and failures are off unless --simulate is given.`,
		Example: `  typeahead suggest re
  typeahead suggest "type" --limit 3 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, args[0], format, limit, simulate)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum suggestions to print (0 = backend default)")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Apply simulated latency and failures")

	return cmd
}

func runSuggest(cmd *cobra.Command, query, format string, limit int, simulate bool) error {
	if format != "text" && format != "json" {
		return terrors.ValidationError(fmt.Sprintf("unknown format %q", format), nil).
			WithSuggestion("Use --format text or --format json")
	}
	if limit < 0 {
		return terrors.New(terrors.ErrCodeInvalidLimit, "limit must not be negative", nil)
	}
	if strings.TrimSpace(query) == "" {
		return terrors.New(terrors.ErrCodeQueryEmpty, "query is empty", nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Simulation.Enabled = simulate

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	stack, err := suggest.Build(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = stack.Close() }()

	metrics := openMetrics(cfg)
	defer closeMetrics(metrics)

	record := func(ev telemetry.LookupEvent) {
		if metrics != nil {
			metrics.Record(ev)
		}
	}
	record(telemetry.LookupEvent{Query: query, Outcome: telemetry.OutcomeDispatched})

	res, err := stack.Lookup.Lookup(ctx, query)
	if err != nil {
		record(telemetry.LookupEvent{Query: query, Outcome: telemetry.OutcomeError})
		return err
	}
	record(telemetry.LookupEvent{
		Query:       query,
		Outcome:     telemetry.OutcomeSuccess,
		ResultCount: len(res.Items),
		Latency:     res.Latency,
	})

	items := res.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if items == nil {
			items = []string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(suggest.RemoteResponse{
			Query:     query,
			Items:     items,
			LatencyMS: float64(res.Latency.Microseconds()) / 1000,
		})
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}
	for i, item := range items {
		fmt.Fprintln(out, ui.ItemLine(i, item))
	}
	return nil
}
