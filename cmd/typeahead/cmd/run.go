package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/typeahead"
	"github.com/Aman-CERP/typeahead/internal/ui"
)

// runOptions are the flags shared by the root command and `run`.
type runOptions struct {
	plain   bool
	noColor bool
	noSim   bool
}

func bindRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Force line mode even on a terminal")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.noSim, "no-sim", false, "Disable simulated latency and failures")
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive search box",
		Long: `Start the interactive search box.

On a terminal this opens a full-screen input with a live suggestion list.
Otherwise each line read from stdin is treated as the whole input value:

  !word    select a suggestion (dispatch immediately)
  :clear   clear the input
  :retry   run the current query again
  :quit    exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, opts)
		},
	}

	bindRunFlags(cmd, &opts)
	return cmd
}

func runInteractive(cmd *cobra.Command, opts runOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.noSim {
		cfg.Simulation.Enabled = false
	}

	// The terminal belongs to the front end.
	useFileLogging(cfg.LogLevel)
	logger := slog.Default()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	stack, err := suggest.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = stack.Close() }()
	warmStack(ctx, stack, logger)

	metrics := openMetrics(cfg)
	defer closeMetrics(metrics)

	orchOpts := []typeahead.Option{
		typeahead.WithDebounce(cfg.DebounceDuration()),
		typeahead.WithLookupTimeout(cfg.LookupTimeoutDuration()),
		typeahead.WithLogger(logger),
		typeahead.WithContext(ctx),
	}
	if metrics != nil {
		orchOpts = append(orchOpts, typeahead.WithRecorder(metrics))
	}
	o := typeahead.New(stack.Lookup, orchOpts...)
	defer o.Close()

	logger.Info("typeahead_started",
		slog.String("backend", cfg.Backend.Kind),
		slog.Bool("simulation", cfg.Simulation.Enabled),
		slog.Duration("debounce", cfg.DebounceDuration()))

	uiCfg := ui.NewConfig(cmd.OutOrStdout(),
		ui.WithInput(cmd.InOrStdin()),
		ui.WithForcePlain(opts.plain),
		ui.WithNoColor(opts.noColor || ui.DetectNoColor()),
	)
	return ui.NewFrontend(o, uiCfg).Run(ctx)
}
