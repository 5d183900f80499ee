// Package cmd provides the CLI commands for typeahead.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/typeahead/internal/config"
	terrors "github.com/Aman-CERP/typeahead/internal/errors"
	"github.com/Aman-CERP/typeahead/internal/logging"
	"github.com/Aman-CERP/typeahead/internal/profiling"
	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
	"github.com/Aman-CERP/typeahead/pkg/version"
)

// Persistent flags
var (
	configDir      string
	debugMode      bool
	loggingCleanup func()
	profilePaths   profiling.Paths
	profileSession *profiling.Session
)

// NewRootCmd creates the root command for the typeahead CLI.
func NewRootCmd() *cobra.Command {
	var runOpts runOptions

	cmd := &cobra.Command{
		Use:   "typeahead",
		Short: "Debounced, stale-safe search-as-you-type",
		Long: `typeahead turns keystrokes into suggestion lookups.

Input is debounced, every lookup carries a sequence token, and only the
newest lookup's result is ever shown. Late answers for superseded queries
are dropped.

Run 'typeahead' in a terminal for the interactive search box, or pipe
lines into it for plain output.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runInteractive(cmd, runOpts)
		},
	}

	cmd.SetVersionTemplate("typeahead version {{.Version}}\n")

	bindRunFlags(cmd, &runOpts)

	cmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory searched for .typeahead.yaml/.yml/.toml")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.typeahead/logs/")

	cmd.PersistentFlags().StringVar(&profilePaths.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profilePaths.Heap, "profile-mem", "", "Write memory profile to file on exit")
	cmd.PersistentFlags().StringVar(&profilePaths.Trace, "profile-trace", "", "Write execution trace to file")
	cmd.PersistentFlags().StringVar(&profilePaths.Goroutines, "profile-goroutines", "", "Write goroutine dump to file on exit")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newSuggestCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging starts debug logging and profiling if flags are
// set.
func startProfilingAndLogging(_ *cobra.Command, _ []string) error {
	if debugMode {
		if err := startDebugLogging(); err != nil {
			return err
		}
	}

	if profilePaths.Enabled() {
		profileSession = profiling.NewSession(profilePaths)
		if err := profileSession.Start(); err != nil {
			profileSession = nil
			return err
		}
	}
	return nil
}

// stopProfilingAndLogging writes pending profiles and closes the log file.
func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	var err error
	if profileSession != nil {
		err = profileSession.Stop()
		profileSession = nil
	}
	stopLogging()
	return err
}

func startDebugLogging() error {
	cfg := logging.DebugConfig()
	cfg.WriteToStderr = false
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug_logging_enabled",
		slog.String("log_file", cfg.FilePath),
		slog.String("version", version.Version))
	return nil
}

// stopLogging flushes and closes the log file.
func stopLogging() {
	if loggingCleanup != nil {
		slog.Info("logging_stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
}

// useFileLogging sends logs to file for commands that own the terminal or
// stdout. With --debug this is already the case.
func useFileLogging(level string) {
	if debugMode || loggingCleanup != nil {
		return
	}
	cleanup, err := logging.SetupFileOnly(level)
	if err != nil {
		slog.SetDefault(logging.Discard())
		return
	}
	loggingCleanup = cleanup
}

// Execute runs the root command and prints any error.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	// PersistentPostRunE is skipped when a command fails.
	if postErr := stopProfilingAndLogging(cmd, nil); err == nil {
		err = postErr
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), terrors.FormatForCLI(err))
	}
	return err
}

// loadConfig loads the layered configuration for --config-dir.
func loadConfig() (*config.Config, error) {
	return config.Load(configDir)
}

// signalContext returns ctx cancelled on SIGINT or SIGTERM.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// warmTimeout bounds cache warm-up at startup.
const warmTimeout = 5 * time.Second

// warmStack primes the stack's cache before the first lookup. Failures are
// logged and otherwise ignored.
func warmStack(ctx context.Context, stack *suggest.Stack, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, warmTimeout)
	defer cancel()

	start := time.Now()
	n, err := stack.Warm(ctx)
	if err != nil {
		logger.Warn("cache_warm_failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		logger.Debug("cache_warmed",
			slog.Int("prefixes", n),
			slog.Duration("took", time.Since(start)))
	}
}

// openMetrics opens the telemetry collector described by cfg. It returns
// nil when telemetry is disabled, and an in-memory collector when the
// database cannot be opened.
func openMetrics(cfg *config.Config) *telemetry.Metrics {
	if !cfg.Telemetry.Enabled {
		return nil
	}

	store, err := telemetry.OpenSQLiteStore(cfg.Telemetry.DBPath)
	if err != nil {
		slog.Warn("telemetry_store_unavailable",
			slog.String("path", cfg.Telemetry.DBPath),
			slog.String("error", err.Error()))
		return telemetry.New(nil)
	}

	tcfg := telemetry.DefaultConfig()
	tcfg.FlushInterval = cfg.TelemetryFlushInterval()
	return telemetry.NewWithConfig(store, tcfg)
}

// closeMetrics flushes and closes m, logging any error.
func closeMetrics(m *telemetry.Metrics) {
	if m == nil {
		return
	}
	if err := m.Close(); err != nil {
		slog.Warn("telemetry_close_failed", slog.String("error", err.Error()))
	}
}
