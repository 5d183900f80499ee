package cmd

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/typeahead/internal/logging"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	event   string
	noColor bool
	logFile string
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View typeahead logs",
		Long: `View and tail the typeahead log file.

By default shows the last 50 entries of ~/.typeahead/logs/typeahead.log.
Use -f to follow new entries as they are written.`,
		Example: `  typeahead logs -n 100
  typeahead logs -f --level warn
  typeahead logs --event lookup_stale_discarded
  typeahead logs --grep '"query":"re'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "grep", "", "Filter by pattern (regex)")
	cmd.Flags().StringVar(&opts.event, "event", "", "Show only this event, e.g. lookup_failed")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	path, err := logging.FindLogFile(opts.logFile)
	if err != nil {
		return err
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		Event:   opts.event,
		NoColor: opts.noColor,
	}, out)

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "Log file: %s\n", path)

	if opts.follow {
		fmt.Fprintln(errOut, "Following... (Ctrl+C to stop)")
		fmt.Fprintln(errOut, "---")
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		return followLogs(ctx, viewer, path, out, errOut)
	}
	fmt.Fprintln(errOut, "---")

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)
	return nil
}

func followLogs(ctx context.Context, viewer *logging.Viewer, path string, out, errOut io.Writer) error {
	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)

	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			fmt.Fprintln(out, viewer.FormatEntry(entry))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			fmt.Fprintln(errOut, "\n---")
			fmt.Fprintln(errOut, "Stopped.")
			return nil
		}
	}
}
