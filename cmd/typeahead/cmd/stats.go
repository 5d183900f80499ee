package cmd

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/typeahead/internal/config"
	terrors "github.com/Aman-CERP/typeahead/internal/errors"
	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
	"github.com/Aman-CERP/typeahead/internal/ui"
)

type statsOptions struct {
	days    int
	limit   int
	json    bool
	noColor bool
}

func newStatsCmd() *cobra.Command {
	var opts statsOptions

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show backend and lookup statistics",
		Long: `Show the configured backend and the lookup telemetry recorded by
previous sessions: outcome counts, how many answers arrived stale, latency
distribution, frequent queries and prefixes with no suggestions.`,
		Example: `  typeahead stats
  typeahead stats --days 30 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.days, "days", 7, "Days of history to include")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Entries shown in query lists")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runStats(cmd *cobra.Command, opts statsOptions) error {
	if opts.days <= 0 {
		return terrors.ValidationError("--days must be positive", nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	info := ui.StatsInfo{Backend: cfg.Backend.Kind, Days: opts.days}

	switch cfg.Backend.Kind {
	case config.BackendWordList:
		info.Words = len(suggest.DefaultWords)
		if cfg.Backend.WordsFile != "" {
			words, err := suggest.ReadWords(cfg.Backend.WordsFile)
			if err != nil {
				return err
			}
			info.Words = len(words)
		}
	case config.BackendBleve, config.BackendSQLite:
		info.IndexPath = cfg.ResolvedIndexPath()
		info.IndexSize = pathSize(info.IndexPath)
	}

	if cfg.Telemetry.Enabled {
		store, err := telemetry.OpenSQLiteStore(cfg.Telemetry.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		info.Telemetry, err = telemetry.Report(store, opts.days, time.Now(), opts.limit)
		if err != nil {
			return err
		}
	}

	r := ui.NewStatsRenderer(cmd.OutOrStdout(), opts.noColor || ui.DetectNoColor())
	if opts.json {
		return r.RenderJSON(info)
	}
	return r.Render(info)
}

// pathSize returns the size of a file, or the total size of a directory
// tree such as a bleve index. Missing paths count as zero.
func pathSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !fi.IsDir() {
		return fi.Size()
	}

	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
