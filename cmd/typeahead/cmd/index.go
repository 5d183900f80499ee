package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/typeahead/internal/config"
	terrors "github.com/Aman-CERP/typeahead/internal/errors"
	"github.com/Aman-CERP/typeahead/internal/output"
	"github.com/Aman-CERP/typeahead/internal/suggest"
)

func newIndexCmd() *cobra.Command {
	var (
		kind      string
		path      string
		wordsFile string
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the on-disk suggestion index",
		Long: `Build a bleve or sqlite prefix index from a words file.

Words are read one per line, trimmed and lowercased. Without --words the
configured backend.words_file is used, falling back to the built-in
vocabulary. Only one build may run per index at a time.`,
		Example: `  typeahead index --kind bleve --words /usr/share/dict/words
  typeahead index --kind sqlite --path ./words.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, kind, path, wordsFile)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Index kind: bleve or sqlite (default from backend.kind, else bleve)")
	cmd.Flags().StringVar(&path, "path", "", "Index location (default under ~/.typeahead)")
	cmd.Flags().StringVar(&wordsFile, "words", "", "Words file, one word per line")

	return cmd
}

func runIndex(cmd *cobra.Command, kind, path, wordsFile string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if kind == "" {
		kind = cfg.Backend.Kind
		if kind != config.BackendBleve && kind != config.BackendSQLite {
			kind = config.BackendBleve
		}
	}
	kind = strings.ToLower(kind)
	if kind != config.BackendBleve && kind != config.BackendSQLite {
		return terrors.ValidationError(fmt.Sprintf("unknown index kind %q", kind), nil).
			WithSuggestion("Use --kind bleve or --kind sqlite")
	}
	if path == "" {
		path = cfg.ResolvedIndexPathFor(kind)
	}
	if wordsFile == "" {
		wordsFile = cfg.Backend.WordsFile
	}

	words := suggest.DefaultWords
	if wordsFile != "" {
		words, err = suggest.ReadWords(wordsFile)
		if err != nil {
			return err
		}
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	start := time.Now()
	count, err := suggest.BuildIndex(ctx, suggest.IndexKind(kind), path, words)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout(), false)
	out.Successf("Indexed %d words", count)
	out.Field("Kind", 8, kind)
	out.Field("Path", 8, path)
	out.Field("Took", 8, time.Since(start).Round(time.Millisecond))
	if cfg.Backend.Kind != kind {
		out.Newline()
		out.Status("", "To search it, set in .typeahead.yaml:")
		out.Code(fmt.Sprintf("backend:\n  kind: %s\n  index_path: %s", kind, path))
	}
	return nil
}
