package suggest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Aman-CERP/typeahead/internal/config"
)

// Stack is a configured lookup chain plus the resources it owns.
type Stack struct {
	// Lookup is the outermost decorator; hand this to the orchestrator.
	Lookup Lookup

	// Cache is the result cache, nil when disabled.
	Cache *Cached

	// Words is the in-memory vocabulary when a wordlist backend is used.
	Words *WordList

	closers []io.Closer
	watcher *WordsWatcher
	cancel  context.CancelFunc
}

// Close releases indexes and stops the words watcher.
func (s *Stack) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.watcher != nil {
		_ = s.watcher.Stop()
	}
	var firstErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Warm primes the result cache with the one-letter prefixes of the
// vocabulary, or a-z when the vocabulary is not in memory. Simulation is
// bypassed. It does nothing when the cache is disabled.
func (s *Stack) Warm(ctx context.Context) (int, error) {
	if s.Cache == nil {
		return 0, nil
	}
	prefixes := warmPrefixes(s.Words)
	if err := Warm(ctx, s.Cache, prefixes); err != nil {
		return 0, err
	}
	return len(prefixes), nil
}

func warmPrefixes(words *WordList) []string {
	if words == nil {
		prefixes := make([]string, 0, 26)
		for r := 'a'; r <= 'z'; r++ {
			prefixes = append(prefixes, string(r))
		}
		return prefixes
	}

	seen := make(map[string]struct{})
	var prefixes []string
	for _, w := range words.Words() {
		n := Normalize(w)
		if n == "" {
			continue
		}
		first := string([]rune(n)[:1])
		if _, ok := seen[first]; ok {
			continue
		}
		seen[first] = struct{}{}
		prefixes = append(prefixes, first)
	}
	return prefixes
}

// Build assembles the lookup chain described by cfg:
//
//	backend [+ merged backends] -> rate limit -> cache -> simulation
//
// Simulation sits outermost so cached answers still arrive late and out of
// order.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stack{}

	primary, err := s.backend(ctx, cfg, cfg.Backend.Kind, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	var lookup Lookup = primary
	if len(cfg.Backend.Merge) > 0 {
		sources := []Lookup{primary}
		for _, kind := range cfg.Backend.Merge {
			extra, err := s.backend(ctx, cfg, kind, logger)
			if err != nil {
				_ = s.Close()
				return nil, err
			}
			sources = append(sources, extra)
		}
		multi := NewMulti(cfg.Backend.MaxResults, sources...)
		multi.logger = logger
		lookup = multi
	}

	if cfg.RateLimit.PerSecond > 0 {
		lookup = NewLimited(lookup, cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	}

	if cfg.Cache.Size > 0 {
		s.Cache = NewCached(lookup, cfg.Cache.Size)
		lookup = s.Cache
	}

	if cfg.Simulation.Enabled {
		minLatency, jitter := cfg.SimulatedLatency()
		lookup = NewSimulated(lookup, SimulatedConfig{
			MinLatency:  minLatency,
			Jitter:      jitter,
			FailureRate: cfg.Simulation.FailureRate,
		})
	}

	s.Lookup = lookup

	logger.Debug("lookup_stack_built",
		slog.String("backend", cfg.Backend.Kind),
		slog.Any("merge", cfg.Backend.Merge),
		slog.Int("cache_size", cfg.Cache.Size),
		slog.Float64("rate_limit", cfg.RateLimit.PerSecond),
		slog.Bool("simulation", cfg.Simulation.Enabled))

	return s, nil
}

// backend creates one base backend of the given kind.
func (s *Stack) backend(ctx context.Context, cfg *config.Config, kind string, logger *slog.Logger) (Lookup, error) {
	switch strings.ToLower(kind) {
	case config.BackendWordList, "":
		if s.Words != nil {
			return s.Words, nil
		}
		words := DefaultWords
		if cfg.Backend.WordsFile != "" {
			loaded, err := ReadWords(cfg.Backend.WordsFile)
			if err != nil {
				return nil, err
			}
			words = loaded
		}
		s.Words = NewWordList(words, cfg.Backend.MaxResults)

		if cfg.Backend.Watch && cfg.Backend.WordsFile != "" {
			if err := s.watch(ctx, cfg.Backend.WordsFile, logger); err != nil {
				return nil, err
			}
		}
		return s.Words, nil

	case config.BackendBleve, config.BackendSQLite:
		idx, err := OpenIndex(IndexKind(strings.ToLower(kind)), cfg.ResolvedIndexPathFor(kind), cfg.Backend.MaxResults)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, idx)
		return idx, nil

	case config.BackendRemote:
		return NewRemote(cfg.Backend.RemoteURL, cfg.Backend.MaxResults)

	default:
		return nil, fmt.Errorf("unknown backend: %s", kind)
	}
}

func (s *Stack) watch(ctx context.Context, path string, logger *slog.Logger) error {
	w, err := NewWordsWatcher(path, s.Words,
		WithWatchLogger(logger),
		WithReloadHook(func(int) {
			if s.Cache != nil {
				s.Cache.Purge()
			}
		}),
	)
	if err != nil {
		return err
	}
	s.watcher = w

	watchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go func() {
		_ = w.Run(watchCtx)
	}()
	return nil
}

// BuildIndex loads words into the on-disk index of the given kind under an
// exclusive build lock. Returns the number of indexed words.
func BuildIndex(ctx context.Context, kind IndexKind, path string, words []string) (int, error) {
	lock := NewBuildLock(path)
	if err := lock.TryLock(); err != nil {
		return 0, err
	}
	defer func() { _ = lock.Unlock() }()

	idx, err := OpenIndex(kind, path, DefaultMaxResults)
	if err != nil {
		return 0, err
	}
	defer idx.Close()

	if err := idx.Add(ctx, words); err != nil {
		return 0, fmt.Errorf("failed to index words: %w", err)
	}
	return idx.Count()
}
