package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Aman-CERP/typeahead/internal/config"
	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
)

// remoteProbeTimeout bounds the remote backend probe.
const remoteProbeTimeout = 3 * time.Second

// CheckBackend verifies that the configured backend can answer lookups.
func (c *Checker) CheckBackend(ctx context.Context, cfg *config.Config) CheckResult {
	result := CheckResult{
		Name:     "backend",
		Required: true,
	}

	switch strings.ToLower(cfg.Backend.Kind) {
	case config.BackendWordList:
		return c.checkWordList(cfg, result)
	case config.BackendBleve, config.BackendSQLite:
		return c.checkIndex(cfg, result)
	case config.BackendRemote:
		return c.checkRemote(ctx, cfg, result)
	default:
		result.Status = StatusFail
		result.Message = fmt.Sprintf("unknown backend %q", cfg.Backend.Kind)
		return result
	}
}

func (c *Checker) checkWordList(cfg *config.Config, result CheckResult) CheckResult {
	if cfg.Backend.WordsFile == "" {
		result.Status = StatusPass
		result.Message = fmt.Sprintf("wordlist: built-in vocabulary (%d words)", len(suggest.DefaultWords))
		return result
	}

	result.Details = cfg.Backend.WordsFile
	words, err := suggest.ReadWords(cfg.Backend.WordsFile)
	if err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}
	if len(words) == 0 {
		result.Status = StatusWarn
		result.Message = "wordlist: words file is empty; every lookup will return nothing"
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("wordlist: %d words", len(words))
	return result
}

func (c *Checker) checkIndex(cfg *config.Config, result CheckResult) CheckResult {
	kind := strings.ToLower(cfg.Backend.Kind)
	path := cfg.ResolvedIndexPath()
	result.Details = path

	if _, err := os.Stat(path); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s: no index at %s (run 'typeahead index --kind %s')", kind, path, kind)
		return result
	}

	idx, err := suggest.OpenIndex(suggest.IndexKind(kind), path, cfg.Backend.MaxResults)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s: %v", kind, err)
		return result
	}
	defer idx.Close()

	count, err := idx.Count()
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s: %v", kind, err)
		return result
	}
	if count == 0 {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s: index is empty", kind)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s: %d words", kind, count)
	return result
}

func (c *Checker) checkRemote(ctx context.Context, cfg *config.Config, result CheckResult) CheckResult {
	result.Details = cfg.Backend.RemoteURL

	remote, err := suggest.NewRemote(cfg.Backend.RemoteURL, 1)
	if err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, remoteProbeTimeout)
	defer cancel()

	start := time.Now()
	if _, err := remote.Lookup(ctx, "a"); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("remote: %v", err)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("remote: answered in %s", time.Since(start).Round(time.Millisecond))
	return result
}

// CheckTelemetry verifies the telemetry database can be opened. Telemetry
// is optional, so failures only warn.
func (c *Checker) CheckTelemetry(cfg *config.Config) CheckResult {
	result := CheckResult{Name: "telemetry"}

	if !cfg.Telemetry.Enabled {
		result.Status = StatusPass
		result.Message = "disabled"
		return result
	}

	result.Details = cfg.Telemetry.DBPath
	store, err := telemetry.OpenSQLiteStore(cfg.Telemetry.DBPath)
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("unavailable, lookups will not be persisted: %v", err)
		return result
	}
	_ = store.Close()

	result.Status = StatusPass
	result.Message = "ok"
	return result
}
