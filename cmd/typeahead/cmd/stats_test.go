package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/typeahead/internal/telemetry"
	"github.com/Aman-CERP/typeahead/internal/ui"
)

func TestStatsCmd_TelemetryDisabled(t *testing.T) {
	// Given: telemetry off
	isolate(t)

	// When: showing stats
	out, _, err := execute(t, nil, "stats")

	// Then: backend info is shown and telemetry is reported disabled
	require.NoError(t, err)
	assert.Contains(t, out, "Typeahead: wordlist")
	assert.Contains(t, out, "Words:       16")
	assert.Contains(t, out, "Telemetry:   disabled")
}

func TestStatsCmd_ReportsPersistedLookups(t *testing.T) {
	// Given: a telemetry database with today's counts
	isolate(t)
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	store, err := telemetry.OpenSQLiteStore(dbPath)
	require.NoError(t, err)
	today := time.Now().Format("2006-01-02")
	require.NoError(t, store.SaveOutcomeCounts(today, map[telemetry.Outcome]int64{
		telemetry.OutcomeDispatched: 4,
		telemetry.OutcomeSuccess:    2,
		telemetry.OutcomeStale:      1,
	}))
	require.NoError(t, store.UpsertQueryCounts(map[string]int64{"re": 4}))
	require.NoError(t, store.Close())

	t.Setenv("TYPEAHEAD_TELEMETRY", "true")

	// When: showing stats as JSON
	cfgDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, ".typeahead.yaml"),
		[]byte("telemetry:\n  db_path: "+dbPath+"\n"), 0o644))
	out, _, err := execute(t, nil, "--config-dir", cfgDir, "stats", "--json")

	// Then: the persisted counts are reported
	require.NoError(t, err)
	var info ui.StatsInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.NotNil(t, info.Telemetry)
	assert.Equal(t, int64(4), info.Telemetry.Dispatched())
	assert.Equal(t, int64(1), info.Telemetry.OutcomeCounts[telemetry.OutcomeStale])
	assert.Equal(t, []telemetry.QueryCount{{Query: "re", Count: 4}}, info.Telemetry.TopQueries)
}

func TestStatsCmd_InvalidDays(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, nil, "stats", "--days", "0")

	assert.Error(t, err)
}

func TestPathSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 5), 0o644))

	assert.Equal(t, int64(15), pathSize(dir))
	assert.Equal(t, int64(10), pathSize(filepath.Join(dir, "a")))
	assert.Zero(t, pathSize(filepath.Join(dir, "missing")))
}
