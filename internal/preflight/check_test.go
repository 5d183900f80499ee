package preflight

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/typeahead/internal/config"
	"github.com/Aman-CERP/typeahead/internal/suggest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Telemetry.DBPath = filepath.Join(t.TempDir(), "telemetry.db")
	return cfg
}

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status CheckStatus
		want   string
	}{
		{StatusPass, "PASS"},
		{StatusWarn, "WARN"},
		{StatusFail, "FAIL"},
		{CheckStatus(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestCheckResult_IsCritical(t *testing.T) {
	tests := []struct {
		name     string
		result   CheckResult
		expected bool
	}{
		{"required pass is not critical", CheckResult{Status: StatusPass, Required: true}, false},
		{"required fail is critical", CheckResult{Status: StatusFail, Required: true}, true},
		{"optional fail is not critical", CheckResult{Status: StatusFail}, false},
		{"required warn is not critical", CheckResult{Status: StatusWarn, Required: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.IsCritical())
		})
	}
}

func TestCheckResult_JSONStatusIsName(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "backend", Status: StatusWarn})

	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"warn"`)
}

func TestChecker_RunAll_DefaultConfigIsReady(t *testing.T) {
	// Given: the default config, a temp data dir and a terminal
	cfg := testConfig(t)
	checker := New(
		WithDataDir(t.TempDir()),
		WithTerminal(func() bool { return true }),
	)

	// When: running every check
	results := checker.RunAll(context.Background(), cfg)

	// Then: everything passes
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Equal(t, StatusPass, r.Status, "%s: %s", r.Name, r.Message)
	}
	assert.Equal(t, "ready", checker.SummaryStatus(results))
	assert.False(t, checker.HasCriticalFailures(results))
}

func TestChecker_CheckWritePermissions_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".typeahead")

	result := New().CheckWritePermissions(dir)

	assert.Equal(t, StatusPass, result.Status)
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".typeahead-preflight-test"))
}

func TestChecker_CheckWritePermissions_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	result := New().CheckWritePermissions(dir)

	assert.Equal(t, StatusFail, result.Status)
	assert.True(t, result.IsCritical())
}

func TestChecker_CheckDiskSpace(t *testing.T) {
	result := New().CheckDiskSpace(t.TempDir())

	assert.NotEqual(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "free")
}

func TestChecker_CheckDiskSpace_MissingPath(t *testing.T) {
	result := New().CheckDiskSpace(filepath.Join(t.TempDir(), "missing"))

	assert.Equal(t, StatusFail, result.Status)
}

func TestChecker_CheckBackend_WordsFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
		want    CheckStatus
	}{
		{"words", "alpha\nbeta\n", false, StatusPass},
		{"empty", "\n# comment\n", false, StatusWarn},
		{"missing", "", true, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Backend.WordsFile = filepath.Join(t.TempDir(), "words.txt")
			if !tt.missing {
				require.NoError(t, os.WriteFile(cfg.Backend.WordsFile, []byte(tt.content), 0o644))
			}

			result := New().CheckBackend(context.Background(), cfg)

			assert.Equal(t, tt.want, result.Status, result.Message)
		})
	}
}

func TestChecker_CheckBackend_Index(t *testing.T) {
	// Given: a built sqlite index
	cfg := testConfig(t)
	cfg.Backend.Kind = config.BackendSQLite
	cfg.Backend.IndexPath = filepath.Join(t.TempDir(), "words.db")
	_, err := suggest.BuildIndex(context.Background(), suggest.IndexSQLite, cfg.Backend.IndexPath, []string{"alpha", "beta"})
	require.NoError(t, err)

	// When: checking the backend
	result := New().CheckBackend(context.Background(), cfg)

	// Then: the word count is reported
	assert.Equal(t, StatusPass, result.Status)
	assert.Equal(t, "sqlite: 2 words", result.Message)
}

func TestChecker_CheckBackend_MissingIndex(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend.Kind = config.BackendBleve
	cfg.Backend.IndexPath = filepath.Join(t.TempDir(), "words.bleve")

	result := New().CheckBackend(context.Background(), cfg)

	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "typeahead index --kind bleve")
}

func TestChecker_CheckBackend_Remote(t *testing.T) {
	// Given: a server answering /v1/suggest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/suggest", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(suggest.RemoteResponse{Query: "a", Items: []string{"alpha"}})
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Backend.Kind = config.BackendRemote
	cfg.Backend.RemoteURL = srv.URL

	// When: checking the backend
	result := New().CheckBackend(context.Background(), cfg)

	// Then: the probe succeeds
	assert.Equal(t, StatusPass, result.Status, result.Message)
}

func TestChecker_CheckBackend_RemoteDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := testConfig(t)
	cfg.Backend.Kind = config.BackendRemote
	cfg.Backend.RemoteURL = url

	result := New().CheckBackend(context.Background(), cfg)

	assert.Equal(t, StatusFail, result.Status)
}

func TestChecker_CheckTelemetry(t *testing.T) {
	cfg := testConfig(t)

	assert.Equal(t, StatusPass, New().CheckTelemetry(cfg).Status)

	cfg.Telemetry.Enabled = false
	result := New().CheckTelemetry(cfg)
	assert.Equal(t, "disabled", result.Message)
}

func TestChecker_CheckTelemetry_UnwritableIsWarning(t *testing.T) {
	// Given: a db path below a regular file
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg.Telemetry.DBPath = filepath.Join(blocker, "telemetry.db")

	// When: checking telemetry
	result := New().CheckTelemetry(cfg)

	// Then: it warns but is not critical
	assert.Equal(t, StatusWarn, result.Status)
	assert.False(t, result.IsCritical())
}

func TestChecker_CheckTerminal(t *testing.T) {
	assert.Equal(t, StatusWarn, New().CheckTerminal().Status)
	assert.Equal(t, StatusPass, New(WithTerminal(func() bool { return true })).CheckTerminal().Status)
}

func TestChecker_SummaryStatus(t *testing.T) {
	checker := New()

	assert.Equal(t, "ready", checker.SummaryStatus([]CheckResult{{Status: StatusPass, Required: true}}))
	assert.Equal(t, "ready_with_warnings", checker.SummaryStatus([]CheckResult{{Status: StatusWarn}}))
	assert.Equal(t, "ready_with_warnings", checker.SummaryStatus([]CheckResult{{Status: StatusFail}}))
	assert.Equal(t, "failed", checker.SummaryStatus([]CheckResult{{Status: StatusFail, Required: true}}))
}

func TestChecker_PrintResults(t *testing.T) {
	// Given: one failure and one warning
	buf := &bytes.Buffer{}
	checker := New(WithOutput(buf), WithVerbose(true))
	results := []CheckResult{
		{Name: "backend", Status: StatusFail, Message: "no index", Details: "/tmp/words.db", Required: true},
		{Name: "terminal", Status: StatusWarn, Message: "line mode"},
	}

	// When: printing
	checker.PrintResults(results)

	// Then: both are listed with the summary
	out := buf.String()
	assert.Contains(t, out, "[FAIL] backend: no index")
	assert.Contains(t, out, "      /tmp/words.db")
	assert.Contains(t, out, "Status: FAILED")
	assert.Contains(t, out, "1 error(s):")
	assert.Contains(t, out, "1 warning(s):")
}
