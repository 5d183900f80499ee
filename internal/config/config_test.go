package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
)

// isolate points the user config at an empty temp dir.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration
	cfg := NewConfig()

	// Then: defaults match the interactive demo behaviour
	require.NotNil(t, cfg)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDuration())
	assert.Equal(t, time.Duration(0), cfg.LookupTimeoutDuration())
	assert.Equal(t, BackendWordList, cfg.Backend.Kind)
	assert.Equal(t, 7, cfg.Backend.MaxResults)
	assert.True(t, cfg.Simulation.Enabled)
	assert.Equal(t, 0.12, cfg.Simulation.FailureRate)
	minLatency, jitter := cfg.SimulatedLatency()
	assert.Equal(t, 120*time.Millisecond, minLatency)
	assert.Equal(t, 500*time.Millisecond, jitter)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, ":8787", cfg.Server.Addr)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, 30*time.Second, cfg.TelemetryFlushInterval())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFiles_UsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, NewConfig().Typeahead, cfg.Typeahead)
}

func TestLoad_ProjectYAML_OverridesOnlyPresentKeys(t *testing.T) {
	// Given: a project file that sets debounce and disables simulation
	isolate(t)
	dir := t.TempDir()
	content := `
typeahead:
  debounce: 150ms
simulation:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".typeahead.yaml"), []byte(content), 0644))

	// When: loading
	cfg, err := Load(dir)

	// Then: present keys override, absent keys keep defaults
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, cfg.DebounceDuration())
	assert.False(t, cfg.Simulation.Enabled)
	assert.Equal(t, 0.12, cfg.Simulation.FailureRate)
	assert.Equal(t, 7, cfg.Backend.MaxResults)
}

func TestLoad_ProjectTOML(t *testing.T) {
	// Given: a TOML project file
	isolate(t)
	dir := t.TempDir()
	content := `
[backend]
kind = "sqlite"
max_results = 5

[cache]
size = 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".typeahead.toml"), []byte(content), 0644))

	// When: loading
	cfg, err := Load(dir)

	// Then: TOML values are applied
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend.Kind)
	assert.Equal(t, 5, cfg.Backend.MaxResults)
	assert.Equal(t, 0, cfg.Cache.Size)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDuration())
}

func TestLoad_YAMLTakesPrecedenceOverTOML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".typeahead.yaml"), []byte("backend:\n  max_results: 3\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".typeahead.toml"), []byte("[backend]\nmax_results = 9\n"), 0644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Backend.MaxResults)
	assert.Equal(t, filepath.Join(dir, ".typeahead.yaml"), FindProjectConfig(dir))
}

func TestLoad_UserConfigThenProjectConfig(t *testing.T) {
	// Given: a user config and a project config
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	userPath := filepath.Join(xdg, "typeahead", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0755))
	require.NoError(t, os.WriteFile(userPath, []byte("log_level: warn\nbackend:\n  max_results: 4\n"), 0644))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".typeahead.yml"), []byte("backend:\n  max_results: 6\n"), 0644))

	// When: loading
	cfg, err := Load(dir)

	// Then: project overrides user, user overrides defaults
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 6, cfg.Backend.MaxResults)
	assert.True(t, UserConfigExists())
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	// Given: a project file and env overrides
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".typeahead.yaml"), []byte("typeahead:\n  debounce: 100ms\n"), 0644))
	t.Setenv("TYPEAHEAD_DEBOUNCE", "50ms")
	t.Setenv("TYPEAHEAD_SIMULATE", "0")
	t.Setenv("TYPEAHEAD_MAX_RESULTS", "not-a-number")
	t.Setenv("TYPEAHEAD_LOOKUP_TIMEOUT", "2s")

	// When: loading
	cfg, err := Load(dir)

	// Then: env wins and bad values are ignored
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.DebounceDuration())
	assert.Equal(t, 2*time.Second, cfg.LookupTimeoutDuration())
	assert.False(t, cfg.Simulation.Enabled)
	assert.Equal(t, 7, cfg.Backend.MaxResults)
}

func TestLoad_MalformedFile_ReturnsConfigError(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".typeahead.yaml"), []byte("typeahead: [unclosed"), 0644))

	_, err := Load(dir)

	require.Error(t, err)
	assert.Equal(t, terrors.ErrCodeConfigInvalid, terrors.GetCode(err))
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad debounce", func(c *Config) { c.Typeahead.Debounce = "soon" }},
		{"negative timeout", func(c *Config) { c.Typeahead.LookupTimeout = "-1s" }},
		{"unknown backend", func(c *Config) { c.Backend.Kind = "elastic" }},
		{"remote without url", func(c *Config) { c.Backend.Kind = BackendRemote }},
		{"negative max results", func(c *Config) { c.Backend.MaxResults = -1 }},
		{"failure rate above one", func(c *Config) { c.Simulation.FailureRate = 1.5 }},
		{"negative cache", func(c *Config) { c.Cache.Size = -1 }},
		{"bad transport", func(c *Config) { c.Server.Transport = "sse" }},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, terrors.CategoryConfig, terrors.GetCategory(err))
		})
	}
}

func TestResolvedIndexPath(t *testing.T) {
	cfg := NewConfig()

	cfg.Backend.Kind = BackendSQLite
	assert.Equal(t, filepath.Join(DataDir(), "words.db"), cfg.ResolvedIndexPath())

	cfg.Backend.Kind = BackendBleve
	assert.Equal(t, filepath.Join(DataDir(), "words.bleve"), cfg.ResolvedIndexPath())

	cfg.Backend.IndexPath = "/tmp/custom.db"
	assert.Equal(t, "/tmp/custom.db", cfg.ResolvedIndexPath())
}

func TestGetUserConfigPath_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")
	assert.Equal(t, filepath.Join("/custom/xdg", "typeahead", "config.yaml"), GetUserConfigPath())
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	// Given: a modified config written to the user config path
	isolate(t)
	cfg := NewConfig()
	cfg.Backend.MaxResults = 11
	cfg.Simulation.Enabled = false
	require.NoError(t, cfg.WriteYAML(GetUserConfigPath()))

	// When: loading from an empty project
	loaded, err := Load(t.TempDir())

	// Then: the written values are read back
	require.NoError(t, err)
	assert.Equal(t, 11, loaded.Backend.MaxResults)
	assert.False(t, loaded.Simulation.Enabled)
}

func TestBackupUserConfig_KeepsNewestBackups(t *testing.T) {
	// Given: an existing user config
	isolate(t)
	require.NoError(t, NewConfig().WriteYAML(GetUserConfigPath()))

	// When: backing up more than MaxBackups times
	for i := 0; i < MaxBackups+2; i++ {
		path, err := BackupUserConfig()
		require.NoError(t, err)
		require.FileExists(t, path)
		time.Sleep(5 * time.Millisecond)
	}

	// Then: only MaxBackups remain
	backups, err := ListUserConfigBackups()
	require.NoError(t, err)
	assert.Len(t, backups, MaxBackups)
}

func TestBackupUserConfig_NoConfig(t *testing.T) {
	isolate(t)

	path, err := BackupUserConfig()

	require.NoError(t, err)
	assert.Empty(t, path)
}
