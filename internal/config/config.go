package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
)

// Backend kinds.
const (
	BackendWordList = "wordlist"
	BackendBleve    = "bleve"
	BackendSQLite   = "sqlite"
	BackendRemote   = "remote"
)

// Project config file names, in lookup order.
var projectConfigFiles = []string{".typeahead.yaml", ".typeahead.yml", ".typeahead.toml"}

// Config represents the complete typeahead configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version" toml:"version"`
	Typeahead  TypeaheadConfig  `yaml:"typeahead" json:"typeahead" toml:"typeahead"`
	Backend    BackendConfig    `yaml:"backend" json:"backend" toml:"backend"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation" toml:"simulation"`
	Cache      CacheConfig      `yaml:"cache" json:"cache" toml:"cache"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" json:"rate_limit" toml:"rate_limit"`
	Server     ServerConfig     `yaml:"server" json:"server" toml:"server"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" json:"telemetry" toml:"telemetry"`
	LogLevel   string           `yaml:"log_level" json:"log_level" toml:"log_level"`
}

// TypeaheadConfig configures the orchestrator core.
type TypeaheadConfig struct {
	// Debounce is the quiet period before a lookup is dispatched (e.g. "300ms").
	Debounce string `yaml:"debounce" json:"debounce" toml:"debounce"`

	// LookupTimeout bounds a single lookup. Empty or "0" means no timeout.
	LookupTimeout string `yaml:"lookup_timeout" json:"lookup_timeout" toml:"lookup_timeout"`
}

// BackendConfig selects and configures the suggestion backend.
type BackendConfig struct {
	// Kind is one of wordlist, bleve, sqlite, remote.
	Kind string `yaml:"kind" json:"kind" toml:"kind"`

	// WordsFile is a newline-separated vocabulary. Empty uses the built-in words.
	WordsFile string `yaml:"words_file" json:"words_file" toml:"words_file"`

	// IndexPath overrides the on-disk index location for bleve and sqlite.
	IndexPath string `yaml:"index_path" json:"index_path" toml:"index_path"`

	MaxResults int    `yaml:"max_results" json:"max_results" toml:"max_results"`
	RemoteURL  string `yaml:"remote_url" json:"remote_url" toml:"remote_url"`

	// Watch reloads WordsFile on change (wordlist backend only).
	Watch bool `yaml:"watch" json:"watch" toml:"watch"`

	// Merge lists extra backend kinds queried alongside Kind; their
	// suggestions are appended after the primary's.
	Merge []string `yaml:"merge,omitempty" json:"merge,omitempty" toml:"merge,omitempty"`
}

// SimulationConfig injects artificial latency and failures.
type SimulationConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled" toml:"enabled"`
	MinLatency  string  `yaml:"min_latency" json:"min_latency" toml:"min_latency"`
	Jitter      string  `yaml:"jitter" json:"jitter" toml:"jitter"`
	FailureRate float64 `yaml:"failure_rate" json:"failure_rate" toml:"failure_rate"`
}

// CacheConfig configures the lookup result cache. Size 0 disables it.
type CacheConfig struct {
	Size int `yaml:"size" json:"size" toml:"size"`
}

// RateLimitConfig throttles backend calls. PerSecond 0 disables it.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second" json:"per_second" toml:"per_second"`
	Burst     int     `yaml:"burst" json:"burst" toml:"burst"`
}

// ServerConfig configures the HTTP and MCP surfaces.
type ServerConfig struct {
	Addr           string   `yaml:"addr" json:"addr" toml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
	Transport      string   `yaml:"transport" json:"transport" toml:"transport"`
}

// TelemetryConfig configures lookup metrics collection.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled" json:"enabled" toml:"enabled"`
	DBPath        string `yaml:"db_path" json:"db_path" toml:"db_path"`
	FlushInterval string `yaml:"flush_interval" json:"flush_interval" toml:"flush_interval"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Typeahead: TypeaheadConfig{
			Debounce: "300ms",
		},
		Backend: BackendConfig{
			Kind:       BackendWordList,
			MaxResults: 7,
		},
		Simulation: SimulationConfig{
			Enabled:     true,
			MinLatency:  "120ms",
			Jitter:      "500ms",
			FailureRate: 0.12,
		},
		Cache: CacheConfig{
			Size: 256,
		},
		RateLimit: RateLimitConfig{
			Burst: 1,
		},
		Server: ServerConfig{
			Addr:           ":8787",
			AllowedOrigins: []string{"*"},
			Transport:      "stdio",
		},
		Telemetry: TelemetryConfig{
			Enabled:       true,
			DBPath:        filepath.Join(DataDir(), "telemetry.db"),
			FlushInterval: "30s",
		},
		LogLevel: "info",
	}
}

// DataDir returns ~/.typeahead, the home of indexes, logs and telemetry.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".typeahead")
	}
	return filepath.Join(home, ".typeahead")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/typeahead/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/typeahead/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "typeahead", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "typeahead", "config.yaml")
	}
	return filepath.Join(home, ".config", "typeahead", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/typeahead/config.yaml)
//  3. Project config (.typeahead.yaml, .typeahead.yml or .typeahead.toml in dir)
//  4. Environment variables (TYPEAHEAD_*)
//
// Each file is decoded onto the result of the previous step, so keys absent
// from a file keep their earlier value.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if path := FindProjectConfig(dir); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindProjectConfig returns the project config file in dir, or "".
func FindProjectConfig(dir string) string {
	for _, name := range projectConfigFiles {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadFile decodes a YAML or TOML file onto c, chosen by extension.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, c)
	} else {
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return terrors.New(terrors.ErrCodeConfigInvalid, fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	return nil
}

// applyEnvOverrides applies TYPEAHEAD_* environment variable overrides.
// Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TYPEAHEAD_DEBOUNCE"); v != "" {
		c.Typeahead.Debounce = v
	}
	if v := os.Getenv("TYPEAHEAD_LOOKUP_TIMEOUT"); v != "" {
		c.Typeahead.LookupTimeout = v
	}
	if v := os.Getenv("TYPEAHEAD_BACKEND"); v != "" {
		c.Backend.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("TYPEAHEAD_WORDS_FILE"); v != "" {
		c.Backend.WordsFile = v
	}
	if v := os.Getenv("TYPEAHEAD_INDEX_PATH"); v != "" {
		c.Backend.IndexPath = v
	}
	if v := os.Getenv("TYPEAHEAD_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.MaxResults = n
		}
	}
	if v := os.Getenv("TYPEAHEAD_REMOTE_URL"); v != "" {
		c.Backend.RemoteURL = v
	}
	if v := os.Getenv("TYPEAHEAD_SIMULATE"); v != "" {
		c.Simulation.Enabled = parseBool(v)
	}
	if v := os.Getenv("TYPEAHEAD_FAILURE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f >= 0 && f <= 1 {
			c.Simulation.FailureRate = f
		}
	}
	if v := os.Getenv("TYPEAHEAD_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Cache.Size = n
		}
	}
	if v := os.Getenv("TYPEAHEAD_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TYPEAHEAD_TELEMETRY"); v != "" {
		c.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("TYPEAHEAD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// parseDuration treats "" and "0" as zero.
func parseDuration(field, v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, terrors.ConfigError(fmt.Sprintf("%s must be a duration like 300ms, got %q", field, v), err)
	}
	if d < 0 {
		return 0, terrors.ConfigError(fmt.Sprintf("%s must not be negative, got %s", field, v), nil)
	}
	return d, nil
}

// DebounceDuration returns the parsed debounce window.
func (c *Config) DebounceDuration() time.Duration {
	d, _ := parseDuration("typeahead.debounce", c.Typeahead.Debounce)
	return d
}

// LookupTimeoutDuration returns the parsed lookup timeout (0 = none).
func (c *Config) LookupTimeoutDuration() time.Duration {
	d, _ := parseDuration("typeahead.lookup_timeout", c.Typeahead.LookupTimeout)
	return d
}

// SimulatedLatency returns the parsed minimum latency and jitter.
func (c *Config) SimulatedLatency() (minLatency, jitter time.Duration) {
	minLatency, _ = parseDuration("simulation.min_latency", c.Simulation.MinLatency)
	jitter, _ = parseDuration("simulation.jitter", c.Simulation.Jitter)
	return minLatency, jitter
}

// TelemetryFlushInterval returns the parsed flush interval.
func (c *Config) TelemetryFlushInterval() time.Duration {
	d, _ := parseDuration("telemetry.flush_interval", c.Telemetry.FlushInterval)
	return d
}

// ResolvedIndexPath returns the index location for the primary backend.
func (c *Config) ResolvedIndexPath() string {
	return c.ResolvedIndexPathFor(c.Backend.Kind)
}

// ResolvedIndexPathFor returns Backend.IndexPath when kind is the primary
// backend, otherwise the default location under DataDir.
func (c *Config) ResolvedIndexPathFor(kind string) string {
	if c.Backend.IndexPath != "" && strings.EqualFold(kind, c.Backend.Kind) {
		return c.Backend.IndexPath
	}
	base := filepath.Join(DataDir(), "words")
	if strings.EqualFold(kind, BackendBleve) {
		return base + ".bleve"
	}
	return base + ".db"
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	for field, v := range map[string]string{
		"typeahead.debounce":       c.Typeahead.Debounce,
		"typeahead.lookup_timeout": c.Typeahead.LookupTimeout,
		"simulation.min_latency":   c.Simulation.MinLatency,
		"simulation.jitter":        c.Simulation.Jitter,
		"telemetry.flush_interval": c.Telemetry.FlushInterval,
	} {
		if _, err := parseDuration(field, v); err != nil {
			return err
		}
	}

	validKinds := map[string]bool{BackendWordList: true, BackendBleve: true, BackendSQLite: true, BackendRemote: true}
	if !validKinds[strings.ToLower(c.Backend.Kind)] {
		return terrors.ConfigError(fmt.Sprintf("backend.kind must be 'wordlist', 'bleve', 'sqlite', or 'remote', got %s", c.Backend.Kind), nil)
	}
	for _, kind := range c.Backend.Merge {
		if !validKinds[strings.ToLower(kind)] {
			return terrors.ConfigError(fmt.Sprintf("backend.merge contains unknown kind %s", kind), nil)
		}
	}
	if strings.EqualFold(c.Backend.Kind, BackendRemote) && c.Backend.RemoteURL == "" {
		return terrors.ConfigError("backend.remote_url is required when backend.kind is 'remote'", nil).
			WithSuggestion("set TYPEAHEAD_REMOTE_URL or backend.remote_url")
	}
	if c.Backend.MaxResults < 0 {
		return terrors.ConfigError(fmt.Sprintf("backend.max_results must be non-negative, got %d", c.Backend.MaxResults), nil)
	}

	if c.Simulation.FailureRate < 0 || c.Simulation.FailureRate > 1 {
		return terrors.ConfigError(fmt.Sprintf("simulation.failure_rate must be between 0 and 1, got %f", c.Simulation.FailureRate), nil)
	}
	if c.Cache.Size < 0 {
		return terrors.ConfigError(fmt.Sprintf("cache.size must be non-negative, got %d", c.Cache.Size), nil)
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		return terrors.ConfigError("rate_limit.per_second and rate_limit.burst must be non-negative", nil)
	}

	validTransports := map[string]bool{"stdio": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return terrors.ConfigError(fmt.Sprintf("server.transport must be 'stdio', got %s", c.Server.Transport), nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return terrors.ConfigError(fmt.Sprintf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel), nil)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
