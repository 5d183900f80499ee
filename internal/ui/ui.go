// Package ui renders typeahead state in a terminal.
//
// Two front ends drive the same orchestrator: an interactive bubbletea TUI
// for terminals, and a line-oriented plain mode for pipes, CI and scripts.
// Both are render sinks: they subscribe to state snapshots and never touch
// the orchestrator's internals.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/typeahead/internal/typeahead"
)

// Controller is the part of the orchestrator a front end drives.
// *typeahead.Orchestrator implements it.
type Controller interface {
	SetQuery(text string)
	SelectSuggestion(text string)
	Clear()
	Retry()
	Subscribe(render typeahead.RenderFunc) (unsubscribe func())
	State() typeahead.State
}

var _ Controller = (*typeahead.Orchestrator)(nil)

// Frontend runs an interactive session until the user quits, input ends
// or ctx is cancelled.
type Frontend interface {
	Run(ctx context.Context) error
}

// Config configures a front end.
type Config struct {
	Input      io.Reader
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	// Settle is how long plain mode waits after the last input line when
	// the controller cannot report a pending debounced query.
	Settle time.Duration
	// Title is shown in the TUI header.
	Title string
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithInput sets the input reader.
func WithInput(r io.Reader) ConfigOption {
	return func(c *Config) {
		c.Input = r
	}
}

// WithSettle sets the plain-mode settle delay.
func WithSettle(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Settle = d
	}
}

// WithTitle sets the TUI header text.
func WithTitle(title string) ConfigOption {
	return func(c *Config) {
		c.Title = title
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Input:  os.Stdin,
		Output: output,
		Settle: 350 * time.Millisecond,
		Title:  "typeahead",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if DetectNoColor() {
		cfg.NoColor = true
	}
	return cfg
}

// NewFrontend picks the TUI for interactive terminals and plain mode for
// everything else (pipes, CI, --plain).
func NewFrontend(ctrl Controller, cfg Config) Frontend {
	if cfg.ForcePlain || DetectCI() || !IsTTY(cfg.Output) || !isTTYReader(cfg.Input) {
		return NewPlainFrontend(ctrl, cfg)
	}

	tui, err := NewTUI(ctrl, cfg)
	if err != nil {
		return NewPlainFrontend(ctrl, cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

func isTTYReader(r io.Reader) bool {
	if f, ok := r.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
