package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/typeahead/internal/config"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status as its name.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker performs preflight validation checks.
type Checker struct {
	verbose bool
	output  io.Writer
	dataDir string
	isTTY   func() bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables verbose output.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// WithDataDir overrides the directory checked for write access and space.
func WithDataDir(dir string) Option {
	return func(c *Checker) {
		c.dataDir = dir
	}
}

// WithTerminal sets how the terminal check decides whether stdout is a TTY.
func WithTerminal(isTTY func() bool) Option {
	return func(c *Checker) {
		if isTTY != nil {
			c.isTTY = isTTY
		}
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output:  os.Stdout,
		dataDir: config.DataDir(),
		isTTY:   func() bool { return false },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check against cfg and returns the results in order.
func (c *Checker) RunAll(ctx context.Context, cfg *config.Config) []CheckResult {
	var results []CheckResult

	results = append(results, c.CheckWritePermissions(c.dataDir))
	results = append(results, c.CheckDiskSpace(c.dataDir))
	results = append(results, c.CheckBackend(ctx, cfg))
	results = append(results, c.CheckTelemetry(cfg))
	results = append(results, c.CheckTerminal())

	return results
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	hasCriticalFailure := false

	for _, r := range results {
		if r.IsCritical() {
			hasCriticalFailure = true
		}
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			hasWarnings = true
		}
	}

	if hasCriticalFailure {
		return "failed"
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "typeahead doctor")
	_, _ = fmt.Fprintln(c.output, "================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, errors []string
	for _, r := range results {
		if r.IsCritical() {
			errors = append(errors, r.Name+": "+r.Message)
		} else if r.Status != StatusPass {
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}

	if len(errors) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d error(s):\n", len(errors))
		for _, e := range errors {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", e)
		}
	}

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d warning(s):\n", len(warnings))
		for _, w := range warnings {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", w)
		}
	}
}

// CheckWritePermissions checks that dir exists (creating it if needed) and
// is writable.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	result := CheckResult{
		Name:     "data_dir",
		Required: true,
		Details:  dir,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create %s: %v", dir, err)
		return result
	}

	testFile := filepath.Join(dir, ".typeahead-preflight-test")
	f, err := os.Create(testFile)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	result.Status = StatusPass
	result.Message = "writable"
	return result
}

// CheckTerminal reports whether the interactive front end will be used.
func (c *Checker) CheckTerminal() CheckResult {
	result := CheckResult{Name: "terminal"}
	if c.isTTY() {
		result.Status = StatusPass
		result.Message = "interactive"
		return result
	}
	result.Status = StatusWarn
	result.Message = "stdout is not a terminal; line mode will be used"
	return result
}
