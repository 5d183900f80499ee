package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points every user-level path at a temp dir and disables
// telemetry unless a test turns it back on.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("TYPEAHEAD_TELEMETRY", "false")
	t.Setenv("TYPEAHEAD_SIMULATE", "false")
	t.Setenv("TYPEAHEAD_DEBOUNCE", "20ms")
	t.Setenv("NO_COLOR", "1")
	t.Cleanup(func() {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	})
	return home
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.SetIn(stdin)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeWords writes a words file and returns its path.
func writeWords(t *testing.T, words ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0o644))
	return path
}
