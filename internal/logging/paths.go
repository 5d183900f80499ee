package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.typeahead/logs/).
// Falls back to temp directory if home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".typeahead", "logs")
	}
	return filepath.Join(home, ".typeahead", "logs")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "typeahead.log")
}

// FindLogFile resolves the log file to view. An explicit path wins;
// otherwise the default path is used if it exists.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("no log file found. Run with --debug first:\n  typeahead --debug run\nExpected at: %s", path)
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}
