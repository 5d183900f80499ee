package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter is an io.Writer that rotates its file by size:
// typeahead.log -> typeahead.log.1 -> ... -> typeahead.log.<maxFiles>.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu            sync.Mutex
	file          *os.File
	written       int64
	immediateSync bool
}

// NewRotatingWriter creates a rotating writer for path.
// Immediate sync is on by default so `typeahead logs -f` sees every record.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if maxFiles < 1 {
		maxFiles = 1
	}
	w := &RotatingWriter{
		path:          path,
		maxSize:       int64(maxSizeMB) * 1024 * 1024,
		maxFiles:      maxFiles,
		immediateSync: true,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetImmediateSync toggles fsync after each write.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.immediateSync = enabled
}

// Write implements io.Writer, rotating first when p would overflow the file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.written > 0 && w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			// Keep logging into whatever file is open.
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
			if w.file == nil {
				return 0, err
			}
		}
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	if w.immediateSync && err == nil {
		_ = w.file.Sync()
	}
	return n, err
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.written = info.Size()
	return nil
}

// rotatedPath returns the name of the n-th rotated file.
func (w *RotatingWriter) rotatedPath(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

// rotate shifts every rotated file up by one, dropping the oldest,
// then moves the live file to .1 and reopens.
func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	w.file = nil

	_ = os.Remove(w.rotatedPath(w.maxFiles))
	for n := w.maxFiles - 1; n >= 1; n-- {
		_ = os.Rename(w.rotatedPath(n), w.rotatedPath(n+1))
	}

	if err := os.Rename(w.path, w.rotatedPath(1)); err != nil && !os.IsNotExist(err) {
		_ = w.openFile()
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return w.openFile()
}
