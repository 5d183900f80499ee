package suggest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
)

// BuildLock serialises index builds across processes.
// The lock file lives next to the index as <index>.lock.
type BuildLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewBuildLock creates a lock guarding the index at indexPath.
func NewBuildLock(indexPath string) *BuildLock {
	lockPath := indexPath + ".lock"
	return &BuildLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns an ERR_203_INDEX_LOCKED error if another process holds it.
func (l *BuildLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return terrors.New(terrors.ErrCodeIndexLocked, "index is being built by another process", nil).
			WithDetail("lock", l.path).
			WithSuggestion("wait for the other build to finish")
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call on an unlocked BuildLock.
func (l *BuildLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *BuildLock) Path() string {
	return l.path
}

// IsLocked reports whether this BuildLock holds the lock.
func (l *BuildLock) IsLocked() bool {
	return l.locked
}
