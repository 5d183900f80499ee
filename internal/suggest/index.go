package suggest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// IndexKind names an on-disk suggestion index implementation.
type IndexKind string

const (
	// IndexBleve stores words in a Bleve index directory.
	IndexBleve IndexKind = "bleve"

	// IndexSQLite stores words in a SQLite database (WAL mode).
	IndexSQLite IndexKind = "sqlite"
)

// Index is a persistent, prefix-searchable vocabulary.
type Index interface {
	Lookup

	// Add inserts words, keeping the order of first insertion.
	// Words already present are ignored.
	Add(ctx context.Context, words []string) error

	// Count returns the number of indexed words.
	Count() (int, error)

	// Close releases the index.
	Close() error
}

// OpenIndex opens (or creates) an index of the given kind at path.
// An empty path creates an in-memory index.
func OpenIndex(kind IndexKind, path string, maxResults int) (Index, error) {
	switch kind {
	case IndexBleve:
		return NewBleveIndex(path, maxResults)
	case IndexSQLite, "":
		return NewSQLiteIndex(path, maxResults)
	default:
		return nil, fmt.Errorf("unknown index kind: %s (valid options: bleve, sqlite)", kind)
	}
}

// IndexPath returns the on-disk location for an index of the given kind
// under dataDir.
func IndexPath(dataDir string, kind IndexKind) string {
	base := filepath.Join(dataDir, "words")
	switch kind {
	case IndexBleve:
		return base + ".bleve"
	default:
		return base + ".db"
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
