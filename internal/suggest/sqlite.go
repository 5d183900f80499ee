package suggest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
)

// SQLiteIndex keeps the vocabulary in a SQLite table and answers prefix
// queries with an indexed LIKE, ordered by insertion rank.
type SQLiteIndex struct {
	mu         sync.RWMutex
	db         *sql.DB
	path       string
	maxResults int
	closed     bool
}

// NewSQLiteIndex opens or creates a SQLite index at path.
// If path is empty, creates an in-memory index.
func NewSQLiteIndex(path string, maxResults int) (*SQLiteIndex, error) {
	dsn := ":memory:"
	if path != "" {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, terrors.New(terrors.ErrCodeIndexOpen, "failed to open sqlite index", err)
	}

	// One connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteIndex{
		db:         db,
		path:       path,
		maxResults: clampLimit(maxResults),
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS words (
		word TEXT PRIMARY KEY,
		rank INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_words_rank ON words(rank);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add inserts words in one transaction.
func (s *SQLiteIndex) Add(ctx context.Context, words []string) error {
	words = NormalizeWords(words)
	if len(words) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("index is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO words (word, rank)
		 VALUES (?, (SELECT COALESCE(MAX(rank), 0) + 1 FROM words))`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range words {
		if _, err := stmt.ExecContext(ctx, w); err != nil {
			return fmt.Errorf("failed to insert word %s: %w", w, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// likeEscaper escapes LIKE wildcards so the query is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Lookup returns words starting with the normalized query.
func (s *SQLiteIndex) Lookup(ctx context.Context, query string) (Result, error) {
	q := Normalize(query)
	if q == "" {
		return Result{Items: []string{}}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Result{}, fmt.Errorf("index is closed")
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT word FROM words WHERE word LIKE ? ESCAPE '\' ORDER BY rank LIMIT ?`,
		likeEscaper.Replace(q)+"%", s.maxResults)
	if err != nil {
		return Result{}, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	items := make([]string, 0, s.maxResults)
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return Result{}, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("search failed: %w", err)
	}
	return Result{Items: items, Latency: time.Since(start)}, nil
}

// Count returns the number of indexed words.
func (s *SQLiteIndex) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("index is closed")
	}
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM words").Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

var _ Index = (*SQLiteIndex)(nil)
