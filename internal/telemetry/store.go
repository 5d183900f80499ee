package telemetry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// maxZeroResultRows bounds the persisted zero-result log.
const maxZeroResultRows = 100

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	ownsDB bool
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (or creates) a telemetry database at path.
// The returned store owns the connection and closes it on Close.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create telemetry directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, ownsDB: true}, nil
}

// NewSQLiteStore wraps an existing connection. The schema must exist
// (see InitSchema) and the caller keeps ownership of db.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	return &SQLiteStore{db: db}, nil
}

// InitSchema creates the telemetry tables if they don't exist.
func InitSchema(db *sql.DB) error {
	schema := `
	-- Lookup outcomes (aggregated daily)
	CREATE TABLE IF NOT EXISTS lookup_outcome_stats (
		date TEXT NOT NULL,
		outcome TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, outcome)
	);

	-- Dispatched query prefixes (with frequency count)
	CREATE TABLE IF NOT EXISTS lookup_queries (
		query TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 1,
		last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_lookup_queries_count ON lookup_queries(count DESC);

	-- Zero-result queries (bounded log)
	CREATE TABLE IF NOT EXISTS zero_result_queries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Success latency histogram
	CREATE TABLE IF NOT EXISTS lookup_latency_stats (
		date TEXT NOT NULL,
		bucket TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, bucket)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create telemetry schema: %w", err)
	}
	return nil
}

// upsertCounts runs stmtSQL once per entry inside one transaction.
func (s *SQLiteStore) upsertCounts(stmtSQL string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(stmtSQL)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return fmt.Errorf("upsert count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SaveOutcomeCounts adds daily outcome counts.
func (s *SQLiteStore) SaveOutcomeCounts(date string, counts map[Outcome]int64) error {
	rows := make([][]any, 0, len(counts))
	for outcome, count := range counts {
		rows = append(rows, []any{date, string(outcome), count})
	}
	return s.upsertCounts(`
		INSERT INTO lookup_outcome_stats (date, outcome, count)
		VALUES (?, ?, ?)
		ON CONFLICT(date, outcome) DO UPDATE SET count = count + excluded.count
	`, rows)
}

// GetOutcomeCounts sums outcome counts over a date range.
func (s *SQLiteStore) GetOutcomeCounts(from, to string) (map[Outcome]int64, error) {
	rows, err := s.db.Query(`
		SELECT outcome, SUM(count) as total
		FROM lookup_outcome_stats
		WHERE date >= ? AND date <= ?
		GROUP BY outcome
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query outcome counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[Outcome]int64)
	for rows.Next() {
		var outcome string
		var count int64
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[Outcome(outcome)] = count
	}
	return counts, rows.Err()
}

// UpsertQueryCounts adds to query frequency counts.
func (s *SQLiteStore) UpsertQueryCounts(queries map[string]int64) error {
	rows := make([][]any, 0, len(queries))
	for q, count := range queries {
		rows = append(rows, []any{q, count})
	}
	return s.upsertCounts(`
		INSERT INTO lookup_queries (query, count, last_seen)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(query) DO UPDATE SET
			count = count + excluded.count,
			last_seen = CURRENT_TIMESTAMP
	`, rows)
}

// GetTopQueries returns the most frequent queries.
func (s *SQLiteStore) GetTopQueries(limit int) ([]QueryCount, error) {
	rows, err := s.db.Query(`
		SELECT query, count
		FROM lookup_queries
		ORDER BY count DESC, query ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top queries: %w", err)
	}
	defer rows.Close()

	var out []QueryCount
	for rows.Next() {
		var qc QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, qc)
	}
	return out, rows.Err()
}

// AddZeroResultQuery appends to the zero-result log, keeping the newest
// maxZeroResultRows entries.
func (s *SQLiteStore) AddZeroResultQuery(query string, timestamp time.Time) error {
	if _, err := s.db.Exec(`
		INSERT INTO zero_result_queries (query, timestamp)
		VALUES (?, ?)
	`, query, timestamp); err != nil {
		return fmt.Errorf("insert zero-result query: %w", err)
	}

	if _, err := s.db.Exec(`
		DELETE FROM zero_result_queries
		WHERE id NOT IN (
			SELECT id FROM zero_result_queries
			ORDER BY id DESC
			LIMIT ?
		)
	`, maxZeroResultRows); err != nil {
		return fmt.Errorf("trim zero-result queries: %w", err)
	}
	return nil
}

// GetZeroResultQueries returns recent zero-result queries, newest first.
func (s *SQLiteStore) GetZeroResultQueries(limit int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT query
		FROM zero_result_queries
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query zero-result queries: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// SaveLatencyCounts adds daily latency histogram counts.
func (s *SQLiteStore) SaveLatencyCounts(date string, counts map[LatencyBucket]int64) error {
	rows := make([][]any, 0, len(counts))
	for bucket, count := range counts {
		rows = append(rows, []any{date, string(bucket), count})
	}
	return s.upsertCounts(`
		INSERT INTO lookup_latency_stats (date, bucket, count)
		VALUES (?, ?, ?)
		ON CONFLICT(date, bucket) DO UPDATE SET count = count + excluded.count
	`, rows)
}

// GetLatencyCounts sums the latency histogram over a date range.
func (s *SQLiteStore) GetLatencyCounts(from, to string) (map[LatencyBucket]int64, error) {
	rows, err := s.db.Query(`
		SELECT bucket, SUM(count) as total
		FROM lookup_latency_stats
		WHERE date >= ? AND date <= ?
		GROUP BY bucket
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query latency counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[LatencyBucket]int64)
	for rows.Next() {
		var bucket string
		var count int64
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[LatencyBucket(bucket)] = count
	}
	return counts, rows.Err()
}

// Close closes the connection if the store opened it.
func (s *SQLiteStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
