// Package telemetry records lookup outcomes for the typeahead orchestrator.
// All telemetry data is stored locally - no external reporting.
package telemetry

import (
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// =============================================================================
// Outcomes
// =============================================================================

// Outcome classifies what happened to a dispatched lookup.
type Outcome string

const (
	// OutcomeDispatched is recorded when a lookup is issued.
	OutcomeDispatched Outcome = "dispatched"
	// OutcomeSuccess is a current lookup that produced suggestions.
	OutcomeSuccess Outcome = "success"
	// OutcomeError is a current lookup that failed.
	OutcomeError Outcome = "error"
	// OutcomeStale is a lookup that settled after being superseded.
	OutcomeStale Outcome = "stale"
)

// =============================================================================
// Latency Buckets
// =============================================================================

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// =============================================================================
// Lookup Event
// =============================================================================

// LookupEvent is one telemetry observation from the orchestrator.
type LookupEvent struct {
	Query       string
	Outcome     Outcome
	ResultCount int
	Latency     time.Duration
	Timestamp   time.Time
}

// =============================================================================
// Circular Buffer
// =============================================================================

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a new circular buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add adds an item to the buffer. If full, the oldest item is evicted.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Items returns all items in FIFO order (oldest first).
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.items[:b.size])
	} else {
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// Size returns the current number of items in the buffer.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// =============================================================================
// Snapshot
// =============================================================================

// QueryCount is a query prefix and how often it was dispatched.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Snapshot is an immutable view of the collected metrics.
type Snapshot struct {
	OutcomeCounts       map[Outcome]int64       `json:"outcome_counts"`
	TopQueries          []QueryCount            `json:"top_queries"`
	ZeroResultQueries   []string                `json:"zero_result_queries"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	Since               time.Time               `json:"since"`
}

// Dispatched returns the number of issued lookups.
func (s *Snapshot) Dispatched() int64 {
	return s.OutcomeCounts[OutcomeDispatched]
}

// StaleRate returns the fraction of dispatched lookups that were discarded.
func (s *Snapshot) StaleRate() float64 {
	if s.Dispatched() == 0 {
		return 0
	}
	return float64(s.OutcomeCounts[OutcomeStale]) / float64(s.Dispatched())
}

// =============================================================================
// Store
// =============================================================================

// Store persists metric deltas.
type Store interface {
	// SaveOutcomeCounts adds daily outcome counts.
	SaveOutcomeCounts(date string, counts map[Outcome]int64) error

	// GetOutcomeCounts sums outcome counts over a date range.
	GetOutcomeCounts(from, to string) (map[Outcome]int64, error)

	// UpsertQueryCounts adds to query frequency counts.
	UpsertQueryCounts(queries map[string]int64) error

	// GetTopQueries returns the most frequent queries.
	GetTopQueries(limit int) ([]QueryCount, error)

	// AddZeroResultQuery appends to the bounded zero-result log.
	AddZeroResultQuery(query string, timestamp time.Time) error

	// GetZeroResultQueries returns recent zero-result queries, newest first.
	GetZeroResultQueries(limit int) ([]string, error)

	// SaveLatencyCounts adds daily latency histogram counts.
	SaveLatencyCounts(date string, counts map[LatencyBucket]int64) error

	// GetLatencyCounts sums the latency histogram over a date range.
	GetLatencyCounts(from, to string) (map[LatencyBucket]int64, error)

	// Close releases resources.
	Close() error
}

// =============================================================================
// Metrics
// =============================================================================

// Config configures a Metrics collector.
type Config struct {
	TopQueriesCapacity  int           // Max distinct queries tracked (default: 100)
	ZeroResultsCapacity int           // Max zero-result queries kept (default: 100)
	FlushInterval       time.Duration // Auto-flush period (0 = no auto-flush)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TopQueriesCapacity:  100,
		ZeroResultsCapacity: 100,
		FlushInterval:       30 * time.Second,
	}
}

// Metrics aggregates lookup events in memory and periodically flushes the
// counts accumulated since the previous flush to a Store.
// Safe for concurrent use.
type Metrics struct {
	mu sync.Mutex

	outcomes    map[Outcome]int64
	queries     *lru.Cache[string, int64]
	zeroResults *CircularBuffer[string]
	latencies   map[LatencyBucket]int64
	startTime   time.Time

	// Deltas since the last flush.
	pendingOutcomes  map[Outcome]int64
	pendingQueries   map[string]int64
	pendingLatencies map[LatencyBucket]int64
	pendingZero      []LookupEvent

	store       Store
	flushTicker *time.Ticker
	stopCh      chan struct{}
	closed      bool
}

// New creates a metrics collector with default configuration.
// If store is nil, metrics are only kept in memory.
func New(store Store) *Metrics {
	return NewWithConfig(store, DefaultConfig())
}

// NewWithConfig creates a metrics collector with custom configuration.
func NewWithConfig(store Store, cfg Config) *Metrics {
	if cfg.TopQueriesCapacity <= 0 {
		cfg.TopQueriesCapacity = 100
	}
	if cfg.ZeroResultsCapacity <= 0 {
		cfg.ZeroResultsCapacity = 100
	}

	queries, _ := lru.New[string, int64](cfg.TopQueriesCapacity)

	m := &Metrics{
		outcomes:         make(map[Outcome]int64),
		queries:          queries,
		zeroResults:      NewCircularBuffer[string](cfg.ZeroResultsCapacity),
		latencies:        make(map[LatencyBucket]int64),
		startTime:        time.Now(),
		pendingOutcomes:  make(map[Outcome]int64),
		pendingQueries:   make(map[string]int64),
		pendingLatencies: make(map[LatencyBucket]int64),
		store:            store,
		stopCh:           make(chan struct{}),
	}

	if cfg.FlushInterval > 0 && store != nil {
		m.flushTicker = time.NewTicker(cfg.FlushInterval)
		go m.flushLoop()
	}

	return m
}

func (m *Metrics) flushLoop() {
	for {
		select {
		case <-m.flushTicker.C:
			_ = m.Flush()
		case <-m.stopCh:
			return
		}
	}
}

// Record captures one lookup event. Never blocks on I/O.
func (m *Metrics) Record(ev LookupEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	m.outcomes[ev.Outcome]++
	m.pendingOutcomes[ev.Outcome]++

	switch ev.Outcome {
	case OutcomeDispatched:
		q := strings.ToLower(strings.TrimSpace(ev.Query))
		if q != "" {
			count, _ := m.queries.Get(q)
			m.queries.Add(q, count+1)
			m.pendingQueries[q]++
		}
	case OutcomeSuccess:
		bucket := LatencyToBucket(ev.Latency)
		m.latencies[bucket]++
		m.pendingLatencies[bucket]++
		if ev.ResultCount == 0 {
			m.zeroResults.Add(ev.Query)
			m.pendingZero = append(m.pendingZero, ev)
		}
	}
}

// Snapshot returns current metrics for reporting.
func (m *Metrics) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	outcomes := make(map[Outcome]int64, len(m.outcomes))
	for k, v := range m.outcomes {
		outcomes[k] = v
	}

	var top []QueryCount
	for _, key := range m.queries.Keys() {
		if count, ok := m.queries.Peek(key); ok {
			top = append(top, QueryCount{Query: key, Count: count})
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Query < top[j].Query
	})

	latencies := make(map[LatencyBucket]int64, len(m.latencies))
	for k, v := range m.latencies {
		latencies[k] = v
	}

	return &Snapshot{
		OutcomeCounts:       outcomes,
		TopQueries:          top,
		ZeroResultQueries:   m.zeroResults.Items(),
		LatencyDistribution: latencies,
		Since:               m.startTime,
	}
}

// Flush persists counts accumulated since the last flush.
// Safe to call even if no store is configured.
func (m *Metrics) Flush() error {
	if m.store == nil {
		return nil
	}

	m.mu.Lock()
	outcomes := m.pendingOutcomes
	queries := m.pendingQueries
	latencies := m.pendingLatencies
	zero := m.pendingZero
	m.pendingOutcomes = make(map[Outcome]int64)
	m.pendingQueries = make(map[string]int64)
	m.pendingLatencies = make(map[LatencyBucket]int64)
	m.pendingZero = nil
	m.mu.Unlock()

	today := time.Now().Format("2006-01-02")

	if err := m.store.SaveOutcomeCounts(today, outcomes); err != nil {
		return err
	}
	if err := m.store.UpsertQueryCounts(queries); err != nil {
		return err
	}
	if err := m.store.SaveLatencyCounts(today, latencies); err != nil {
		return err
	}
	for _, ev := range zero {
		if err := m.store.AddZeroResultQuery(ev.Query, ev.Timestamp); err != nil {
			return err
		}
	}
	return nil
}

// Close stops auto-flush, flushes once more and closes the store.
func (m *Metrics) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	if m.flushTicker != nil {
		m.flushTicker.Stop()
		close(m.stopCh)
	}

	if err := m.Flush(); err != nil {
		return err
	}
	if m.store != nil {
		return m.store.Close()
	}
	return nil
}
