package telemetry

import (
	"fmt"
	"time"
)

// Report rebuilds a Snapshot from persisted counts covering the last days
// days up to now. limit bounds the top and zero-result query lists.
func Report(store Store, days int, now time.Time, limit int) (*Snapshot, error) {
	if days <= 0 {
		days = 1
	}
	if limit <= 0 {
		limit = 10
	}

	from := now.AddDate(0, 0, -(days - 1)).Format("2006-01-02")
	to := now.Format("2006-01-02")

	outcomes, err := store.GetOutcomeCounts(from, to)
	if err != nil {
		return nil, fmt.Errorf("load outcome counts: %w", err)
	}
	latencies, err := store.GetLatencyCounts(from, to)
	if err != nil {
		return nil, fmt.Errorf("load latency counts: %w", err)
	}
	top, err := store.GetTopQueries(limit)
	if err != nil {
		return nil, fmt.Errorf("load top queries: %w", err)
	}
	zero, err := store.GetZeroResultQueries(limit)
	if err != nil {
		return nil, fmt.Errorf("load zero-result queries: %w", err)
	}

	since, _ := time.ParseInLocation("2006-01-02", from, now.Location())
	return &Snapshot{
		OutcomeCounts:       outcomes,
		TopQueries:          top,
		ZeroResultQueries:   zero,
		LatencyDistribution: latencies,
		Since:               since,
	}, nil
}
