package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Aman-CERP/typeahead/internal/telemetry"
)

// StatsInfo describes the lookup stack and its recorded telemetry.
type StatsInfo struct {
	Backend   string              `json:"backend"`
	Words     int                 `json:"words,omitempty"`
	IndexPath string              `json:"index_path,omitempty"`
	IndexSize int64               `json:"index_size,omitempty"`
	Days      int                 `json:"days"`
	Telemetry *telemetry.Snapshot `json:"telemetry,omitempty"`
}

// StatsRenderer displays lookup statistics.
type StatsRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatsRenderer creates a stats renderer.
func NewStatsRenderer(out io.Writer, noColor bool) *StatsRenderer {
	return &StatsRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays stats to the terminal.
func (r *StatsRenderer) Render(info StatsInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Typeahead: "+info.Backend))

	if info.Words > 0 {
		_, _ = fmt.Fprintf(r.out, "  Words:       %d\n", info.Words)
	}
	if info.IndexPath != "" {
		_, _ = fmt.Fprintf(r.out, "  Index:       %s (%s)\n", info.IndexPath, FormatBytes(info.IndexSize))
	}

	snap := info.Telemetry
	if snap == nil {
		_, _ = fmt.Fprintln(r.out, "  Telemetry:   disabled")
		return nil
	}

	_, _ = fmt.Fprintln(r.out)
	_, _ = fmt.Fprintf(r.out, "  Lookups (last %d %s, since %s):\n", info.Days, plural(info.Days, "day", "days"), formatTime(snap.Since))
	_, _ = fmt.Fprintf(r.out, "    Dispatched: %d\n", snap.Dispatched())
	_, _ = fmt.Fprintf(r.out, "    Success:    %s\n", r.styles.Success.Render(fmt.Sprint(snap.OutcomeCounts[telemetry.OutcomeSuccess])))
	_, _ = fmt.Fprintf(r.out, "    Errors:     %s\n", r.styles.Error.Render(fmt.Sprint(snap.OutcomeCounts[telemetry.OutcomeError])))
	_, _ = fmt.Fprintf(r.out, "    Stale:      %d (%.1f%%)\n", snap.OutcomeCounts[telemetry.OutcomeStale], snap.StaleRate()*100)

	if len(snap.LatencyDistribution) > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "  Latency:")
		for _, b := range []telemetry.LatencyBucket{
			telemetry.BucketP10, telemetry.BucketP50, telemetry.BucketP100,
			telemetry.BucketP500, telemetry.BucketP1000,
		} {
			_, _ = fmt.Fprintf(r.out, "    %-9s %d\n", bucketLabel(b), snap.LatencyDistribution[b])
		}
	}

	if len(snap.TopQueries) > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "  Top queries:")
		for i, q := range snap.TopQueries {
			_, _ = fmt.Fprintf(r.out, "    %s %-20s %d\n", r.styles.Rank.Render(fmt.Sprintf("#%d", i+1)), q.Query, q.Count)
		}
	}

	if len(snap.ZeroResultQueries) > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "  No suggestions for:")
		seen := make(map[string]bool)
		var queries []string
		for _, q := range snap.ZeroResultQueries {
			if !seen[q] {
				seen[q] = true
				queries = append(queries, q)
			}
		}
		sort.Strings(queries)
		for _, q := range queries {
			_, _ = fmt.Fprintf(r.out, "    %s\n", q)
		}
	}

	return nil
}

// RenderJSON outputs stats as JSON.
func (r *StatsRenderer) RenderJSON(info StatsInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func bucketLabel(b telemetry.LatencyBucket) string {
	switch b {
	case telemetry.BucketP10:
		return "<10ms"
	case telemetry.BucketP50:
		return "10-50ms"
	case telemetry.BucketP100:
		return "50-100ms"
	case telemetry.BucketP500:
		return "100-500ms"
	default:
		return ">=500ms"
	}
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d %s ago", int(diff.Minutes()), plural(int(diff.Minutes()), "minute", "minutes"))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d %s ago", int(diff.Hours()), plural(int(diff.Hours()), "hour", "hours"))
	default:
		return t.Format("2006-01-02")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
