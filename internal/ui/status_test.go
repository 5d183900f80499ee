package ui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/typeahead/internal/telemetry"
)

func sampleStats() StatsInfo {
	return StatsInfo{
		Backend: "wordlist",
		Words:   16,
		Days:    7,
		Telemetry: &telemetry.Snapshot{
			OutcomeCounts: map[telemetry.Outcome]int64{
				telemetry.OutcomeDispatched: 20,
				telemetry.OutcomeSuccess:    14,
				telemetry.OutcomeError:      1,
				telemetry.OutcomeStale:      5,
			},
			TopQueries:          []telemetry.QueryCount{{Query: "re", Count: 9}, {Query: "ty", Count: 3}},
			ZeroResultQueries:   []string{"zz", "qq", "zz"},
			LatencyDistribution: map[telemetry.LatencyBucket]int64{telemetry.BucketP10: 12, telemetry.BucketP100: 2},
			Since:               time.Now().AddDate(0, 0, -6),
		},
	}
}

func TestStatsRenderer_Render(t *testing.T) {
	// Given: a renderer without color
	buf := &bytes.Buffer{}
	r := NewStatsRenderer(buf, true)

	// When: rendering stats
	require.NoError(t, r.Render(sampleStats()))

	// Then: all sections are shown
	out := buf.String()
	assert.Contains(t, out, "Typeahead: wordlist")
	assert.Contains(t, out, "Words:       16")
	assert.Contains(t, out, "last 7 days")
	assert.Contains(t, out, "Dispatched: 20")
	assert.Contains(t, out, "Success:    14")
	assert.Contains(t, out, "Errors:     1")
	assert.Contains(t, out, "Stale:      5 (25.0%)")
	assert.Contains(t, out, "<10ms     12")
	assert.Contains(t, out, "#1 re")
	assert.Contains(t, out, "#2 ty")
	assert.NotContains(t, out, "\x1b[")
}

func TestStatsRenderer_Render_ZeroResultsDeduplicated(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatsRenderer(buf, true)

	require.NoError(t, r.Render(sampleStats()))

	out := buf.String()
	assert.Contains(t, out, "No suggestions for:\n    qq\n    zz\n")
}

func TestStatsRenderer_Render_TelemetryDisabled(t *testing.T) {
	// Given: stats without telemetry
	buf := &bytes.Buffer{}
	r := NewStatsRenderer(buf, true)

	// When: rendering
	require.NoError(t, r.Render(StatsInfo{Backend: "bleve", IndexPath: "/tmp/idx", IndexSize: 2048}))

	// Then: the index is listed and telemetry reported off
	out := buf.String()
	assert.Contains(t, out, "Index:       /tmp/idx (2.0 KB)")
	assert.Contains(t, out, "Telemetry:   disabled")
}

func TestStatsRenderer_RenderJSON(t *testing.T) {
	// Given: a renderer
	buf := &bytes.Buffer{}
	r := NewStatsRenderer(buf, true)

	// When: rendering JSON
	require.NoError(t, r.RenderJSON(sampleStats()))

	// Then: output is valid JSON with the counts
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "wordlist", decoded["backend"])

	tel, ok := decoded["telemetry"].(map[string]any)
	require.True(t, ok)
	counts := tel["outcome_counts"].(map[string]any)
	assert.Equal(t, float64(5), counts["stale"])
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(time.Time{}))
	assert.Equal(t, "just now", formatTime(time.Now()))
	assert.Equal(t, "5 minutes ago", formatTime(time.Now().Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "1 hour ago", formatTime(time.Now().Add(-time.Hour-time.Second)))
}
