package mcp

import (
	"fmt"
	"strings"
)

// FormatSuggestions formats suggestions as markdown.
func FormatSuggestions(query string, items []string, latencyMS float64) string {
	if len(items) == 0 {
		return fmt.Sprintf("No suggestions for \"%s\"", query)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Suggestions for \"%s\"\n\n", query))
	sb.WriteString(fmt.Sprintf("Found %d suggestion", len(items)))
	if len(items) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString(fmt.Sprintf(" in %.0fms\n\n", latencyMS))

	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. `%s`\n", i+1, item))
	}

	return sb.String()
}

// FormatStats formats lookup statistics as markdown.
func FormatStats(out *StatsOutput) string {
	var sb strings.Builder
	sb.WriteString("## Lookup Statistics\n\n")
	sb.WriteString(fmt.Sprintf("**Backend:** %s\n", out.Backend))
	sb.WriteString(fmt.Sprintf("**Since:** %s\n\n", out.Since))
	sb.WriteString("| Outcome | Count |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| dispatched | %d |\n", out.Dispatched))
	sb.WriteString(fmt.Sprintf("| success | %d |\n", out.Success))
	sb.WriteString(fmt.Sprintf("| error | %d |\n", out.Errors))
	sb.WriteString(fmt.Sprintf("| stale | %d |\n", out.Stale))
	sb.WriteString(fmt.Sprintf("\nStale rate: %.1f%%\n", out.StaleRate*100))

	if len(out.TopQueries) > 0 {
		sb.WriteString("\n### Top queries\n\n")
		for _, q := range out.TopQueries {
			sb.WriteString(fmt.Sprintf("- `%s` (%d)\n", q.Query, q.Count))
		}
	}
	if len(out.ZeroResultQueries) > 0 {
		sb.WriteString("\n### No suggestions\n\n")
		for _, q := range out.ZeroResultQueries {
			sb.WriteString(fmt.Sprintf("- `%s`\n", q))
		}
	}
	return sb.String()
}
