package mcp

// SuggestInput defines the input schema for the suggest tool.
type SuggestInput struct {
	Query string `json:"query" jsonschema:"the prefix to complete"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of suggestions, default 7"`
}

// SuggestOutput defines the output schema for the suggest tool.
type SuggestOutput struct {
	Query     string   `json:"query" jsonschema:"the prefix that was completed"`
	Items     []string `json:"items" jsonschema:"suggestions, best first"`
	LatencyMS float64  `json:"latency_ms" jsonschema:"backend latency in milliseconds"`
}

// StatsInput defines the input schema for the lookup_stats tool (no parameters).
type StatsInput struct{}

// StatsOutput defines the output schema for the lookup_stats tool.
type StatsOutput struct {
	Backend           string           `json:"backend"`
	Dispatched        int64            `json:"dispatched"`
	Success           int64            `json:"success"`
	Errors            int64            `json:"errors"`
	Stale             int64            `json:"stale"`
	StaleRate         float64          `json:"stale_rate"`
	TopQueries        []QueryCount     `json:"top_queries"`
	ZeroResultQueries []string         `json:"zero_result_queries"`
	Latency           map[string]int64 `json:"latency_distribution"`
	Since             string           `json:"since"`
}

// QueryCount is a query and how often it was looked up.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}
