package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
	"github.com/Aman-CERP/typeahead/pkg/version"
)

const (
	serverName = "typeahead"

	// MaxLimit bounds the limit argument of the suggest tool.
	MaxLimit = 50
)

// Server is the MCP server for typeahead.
// It exposes the configured lookup stack to AI clients.
type Server struct {
	mcp        *mcp.Server
	lookup     suggest.Lookup
	backend    string
	maxResults int
	logger     *slog.Logger

	// Lookup telemetry (optional, set via SetMetrics)
	metrics *telemetry.Metrics

	mu sync.RWMutex
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBackendName sets the backend name reported by lookup_stats.
func WithBackendName(name string) Option {
	return func(s *Server) {
		s.backend = name
	}
}

// WithMaxResults sets the default suggestion limit.
func WithMaxResults(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

var tools = []ToolInfo{
	{
		Name:        "suggest",
		Description: "Complete a prefix. Returns up to `limit` suggestions, best first, from the configured word list or index.",
	},
	{
		Name:        "lookup_stats",
		Description: "Lookup telemetry for this session: outcome counts, stale rate, top queries and prefixes with no suggestions.",
	},
}

// NewServer creates a new MCP server around lookup.
func NewServer(lookup suggest.Lookup, opts ...Option) (*Server, error) {
	if lookup == nil {
		return nil, errors.New("lookup is required")
	}

	s := &Server{
		lookup:     lookup,
		backend:    "wordlist",
		maxResults: suggest.DefaultMaxResults,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// SetMetrics sets the telemetry collector. Lookups served over MCP are
// recorded into it, and the metrics resource is registered.
func (s *Server) SetMetrics(m *telemetry.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m

	if m != nil {
		s.registerMetricsResource()
	}
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return serverName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	out := make([]ToolInfo, len(tools))
	copy(out, tools)
	return out
}

// CallTool invokes a tool by name with JSON-decoded arguments and returns
// its markdown rendering.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "suggest":
		input := SuggestInput{}
		input.Query, _ = args["query"].(string)
		if l, ok := args["limit"].(float64); ok {
			input.Limit = int(l)
		}
		out, err := s.suggest(ctx, input)
		if err != nil {
			return "", err
		}
		return FormatSuggestions(out.Query, out.Items, out.LatencyMS), nil

	case "lookup_stats":
		out, err := s.stats()
		if err != nil {
			return "", err
		}
		return FormatStats(out), nil

	default:
		return "", NewMethodNotFoundError(name)
	}
}

// suggest validates input and runs one lookup.
func (s *Server) suggest(ctx context.Context, input SuggestInput) (*SuggestOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, NewInvalidParamsError("query cannot be empty or whitespace only")
	}
	limit := clampLimit(input.Limit, s.maxResults, 1, MaxLimit)

	requestID := uuid.NewString()
	start := time.Now()

	s.record(telemetry.LookupEvent{Query: input.Query, Outcome: telemetry.OutcomeDispatched})

	res, err := s.lookup.Lookup(ctx, input.Query)
	duration := time.Since(start)
	if err != nil {
		s.record(telemetry.LookupEvent{Query: input.Query, Outcome: telemetry.OutcomeError, Latency: duration})
		s.logger.Warn("suggest failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	items := res.Items
	if items == nil {
		items = []string{}
	}
	if len(items) > limit {
		items = items[:limit]
	}
	latency := res.Latency
	if latency <= 0 {
		latency = duration
	}

	s.record(telemetry.LookupEvent{
		Query:       input.Query,
		Outcome:     telemetry.OutcomeSuccess,
		ResultCount: len(items),
		Latency:     latency,
	})
	s.logger.Debug("suggest completed",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(items)))

	return &SuggestOutput{
		Query:     input.Query,
		Items:     items,
		LatencyMS: float64(latency) / float64(time.Millisecond),
	}, nil
}

// stats converts the telemetry snapshot to tool output.
func (s *Server) stats() (*StatsOutput, error) {
	s.mu.RLock()
	metrics := s.metrics
	s.mu.RUnlock()

	if metrics == nil {
		return nil, MapError(ErrMetricsDisabled)
	}

	snap := metrics.Snapshot()
	out := &StatsOutput{
		Backend:           s.backend,
		Dispatched:        snap.Dispatched(),
		Success:           snap.OutcomeCounts[telemetry.OutcomeSuccess],
		Errors:            snap.OutcomeCounts[telemetry.OutcomeError],
		Stale:             snap.OutcomeCounts[telemetry.OutcomeStale],
		StaleRate:         snap.StaleRate(),
		TopQueries:        make([]QueryCount, 0, len(snap.TopQueries)),
		ZeroResultQueries: snap.ZeroResultQueries,
		Latency:           make(map[string]int64, len(snap.LatencyDistribution)),
		Since:             snap.Since.Format(time.RFC3339),
	}
	for _, q := range snap.TopQueries {
		out.TopQueries = append(out.TopQueries, QueryCount{Query: q.Query, Count: q.Count})
	}
	for bucket, count := range snap.LatencyDistribution {
		out.Latency[string(bucket)] = count
	}
	if out.ZeroResultQueries == nil {
		out.ZeroResultQueries = []string{}
	}
	return out, nil
}

func (s *Server) record(ev telemetry.LookupEvent) {
	s.mu.RLock()
	metrics := s.metrics
	s.mu.RUnlock()

	if metrics != nil {
		metrics.Record(ev)
	}
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[0].Name,
		Description: tools[0].Description,
	}, s.mcpSuggestHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        tools[1].Name,
		Description: tools[1].Description,
	}, s.mcpStatsHandler)

	s.logger.Debug("MCP tools registered", slog.Int("count", len(tools)))
}

// mcpSuggestHandler is the MCP SDK handler for the suggest tool.
func (s *Server) mcpSuggestHandler(ctx context.Context, _ *mcp.CallToolRequest, input SuggestInput) (
	*mcp.CallToolResult,
	*SuggestOutput,
	error,
) {
	out, err := s.suggest(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

// mcpStatsHandler is the MCP SDK handler for the lookup_stats tool.
func (s *Server) mcpStatsHandler(_ context.Context, _ *mcp.CallToolRequest, _ StatsInput) (
	*mcp.CallToolResult,
	*StatsOutput,
	error,
) {
	out, err := s.stats()
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

// Serve starts the MCP server on the given transport. Only stdio is
// supported. Blocks until ctx is cancelled or the client disconnects.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "", "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error",
				slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// clampLimit returns limit bounded to [lo, hi], or def when limit is unset.
func clampLimit(limit, def, lo, hi int) int {
	if limit <= 0 {
		limit = def
	}
	if limit < lo {
		return lo
	}
	if limit > hi {
		return hi
	}
	return limit
}
