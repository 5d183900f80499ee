package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MetricsURI is the URI of the lookup metrics resource.
const MetricsURI = "typeahead://metrics"

// registerMetricsResource registers the lookup metrics resource.
func (s *Server) registerMetricsResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "lookup_metrics",
			URI:         MetricsURI,
			Description: "Lookup telemetry: outcomes, stale rate, top queries",
			MIMEType:    "application/json",
		},
		s.readMetrics,
	)
}

// readMetrics serves the metrics resource as JSON.
func (s *Server) readMetrics(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	out, err := s.stats()
	if err != nil {
		return nil, err
	}

	content, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      MetricsURI,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}
