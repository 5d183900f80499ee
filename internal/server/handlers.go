package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
)

// handleSuggest handles GET /v1/suggest. A limit above the configured
// MaxResults is accepted but capped, and the applied cap is echoed back.
func (s *Server) handleSuggest(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		s.writeError(c, terrors.New(terrors.ErrCodeQueryEmpty, "q is required", nil).
			WithSuggestion("pass a prefix, e.g. /v1/suggest?q=re"))
		return
	}
	if len(query) > MaxQueryLength {
		s.writeError(c, terrors.New(terrors.ErrCodeQueryTooLong,
			fmt.Sprintf("q exceeds %d bytes", MaxQueryLength), nil))
		return
	}

	limit := s.cfg.MaxResults
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l < 1 || l > MaxLimit {
			s.writeError(c, terrors.New(terrors.ErrCodeInvalidLimit,
				fmt.Sprintf("limit must be between 1 and %d", MaxLimit), err))
			return
		}
		limit = min(l, s.cfg.MaxResults)
	}

	ctx := c.Request.Context()
	if s.cfg.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LookupTimeout)
		defer cancel()
	}

	s.record(telemetry.LookupEvent{Query: query, Outcome: telemetry.OutcomeDispatched})

	start := time.Now()
	res, err := s.lookup.Lookup(ctx, query)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && terrors.GetCode(err) == "" {
			err = terrors.LookupError("lookup timed out", err)
		}
		s.record(telemetry.LookupEvent{Query: query, Outcome: telemetry.OutcomeError, Latency: elapsed})
		s.logger.Warn("lookup_failed",
			slog.String("query", query),
			slog.String("code", terrors.GetCode(err)),
			slog.String("error", err.Error()),
			slog.String("request_id", RequestID(c)))
		s.writeError(c, err)
		return
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
		latency = elapsed
	}
	s.record(telemetry.LookupEvent{
		Query:       query,
		Outcome:     telemetry.OutcomeSuccess,
		ResultCount: len(items),
		Latency:     latency,
	})

	c.JSON(http.StatusOK, suggest.RemoteResponse{
		Query:     query,
		Items:     items,
		LatencyMS: float64(latency) / float64(time.Millisecond),
		Limit:     limit,
		RequestID: RequestID(c),
	})
}

// handleMetrics handles GET /v1/metrics.
func (s *Server) handleMetrics(c *gin.Context) {
	if s.snapshots == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "telemetry disabled"})
		return
	}
	c.JSON(http.StatusOK, s.snapshots.Snapshot())
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) record(ev telemetry.LookupEvent) {
	if s.recorder == nil {
		return
	}
	ev.Timestamp = time.Now()
	s.recorder.Record(ev)
}

// writeError writes err as a structured JSON body.
func (s *Server) writeError(c *gin.Context, err error) {
	body, jerr := terrors.FormatJSON(err)
	if jerr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(StatusFor(err), "application/json; charset=utf-8", body)
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch terrors.GetCode(err) {
	case terrors.ErrCodeLookupUnavailable:
		return http.StatusServiceUnavailable
	case terrors.ErrCodeLookupTimeout:
		return http.StatusGatewayTimeout
	case terrors.ErrCodeLookupCanceled:
		return 499
	}

	switch terrors.GetCategory(err) {
	case terrors.CategoryValidation:
		return http.StatusBadRequest
	case terrors.CategoryLookup:
		return http.StatusBadGateway
	case terrors.CategoryConfig, terrors.CategoryIO:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
