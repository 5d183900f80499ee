package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
	"github.com/Aman-CERP/typeahead/pkg/version"
)

// RemoteResponse is the JSON body served by GET /v1/suggest.
type RemoteResponse struct {
	Query     string   `json:"query"`
	Items     []string `json:"items"`
	LatencyMS float64  `json:"latency_ms"`
	Limit     int      `json:"limit,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// Remote looks up suggestions from another typeahead server over HTTP.
// Calls pass through a circuit breaker so a dead server fails fast.
type Remote struct {
	endpoint   string
	maxResults int
	client     *http.Client
	breaker    *terrors.CircuitBreaker
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		if c != nil {
			r.client = c
		}
	}
}

// WithBreaker overrides the circuit breaker.
func WithBreaker(cb *terrors.CircuitBreaker) RemoteOption {
	return func(r *Remote) {
		if cb != nil {
			r.breaker = cb
		}
	}
}

// NewRemote creates a client for the server at baseURL
// (e.g. "http://localhost:8787").
func NewRemote(baseURL string, maxResults int, opts ...RemoteOption) (*Remote, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, terrors.ConfigError(fmt.Sprintf("invalid remote url: %q", baseURL), err).
			WithSuggestion("set backend.remote_url to something like http://localhost:8787")
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/v1/suggest"

	r := &Remote{
		endpoint:   u.String(),
		maxResults: clampLimit(maxResults),
		client:     &http.Client{Timeout: 10 * time.Second},
		breaker:    terrors.NewCircuitBreaker("remote"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Lookup issues GET /v1/suggest?q=<query>&limit=<n>.
func (r *Remote) Lookup(ctx context.Context, query string) (Result, error) {
	res, err := terrors.CircuitExecute(r.breaker, func() (Result, error) {
		return r.do(ctx, query)
	})
	if err == terrors.ErrCircuitOpen {
		return Result{}, terrors.New(terrors.ErrCodeLookupUnavailable, "suggestion service unavailable", err).
			WithDetail("endpoint", r.endpoint)
	}
	return res, err
}

func (r *Remote) do(ctx context.Context, query string) (Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(r.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, terrors.LookupError("network error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, terrors.New(terrors.ErrCodeLookupFailed,
			fmt.Sprintf("suggestion service returned %d", resp.StatusCode), nil).
			WithDetail("body", strings.TrimSpace(string(body)))
	}

	var body RemoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, terrors.LookupError("invalid response from suggestion service", err)
	}

	latency := time.Duration(body.LatencyMS * float64(time.Millisecond))
	if latency <= 0 {
		latency = time.Since(start)
	}
	items := body.Items
	if items == nil {
		items = []string{}
	}
	return Result{Items: items, Latency: latency}, nil
}

// Endpoint returns the resolved suggest URL.
func (r *Remote) Endpoint() string {
	return r.endpoint
}

var _ Lookup = (*Remote)(nil)
