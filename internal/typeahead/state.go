package typeahead

import (
	"time"

	"github.com/Aman-CERP/typeahead/internal/sequencer"
)

// Phase is the lifecycle stage of the latest search attempt.
type Phase int

const (
	// PhaseIdle means no search is active.
	PhaseIdle Phase = iota
	// PhaseLoading means a lookup for the current query is in flight.
	PhaseLoading
	// PhaseSuccess means the latest lookup returned suggestions.
	PhaseSuccess
	// PhaseError means the latest lookup failed.
	PhaseError
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the orchestrator. Each transition
// builds a new value; subscribers receive their own copy.
type State struct {
	// Query is the latest raw input. A response never rolls it back.
	Query string `json:"query"`

	Phase Phase `json:"phase"`

	// Items is non-empty only in PhaseSuccess.
	Items []string `json:"items,omitempty"`

	// ErrorMessage is non-empty only in PhaseError.
	ErrorMessage string `json:"error,omitempty"`

	// LastLatency is meaningful only when HasLatency is true.
	LastLatency time.Duration `json:"last_latency,omitempty"`
	HasLatency  bool          `json:"has_latency"`

	// Token identifies the attempt this snapshot describes (0 when idle).
	Token sequencer.Token `json:"token"`
}

// clone returns a copy that shares no memory with s.
func (s State) clone() State {
	if s.Items != nil {
		items := make([]string, len(s.Items))
		copy(items, s.Items)
		s.Items = items
	}
	return s
}

// withQuery keeps the phase and result fields and replaces the query.
func (s State) withQuery(query string) State {
	s = s.clone()
	s.Query = query
	return s
}

func idleState(query string) State {
	return State{Query: query, Phase: PhaseIdle}
}

func loadingState(query string, token sequencer.Token) State {
	return State{Query: query, Phase: PhaseLoading, Token: token}
}

func successState(query string, token sequencer.Token, items []string, latency time.Duration) State {
	out := make([]string, len(items))
	copy(out, items)
	return State{
		Query:       query,
		Phase:       PhaseSuccess,
		Items:       out,
		LastLatency: latency,
		HasLatency:  true,
		Token:       token,
	}
}

func errorState(query string, token sequencer.Token, message string) State {
	if message == "" {
		message = "unknown error"
	}
	return State{Query: query, Phase: PhaseError, ErrorMessage: message, Token: token}
}
