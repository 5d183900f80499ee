package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Aman-CERP/typeahead/internal/typeahead"
)

// List hints shown instead of suggestions.
const (
	HintEmptyQuery = "Type to see suggestions."
	HintWaiting    = "Waiting for typing to pause..."
	HintLoading    = "Loading..."
	HintNoResults  = "No suggestions."
	HintError      = "Lookup failed. Keep typing or retry."
)

// StatusLine renders the one-line status for s:
//
//	status: idle | loading... | error (msg) | ok (N items, Xms)
func StatusLine(s typeahead.State) string {
	switch s.Phase {
	case typeahead.PhaseLoading:
		return "status: loading..."
	case typeahead.PhaseError:
		return fmt.Sprintf("status: error (%s)", s.ErrorMessage)
	case typeahead.PhaseSuccess:
		return fmt.Sprintf("status: ok (%d %s, %s)", len(s.Items), plural(len(s.Items), "item", "items"), FormatLatency(s))
	default:
		return "status: idle"
	}
}

// Hint returns the placeholder text for states without suggestions to list,
// or "" when s has items.
func Hint(s typeahead.State) string {
	switch s.Phase {
	case typeahead.PhaseLoading:
		return HintLoading
	case typeahead.PhaseError:
		return HintError
	case typeahead.PhaseSuccess:
		if len(s.Items) == 0 {
			return HintNoResults
		}
		return ""
	default:
		if strings.TrimSpace(s.Query) == "" {
			return HintEmptyQuery
		}
		return HintWaiting
	}
}

// ItemLine renders one suggestion row, ranked from 1.
func ItemLine(index int, word string) string {
	return fmt.Sprintf("#%d %s", index+1, word)
}

// FormatLatency renders the last latency in whole milliseconds, or "-ms"
// when none was recorded.
func FormatLatency(s typeahead.State) string {
	if !s.HasLatency {
		return "-ms"
	}
	return fmt.Sprintf("%dms", s.LastLatency.Round(time.Millisecond).Milliseconds())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
