// Package sequencer mints monotonically increasing tokens so that only the
// most recently dispatched attempt may affect state.
package sequencer

import "sync/atomic"

// Token identifies one dispatched attempt. Zero is never minted.
type Token uint64

// Sequencer hands out tokens and answers whether a token is still current.
// The zero value is ready to use and safe for concurrent use.
type Sequencer struct {
	latest atomic.Uint64
}

// New returns a sequencer starting at zero.
func New() *Sequencer {
	return &Sequencer{}
}

// Next mints a new token and makes it the current one.
func (s *Sequencer) Next() Token {
	return Token(s.latest.Add(1))
}

// IsCurrent reports whether t is the latest minted token.
func (s *Sequencer) IsCurrent(t Token) bool {
	return t != 0 && uint64(t) == s.latest.Load()
}

// Invalidate advances the counter so that no token minted so far is current.
func (s *Sequencer) Invalidate() {
	s.latest.Add(1)
}

// Current returns the latest counter value.
func (s *Sequencer) Current() Token {
	return Token(s.latest.Load())
}
