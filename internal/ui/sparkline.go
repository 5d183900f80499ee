package ui

import (
	"strings"
	"time"
)

// SparklineChars are the block characters used for eight bar heights.
var SparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline keeps the most recent samples in a ring and renders them as
// block characters scaled to the largest visible sample.
type Sparkline struct {
	samples []float64
	head    int
	count   int
}

// NewSparkline creates a sparkline holding up to width samples.
func NewSparkline(width int) *Sparkline {
	if width <= 0 {
		width = 30
	}
	return &Sparkline{samples: make([]float64, width)}
}

// Add appends a sample, evicting the oldest when full.
func (s *Sparkline) Add(value float64) {
	if value < 0 {
		value = 0
	}
	s.samples[s.head] = value
	s.head = (s.head + 1) % len(s.samples)
	if s.count < len(s.samples) {
		s.count++
	}
}

// AddLatency appends a latency sample in milliseconds.
func (s *Sparkline) AddLatency(d time.Duration) {
	s.Add(float64(d) / float64(time.Millisecond))
}

// Values returns the samples oldest first.
func (s *Sparkline) Values() []float64 {
	out := make([]float64, 0, s.count)
	start := (s.head - s.count + len(s.samples)) % len(s.samples)
	for i := 0; i < s.count; i++ {
		out = append(out, s.samples[(start+i)%len(s.samples)])
	}
	return out
}

// Render returns the newest samples that fit in width columns, right-aligned
// and left-padded with spaces.
func (s *Sparkline) Render(width int) string {
	if width <= 0 {
		width = len(s.samples)
	}

	values := s.Values()
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var peak float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}

	var sb strings.Builder
	sb.Grow(width * 3)
	sb.WriteString(strings.Repeat(" ", width-len(values)))
	for _, v := range values {
		idx := 0
		if peak > 0 {
			idx = int(v / peak * float64(len(SparklineChars)-1))
		}
		sb.WriteRune(SparklineChars[idx])
	}
	return sb.String()
}

// Count returns the number of samples held.
func (s *Sparkline) Count() int {
	return s.count
}

// Clear drops all samples.
func (s *Sparkline) Clear() {
	s.head = 0
	s.count = 0
}
