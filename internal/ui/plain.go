package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Aman-CERP/typeahead/internal/typeahead"
)

// PlainRenderer writes each state as a small text block (for CI/pipes).
// Consecutive identical blocks are written once.
type PlainRenderer struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(out io.Writer) *PlainRenderer {
	return &PlainRenderer{out: out}
}

// Render implements typeahead.RenderFunc.
func (r *PlainRenderer) Render(s typeahead.State) {
	block := FormatPlain(s)

	r.mu.Lock()
	defer r.mu.Unlock()

	if block == r.last {
		return
	}
	r.last = block
	_, _ = io.WriteString(r.out, block)
}

// FormatPlain renders s as:
//
//	> query
//	status: ok (2 items, 131ms)
//	  #1 react
//	  #2 redux
func FormatPlain(s typeahead.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "> %s\n", s.Query)
	b.WriteString(StatusLine(s))
	b.WriteByte('\n')

	if hint := Hint(s); hint != "" {
		fmt.Fprintf(&b, "  %s\n", hint)
		return b.String()
	}
	for i, item := range s.Items {
		fmt.Fprintf(&b, "  %s\n", ItemLine(i, item))
	}
	return b.String()
}

// PlainFrontend reads one full input value per line:
//
//	text      set the query to text (debounced)
//	!text     select text as a suggestion (immediate)
//	#N        select the N-th listed suggestion
//	:clear    clear the query
//	:retry    retry the current query
//	:quit     stop
type PlainFrontend struct {
	ctrl     Controller
	cfg      Config
	renderer *PlainRenderer
}

// NewPlainFrontend creates a line-oriented front end.
func NewPlainFrontend(ctrl Controller, cfg Config) *PlainFrontend {
	return &PlainFrontend{
		ctrl:     ctrl,
		cfg:      cfg,
		renderer: NewPlainRenderer(cfg.Output),
	}
}

// Run implements Frontend. At end of input it waits for the last lookup to
// settle before returning.
func (f *PlainFrontend) Run(ctx context.Context) error {
	unsubscribe := f.ctrl.Subscribe(f.renderer.Render)
	defer unsubscribe()
	f.renderer.Render(f.ctrl.State())

	if f.cfg.Input == nil {
		return f.settle(ctx)
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(f.cfg.Input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := f.settle(ctx); err != nil {
					return err
				}
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := f.handle(line); quit {
				return nil
			}
		}
	}
}

// handle applies one input line and reports whether to stop.
func (f *PlainFrontend) handle(line string) bool {
	line = strings.TrimRight(line, "\r")

	switch {
	case line == ":quit" || line == ":q":
		return true
	case line == ":clear":
		f.ctrl.Clear()
	case line == ":retry":
		f.ctrl.Retry()
	case strings.HasPrefix(line, "!"):
		f.ctrl.SelectSuggestion(line[1:])
	case strings.HasPrefix(line, "#"):
		n, err := strconv.Atoi(line[1:])
		items := f.ctrl.State().Items
		if err != nil || n < 1 || n > len(items) {
			f.ctrl.SetQuery(line)
			return false
		}
		f.ctrl.SelectSuggestion(items[n-1])
	default:
		f.ctrl.SetQuery(line)
	}
	return false
}

// pendingReporter is implemented by controllers that can say whether a
// debounced query has yet to dispatch.
type pendingReporter interface {
	Pending() bool
}

// settle waits until no debounced query is pending and no lookup is in
// flight. Controllers that cannot report pending work get a fixed Settle
// delay instead.
func (f *PlainFrontend) settle(ctx context.Context) error {
	pr, ok := f.ctrl.(pendingReporter)
	if !ok {
		timer := time.NewTimer(f.cfg.Settle)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}

	busy := func() bool {
		if ok && pr.Pending() {
			return true
		}
		return f.ctrl.State().Phase == typeahead.PhaseLoading
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for busy() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

var _ Frontend = (*PlainFrontend)(nil)
