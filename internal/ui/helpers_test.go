package ui

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/Aman-CERP/typeahead/internal/typeahead"
)

// fakeController records the calls a front end makes.
type fakeController struct {
	mu       sync.Mutex
	state    typeahead.State
	queries  []string
	selected []string
	clears   int
	retries  int
	renders  []typeahead.RenderFunc
}

func (f *fakeController) SetQuery(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
}

func (f *fakeController) SelectSuggestion(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, text)
}

func (f *fakeController) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
}

func (f *fakeController) Retry() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries++
}

func (f *fakeController) Subscribe(render typeahead.RenderFunc) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders = append(f.renders, render)
	return func() {}
}

func (f *fakeController) State() typeahead.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) setState(s typeahead.State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

var _ Controller = (*fakeController)(nil)

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// blockingReader returns a reader that blocks until the test ends.
func blockingReader(t *testing.T) io.Reader {
	t.Helper()
	r, w := io.Pipe()
	t.Cleanup(func() {
		_ = w.Close()
	})
	return r
}
