package profiling

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func busyWork() int {
	sum := 0
	for i := 0; i < 1000000; i++ {
		sum += i
	}
	return sum
}

func nonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPaths_Enabled(t *testing.T) {
	assert.False(t, Paths{}.Enabled())
	assert.True(t, Paths{Heap: "heap.prof"}.Enabled())
	assert.True(t, Paths{Goroutines: "g.txt"}.Enabled())
}

func TestSession_RecordsAllProfiles(t *testing.T) {
	// Given: every profile requested
	dir := t.TempDir()
	paths := Paths{
		CPU:        filepath.Join(dir, "cpu.prof"),
		Heap:       filepath.Join(dir, "heap.prof"),
		Trace:      filepath.Join(dir, "trace.out"),
		Goroutines: filepath.Join(dir, "goroutines.txt"),
	}
	s := NewSession(paths)

	// When: running work inside the session
	require.NoError(t, s.Start())
	_ = busyWork()
	require.NoError(t, s.Stop())

	// Then: each file has content
	nonEmpty(t, paths.CPU)
	nonEmpty(t, paths.Heap)
	nonEmpty(t, paths.Trace)
	nonEmpty(t, paths.Goroutines)

	data, err := os.ReadFile(paths.Goroutines)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "goroutine"))
}

func TestSession_StopIsIdempotent(t *testing.T) {
	s := NewSession(Paths{CPU: filepath.Join(t.TempDir(), "cpu.prof")})

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
}

func TestSession_StopWithoutStart(t *testing.T) {
	assert.NoError(t, NewSession(Paths{Heap: filepath.Join(t.TempDir(), "heap.prof")}).Stop())
}

func TestSession_StartTwiceFails(t *testing.T) {
	s := NewSession(Paths{})
	require.NoError(t, s.Start())
	defer func() { _ = s.Stop() }()

	assert.Error(t, s.Start())
}

func TestSession_TraceFailureStopsCPU(t *testing.T) {
	// Given: a valid CPU path and an impossible trace path
	dir := t.TempDir()
	s := NewSession(Paths{
		CPU:   filepath.Join(dir, "cpu.prof"),
		Trace: filepath.Join(dir, "missing", "trace.out"),
	})

	// When: starting
	err := s.Start()

	// Then: it fails and CPU profiling can start again
	require.Error(t, err)
	again := NewSession(Paths{CPU: filepath.Join(dir, "cpu2.prof")})
	require.NoError(t, again.Start())
	require.NoError(t, again.Stop())
}

func TestSession_InvalidHeapPath(t *testing.T) {
	s := NewSession(Paths{Heap: filepath.Join(t.TempDir(), "missing", "heap.prof")})
	require.NoError(t, s.Start())

	assert.Error(t, s.Stop())
}
