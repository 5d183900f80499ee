// Package profiling records CPU, heap, trace and goroutine profiles for a
// single CLI invocation.
package profiling

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
)

// Paths selects which profiles to record. Empty paths are skipped.
type Paths struct {
	CPU        string
	Heap       string
	Trace      string
	Goroutines string
}

// Enabled reports whether any profile was requested.
func (p Paths) Enabled() bool {
	return p.CPU != "" || p.Heap != "" || p.Trace != "" || p.Goroutines != ""
}

// Session records the profiles named by Paths between Start and Stop.
// CPU and trace run for the whole session; heap and goroutine profiles are
// snapshots taken at Stop.
type Session struct {
	paths Paths

	mu        sync.Mutex
	cpuFile   *os.File
	traceFile *os.File
	started   bool
}

// NewSession creates a session for paths.
func NewSession(paths Paths) *Session {
	return &Session{paths: paths}
}

// Start begins CPU profiling and tracing. On error nothing is left running.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("profiling already started")
	}

	if s.paths.CPU != "" {
		f, err := os.Create(s.paths.CPU)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile file: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		s.cpuFile = f
	}

	if s.paths.Trace != "" {
		f, err := os.Create(s.paths.Trace)
		if err != nil {
			s.stopCPU()
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return fmt.Errorf("failed to start trace: %w", err)
		}
		s.traceFile = f
	}

	s.started = true
	return nil
}

// Stop ends CPU profiling and tracing, then writes the heap and goroutine
// snapshots. Safe to call more than once.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	s.stopCPU()
	if s.traceFile != nil {
		trace.Stop()
		_ = s.traceFile.Close()
		s.traceFile = nil
	}

	var errs []error
	if s.paths.Heap != "" {
		// Collect first so the profile shows live objects only.
		runtime.GC()
		errs = append(errs, writeProfile(s.paths.Heap, "heap", 0))
	}
	if s.paths.Goroutines != "" {
		errs = append(errs, writeProfile(s.paths.Goroutines, "goroutine", 1))
	}
	return errors.Join(errs...)
}

func (s *Session) stopCPU() {
	if s.cpuFile == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = s.cpuFile.Close()
	s.cpuFile = nil
}

func writeProfile(path, name string, debug int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s profile file: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.Lookup(name).WriteTo(f, debug); err != nil {
		return fmt.Errorf("failed to write %s profile: %w", name, err)
	}
	return nil
}
