package pipeline

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the coalescing window applied when the caller does not
// choose one. Model streams emit deltas far faster than layout runs, so the
// window trades a little latency for far fewer layout passes.
const DefaultDebounce = 150 * time.Millisecond

// Scheduler is a single-slot debounce queue in front of a Runner.
//
// Each Submit replaces any pending chunk; after the debounce window the
// latest chunk runs through the pipeline. A result superseded by a newer
// submission while the pipeline was running is discarded rather than
// committed - cancellation by discard, not by interrupting a running layout
// pass. At most one pipeline execution is in flight at a time.
type Scheduler struct {
	runner *Runner
	opts   Options
	window time.Duration
	commit func(*Result, error)

	mu      sync.Mutex
	latest  string
	seq     uint64
	timer   *time.Timer
	running bool
	closed  bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler delivering committed results to the
// commit callback. The callback runs on the scheduler's goroutine and must
// not block for long. A non-positive window uses DefaultDebounce.
func NewScheduler(runner *Runner, opts Options, window time.Duration, commit func(*Result, error)) *Scheduler {
	if window <= 0 {
		window = DefaultDebounce
	}
	if commit == nil {
		commit = func(*Result, error) {}
	}
	return &Scheduler{
		runner: runner,
		opts:   opts,
		window: window,
		commit: commit,
	}
}

// Submit replaces the pending chunk and restarts the debounce window.
// Safe for concurrent use. Submissions after Close are dropped.
func (s *Scheduler) Submit(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.latest = chunk
	s.seq++
	if s.timer == nil {
		s.timer = time.AfterFunc(s.window, s.fire)
	} else {
		s.timer.Reset(s.window)
	}
}

// fire runs the latest chunk through the pipeline. If an execution is
// already in flight, the pending chunk waits for it: the finishing
// execution reschedules when it notices it was superseded.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.closed || s.running {
		s.mu.Unlock()
		return
	}
	chunk := s.latest
	seq := s.seq
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		res, err := s.runner.Execute(context.Background(), chunk, s.opts)

		s.mu.Lock()
		s.running = false
		superseded := seq != s.seq
		closed := s.closed
		if superseded && !closed {
			// A newer chunk arrived mid-run; run it next.
			s.timer.Reset(0)
		}
		s.mu.Unlock()

		if superseded || closed {
			return
		}
		s.commit(res, err)
	}()
}

// Close stops the scheduler and waits for any in-flight execution to
// finish. Its result is discarded. Close is idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
