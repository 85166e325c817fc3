package pipeline

import (
	"sync"
	"testing"
	"time"
)

// collect gathers committed results for assertions.
type collect struct {
	mu      sync.Mutex
	results []*Result
	errs    []error
	signal  chan struct{}
}

func newCollect() *collect {
	return &collect{signal: make(chan struct{}, 16)}
}

func (c *collect) commit(res *Result, err error) {
	c.mu.Lock()
	c.results = append(c.results, res)
	c.errs = append(c.errs, err)
	c.mu.Unlock()
	c.signal <- struct{}{}
}

func (c *collect) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.signal:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a committed result")
	}
}

func (c *collect) committed() []*Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Result(nil), c.results...)
}

func TestScheduler_CommitsLatestChunkOnly(t *testing.T) {
	sink := newCollect()
	s := NewScheduler(testRunner(t), Options{}, 50*time.Millisecond, sink.commit)
	defer s.Close()

	// A burst of growing prefixes inside one debounce window.
	for _, cut := range []int{20, 40, 60, len(chainText)} {
		s.Submit(chainText[:cut])
	}
	sink.wait(t)

	got := sink.committed()
	if len(got) != 1 {
		t.Fatalf("committed %d results, want 1", len(got))
	}
	if !got[0].Complete || got[0].Stats.ElementCount != 3 {
		t.Errorf("committed result is not from the full chunk: %+v", got[0].Stats)
	}
}

func TestScheduler_SequentialWindowsEachCommit(t *testing.T) {
	sink := newCollect()
	s := NewScheduler(testRunner(t), Options{}, 10*time.Millisecond, sink.commit)
	defer s.Close()

	s.Submit(chainText[:40])
	sink.wait(t)
	s.Submit(chainText)
	sink.wait(t)

	got := sink.committed()
	if len(got) != 2 {
		t.Fatalf("committed %d results, want 2", len(got))
	}
	if got[0].Stats.ElementCount >= got[1].Stats.ElementCount {
		t.Errorf("later window did not see more elements: %d then %d",
			got[0].Stats.ElementCount, got[1].Stats.ElementCount)
	}
}

func TestScheduler_CloseDiscardsPending(t *testing.T) {
	sink := newCollect()
	s := NewScheduler(testRunner(t), Options{}, time.Hour, sink.commit)

	s.Submit(chainText)
	s.Close()

	if got := sink.committed(); len(got) != 0 {
		t.Errorf("pending chunk committed after Close: %d results", len(got))
	}

	// Submissions after Close are dropped; Close is idempotent.
	s.Submit(chainText)
	s.Close()
	if got := sink.committed(); len(got) != 0 {
		t.Errorf("post-Close submission committed: %d results", len(got))
	}
}

func TestScheduler_DefaultWindow(t *testing.T) {
	s := NewScheduler(testRunner(t), Options{}, 0, nil)
	defer s.Close()
	if s.window != DefaultDebounce {
		t.Errorf("window = %v, want %v", s.window, DefaultDebounce)
	}
}
