package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sketchpipe/sketchpipe/pkg/observability"
)

// Spinner is a stderr activity indicator for one-shot pipeline runs. Its
// message is retargeted as the run moves through parse, layout, and convert,
// so a slow stage is visible by name.
type Spinner struct {
	frames   []string
	interval time.Duration
	cancel   context.CancelFunc
	ctx      context.Context
	stopped  chan struct{}

	mu      sync.Mutex
	message string
	width   int // widest message rendered so far, for line clearing
}

// newSpinner creates a spinner that stops when ctx is cancelled.
func newSpinner(ctx context.Context, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 80 * time.Millisecond,
		cancel:   cancel,
		ctx:      sctx,
		stopped:  make(chan struct{}),
		message:  message,
		width:    len(message),
	}
}

// Start begins the animation in a background goroutine.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.render(s.frames[i%len(s.frames)])
			}
		}
	}()
}

// SetMessage swaps the text shown next to the spinner frame.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if len(message) > s.width {
		s.width = len(message)
	}
}

// Message returns the current spinner text.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Spinner) render(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

// Stop halts the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.cancel()
	<-s.stopped
	s.clearLine()
}

// StopWithError stops the spinner and prints an error message in its place.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", s.width+4))
}

// stageHooks retargets a spinner as pipeline stages begin.
type stageHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

func (h stageHooks) OnParseStart(ctx context.Context, chunkBytes int) {
	h.spinner.SetMessage("Extracting elements...")
}

func (h stageHooks) OnLayoutStart(ctx context.Context, elementCount int) {
	h.spinner.SetMessage(fmt.Sprintf("Laying out %d elements...", elementCount))
}

func (h stageHooks) OnConvertStart(ctx context.Context, elementCount int) {
	h.spinner.SetMessage("Converting scene...")
}
