package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sketchpipe/sketchpipe/pkg/cache"
	"github.com/sketchpipe/sketchpipe/pkg/pipeline"
	"github.com/sketchpipe/sketchpipe/pkg/render/sink"
)

// watchCommand creates the watch command for following a growing stream file.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		output     string
		direction  string
		configPath string
		redisAddr  string
		noCache    bool
		interval   time.Duration
		debounce   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <stream.txt>",
		Short: "Follow a growing diagram stream and re-lay out on change",
		Long: `Follow a growing diagram stream and re-lay out on change.

The watch command polls the stream file and feeds each new snapshot through
the pipeline behind a debounce window, so a burst of appended tokens costs
one layout pass. The latest scene is continuously written to the output
file; superseded intermediate results are discarded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(withLogger(cmd.Context(), c.Logger), args[0], watchParams{
				output:     output,
				direction:  direction,
				configPath: configPath,
				redisAddr:  redisAddr,
				noCache:    noCache,
				interval:   interval,
				debounce:   debounce,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "scene output file (default: <input>.json)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "flow direction: tb (default), lr")
	cmd.Flags().StringVar(&configPath, "config", "", "layout configuration file (TOML)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "use a Redis cache at host:port instead of the file cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&interval, "interval", 200*time.Millisecond, "file poll interval")
	cmd.Flags().DurationVar(&debounce, "debounce", pipeline.DefaultDebounce, "layout debounce window")

	return cmd
}

type watchParams struct {
	output     string
	direction  string
	configPath string
	redisAddr  string
	noCache    bool
	interval   time.Duration
	debounce   time.Duration
}

func (c *CLI) runWatch(ctx context.Context, input string, p watchParams) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("stat %s: %w", input, err)
	}

	opts, err := c.pipelineOptions(p.configPath, p.direction, pipeline.FormatJSON, false)
	if err != nil {
		return err
	}
	opts.Logger = loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, p.noCache, p.redisAddr)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()
	runner.Keyer = watchKeyer(input)

	output := p.output
	if output == "" {
		output = strings.TrimSuffix(input, ".txt") + ".json"
	}

	results := make(chan watchResult, 16)
	sched := pipeline.NewScheduler(runner, opts, p.debounce, func(res *pipeline.Result, err error) {
		select {
		case results <- watchResult{res: res, err: err}:
		default:
		}
	})
	defer sched.Close()

	model := watchModel{
		path:     input,
		output:   output,
		interval: p.interval,
		sched:    sched,
		results:  results,
	}
	prog := tea.NewProgram(model, tea.WithContext(ctx))
	_, err = prog.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// watchKeyer namespaces cache entries per watched stream file, so two
// watches over different diagrams sharing one backend never collide.
func watchKeyer(path string) cache.Keyer {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return cache.NewScopedKeyer(nil, "watch:"+cache.Hash([]byte(abs))[:12]+":")
}

// watchResult carries one committed pipeline result into the model.
type watchResult struct {
	res *pipeline.Result
	err error
}

// watchTick triggers a file poll.
type watchTick time.Time

// watchModel is the bubbletea model for the watch command.
type watchModel struct {
	path     string
	output   string
	interval time.Duration
	sched    *pipeline.Scheduler
	results  chan watchResult

	lastSize int
	last     *pipeline.Result
	lastErr  error
	commits  int
	writeErr error
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.nextResult())
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return watchTick(t)
	})
}

func (m watchModel) nextResult() tea.Cmd {
	return func() tea.Msg {
		return <-m.results
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case watchTick:
		data, err := os.ReadFile(m.path)
		if err == nil && len(data) != m.lastSize {
			m.lastSize = len(data)
			m.sched.Submit(string(data))
		}
		return m, m.tick()

	case watchResult:
		m.last = msg.res
		m.lastErr = msg.err
		if msg.err == nil && msg.res != nil {
			m.commits++
			m.writeErr = writeScene(m.output, msg.res)
		}
		return m, m.nextResult()
	}
	return m, nil
}

func writeScene(path string, res *pipeline.Result) error {
	data, err := sink.MarshalJSON(res.Scene, res.Complete)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Watching " + m.path))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", StyleDim.Render("stream:"), StyleValue.Render(fmt.Sprintf("%d bytes", m.lastSize)))
	fmt.Fprintf(&b, "%s %s\n", StyleDim.Render("scene: "), StyleValue.Render(m.output))

	switch {
	case m.lastErr != nil:
		fmt.Fprintf(&b, "\n%s %s\n", styleIconError.Render(iconError), m.lastErr)
	case m.last == nil:
		b.WriteString("\n" + StyleDim.Render("waiting for first layout..."))
		b.WriteString("\n")
	default:
		s := m.last.Stats
		status := StyleWarning.Render("streaming")
		if m.last.Complete {
			status = StyleSuccess.Render("complete")
		}
		cached := iconFresh
		if m.last.CacheInfo.LayoutHit {
			cached = iconCached
		}
		fmt.Fprintf(&b, "\n%s %d elements · %d connectors · %d frames\n",
			styleIconInfo.Render(iconInfo), s.ElementCount, s.ConnectorCount, s.FrameCount)
		fmt.Fprintf(&b, "%s %s · %s · %d commits · layout %s\n",
			styleIconInfo.Render(iconInfo), status, StyleDim.Render(cached), m.commits,
			s.LayoutTime.Round(time.Millisecond))
	}
	if m.writeErr != nil {
		fmt.Fprintf(&b, "%s write failed: %s\n", styleIconWarning.Render(iconWarning), m.writeErr)
	}
	return b.String()
}
