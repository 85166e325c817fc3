package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sketchpipe/sketchpipe/pkg/errors"
	"github.com/sketchpipe/sketchpipe/pkg/layout"
	"github.com/sketchpipe/sketchpipe/pkg/observability"
	"github.com/sketchpipe/sketchpipe/pkg/pipeline"
	"github.com/sketchpipe/sketchpipe/pkg/render/sink"
)

// layoutCommand creates the layout command for one-shot pipeline runs.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		format     string
		direction  string
		configPath string
		redisAddr  string
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "layout [stream.txt]",
		Short: "Lay out a diagram stream snapshot",
		Long: `Lay out a diagram stream snapshot.

The layout command reads a (possibly truncated) diagram stream, extracts
every element that is already well-formed, computes geometry for all of
them, and writes the converted scene. Use "-" or no argument to read from
stdin.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runLayout(withLogger(cmd.Context(), c.Logger), input, layoutParams{
				output:     output,
				format:     format,
				direction:  direction,
				configPath: configPath,
				redisAddr:  redisAddr,
				noCache:    noCache,
				refresh:    refresh,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>, stdout for stdin input)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatJSON, "output format: json (default), dot, svg")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "flow direction: tb (default), lr")
	cmd.Flags().StringVar(&configPath, "config", "", "layout configuration file (TOML)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "use a Redis cache at host:port instead of the file cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute layout even on a cache hit")

	return cmd
}

type layoutParams struct {
	output     string
	format     string
	direction  string
	configPath string
	redisAddr  string
	noCache    bool
	refresh    bool
}

// runLayout reads the stream snapshot, runs the pipeline, and writes output.
// The logger comes from ctx so whatever the command attached (verbose or
// not) drives both the pipeline's debug output and the progress line.
func (c *CLI) runLayout(ctx context.Context, input string, p layoutParams) error {
	logger := loggerFromContext(ctx)

	text, err := readInput(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read input %s", input)
	}

	opts, err := c.pipelineOptions(p.configPath, p.direction, p.format, p.refresh)
	if err != nil {
		return err
	}
	opts.Logger = logger

	runner, err := c.newRunner(ctx, p.noCache, p.redisAddr)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Reading stream...")
	spinner.Start()
	observability.SetPipelineHooks(stageHooks{spinner: spinner})
	defer observability.Reset()

	result, err := runner.Execute(ctx, text, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("laid out %d elements", result.Stats.ElementCount))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := serializeScene(ctx, result, opts.Format)
	if err != nil {
		return err
	}

	outputPath := p.output
	if outputPath == "" && input != "-" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + opts.Format
	}
	if outputPath == "" || outputPath == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
		return nil
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.ElementCount, result.Stats.ConnectorCount, result.Stats.FrameCount, result.CacheInfo.LayoutHit)
	if !result.Complete {
		printWarning("stream is not closed yet; scene is partial")
	}
	printNewline()
	printNextStep("Follow the stream", "sketchpipe watch "+input)

	return nil
}

// pipelineOptions assembles pipeline options from config file and flags.
// Flags override file values.
func (c *CLI) pipelineOptions(configPath, direction, format string, refresh bool) (pipeline.Options, error) {
	opts := pipeline.Options{Format: format, Refresh: refresh, Logger: c.Logger}
	if configPath != "" {
		layoutOpts, err := layout.LoadOptions(configPath)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Layout = layoutOpts
	}
	if direction != "" {
		opts.Layout.Direction = layout.Direction(direction)
	}
	return opts, nil
}

// readInput reads a file or, for "-", stdin.
func readInput(input string) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(input)
	return string(data), err
}

// serializeScene encodes the result in the requested format.
func serializeScene(ctx context.Context, result *pipeline.Result, format string) ([]byte, error) {
	switch format {
	case pipeline.FormatJSON:
		return sink.MarshalJSON(result.Scene, result.Complete)
	case pipeline.FormatDOT:
		return []byte(sink.ToDOT(result.Scene)), nil
	case pipeline.FormatSVG:
		return sink.RenderSVG(ctx, sink.ToDOT(result.Scene))
	default:
		return nil, pipeline.ValidateFormat(format)
	}
}
