// Package pipeline runs the parse → layout → convert pipeline over streamed
// diagram text.
//
// The pipeline is synchronous and single-threaded per chunk: one Execute
// call transforms one text snapshot into a renderable scene, with no shared
// mutable state across calls. Callers coalescing a rapid chunk sequence
// (model token deltas) should drive Execute through a [Scheduler], which
// keeps only the most recent chunk and discards superseded results.
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Format: pipeline.FormatJSON}
//	result, err := runner.Execute(ctx, chunk, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sketchpipe/sketchpipe/pkg/cache"
	"github.com/sketchpipe/sketchpipe/pkg/element"
	"github.com/sketchpipe/sketchpipe/pkg/errors"
	"github.com/sketchpipe/sketchpipe/pkg/layout"
	"github.com/sketchpipe/sketchpipe/pkg/render"
)

// Format constants for scene output.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout configures the layout engine.
	Layout layout.Options `json:"layout"`

	// Format selects the scene serialization. Defaults to json.
	Format string `json:"format,omitempty"`

	// Refresh bypasses the layout cache and recomputes.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	dir, err := layout.ParseDirection(string(o.Layout.Direction))
	if err != nil {
		return err
	}
	o.Layout.Direction = dir
	if o.Format == "" {
		o.Format = FormatJSON
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns the cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Direction: string(o.Layout.Direction),
		RankSep:   o.Layout.RankSep,
		NodeSep:   o.Layout.NodeSep,
		MarginX:   o.Layout.MarginX,
		MarginY:   o.Layout.MarginY,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// GenerationID identifies this run; superseded runs are distinguishable
	// by it when results arrive out of order.
	GenerationID string

	// Elements is the parsed, laid-out element list.
	Elements []*element.Element

	// Scene is the converted renderable scene.
	Scene []render.Element

	// Complete reports whether the source array was closed.
	Complete bool

	// ElementsHash is the content hash of the parsed elements.
	ElementsHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount   int
	ConnectorCount int
	FrameCount     int
	ParseTime      time.Duration
	LayoutTime     time.Duration
	ConvertTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout geometry came from cache
	SceneHit  bool // Whether the converted scene came from cache
}

func (s Stats) String() string {
	return fmt.Sprintf("%d elements (%d connectors, %d frames) parse=%s layout=%s convert=%s",
		s.ElementCount, s.ConnectorCount, s.FrameCount, s.ParseTime, s.LayoutTime, s.ConvertTime)
}
