// Package layout computes geometry for a semantic element list.
//
// The engine turns a coordinate-free diagram description into absolute
// boxes: it estimates node sizes from labels, ranks the connector graph,
// places nodes along the configured flow axis, bounds container frames
// around their descendants, reflows overly wide frames into grids, and
// resolves overlaps between sibling frames.
//
// The engine is built for incomplete input. The element list may describe a
// diagram that is still streaming in: connectors may dangle, containment
// may be inconsistent, and the graph may be cyclic. None of that fails a
// layout pass - the engine always returns the elements with the best
// geometry it could compute.
//
// All state for one pass lives in a layoutContext constructed per Apply
// call; the package holds no cross-invocation state, so unrelated diagrams
// can be laid out concurrently by independent callers.
package layout

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/sketchpipe/sketchpipe/pkg/element"
)

// Engine computes layout for element lists. The zero value is usable and
// uses defaults; a nil logger discards output.
type Engine struct {
	Opts   Options
	Logger *log.Logger
}

// New creates an engine with the given options. Zero-valued option fields
// fall back to defaults.
func New(opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{Opts: opts.normalized(), Logger: logger}
}

// layoutContext carries the per-invocation state shared by the layout
// passes. It is never reused across Apply calls.
type layoutContext struct {
	elems  []*element.Element
	idx    *element.Index
	opts   Options
	logger *log.Logger

	// frames ordered deepest containment first, computed once.
	frames []*element.Element
}

// Apply populates geometry on elems in place and returns the same slice.
//
// If more than half of the non-connector elements already carry explicit
// geometry the input is assumed pre-positioned and returned unchanged, as
// is an input with no positionable elements at all. Rank-assignment
// failures never propagate: transient graph states are expected mid-stream
// and logged at debug, anything else logs a warning, and in both cases the
// remaining passes still run over whatever geometry exists.
func (e *Engine) Apply(elems []*element.Element) []*element.Element {
	opts := e.Opts.normalized()
	logger := e.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	var positionable, preSized int
	for _, el := range elems {
		if el.IsConnector() {
			continue
		}
		positionable++
		if el.HasGeometry() {
			preSized++
		}
	}
	if positionable == 0 {
		return elems
	}
	if 2*preSized > positionable {
		logger.Debug("layout skipped, input is pre-positioned",
			"with_geometry", preSized, "positionable", positionable)
		return elems
	}

	ctx := &layoutContext{
		elems:  elems,
		idx:    element.NewIndex(elems),
		opts:   opts,
		logger: logger,
	}
	ctx.collectFrames()

	ctx.estimateSizes()

	if err := ctx.placeRanks(); err != nil {
		if IsTransient(err) {
			logger.Debug("rank placement deferred, graph still streaming", "err", err)
		} else {
			logger.Warn("rank placement failed, keeping partial geometry", "err", err)
		}
	}

	// Each pass below can invalidate boxes computed by an earlier one, so
	// frame bounding is recomputed after every mutating pass.
	ctx.boundFrames()
	if ctx.reflowWideFrames() {
		ctx.boundFrames()
	}
	if ctx.resolveOverlaps() {
		ctx.boundFrames()
	}

	return elems
}

// placeRanks builds the connector graph and assigns coordinates, converting
// a panic out of the rank pass into an ordinary error so that a transient,
// half-streamed graph can never take down the pipeline.
func (ctx *layoutContext) placeRanks() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rank pass panicked: %v", r)
		}
	}()

	g, err := ctx.buildGraph()
	if err != nil {
		return err
	}
	if g.NodeCount() == 0 {
		return nil
	}
	ctx.assignCoordinates(g)
	return nil
}

// shiftSubtree moves an element and, when it is a frame, every descendant
// by the same delta. The visited set bounds traversal so a containment
// cycle in malformed input terminates instead of recursing forever.
func (ctx *layoutContext) shiftSubtree(id string, dx, dy float64, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true

	el, ok := ctx.idx.Lookup(id)
	if !ok {
		return
	}
	if el.HasGeometry() {
		el.Geometry.X += dx
		el.Geometry.Y += dy
	}
	if el.IsFrame() {
		for _, childID := range el.Children {
			ctx.shiftSubtree(childID, dx, dy, visited)
		}
	}
}
