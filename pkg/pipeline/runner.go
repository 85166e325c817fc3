package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sketchpipe/sketchpipe/pkg/cache"
	"github.com/sketchpipe/sketchpipe/pkg/element"
	"github.com/sketchpipe/sketchpipe/pkg/layout"
	"github.com/sketchpipe/sketchpipe/pkg/observability"
	"github.com/sketchpipe/sketchpipe/pkg/render"
	"github.com/sketchpipe/sketchpipe/pkg/stream"
)

// Runner encapsulates pipeline execution with layout caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options, as long as each call gets its own text
// snapshot.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → convert pipeline over one text
// snapshot. The returned result is always renderable: layout failures
// degrade to partial geometry, never to an error. An error is returned only
// for invalid options.
func (r *Runner) Execute(ctx context.Context, text string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	result := &Result{GenerationID: uuid.NewString()}

	// Stage 1: Parse
	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx, len(text))
	elems, complete := stream.Parse(text)
	result.Elements = elems
	result.Complete = complete
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.ElementCount = len(elems)
	for _, el := range elems {
		switch {
		case el.IsConnector():
			result.Stats.ConnectorCount++
		case el.IsFrame():
			result.Stats.FrameCount++
		}
	}
	observability.Pipeline().OnParseComplete(ctx, len(elems), complete, result.Stats.ParseTime)

	logger.Debug("parsed chunk",
		"bytes", len(text),
		"elements", len(elems),
		"complete", complete,
		"duration", result.Stats.ParseTime)

	result.ElementsHash = hashElements(elems)

	// Stage 2: Layout (memoized)
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(elems))
	hit := r.layoutWithCache(ctx, elems, result.ElementsHash, opts, logger)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit
	observability.Pipeline().OnLayoutComplete(ctx, result.Stats.LayoutTime, nil)

	logger.Debug("computed layout",
		"elements", len(elems),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Convert (memoized on the laid-out elements)
	convertStart := time.Now()
	observability.Pipeline().OnConvertStart(ctx, len(elems))
	result.Scene, result.CacheInfo.SceneHit = r.sceneWithCache(ctx, elems, opts, logger)
	result.Stats.ConvertTime = time.Since(convertStart)
	observability.Pipeline().OnConvertComplete(ctx, len(result.Scene), result.Stats.ConvertTime)

	return result, nil
}

// layoutWithCache applies the layout engine, short-circuiting through the
// cache when the same element list was laid out before with the same
// configuration. Reports whether the geometry came from cache.
func (r *Runner) layoutWithCache(ctx context.Context, elems []*element.Element, elementsHash string, opts Options, logger *log.Logger) bool {
	key := r.Keyer.LayoutKey(elementsHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if applyCachedGeometry(elems, data) {
				observability.Cache().OnCacheHit(ctx, "layout")
				return true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	engine := layout.New(opts.Layout, logger)
	engine.Apply(elems)

	if data, err := marshalGeometry(elems); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.LayoutTTL); err != nil {
			logger.Debug("layout cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return false
}

// sceneWithCache converts the laid-out elements to a renderable scene,
// short-circuiting through the cache when the same geometry was converted
// before. The key hashes the elements after layout, so it distinguishes two
// configurations that parse identically but place differently.
func (r *Runner) sceneWithCache(ctx context.Context, elems []*element.Element, opts Options, logger *log.Logger) ([]render.Element, bool) {
	key := r.Keyer.SceneKey(hashElements(elems))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var scene []render.Element
			if err := json.Unmarshal(data, &scene); err == nil {
				observability.Cache().OnCacheHit(ctx, "scene")
				return scene, true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "scene")
	}

	scene := render.Convert(elems)
	if data, err := json.Marshal(scene); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.SceneTTL); err != nil {
			logger.Debug("scene cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "scene", len(data))
		}
	}
	return scene, false
}

// marshalGeometry serializes the computed geometry keyed by element id.
// Elements without geometry (connectors, empty frames) are omitted.
func marshalGeometry(elems []*element.Element) ([]byte, error) {
	boxes := make(map[string]element.Geometry, len(elems))
	for _, el := range elems {
		if el.HasGeometry() {
			boxes[el.ID] = *el.Geometry
		}
	}
	return json.Marshal(boxes)
}

// applyCachedGeometry restores cached geometry onto the element list.
// Returns false when the payload does not decode; the caller then falls
// back to a fresh layout pass.
func applyCachedGeometry(elems []*element.Element, data []byte) bool {
	var boxes map[string]element.Geometry
	if err := json.Unmarshal(data, &boxes); err != nil {
		return false
	}
	for _, el := range elems {
		if g, ok := boxes[el.ID]; ok {
			el.SetGeometry(g.X, g.Y, g.Width, g.Height)
		}
	}
	return true
}

// hashElements produces a content hash of the parsed elements. The hash
// covers ids, kinds, labels, references, and any explicit geometry, so two
// textually different chunks that parse identically share a hash.
func hashElements(elems []*element.Element) string {
	data, err := json.Marshal(elems)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
