package layout

import (
	"sort"

	"github.com/sketchpipe/sketchpipe/pkg/element"
)

// collectFrames gathers all frames ordered deepest containment first, so
// that bounding a frame can rely on every nested frame having its box
// already. Depth ties keep input order; sort.SliceStable preserves it.
func (ctx *layoutContext) collectFrames() {
	for _, el := range ctx.elems {
		if el.IsFrame() {
			ctx.frames = append(ctx.frames, el)
		}
	}
	depth := make(map[string]int, len(ctx.frames))
	for _, f := range ctx.frames {
		depth[f.ID] = ctx.idx.Depth(f.ID)
	}
	sort.SliceStable(ctx.frames, func(i, j int) bool {
		return depth[ctx.frames[i].ID] > depth[ctx.frames[j].ID]
	})
}

// boundFrames recomputes every frame's box from its descendants, deepest
// frames first. A nested frame contributes its own already-computed box
// rather than being expanded further. The box is the min/max of descendant
// boxes expanded by FramePadding on all sides plus FrameTitleSpace above.
// Frames with no positioned descendants are skipped and keep whatever
// geometry they had.
func (ctx *layoutContext) boundFrames() {
	for _, f := range ctx.frames {
		box, ok := ctx.descendantBounds(f, map[string]bool{f.ID: true})
		if !ok {
			continue
		}
		pad := ctx.opts.FramePadding
		f.SetGeometry(
			box.X-pad,
			box.Y-pad-ctx.opts.FrameTitleSpace,
			box.Width+2*pad,
			box.Height+2*pad+ctx.opts.FrameTitleSpace,
		)
	}
}

// descendantBounds unions the boxes of a frame's positioned non-connector
// children. The visited set guards against containment cycles from
// malformed input; a revisited id contributes nothing.
func (ctx *layoutContext) descendantBounds(f *element.Element, visited map[string]bool) (element.Geometry, bool) {
	var (
		box   element.Geometry
		found bool
	)
	for _, childID := range f.Children {
		if visited[childID] {
			continue
		}
		visited[childID] = true

		child, ok := ctx.idx.Lookup(childID)
		if !ok || child.IsConnector() || !child.HasGeometry() {
			continue
		}
		g := *child.Geometry
		if !found {
			box = g
			found = true
			continue
		}
		box = union(box, g)
	}
	return box, found
}

func union(a, b element.Geometry) element.Geometry {
	x := min(a.X, b.X)
	y := min(a.Y, b.Y)
	right := max(a.Right(), b.Right())
	bottom := max(a.Bottom(), b.Bottom())
	return element.Geometry{X: x, Y: y, Width: right - x, Height: bottom - y}
}
