package layout

import (
	"math"
	"sort"

	"github.com/sketchpipe/sketchpipe/pkg/element"
)

// reflowWideFrames rearranges frames whose children all sit in one visual
// row into a near-square grid, so a long chain inside a container does not
// produce an extremely wide, flat box. Returns true if any frame changed,
// in which case frame bounding must be recomputed.
//
// Only frames with more than ReflowMinChildren-1 positioned children are
// considered, and only when every child's vertical center is within
// AlignThreshold of the first - anything else already has vertical
// structure worth preserving.
func (ctx *layoutContext) reflowWideFrames() bool {
	changed := false
	for _, f := range ctx.frames {
		if ctx.reflowFrame(f) {
			changed = true
		}
	}
	return changed
}

func (ctx *layoutContext) reflowFrame(f *element.Element) bool {
	children := ctx.positionedChildren(f)
	if len(children) < ctx.opts.ReflowMinChildren {
		return false
	}
	if !singleRow(children, ctx.opts.AlignThreshold) {
		return false
	}

	// Near-square target: ceil(sqrt(n) * 1.5) columns.
	n := len(children)
	cols := int(math.Ceil(math.Sqrt(float64(n)) * 1.5))
	if cols >= n {
		return false // grid would still be one row
	}

	// Keep the grid anchored where the row started and preserve the
	// original left-to-right reading order.
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Geometry.X < children[j].Geometry.X
	})
	originX := children[0].Geometry.X
	originY := children[0].Geometry.Y

	var (
		cursorX = originX
		cursorY = originY
		rowMaxH float64
	)
	for i, child := range children {
		if i > 0 && i%cols == 0 {
			cursorX = originX
			cursorY += rowMaxH + ctx.opts.ReflowGapY
			rowMaxH = 0
		}

		geo := child.Geometry
		if child.IsFrame() {
			// Nested frames move with all their descendants; setting the
			// box directly would orphan the contents.
			dx := cursorX - geo.X
			dy := cursorY - geo.Y
			ctx.shiftSubtree(child.ID, dx, dy, map[string]bool{})
		} else {
			geo.X = cursorX
			geo.Y = cursorY
		}

		cursorX += geo.Width + ctx.opts.ReflowGapX
		if geo.Height > rowMaxH {
			rowMaxH = geo.Height
		}
	}
	return true
}

// positionedChildren resolves a frame's non-connector children that carry
// geometry, in child-list order.
func (ctx *layoutContext) positionedChildren(f *element.Element) []*element.Element {
	var out []*element.Element
	for _, id := range f.Children {
		child, ok := ctx.idx.Lookup(id)
		if !ok || child.IsConnector() || !child.HasGeometry() {
			continue
		}
		out = append(out, child)
	}
	return out
}

// singleRow reports whether every child's vertical center sits within
// threshold of the first child's.
func singleRow(children []*element.Element, threshold float64) bool {
	base := children[0].Geometry.CenterY()
	for _, c := range children[1:] {
		if math.Abs(c.Geometry.CenterY()-base) > threshold {
			return false
		}
	}
	return true
}
