package layout

import (
	"sort"

	"github.com/sketchpipe/sketchpipe/pkg/element"
)

// resolveOverlaps separates sibling frames that collide horizontally and
// top-aligns siblings that sit at the same visual rank. Returns true if
// any frame moved, in which case frame bounding must be recomputed because
// shifting children changes parent boxes.
//
// Frames are grouped by parent (top-level frames form one group). Within a
// group, a left-to-right sweep shifts each frame - and all of its
// descendants - rightward just enough to restore MinFrameGap from its left
// neighbor. Frames whose vertical positions differ by less than
// AlignThreshold are then treated as one visual rank and their tops
// aligned; larger gaps are assumed intentional and left alone.
func (ctx *layoutContext) resolveOverlaps() bool {
	groups := map[string][]*element.Element{}
	for _, f := range ctx.frames {
		if !f.HasGeometry() {
			continue
		}
		parent, _ := ctx.idx.Parent(f.ID)
		groups[parent] = append(groups[parent], f)
	}

	moved := false
	for _, siblings := range groups {
		if len(siblings) < 2 {
			continue
		}
		if ctx.sweepHorizontal(siblings) {
			moved = true
		}
		if ctx.alignTops(siblings) {
			moved = true
		}
	}
	return moved
}

func (ctx *layoutContext) sweepHorizontal(siblings []*element.Element) bool {
	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].Geometry.X < siblings[j].Geometry.X
	})

	moved := false
	for i := 1; i < len(siblings); i++ {
		left := siblings[i-1].Geometry
		f := siblings[i]
		needed := left.Right() + ctx.opts.MinFrameGap
		if f.Geometry.X < needed {
			dx := needed - f.Geometry.X
			ctx.shiftSubtree(f.ID, dx, 0, map[string]bool{})
			moved = true
		}
	}
	return moved
}

// alignTops clusters siblings by vertical position and shifts the lower
// members of each cluster up to the cluster's topmost frame.
func (ctx *layoutContext) alignTops(siblings []*element.Element) bool {
	ordered := make([]*element.Element, len(siblings))
	copy(ordered, siblings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Geometry.Y < ordered[j].Geometry.Y
	})

	moved := false
	clusterTop := ordered[0].Geometry.Y
	for _, f := range ordered[1:] {
		y := f.Geometry.Y
		if y-clusterTop >= ctx.opts.AlignThreshold {
			// Different visual rank; start a new cluster here.
			clusterTop = y
			continue
		}
		if dy := y - clusterTop; dy > 0 {
			ctx.shiftSubtree(f.ID, 0, -dy, map[string]bool{})
			moved = true
		}
	}
	return moved
}
