package layout

import (
	"testing"

	"github.com/sketchpipe/sketchpipe/pkg/element"
)

// overlappingSiblings builds two top-level frames whose boxes intersect
// horizontally, each owning one positioned leaf.
func overlappingSiblings() []*element.Element {
	a := rect("a", "")
	a.SetGeometry(40, 40, 200, 60)
	b := rect("b", "")
	b.SetGeometry(120, 50, 200, 60)
	f1 := frame("f1", "a")
	f2 := frame("f2", "b")
	return []*element.Element{f1, f2, a, b}
}

func TestResolveOverlaps_RestoresMinimumGap(t *testing.T) {
	elems := overlappingSiblings()
	f1, f2 := elems[0], elems[1]
	ctx := newTestContext(elems, DefaultOptions())

	ctx.boundFrames()
	if f1.Geometry.Right() <= f2.Geometry.X {
		t.Fatal("fixture frames do not overlap")
	}

	if !ctx.resolveOverlaps() {
		t.Fatal("resolveOverlaps reported no movement")
	}
	ctx.boundFrames()

	gap := f2.Geometry.X - f1.Geometry.Right()
	if gap < ctx.opts.MinFrameGap-0.5 {
		t.Errorf("gap after resolution = %v, want at least %v", gap, ctx.opts.MinFrameGap)
	}
}

func TestResolveOverlaps_ShiftsDescendantsWithFrame(t *testing.T) {
	elems := overlappingSiblings()
	f2, b := elems[1], elems[3]
	ctx := newTestContext(elems, DefaultOptions())

	ctx.boundFrames()
	frameBefore := f2.Geometry.X
	leafBefore := b.Geometry.X

	ctx.resolveOverlaps()

	frameDX := f2.Geometry.X - frameBefore
	leafDX := b.Geometry.X - leafBefore
	if frameDX == 0 {
		t.Fatal("right frame did not move")
	}
	if leafDX != frameDX {
		t.Errorf("frame moved %v but its leaf moved %v", frameDX, leafDX)
	}
}

func TestResolveOverlaps_AlignsNearbyTops(t *testing.T) {
	a := rect("a", "")
	a.SetGeometry(40, 40, 100, 50)
	b := rect("b", "")
	b.SetGeometry(400, 60, 100, 50) // 20px lower: same visual rank
	f1 := frame("f1", "a")
	f2 := frame("f2", "b")
	elems := []*element.Element{f1, f2, a, b}
	ctx := newTestContext(elems, DefaultOptions())

	ctx.boundFrames()
	ctx.resolveOverlaps()

	if f1.Geometry.Y != f2.Geometry.Y {
		t.Errorf("tops not aligned: f1.Y=%v f2.Y=%v", f1.Geometry.Y, f2.Geometry.Y)
	}
}

func TestResolveOverlaps_LeavesDistinctRanksAlone(t *testing.T) {
	a := rect("a", "")
	a.SetGeometry(40, 40, 100, 50)
	b := rect("b", "")
	b.SetGeometry(400, 400, 100, 50) // clearly a different rank
	f1 := frame("f1", "a")
	f2 := frame("f2", "b")
	elems := []*element.Element{f1, f2, a, b}
	ctx := newTestContext(elems, DefaultOptions())

	ctx.boundFrames()
	topBefore := f2.Geometry.Y

	ctx.resolveOverlaps()

	if f2.Geometry.Y != topBefore {
		t.Errorf("distant frame was vertically moved: %v → %v", topBefore, f2.Geometry.Y)
	}
}

func TestResolveOverlaps_GroupsByParent(t *testing.T) {
	// Nested frames under different parents must not be swept together.
	leaf1 := rect("l1", "")
	leaf1.SetGeometry(40, 40, 100, 50)
	leaf2 := rect("l2", "")
	leaf2.SetGeometry(60, 400, 100, 50)
	inner1 := frame("in1", "l1")
	inner2 := frame("in2", "l2")
	outer1 := frame("out1", "in1")
	outer2 := frame("out2", "in2")
	elems := []*element.Element{outer1, outer2, inner1, inner2, leaf1, leaf2}
	ctx := newTestContext(elems, DefaultOptions())

	ctx.boundFrames()
	in2Before := inner2.Geometry.X
	out2Before := outer2.Geometry.X
	in1Before := inner1.Geometry.X

	ctx.resolveOverlaps()

	// inner1 and inner2 have different parents, so neither forms a sibling
	// group: any movement they see comes from the top-level sweep carrying
	// their outer frame.
	outerDX := outer2.Geometry.X - out2Before
	if outerDX == 0 {
		t.Fatal("overlapping top-level frames were not separated")
	}
	if got := inner2.Geometry.X - in2Before; got != outerDX {
		t.Errorf("nested frame moved %v, want parent's shift %v", got, outerDX)
	}
	if inner1.Geometry.X != in1Before {
		t.Error("left-most subtree moved during sweep")
	}
}
