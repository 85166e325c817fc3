package layout

import (
	"fmt"
	"testing"

	"github.com/sketchpipe/sketchpipe/pkg/element"
)

// singleRowFrame builds a frame whose n children sit side by side in one row.
func singleRowFrame(n int) []*element.Element {
	childIDs := make([]string, n)
	elems := make([]*element.Element, 0, n+1)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("c%d", i)
		childIDs[i] = id
		c := rect(id, "")
		c.SetGeometry(float64(40+i*130), 40, 100, 50)
		elems = append(elems, c)
	}
	return append([]*element.Element{frame("f", childIDs...)}, elems...)
}

func TestReflow_WideFrameBecomesSquarer(t *testing.T) {
	elems := singleRowFrame(6)
	f := elems[0]
	ctx := newTestContext(elems, DefaultOptions())

	ctx.boundFrames()
	before := f.Geometry.Width / f.Geometry.Height

	if !ctx.reflowWideFrames() {
		t.Fatal("reflow did not trigger for 6 single-row children")
	}
	ctx.boundFrames()
	after := f.Geometry.Width / f.Geometry.Height

	if after >= before {
		t.Errorf("width/height ratio %v did not improve from %v", after, before)
	}

	// Every child must remain inside the final frame box.
	g := f.Geometry
	for _, el := range elems[1:] {
		cg := el.Geometry
		if cg.X < g.X || cg.Y < g.Y || cg.Right() > g.Right() || cg.Bottom() > g.Bottom() {
			t.Errorf("child %s at %+v escapes reflowed frame %+v", el.ID, *cg, *g)
		}
	}

	// ceil(sqrt(6)*1.5) = 4 columns, so 6 children occupy two rows.
	rows := map[float64]bool{}
	for _, el := range elems[1:] {
		rows[el.Geometry.Y] = true
	}
	if len(rows) != 2 {
		t.Errorf("children occupy %d rows, want 2", len(rows))
	}
}

func TestReflow_PreservesLeftToRightOrder(t *testing.T) {
	elems := singleRowFrame(6)
	ctx := newTestContext(elems, DefaultOptions())

	ctx.boundFrames()
	ctx.reflowWideFrames()

	// First grid row keeps c0..c3 in ascending x.
	for i := 1; i < 4; i++ {
		prev, curr := elems[i].Geometry, elems[i+1].Geometry
		if prev.Y != curr.Y {
			t.Fatalf("c%d and c%d not on the same grid row", i-1, i)
		}
		if prev.X >= curr.X {
			t.Errorf("order broken: c%d.X=%v >= c%d.X=%v", i-1, prev.X, i, curr.X)
		}
	}
}

func TestReflow_SkipsSmallAndMultiRowFrames(t *testing.T) {
	// Three children: below the reflow threshold.
	small := singleRowFrame(3)
	ctx := newTestContext(small, DefaultOptions())
	ctx.boundFrames()
	if ctx.reflowWideFrames() {
		t.Error("reflow triggered for 3 children, want skip")
	}

	// Six children already in two rows: vertical structure preserved.
	multi := singleRowFrame(6)
	for i, el := range multi[1:] {
		if i >= 3 {
			el.Geometry.Y = 300
		}
	}
	ctx = newTestContext(multi, DefaultOptions())
	ctx.boundFrames()
	if ctx.reflowWideFrames() {
		t.Error("reflow triggered for multi-row frame, want skip")
	}
}

func TestReflow_ShiftsNestedFrameWithDescendants(t *testing.T) {
	// Frame with 5 leaves and one nested frame, all in one row.
	leafInner := rect("inner-leaf", "")
	leafInner.SetGeometry(560, 45, 60, 40)
	inner := frame("inner", "inner-leaf")

	childIDs := []string{"c0", "c1", "c2", "c3", "inner"}
	elems := []*element.Element{frame("f", childIDs...), inner, leafInner}
	for i := 0; i < 4; i++ {
		c := rect(fmt.Sprintf("c%d", i), "")
		c.SetGeometry(float64(40+i*130), 40, 100, 50)
		elems = append(elems, c)
	}
	ctx := newTestContext(elems, DefaultOptions())

	ctx.boundFrames()
	innerBefore := *inner.Geometry
	leafBefore := *leafInner.Geometry

	if !ctx.reflowWideFrames() {
		t.Fatal("reflow did not trigger")
	}

	dx := inner.Geometry.X - innerBefore.X
	dy := inner.Geometry.Y - innerBefore.Y
	if leafInner.Geometry.X-leafBefore.X != dx || leafInner.Geometry.Y-leafBefore.Y != dy {
		t.Errorf("nested frame moved by (%v,%v) but its leaf moved by (%v,%v)",
			dx, dy, leafInner.Geometry.X-leafBefore.X, leafInner.Geometry.Y-leafBefore.Y)
	}
}
