package render

import (
	"testing"

	"github.com/sketchpipe/sketchpipe/pkg/element"
)

func positioned(id string, x, y, w, h float64) *element.Element {
	el := &element.Element{ID: id, Kind: element.KindRectangle}
	el.SetGeometry(x, y, w, h)
	return el
}

func TestConvert_GeometryPassthrough(t *testing.T) {
	el := positioned("a", 10, 20, 120, 60)
	el.Label = "Service A"

	out := Convert([]*element.Element{el})
	if len(out) != 1 {
		t.Fatalf("got %d elements, want 1", len(out))
	}
	r := out[0]
	if r.X != 10 || r.Y != 20 || r.Width != 120 || r.Height != 60 {
		t.Errorf("geometry altered: %+v", r)
	}
	if r.Kind != "rectangle" {
		t.Errorf("kind = %q, want rectangle", r.Kind)
	}
	if r.Label != "Service A" || r.FontSize != DefaultFontSize {
		t.Errorf("label styling wrong: label=%q fontSize=%v", r.Label, r.FontSize)
	}
}

func TestConvert_DefaultStyling(t *testing.T) {
	plain := positioned("a", 0, 0, 10, 10)
	colored := positioned("b", 0, 0, 10, 10)
	colored.Background = "#ffc9c9"
	colored.Group = "grp-1"

	out := Convert([]*element.Element{plain, colored})

	if out[0].StrokeColor != DefaultStrokeColor || out[0].Background != DefaultBackground ||
		out[0].FillStyle != DefaultFillStyle || out[0].StrokeWidth != DefaultStrokeWidth {
		t.Errorf("defaults not applied: %+v", out[0])
	}
	if out[0].GroupIDs != nil {
		t.Error("ungrouped element received group ids")
	}
	if out[1].Background != "#ffc9c9" {
		t.Errorf("explicit background lost: %q", out[1].Background)
	}
	if len(out[1].GroupIDs) != 1 || out[1].GroupIDs[0] != "grp-1" {
		t.Errorf("group not propagated: %v", out[1].GroupIDs)
	}
}

func TestConvert_ConnectorBindings(t *testing.T) {
	a := positioned("a", 0, 0, 100, 50)
	b := positioned("b", 0, 200, 100, 50)
	c := &element.Element{ID: "e", Kind: element.KindConnector, SourceID: "a", EndID: "b"}

	out := Convert([]*element.Element{a, b, c})
	r := out[2]

	if r.Kind != "arrow" {
		t.Errorf("connector kind = %q, want arrow", r.Kind)
	}
	if r.Start == nil || r.Start.ElementID != "a" {
		t.Errorf("start binding = %+v, want a", r.Start)
	}
	if r.End == nil || r.End.ElementID != "b" {
		t.Errorf("end binding = %+v, want b", r.End)
	}
	if r.Start.Gap != BindingGap {
		t.Errorf("binding gap = %v, want %v", r.Start.Gap, BindingGap)
	}
	// Span runs center to center.
	if r.X != 50 || r.Y != 25 || r.Width != 0 || r.Height != 200 {
		t.Errorf("connector span = (%v,%v,%v,%v), want (50,25,0,200)", r.X, r.Y, r.Width, r.Height)
	}
}

func TestConvert_UnresolvedEndpointStillRendered(t *testing.T) {
	a := positioned("a", 0, 0, 100, 50)
	c := &element.Element{ID: "e", Kind: element.KindConnector, SourceID: "a", EndID: "ghost"}

	out := Convert([]*element.Element{a, c})
	r := out[1]

	if r.Start == nil {
		t.Error("resolvable start binding dropped")
	}
	if r.End != nil {
		t.Errorf("unresolved end produced binding %+v, want nil", r.End)
	}
	// No span without two positioned endpoints.
	if r.X != 0 || r.Y != 0 || r.Width != 0 || r.Height != 0 {
		t.Errorf("span computed for unbound connector: %+v", r)
	}
}

func TestConvert_NeverMutatesInput(t *testing.T) {
	el := positioned("a", 5, 6, 70, 80)
	before := *el.Geometry

	Convert([]*element.Element{el})

	if *el.Geometry != before {
		t.Errorf("input geometry mutated: %+v want %+v", *el.Geometry, before)
	}
}
