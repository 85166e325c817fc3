package sink

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sketchpipe/sketchpipe/pkg/render"
)

func testScene() []render.Element {
	return []render.Element{
		{ID: "a", Kind: "rectangle", Label: "Alpha", X: 40, Y: 40, Width: 100, Height: 50},
		{ID: "b", Kind: "diamond", Label: "Beta", X: 40, Y: 170, Width: 100, Height: 50},
		{ID: "f", Kind: "frame", X: 24, Y: -4, Width: 132, Height: 260},
		{ID: "e1", Kind: "arrow",
			Start: &render.Binding{ElementID: "a", Gap: 4},
			End:   &render.Binding{ElementID: "b", Gap: 4}},
		{ID: "e2", Kind: "arrow",
			Start: &render.Binding{ElementID: "b", Gap: 4}}, // unresolved end
	}
}

func TestWriteJSON_StableAndComplete(t *testing.T) {
	elems := testScene()

	var first, second bytes.Buffer
	if err := WriteJSON(&first, elems, true); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if err := WriteJSON(&second, elems, true); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if first.String() != second.String() {
		t.Error("repeated serialization of identical input differs")
	}

	var decoded struct {
		Elements []render.Element `json:"elements"`
		Complete bool             `json:"complete"`
	}
	if err := json.Unmarshal(first.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !decoded.Complete {
		t.Error("complete flag lost")
	}
	if len(decoded.Elements) != len(elems) {
		t.Errorf("round-trip count = %d, want %d", len(decoded.Elements), len(elems))
	}
	if decoded.Elements[0].ID != "a" || decoded.Elements[0].X != 40 {
		t.Errorf("first element corrupted: %+v", decoded.Elements[0])
	}
}

func TestMarshalJSON_MatchesWriter(t *testing.T) {
	elems := testScene()

	data, err := MarshalJSON(elems, false)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, elems, false); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != strings.TrimSpace(string(data)) {
		t.Error("writer and marshal outputs diverge")
	}
}

func TestToDOT_NodesAndEdges(t *testing.T) {
	dot := ToDOT(testScene())

	for _, want := range []string{
		`"a" [label="Alpha"]`,
		`shape=diamond`,
		`"a" -> "b";`,
		`fillcolor=lightgrey`, // frame styling
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}

	// Unresolved connector e2 must not emit an edge.
	if got := strings.Count(dot, "->"); got != 1 {
		t.Errorf("edge count = %d, want 1", got)
	}
	// Connectors never appear as nodes.
	if strings.Contains(dot, `"e1" [`) {
		t.Error("connector emitted as a node")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>` + "\n" +
		`<svg width="120pt" height="80pt" viewBox="0.00 0.00 90.00 62.00" xmlns="http://www.w3.org/2000/svg">` +
		`<g></g></svg>`)

	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 90.00 62.00"`) {
		t.Errorf("viewBox not re-anchored: %s", out)
	}
	if !strings.Contains(out, `width="90" height="62"`) {
		t.Errorf("pixel dimensions not set: %s", out)
	}

	// No viewBox: input passes through untouched.
	plain := []byte(`<svg><g/></svg>`)
	if got := string(normalizeViewBox(plain)); got != string(plain) {
		t.Errorf("viewBox-less SVG modified: %s", got)
	}
}
