// Package render converts positioned semantic elements into fully styled
// renderable elements for the external canvas renderer. Conversion is a pure
// read of its input: geometry computed by the layout engine is authoritative
// and is never recomputed here.
package render

import (
	"github.com/sketchpipe/sketchpipe/pkg/element"
)

// Default visual attributes applied when the source element does not carry
// its own. These match the renderer's built-in theme.
const (
	DefaultStrokeColor = "#1e1e1e"
	DefaultBackground  = "transparent"
	DefaultFillStyle   = "solid"
	DefaultStrokeWidth = 2.0
	DefaultFontSize    = 16.0

	// BindingGap is the visual gap between a connector tip and the shape it
	// binds to.
	BindingGap = 4.0
)

// Binding attaches a connector endpoint to a shape. The renderer keeps the
// connector glued to the shape when the shape is later moved.
type Binding struct {
	ElementID string  `json:"elementId"`
	Focus     float64 `json:"focus"`
	Gap       float64 `json:"gap"`
}

// Element is a fully specified renderable element. Kind carries the wire
// type code so the output round-trips through the same vocabulary the
// parser accepts.
type Element struct {
	ID     string  `json:"id"`
	Kind   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Label       string  `json:"label,omitempty"`
	StrokeColor string  `json:"strokeColor"`
	Background  string  `json:"backgroundColor"`
	FillStyle   string  `json:"fillStyle"`
	StrokeWidth float64 `json:"strokeWidth"`
	FontSize    float64 `json:"fontSize,omitempty"`

	GroupIDs []string `json:"groupIds,omitempty"`

	Start *Binding `json:"startBinding,omitempty"`
	End   *Binding `json:"endBinding,omitempty"`
}

// Convert maps every semantic element to a renderable element. Connector
// endpoints that no longer resolve produce a nil binding on that side; the
// connector is still emitted. Elements without geometry (connectors, frames
// that never gained positioned descendants) render at the zero origin.
func Convert(elems []*element.Element) []Element {
	idx := element.NewIndex(elems)
	out := make([]Element, 0, len(elems))
	for _, el := range elems {
		out = append(out, convertOne(el, idx))
	}
	return out
}

func convertOne(el *element.Element, idx *element.Index) Element {
	r := Element{
		ID:          el.ID,
		Kind:        el.Kind.Code(),
		Label:       el.Label,
		StrokeColor: DefaultStrokeColor,
		Background:  DefaultBackground,
		FillStyle:   DefaultFillStyle,
		StrokeWidth: DefaultStrokeWidth,
	}
	if el.Background != "" {
		r.Background = el.Background
	}
	if el.Label != "" {
		r.FontSize = DefaultFontSize
	}
	if el.Group != "" {
		r.GroupIDs = []string{el.Group}
	}
	if g := el.Geometry; g != nil {
		r.X, r.Y, r.Width, r.Height = g.X, g.Y, g.Width, g.Height
	}
	if el.IsConnector() {
		r.Start = bind(idx, el.SourceID)
		r.End = bind(idx, el.EndID)
		setConnectorSpan(&r, idx, el)
	}
	return r
}

// bind resolves an endpoint id to a binding record, nil when unresolved.
func bind(idx *element.Index, id string) *Binding {
	if id == "" {
		return nil
	}
	if _, ok := idx.Lookup(id); !ok {
		return nil
	}
	return &Binding{ElementID: id, Gap: BindingGap}
}

// setConnectorSpan derives the connector's span from the centers of its
// bound endpoints. Both endpoints must carry geometry; otherwise the span
// stays at the zero value and the renderer routes the connector itself.
func setConnectorSpan(r *Element, idx *element.Index, el *element.Element) {
	src, ok := idx.Lookup(el.SourceID)
	if !ok || !src.HasGeometry() {
		return
	}
	dst, ok := idx.Lookup(el.EndID)
	if !ok || !dst.HasGeometry() {
		return
	}
	r.X = src.Geometry.CenterX()
	r.Y = src.Geometry.CenterY()
	r.Width = dst.Geometry.CenterX() - r.X
	r.Height = dst.Geometry.CenterY() - r.Y
}
