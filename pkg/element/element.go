// Package element defines the semantic diagram element model.
//
// A semantic element describes a diagram node, container, or connection by
// structure only: a type, an id, a label, and relationships to other
// elements. Geometry is optional on input and is populated by the layout
// engine. Elements are the unit of exchange between the streaming parser,
// the layout engine, and the renderable converter.
package element

import "errors"

var (
	// ErrUnknownKind is returned by [KindFromCode] for unrecognized type codes.
	ErrUnknownKind = errors.New("unknown element kind")
)

// Kind identifies what an element is: a container frame, a plain shape,
// a connector between two elements, or free-standing text.
type Kind int

const (
	// KindRectangle is a plain rectangular shape.
	KindRectangle Kind = iota
	// KindDiamond is a decision-style diamond shape.
	KindDiamond
	// KindEllipse is an elliptical shape.
	KindEllipse
	// KindFrame is a container whose box is derived from its children.
	KindFrame
	// KindConnector is a directed connection between two elements.
	KindConnector
	// KindLine is an unconnected line segment.
	KindLine
	// KindText is free-standing label text.
	KindText
)

// Wire type codes as produced by the generating model.
const (
	codeRectangle = "rectangle"
	codeDiamond   = "diamond"
	codeEllipse   = "ellipse"
	codeFrame     = "frame"
	codeArrow     = "arrow"
	codeLine      = "line"
	codeText      = "text"
)

// KindFromCode maps a wire type code to a Kind.
// Returns ErrUnknownKind for codes this core does not understand, which
// callers treat as a dropped element rather than a failure.
func KindFromCode(code string) (Kind, error) {
	switch code {
	case codeRectangle:
		return KindRectangle, nil
	case codeDiamond:
		return KindDiamond, nil
	case codeEllipse:
		return KindEllipse, nil
	case codeFrame:
		return KindFrame, nil
	case codeArrow:
		return KindConnector, nil
	case codeLine:
		return KindLine, nil
	case codeText:
		return KindText, nil
	default:
		return 0, ErrUnknownKind
	}
}

// Code returns the wire type code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindRectangle:
		return codeRectangle
	case KindDiamond:
		return codeDiamond
	case KindEllipse:
		return codeEllipse
	case KindFrame:
		return codeFrame
	case KindConnector:
		return codeArrow
	case KindLine:
		return codeLine
	case KindText:
		return codeText
	default:
		return "unknown"
	}
}

// String returns the wire code, which doubles as the display name.
func (k Kind) String() string { return k.Code() }

// Geometry is an absolute box in canvas coordinates.
// X and Y are the top-left corner.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (g Geometry) Right() float64 { return g.X + g.Width }

// Bottom returns the y coordinate of the bottom edge.
func (g Geometry) Bottom() float64 { return g.Y + g.Height }

// CenterX returns the horizontal center.
func (g Geometry) CenterX() float64 { return g.X + g.Width/2 }

// CenterY returns the vertical center.
func (g Geometry) CenterY() float64 { return g.Y + g.Height/2 }

// Element is a semantic diagram element.
//
// Children is populated only for frames and holds ids in containment order.
// SourceID and EndID are populated only for connectors. Geometry is nil
// until the layout engine assigns one, unless the input was pre-positioned.
// The layout engine mutates Geometry in place; everything downstream of it
// treats the value as authoritative and read-only.
type Element struct {
	ID       string
	Kind     Kind
	Label    string
	Children []string
	SourceID string
	EndID    string

	// Background is an optional fill color hint from the generator.
	Background string
	// Group tags elements that should move together in the target UI.
	Group string

	Geometry *Geometry
}

// IsFrame reports whether the element is a container frame.
func (e *Element) IsFrame() bool { return e.Kind == KindFrame }

// IsConnector reports whether the element connects two other elements.
func (e *Element) IsConnector() bool { return e.Kind == KindConnector }

// HasGeometry reports whether the element carries an explicit box.
func (e *Element) HasGeometry() bool { return e.Geometry != nil }

// SetGeometry assigns the element's box, replacing any previous value.
func (e *Element) SetGeometry(x, y, w, h float64) {
	e.Geometry = &Geometry{X: x, Y: y, Width: w, Height: h}
}

// Index is a lookup table over one generation's elements.
// It is built once per layout or convert invocation and never shared
// across invocations.
type Index struct {
	byID     map[string]*Element
	parentOf map[string]string
}

// NewIndex builds an index over elems. Duplicate ids keep the first
// occurrence; later duplicates are ignored, matching the parser contract.
// The parent relation is discovered by scanning every frame's child list;
// a child claimed by several frames keeps the first claimant.
func NewIndex(elems []*Element) *Index {
	idx := &Index{
		byID:     make(map[string]*Element, len(elems)),
		parentOf: make(map[string]string),
	}
	for _, e := range elems {
		if _, exists := idx.byID[e.ID]; !exists {
			idx.byID[e.ID] = e
		}
	}
	for _, e := range elems {
		if !e.IsFrame() {
			continue
		}
		for _, childID := range e.Children {
			if _, ok := idx.byID[childID]; !ok {
				continue // dangling child reference, dropped locally
			}
			if _, claimed := idx.parentOf[childID]; !claimed {
				idx.parentOf[childID] = e.ID
			}
		}
	}
	return idx
}

// Lookup returns the element with the given id.
func (idx *Index) Lookup(id string) (*Element, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

// Parent returns the id of the frame containing id, if any.
func (idx *Index) Parent(id string) (string, bool) {
	p, ok := idx.parentOf[id]
	return p, ok
}

// Contained reports whether the element is owned by any frame.
func (idx *Index) Contained(id string) bool {
	_, ok := idx.parentOf[id]
	return ok
}

// Depth returns the containment depth of a frame: 0 for a top-level frame,
// parents + 1 otherwise. Traversal is bounded by a visited set so that a
// containment cycle produced by malformed input yields 0 instead of
// recursing forever.
func (idx *Index) Depth(id string) int {
	return idx.depth(id, map[string]bool{})
}

func (idx *Index) depth(id string, visited map[string]bool) int {
	if visited[id] {
		return 0
	}
	visited[id] = true
	parent, ok := idx.parentOf[id]
	if !ok {
		return 0
	}
	return idx.depth(parent, visited) + 1
}
