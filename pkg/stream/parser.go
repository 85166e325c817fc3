// Package stream recovers semantic elements from a truncated JSON stream.
//
// The generating model emits a growing JSON document, either a bare array of
// compact element objects or an {"e": [...]} wrapper around one. At any point
// the text may end mid-key, mid-string, or mid-object. Parse extracts the
// longest prefix of fully closed, valid objects and reports whether the array
// itself has been closed. It never fails: malformed or incomplete trailing
// input simply yields fewer elements, to be retried on the next, longer chunk.
package stream

import (
	"encoding/json"

	"github.com/sketchpipe/sketchpipe/pkg/element"
)

// wireElement mirrors the compact wire format emitted by the generator.
// Width/height use pointers so "absent" is distinguishable from zero.
type wireElement struct {
	Type       string   `json:"t"`
	ID         string   `json:"i"`
	Label      string   `json:"l"`
	Children   []string `json:"ch"`
	SourceID   string   `json:"si"`
	EndID      string   `json:"ei"`
	Background string   `json:"bg"`
	Group      string   `json:"g"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	W          *float64 `json:"w"`
	H          *float64 `json:"h"`
}

// Parse extracts every element whose textual representation is already a
// complete, valid JSON object from text, in order of appearance. The second
// return value is true once the element array's closing bracket has been
// seen.
//
// Parse is total: any string input, including empty text and non-JSON
// garbage, returns a (possibly empty) element list and never panics. It is
// idempotent for a fixed input and monotonic under append-only growth:
// elements recovered from a prefix are recovered identically from any
// extension of it.
//
// Objects with an empty id or an unrecognized type code are dropped.
// Duplicate ids keep the first occurrence.
func Parse(text string) ([]*element.Element, bool) {
	start := arrayStart(text)
	if start < 0 {
		return nil, false
	}

	var (
		elems    []*element.Element
		seen     = map[string]bool{}
		complete bool

		inString bool
		escaped  bool
		depth    int
		objStart = -1
	)

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue // wrapper close or stray brace, not ours
			}
			depth--
			if depth == 0 && objStart >= 0 {
				if e := decodeObject(text[objStart : i+1]); e != nil && !seen[e.ID] {
					seen[e.ID] = true
					elems = append(elems, e)
				}
				objStart = -1
			}
		case ']':
			if depth == 0 {
				complete = true
				return elems, complete
			}
		}
	}

	return elems, complete
}

// arrayStart locates the opening bracket of the element array, skipping an
// optional {"e": wrapper. Returns -1 if no array has started yet.
func arrayStart(text string) int {
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			return i + 1
		}
	}
	return -1
}

// decodeObject unmarshals one closed object and converts it to an Element.
// Returns nil for objects that do not decode or do not describe a usable
// element; both are dropped silently per the streaming contract.
func decodeObject(raw string) *element.Element {
	var w wireElement
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil
	}
	if w.ID == "" {
		return nil
	}
	kind, err := element.KindFromCode(w.Type)
	if err != nil {
		return nil
	}

	e := &element.Element{
		ID:         w.ID,
		Kind:       kind,
		Label:      w.Label,
		Children:   w.Children,
		SourceID:   w.SourceID,
		EndID:      w.EndID,
		Background: w.Background,
		Group:      w.Group,
	}
	if w.W != nil && w.H != nil {
		var x, y float64
		if w.X != nil {
			x = *w.X
		}
		if w.Y != nil {
			y = *w.Y
		}
		e.SetGeometry(x, y, *w.W, *w.H)
	}
	return e
}
