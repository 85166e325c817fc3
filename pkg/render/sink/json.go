package sink

import (
	"encoding/json"
	"io"

	"github.com/sketchpipe/sketchpipe/pkg/errors"
	"github.com/sketchpipe/sketchpipe/pkg/render"
)

// scene is the stable envelope written to the renderer boundary.
type scene struct {
	Elements []render.Element `json:"elements"`
	Complete bool             `json:"complete"`
}

// WriteJSON writes the converted scene as indented JSON. Element order is
// preserved from the input, so repeated runs over identical input produce
// byte-identical output.
func WriteJSON(w io.Writer, elems []render.Element, complete bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(scene{Elements: elems, Complete: complete}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	return nil
}

// MarshalJSON returns the scene as an indented JSON document.
func MarshalJSON(elems []render.Element, complete bool) ([]byte, error) {
	data, err := json.MarshalIndent(scene{Elements: elems, Complete: complete}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	return data, nil
}
