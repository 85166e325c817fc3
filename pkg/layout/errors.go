package layout

import (
	stderrors "errors"
	"fmt"

	"github.com/sketchpipe/sketchpipe/pkg/dag"
	"github.com/sketchpipe/sketchpipe/pkg/errors"
)

// TransientGraphError marks a rank-assignment failure caused by a graph in
// a transient, still-incomplete state. Mid-stream the connector graph
// routinely references nodes that have not arrived yet; those failures are
// expected, swallowed at debug level, and resolve themselves on the next,
// longer chunk. Anything not wrapped in this type is surfaced as a warning.
type TransientGraphError struct {
	Err error
}

// Error implements the error interface.
func (e *TransientGraphError) Error() string {
	return fmt.Sprintf("transient graph state: %v", e.Err)
}

// Unwrap returns the wrapped error.
func (e *TransientGraphError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientGraphError carrying the
// TRANSIENT_GRAPH error code. Wrapping nil returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientGraphError{
		Err: errors.Wrap(errors.ErrCodeTransientGraph, err, "graph not yet consistent"),
	}
}

// IsTransient reports whether err is, or wraps, a TransientGraphError or a
// TRANSIENT_GRAPH coded error, or is one of the graph-construction errors
// expected while the stream is incomplete.
func IsTransient(err error) bool {
	var te *TransientGraphError
	if stderrors.As(err, &te) {
		return true
	}
	if errors.Is(err, errors.ErrCodeTransientGraph) {
		return true
	}
	return stderrors.Is(err, dag.ErrDuplicateNodeID) ||
		stderrors.Is(err, dag.ErrUnknownSourceNode) ||
		stderrors.Is(err, dag.ErrUnknownTargetNode)
}
