package layout

import (
	"github.com/sketchpipe/sketchpipe/pkg/dag"
	"github.com/sketchpipe/sketchpipe/pkg/dag/transform"
	"github.com/sketchpipe/sketchpipe/pkg/element"
)

// buildGraph constructs the directed graph the rank pass operates on.
// Nodes are all non-frame, non-connector elements. Edges come from
// connectors whose both endpoints resolve to graph nodes; a connector with
// a dangling reference contributes no edge and no error. If zero connectors
// resolve, edges are synthesized between consecutive top-level elements in
// input order so an unconnected diagram still flows instead of stacking at
// rank 0.
func (ctx *layoutContext) buildGraph() (*dag.Graph, error) {
	g := dag.New()

	for _, el := range ctx.elems {
		if el.IsFrame() || el.IsConnector() {
			continue
		}
		if err := g.AddNode(dag.Node{ID: el.ID}); err != nil {
			return nil, Transient(err)
		}
	}

	dropped := 0
	for _, el := range ctx.elems {
		if !el.IsConnector() {
			continue
		}
		if _, ok := g.Node(el.SourceID); !ok {
			dropped++
			continue
		}
		if _, ok := g.Node(el.EndID); !ok {
			dropped++
			continue
		}
		if err := g.AddEdge(dag.Edge{From: el.SourceID, To: el.EndID}); err != nil {
			return nil, Transient(err)
		}
	}
	if dropped > 0 {
		ctx.logger.Debug("dropped connectors with unresolved endpoints", "count", dropped)
	}

	if g.EdgeCount() == 0 {
		ctx.synthesizeChain(g)
	}

	if removed := transform.BreakCycles(g); removed > 0 {
		ctx.logger.Debug("broke connector cycles", "edges_removed", removed)
	}
	transform.AssignRanks(g)
	return g, nil
}

// synthesizeChain links consecutive top-level elements so a connectorless
// diagram still reads in input order. Contained elements are left to their
// frames and frames themselves never join the chain.
func (ctx *layoutContext) synthesizeChain(g *dag.Graph) {
	var prev string
	for _, el := range ctx.elems {
		if el.IsFrame() || el.IsConnector() || ctx.idx.Contained(el.ID) {
			continue
		}
		if prev != "" {
			// Both endpoints are known graph nodes here, so an edge error
			// would mean a bug rather than a transient state; skip quietly.
			_ = g.AddEdge(dag.Edge{From: prev, To: el.ID})
		}
		prev = el.ID
	}
}

// assignCoordinates places every graph node from its rank: ranks advance
// along the primary flow axis, nodes within a rank are laid out side by
// side on the secondary axis, centered per rank and converted to top-left
// coordinates using each node's own estimated size.
func (ctx *layoutContext) assignCoordinates(g *dag.Graph) {
	opts := ctx.opts
	primary := opts.MarginY
	if opts.Direction == DirectionLeftToRight {
		primary = opts.MarginX
	}

	for _, rank := range g.RankIDs() {
		nodes := g.NodesInRank(rank)

		// Rank extent on the primary axis is the tallest (TB) or widest
		// (LR) node in the rank.
		var extent float64
		for _, n := range nodes {
			el, ok := ctx.idx.Lookup(n.ID)
			if !ok || !el.HasGeometry() {
				continue
			}
			if s := ctx.primarySize(el.Geometry); s > extent {
				extent = s
			}
		}

		secondary := opts.MarginX
		if opts.Direction == DirectionLeftToRight {
			secondary = opts.MarginY
		}
		for _, n := range nodes {
			el, ok := ctx.idx.Lookup(n.ID)
			if !ok || !el.HasGeometry() {
				continue
			}
			geo := el.Geometry
			if opts.Direction == DirectionLeftToRight {
				geo.X = primary + (extent-geo.Width)/2
				geo.Y = secondary
				secondary += geo.Height + opts.NodeSep
			} else {
				geo.X = secondary
				geo.Y = primary + (extent-geo.Height)/2
				secondary += geo.Width + opts.NodeSep
			}
		}

		primary += extent + opts.RankSep
	}
}

func (ctx *layoutContext) primarySize(g *element.Geometry) float64 {
	if ctx.opts.Direction == DirectionLeftToRight {
		return g.Width
	}
	return g.Height
}
