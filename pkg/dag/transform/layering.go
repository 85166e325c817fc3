// Package transform mutates a connector graph into a rankable state.
//
// The layout engine runs [BreakCycles] followed by [AssignRanks] before
// placing nodes. Both operate in place on a [dag.Graph] built for a single
// layout invocation.
package transform

import "github.com/sketchpipe/sketchpipe/pkg/dag"

// AssignRanks assigns every node its depth along the primary flow axis
// using a longest-path layering via topological traversal (Kahn's
// algorithm): sources sit at rank 0 and each node lands one past the
// deepest of its parents, so an element is always downstream of everything
// pointing at it.
//
// Existing rank assignments are overwritten. The graph is assumed acyclic;
// nodes on a residual cycle never reach zero in-degree and stay at rank 0,
// so run [BreakCycles] first. Runs in O(V+E).
func AssignRanks(g *dag.Graph) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	ranks := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRanks(ranks)
}
