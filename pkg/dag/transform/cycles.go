package transform

import "github.com/sketchpipe/sketchpipe/pkg/dag"

// BreakCycles removes back edges until the graph is acyclic and returns the
// number of edges removed. Connector graphs produced by a generating model
// are not guaranteed to be acyclic (arbitrary cyclic layout is a non-goal,
// but the input must still not wedge the engine), so ranking always runs
// behind this pass.
//
// Back edges are found by DFS with white/gray/black coloring, starting from
// sources first so that the dropped edge in a cycle tends to be the one
// pointing back toward an entry point.
func BreakCycles(g *dag.Graph) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e[0], e[1])
	}
	return len(backEdges)
}
