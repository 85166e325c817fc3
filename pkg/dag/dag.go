// Package dag provides the directed graph the layout engine ranks.
//
// Graph nodes are the ids of positionable diagram elements (shapes and
// text); edges come from connectors whose endpoints both resolve. Nodes
// carry a rank, the layer along the primary flow axis assigned by
// [transform.AssignRanks]. The graph is rebuilt from scratch for every
// layout invocation and is not safe for concurrent use.
package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node id is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same id already exists. During streaming this is expected transiently
	// and treated as a recoverable graph-state error by the layout engine.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a directed cycle
	// is detected. Run [transform.BreakCycles] before ranking to remove them.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Node is a vertex in the connector graph. ID references a semantic element;
// Rank is the layer along the primary flow axis (0 = first rank, increasing
// in flow direction). The zero value is not usable without an ID.
type Node struct {
	ID   string
	Rank int
}

// Edge is a directed connection between two node ids, derived from a
// connector element's source and end references.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph with a rank index over its nodes.
// Use New to create a usable instance.
type Graph struct {
	nodes    map[string]*Node
	order    []string // node ids in insertion order
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	ranks    map[int][]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		ranks:    make(map[int][]*Node),
	}
}

// AddNode adds a node and indexes it by rank.
// Returns ErrInvalidNodeID for an empty id or ErrDuplicateNodeID if the id
// is already present.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	g.ranks[node.Rank] = append(g.ranks[node.Rank], node)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is
// missing; the caller decides whether that is a dropped dangling reference
// or a hard failure.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the edge from→to if it exists. Removing a missing edge
// is a no-op. If parallel edges exist, all of them are removed.
func (g *Graph) RemoveEdge(from, to string) {
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.From == from && e.To == to })
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(s string) bool { return s == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(s string) bool { return s == from })
}

// SetRanks updates rank assignments and rebuilds the rank index.
// Nodes absent from the map keep their current rank. Within a rank, nodes
// keep their insertion order so repeated layouts of the same input place
// them identically.
func (g *Graph) SetRanks(ranks map[string]int) {
	g.ranks = make(map[int][]*Node)
	for _, id := range g.order {
		n := g.nodes[id]
		if r, ok := ranks[id]; ok {
			n.Rank = r
		}
		g.ranks[n.Rank] = append(g.ranks[n.Rank], n)
	}
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The pointers alias the
// graph's own nodes.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the ids this node has edges to. Read-only view.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the ids that have edges to this node. Read-only view.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// InDegree returns the number of incoming edges, 0 for unknown ids.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of outgoing edges, 0 for unknown ids.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// NodesInRank returns the nodes assigned to the given rank in insertion
// order, or nil if the rank is empty.
func (g *Graph) NodesInRank(rank int) []*Node { return g.ranks[rank] }

// RankIDs returns all rank indices in ascending order.
func (g *Graph) RankIDs() []int {
	return slices.Sorted(maps.Keys(g.ranks))
}

// MaxRank returns the highest rank index, or 0 for an empty graph.
func (g *Graph) MaxRank() int {
	ids := g.RankIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// Sources returns nodes with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}

// Validate returns ErrGraphHasCycle if the graph contains a directed cycle,
// nil otherwise. Detection is DFS with white/gray/black coloring, O(V+E).
func (g *Graph) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for id := range g.nodes {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
