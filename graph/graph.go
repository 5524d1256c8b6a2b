package graph

import (
	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/partition"
)

// Node is one asset in the validated dependency graph.
type Node struct {
	// Name is the asset name.
	Name string
	// Spec is the asset's declarative configuration.
	Spec *config.Asset
	// Upstream lists direct dependencies, in declaration order.
	Upstream []*Node
	// Downstream lists direct dependents, in declaration order.
	Downstream []*Node

	// order is the declaration index, used for deterministic tie-breaks.
	order int
}

// Dimensions returns the asset's partition dimension names in declared order.
func (n *Node) Dimensions() []string {
	return n.Spec.Partitions
}

// Graph is a validated, acyclic asset dependency graph annotated with a
// topological order. Construction is total: either every reference resolves
// and no cycle exists, or Build fails and no graph is produced.
type Graph struct {
	nodes  []*Node
	byName map[string]*Node
	topo   []*Node
}

// Build compiles the asset list into a validated DAG. Two passes: index
// every asset name first, then resolve and validate edges. Validation
// failures (unknown asset, unknown dimension, cycle) are fatal; no partial
// graph is ever returned.
func Build(cfg *config.Config, space *partition.Space) (*Graph, error) {
	g := &Graph{byName: make(map[string]*Node, len(cfg.Assets))}

	// Pass 1: index all names.
	for i := range cfg.Assets {
		spec := &cfg.Assets[i]
		node := &Node{Name: spec.Name, Spec: spec, order: i}
		g.nodes = append(g.nodes, node)
		g.byName[spec.Name] = node
	}

	// Pass 2: resolve edges and dimension references.
	for _, node := range g.nodes {
		for _, dim := range node.Spec.Partitions {
			if !space.Has(dim) {
				return nil, &UnknownPartitionError{Asset: node.Name, Dimension: dim}
			}
		}
		for _, dep := range node.Spec.DependsOn {
			upstream, ok := g.byName[dep]
			if !ok {
				return nil, &UnknownAssetError{Asset: node.Name, Reference: dep}
			}
			node.Upstream = append(node.Upstream, upstream)
			upstream.Downstream = append(upstream.Downstream, node)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CyclicDependencyError{Cycle: cycle}
	}

	g.topo = g.topoSort()
	return g, nil
}

// Node returns the named node, if declared.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// TopoOrder returns the assets in a topological order: every upstream
// before its downstreams, ties broken by declaration order.
func (g *Graph) TopoOrder() []*Node {
	return g.topo
}

// findCycle runs DFS cycle detection. Returns the cycle path (first node
// repeated at the end) or nil if the graph is acyclic.
func (g *Graph) findCycle() []string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[*Node]int, len(g.nodes))
	var stack []string

	var visit func(n *Node) []string
	visit = func(n *Node) []string {
		state[n] = inStack
		stack = append(stack, n.Name)

		for _, up := range n.Upstream {
			switch state[up] {
			case inStack:
				// Found a back edge; slice the stack from the repeat point.
				for i, name := range stack {
					if name == up.Name {
						return append(append([]string(nil), stack[i:]...), up.Name)
					}
				}
			case unvisited:
				if cycle := visit(up); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}

	for _, n := range g.nodes {
		if state[n] == unvisited {
			if cycle := visit(n); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// topoSort computes a topological order via Kahn's algorithm. Among ready
// nodes, the one declared earliest is emitted first, making the order
// deterministic for a given configuration. Assumes the graph is acyclic.
func (g *Graph) topoSort() []*Node {
	indegree := make(map[*Node]int, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n] = len(n.Upstream)
	}

	order := make([]*Node, 0, len(g.nodes))
	for len(order) < len(g.nodes) {
		var next *Node
		for _, n := range g.nodes {
			if indegree[n] == 0 && (next == nil || n.order < next.order) {
				next = n
			}
		}
		order = append(order, next)
		indegree[next] = -1
		for _, down := range next.Downstream {
			indegree[down]--
		}
	}
	return order
}
