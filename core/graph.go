package core

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidParameters = errors.New("invalid simulation parameters")
	ErrUnknownNode       = errors.New("unknown node")
	ErrLinkBadInput      = errors.New("invalid link")
	ErrLinkExists        = errors.New("link already exists")
	ErrLayoutInvalid     = errors.New("invalid node layout")
)

// Graph is the mesh topology of one run: the node set plus every link
// produced by the topology builder. Its structure does not change after
// construction; only node power and trust are mutated, by SendPacket.
type Graph struct {
	nodes     NodeSet
	links     []Link
	adjacency map[int][]Link
}

func newGraph(nodes NodeSet) *Graph {
	return &Graph{
		nodes:     nodes,
		adjacency: make(map[int][]Link, len(nodes)),
	}
}

// addLink inserts an undirected link, normalising the endpoint order.
func (g *Graph) addLink(link Link) error {
	if link.U == link.V {
		return fmt.Errorf("%w: self-loop on node %d", ErrLinkBadInput, link.U)
	}
	if link.U > link.V {
		link.U, link.V = link.V, link.U
	}
	if _, ok := g.nodes[link.U]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, link.U)
	}
	if _, ok := g.nodes[link.V]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, link.V)
	}
	if _, exists := g.Link(link.U, link.V); exists {
		return fmt.Errorf("%w: %d-%d", ErrLinkExists, link.U, link.V)
	}

	g.links = append(g.links, link)
	g.adjacency[link.U] = append(g.adjacency[link.U], link)
	g.adjacency[link.V] = append(g.adjacency[link.V], link)
	return nil
}

// seal orders links and adjacency lists so iteration is deterministic.
func (g *Graph) seal() {
	sort.Slice(g.links, func(i, j int) bool {
		if g.links[i].U != g.links[j].U {
			return g.links[i].U < g.links[j].U
		}
		return g.links[i].V < g.links[j].V
	})
	for id, adj := range g.adjacency {
		sort.Slice(adj, func(i, j int) bool {
			return adj[i].Other(id) < adj[j].Other(id)
		})
	}
}

// Nodes returns the node set backing the graph.
func (g *Graph) Nodes() NodeSet {
	return g.nodes
}

// Node returns the node with the given id, or nil if not present.
func (g *Graph) Node(id int) *Node {
	return g.nodes[id]
}

// HasNode reports whether id is part of the graph.
func (g *Graph) HasNode(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// Links returns all links ordered by (U, V).
func (g *Graph) Links() []Link {
	out := make([]Link, len(g.links))
	copy(out, g.links)
	return out
}

// NumLinks returns the number of undirected links.
func (g *Graph) NumLinks() int {
	return len(g.links)
}

// Neighbors returns the links incident to id ordered by neighbour id.
func (g *Graph) Neighbors(id int) []Link {
	return g.adjacency[id]
}

// Link returns the link between a and b in either direction.
func (g *Graph) Link(a, b int) (Link, bool) {
	for _, l := range g.adjacency[a] {
		if l.Other(a) == b {
			return l, true
		}
	}
	return Link{}, false
}

// MeanDegree returns the average number of links per node.
func (g *Graph) MeanDegree() float64 {
	if len(g.nodes) == 0 {
		return 0
	}
	return 2 * float64(len(g.links)) / float64(len(g.nodes))
}

// MeanCapacity returns the average link capacity, or 0 without links.
func (g *Graph) MeanCapacity() float64 {
	if len(g.links) == 0 {
		return 0
	}
	sum := 0
	for _, l := range g.links {
		sum += l.Capacity
	}
	return float64(sum) / float64(len(g.links))
}

// Components partitions the nodes into connected components using an
// iterative DFS. Components are ordered by their smallest node id and each
// component lists its ids in ascending order.
func (g *Graph) Components() [][]int {
	visited := make(map[int]bool, len(g.nodes))
	var components [][]int

	for _, start := range g.nodes.IDs() {
		if visited[start] {
			continue
		}
		stack := []int{start}
		var component []int
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[v] {
				continue
			}
			visited[v] = true
			component = append(component, v)
			for _, l := range g.adjacency[v] {
				if nei := l.Other(v); !visited[nei] {
					stack = append(stack, nei)
				}
			}
		}
		sort.Ints(component)
		components = append(components, component)
	}
	return components
}
