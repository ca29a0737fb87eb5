package core

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Initial power range, in percent, for generated nodes.
const (
	MinInitialPower = 70
	MaxInitialPower = 100

	// InitialTrust is the trust score every cooperative node starts with.
	InitialTrust = 100
)

// Node is a mesh router. Position and Selfish are fixed at creation;
// Power and Trust only move downwards while a packet is in transit.
type Node struct {
	ID      int  `json:"id"`
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Power   int  `json:"power"`
	Trust   int  `json:"trust"`
	Selfish bool `json:"selfish"`
}

// Position returns the node location.
func (n *Node) Position() Position {
	return Position{X: n.X, Y: n.Y}
}

// NodeSet maps node id to node. It is owned by exactly one Simulation.
type NodeSet map[int]*Node

// IDs returns the node ids in ascending order.
func (ns NodeSet) IDs() []int {
	ids := maps.Keys(ns)
	slices.Sort(ids)
	return ids
}

// Sorted returns the nodes ordered by id.
func (ns NodeSet) Sorted() []*Node {
	ids := ns.IDs()
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, ns[id])
	}
	return out
}

// SelfishIDs returns the ids of selfish nodes in ascending order.
func (ns NodeSet) SelfishIDs() []int {
	out := []int{}
	for _, n := range ns.Sorted() {
		if n.Selfish {
			out = append(out, n.ID)
		}
	}
	return out
}

// MeanPower returns the average power across the set, or 0 when empty.
func (ns NodeSet) MeanPower() float64 {
	if len(ns) == 0 {
		return 0
	}
	sum := 0
	for _, n := range ns {
		sum += n.Power
	}
	return float64(sum) / float64(len(ns))
}

// MeanTrust returns the average trust across the set, or 0 when empty.
func (ns NodeSet) MeanTrust() float64 {
	if len(ns) == 0 {
		return 0
	}
	sum := 0
	for _, n := range ns {
		sum += n.Trust
	}
	return float64(sum) / float64(len(ns))
}

// GenerateNodes places numNodes fresh nodes uniformly on the plane. For
// each id in ascending order it draws x, then y, then power, so a fixed
// seed always yields the same set.
func GenerateNodes(rng Rand, numNodes int) NodeSet {
	nodes := make(NodeSet, max(numNodes, 0))
	for id := 0; id < numNodes; id++ {
		nodes[id] = &Node{
			ID:    id,
			X:     uniformInt(rng, 0, AreaWidth),
			Y:     uniformInt(rng, 0, AreaHeight),
			Power: uniformInt(rng, MinInitialPower, MaxInitialPower),
			Trust: InitialTrust,
		}
	}
	return nodes
}
