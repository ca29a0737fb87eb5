package core

// Status is the terminal state of a packet delivery attempt.
type Status string

const (
	StatusDelivered Status = "Delivered"
	StatusDropped   Status = "Dropped by selfish node"
	StatusNoPath    Status = "No Path Found"
)

// Per-hop behaviour of the delivery model.
const (
	// SelfishDropProbability is the chance a selfish node drops a packet
	// each time one reaches it.
	SelfishDropProbability = 0.6
	// DropTrustPenalty is subtracted from a node's trust when it drops.
	DropTrustPenalty = 5

	MinHopPowerCost = 1
	MaxHopPowerCost = 5
)

// Outcome describes how a single packet delivery attempt ended.
type Outcome struct {
	Status Status `json:"status"`
	// Path is the route attempted, or nil when no route existed.
	Path []int `json:"path"`
	// DroppedAt is the id of the node that dropped the packet, set only
	// when Status is StatusDropped.
	DroppedAt *int `json:"dropped_at,omitempty"`
	// HopsTraversed counts the nodes that forwarded the packet.
	HopsTraversed int `json:"hops_traversed"`
}

// Hops returns the number of links in the attempted path.
func (o Outcome) Hops() int {
	if len(o.Path) == 0 {
		return 0
	}
	return len(o.Path) - 1
}

// SendPacket routes a packet from src to dst and walks the route hop by
// hop. Every node on the path, endpoints included, is visited. A selfish
// node drops the packet with SelfishDropProbability, losing trust and
// ending the walk; any node that forwards spends 1..5 units of power.
func SendPacket(rng Rand, g *Graph, src, dst int) Outcome {
	path, ok := FindRoute(g, src, dst)
	if !ok {
		return Outcome{Status: StatusNoPath}
	}

	for i, hop := range path {
		node := g.Node(hop)
		if node.Selfish && rng.Float64() < SelfishDropProbability {
			node.Trust -= DropTrustPenalty
			return Outcome{
				Status:        StatusDropped,
				Path:          path,
				DroppedAt:     &hop,
				HopsTraversed: i,
			}
		}
		node.Power -= uniformInt(rng, MinHopPowerCost, MaxHopPowerCost)
	}

	return Outcome{
		Status:        StatusDelivered,
		Path:          path,
		HopsTraversed: len(path),
	}
}
