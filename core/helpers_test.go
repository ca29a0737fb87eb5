package core

// fixedRand returns the same draw every time. Intn clamps to n-1 so a
// large value always selects the last candidate.
type fixedRand struct {
	intn  int
	float float64
}

func (r fixedRand) Intn(n int) int {
	if r.intn >= n {
		return n - 1
	}
	return r.intn
}

func (r fixedRand) Float64() float64 { return r.float }

// nodesAt builds a node set with ids assigned in argument order.
func nodesAt(points ...Position) NodeSet {
	nodes := make(NodeSet, len(points))
	for id, p := range points {
		nodes[id] = &Node{ID: id, X: p.X, Y: p.Y, Power: MaxInitialPower, Trust: InitialTrust}
	}
	return nodes
}

// snapshot copies node values so later mutation can be compared.
func snapshot(nodes NodeSet) map[int]Node {
	out := make(map[int]Node, len(nodes))
	for id, n := range nodes {
		out[id] = *n
	}
	return out
}

func intPtr(v int) *int { return &v }
