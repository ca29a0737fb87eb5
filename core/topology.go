package core

// TopologyOptions controls how links are derived from node positions.
type TopologyOptions struct {
	// TxRange is the maximum distance at which two nodes can hear each
	// other. A pair exactly TxRange apart is linked.
	TxRange int

	MultiRadio   bool
	MultiChannel bool
}

// BuildTopology evaluates every unordered node pair once and links the
// pairs that are within transmission range. Links carry their length as
// weight and the capacity derived by LinkCapacity.
func BuildTopology(nodes NodeSet, opts TopologyOptions) *Graph {
	g := newGraph(nodes)

	ordered := nodes.Sorted()
	n := len(ordered)
	txRange := float64(opts.TxRange)
	for i := 0; i < n; i++ {
		a := ordered[i]
		for j := i + 1; j < n; j++ {
			b := ordered[j]

			dist := a.Position().DistanceTo(b.Position())
			if dist > txRange {
				continue
			}
			// Ids are unique and i < j, so insertion cannot fail.
			_ = g.addLink(Link{
				U:        a.ID,
				V:        b.ID,
				Weight:   dist,
				Capacity: LinkCapacity(dist, opts.MultiRadio, opts.MultiChannel),
			})
		}
	}

	g.seal()
	return g
}
