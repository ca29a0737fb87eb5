package core

import "golang.org/x/exp/slices"

// Trust range re-rolled for nodes marked selfish.
const (
	MinSelfishTrust = 20
	MaxSelfishTrust = 60
)

// SelfishCount returns floor(numNodes*ratio/100) clamped to [0, numNodes].
func SelfishCount(numNodes, ratio int) int {
	if numNodes <= 0 || ratio <= 0 {
		return 0
	}
	count := numNodes * ratio / 100
	return min(count, numNodes)
}

// AssignSelfish marks SelfishCount(len(nodes), ratio) distinct nodes as
// selfish and re-rolls their trust. Candidates are drawn with a partial
// Fisher-Yates shuffle over the ascending id list. It returns the chosen
// ids in ascending order.
func AssignSelfish(rng Rand, nodes NodeSet, ratio int) []int {
	ids := nodes.IDs()
	count := SelfishCount(len(ids), ratio)

	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	chosen := ids[:count]

	for _, id := range chosen {
		n := nodes[id]
		n.Selfish = true
		n.Trust = uniformInt(rng, MinSelfishTrust, MaxSelfishTrust)
	}

	out := slices.Clone(chosen)
	slices.Sort(out)
	return out
}
