package core

import "testing"

func TestBuildTopology_TwoNodesInRange(t *testing.T) {
	nodes := nodesAt(Position{X: 0, Y: 0}, Position{X: 100, Y: 0})
	g := BuildTopology(nodes, TopologyOptions{TxRange: 150})

	links := g.Links()
	if len(links) != 1 {
		t.Fatalf("expected exactly one link, got %d", len(links))
	}
	l := links[0]
	if l.U != 0 || l.V != 1 {
		t.Fatalf("link endpoints = (%d, %d), want (0, 1)", l.U, l.V)
	}
	if l.Weight != 100 {
		t.Fatalf("weight = %v, want 100", l.Weight)
	}
	if l.Capacity != 67 {
		t.Fatalf("capacity = %d, want 67", l.Capacity)
	}
}

func TestBuildTopology_ExactRangeIsLinked(t *testing.T) {
	nodes := nodesAt(Position{X: 0, Y: 0}, Position{X: 30, Y: 40})

	if g := BuildTopology(nodes, TopologyOptions{TxRange: 50}); g.NumLinks() != 1 {
		t.Fatalf("pair at exactly tx range should be linked")
	}
	if g := BuildTopology(nodes, TopologyOptions{TxRange: 49}); g.NumLinks() != 0 {
		t.Fatalf("pair beyond tx range should not be linked")
	}
}

func TestBuildTopology_LinkIffWithinRange(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		nodes := GenerateNodes(NewRand(seed), 30)
		g := BuildTopology(nodes, TopologyOptions{TxRange: 180})

		expected := 0
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				dist := nodes[i].Position().DistanceTo(nodes[j].Position())
				l, linked := g.Link(i, j)
				if linked != (dist <= 180) {
					t.Fatalf("seed %d: pair (%d,%d) dist=%.2f linked=%v", seed, i, j, dist, linked)
				}
				if !linked {
					continue
				}
				expected++
				if l.Weight != dist {
					t.Fatalf("seed %d: pair (%d,%d) weight %v, want %v", seed, i, j, l.Weight, dist)
				}
				if l.Capacity < MinCapacity {
					t.Fatalf("seed %d: capacity %d below minimum", seed, l.Capacity)
				}
				if back, ok := g.Link(j, i); !ok || back != l {
					t.Fatalf("seed %d: link (%d,%d) not symmetric", seed, i, j)
				}
			}
		}
		if g.NumLinks() != expected {
			t.Fatalf("seed %d: %d links, want %d (duplicates?)", seed, g.NumLinks(), expected)
		}
	}
}

func TestBuildTopology_BonusesShiftEveryCapacity(t *testing.T) {
	nodes := GenerateNodes(NewRand(11), 25)
	base := BuildTopology(nodes, TopologyOptions{TxRange: 250})
	radio := BuildTopology(nodes, TopologyOptions{TxRange: 250, MultiRadio: true})
	channel := BuildTopology(nodes, TopologyOptions{TxRange: 250, MultiChannel: true})
	both := BuildTopology(nodes, TopologyOptions{TxRange: 250, MultiRadio: true, MultiChannel: true})

	if base.NumLinks() == 0 {
		t.Fatalf("expected some links for the fixture")
	}
	for i, l := range base.Links() {
		if got := radio.Links()[i].Capacity - l.Capacity; got != MultiRadioBonus {
			t.Fatalf("multi-radio delta = %d, want %d", got, MultiRadioBonus)
		}
		if got := channel.Links()[i].Capacity - l.Capacity; got != MultiChannelBonus {
			t.Fatalf("multi-channel delta = %d, want %d", got, MultiChannelBonus)
		}
		if got := both.Links()[i].Capacity - l.Capacity; got != MultiRadioBonus+MultiChannelBonus {
			t.Fatalf("combined delta = %d, want %d", got, MultiRadioBonus+MultiChannelBonus)
		}
	}
}

func TestBuildTopology_ZeroRangeLinksOnlyColocatedNodes(t *testing.T) {
	nodes := nodesAt(Position{X: 5, Y: 5}, Position{X: 5, Y: 5}, Position{X: 6, Y: 5})
	g := BuildTopology(nodes, TopologyOptions{TxRange: 0})
	if g.NumLinks() != 1 {
		t.Fatalf("expected one link between co-located nodes, got %d", g.NumLinks())
	}
	if l, ok := g.Link(0, 1); !ok || l.Capacity != BaseCapacity {
		t.Fatalf("co-located link = %+v, ok=%v", l, ok)
	}
}
