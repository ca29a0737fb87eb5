package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestGraphComponents(t *testing.T) {
	nodes := nodesAt(
		Position{X: 0, Y: 0},
		Position{X: 10, Y: 0},
		Position{X: 500, Y: 0},
		Position{X: 20, Y: 0},
		Position{X: 510, Y: 0},
		Position{X: 800, Y: 500},
	)
	g := BuildTopology(nodes, TopologyOptions{TxRange: 15})

	want := [][]int{{0, 1, 3}, {2, 4}, {5}}
	if got := g.Components(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Components = %v, want %v", got, want)
	}
}

func TestGraphNeighborsOrderedByID(t *testing.T) {
	nodes := nodesAt(Position{X: 0}, Position{X: 30}, Position{X: 10}, Position{X: 20})
	g := BuildTopology(nodes, TopologyOptions{TxRange: 100})

	var got []int
	for _, l := range g.Neighbors(0) {
		got = append(got, l.Other(0))
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("neighbours of 0 = %v, want [1 2 3]", got)
	}
}

func TestGraphAddLinkRejectsBadInput(t *testing.T) {
	g := newGraph(nodesAt(Position{}, Position{X: 1}))

	if err := g.addLink(Link{U: 0, V: 0}); !errors.Is(err, ErrLinkBadInput) {
		t.Fatalf("self-loop: got %v, want ErrLinkBadInput", err)
	}
	if err := g.addLink(Link{U: 0, V: 7}); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("unknown node: got %v, want ErrUnknownNode", err)
	}
	if err := g.addLink(Link{U: 1, V: 0, Weight: 1}); err != nil {
		t.Fatalf("addLink: %v", err)
	}
	if err := g.addLink(Link{U: 0, V: 1}); !errors.Is(err, ErrLinkExists) {
		t.Fatalf("duplicate: got %v, want ErrLinkExists", err)
	}
	if l, _ := g.Link(0, 1); l.U != 0 || l.V != 1 {
		t.Fatalf("endpoints not normalised: %+v", l)
	}
}

func TestGraphDegreeAndCapacityAverages(t *testing.T) {
	nodes := nodesAt(Position{X: 0}, Position{X: 100}, Position{X: 700})
	g := BuildTopology(nodes, TopologyOptions{TxRange: 150})

	if got := g.MeanDegree(); got != 2.0/3.0 {
		t.Fatalf("MeanDegree = %v, want 2/3", got)
	}
	if got := g.MeanCapacity(); got != 67 {
		t.Fatalf("MeanCapacity = %v, want 67", got)
	}
	if got := BuildTopology(nodes, TopologyOptions{TxRange: 10}).MeanCapacity(); got != 0 {
		t.Fatalf("MeanCapacity without links = %v, want 0", got)
	}
}
