package core

import (
	"math"

	pq "github.com/emirpasic/gods/queues/priorityqueue"
)

type frontierEntry struct {
	id   int
	dist float64
}

// frontierOrder sorts entries by tentative distance, then by node id, so
// equal-cost candidates are always settled in the same order.
func frontierOrder(a, b interface{}) int {
	ea, eb := a.(frontierEntry), b.(frontierEntry)
	switch {
	case ea.dist < eb.dist:
		return -1
	case ea.dist > eb.dist:
		return 1
	case ea.id < eb.id:
		return -1
	case ea.id > eb.id:
		return 1
	}
	return 0
}

// FindRoute returns a minimum-weight path from src to dst, inclusive of
// both endpoints. The second result is false when either id is unknown or
// dst cannot be reached; that is an ordinary outcome, not an error.
//
// A predecessor is only replaced on a strictly shorter distance and
// neighbours are relaxed in ascending id order, which makes the chosen
// path stable among equal-cost alternatives.
func FindRoute(g *Graph, src, dst int) ([]int, bool) {
	if g == nil || !g.HasNode(src) || !g.HasNode(dst) {
		return nil, false
	}
	if src == dst {
		return []int{src}, true
	}

	dist := map[int]float64{src: 0}
	prev := map[int]int{}
	settled := map[int]bool{}

	frontier := pq.NewWith(frontierOrder)
	frontier.Enqueue(frontierEntry{id: src, dist: 0})

	for !frontier.Empty() {
		v, _ := frontier.Dequeue()
		cur := v.(frontierEntry)
		if settled[cur.id] {
			continue
		}
		settled[cur.id] = true
		if cur.id == dst {
			break
		}

		for _, l := range g.Neighbors(cur.id) {
			next := l.Other(cur.id)
			if settled[next] {
				continue
			}
			candidate := cur.dist + l.Weight
			known, seen := dist[next]
			if !seen || candidate < known {
				dist[next] = candidate
				prev[next] = cur.id
				frontier.Enqueue(frontierEntry{id: next, dist: candidate})
			}
		}
	}

	if !settled[dst] {
		return nil, false
	}

	path := []int{dst}
	for cur := dst; cur != src; {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}

// RouteCost sums link weights along path. It returns +Inf if any
// consecutive pair is not linked.
func RouteCost(g *Graph, path []int) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		l, ok := g.Link(path[i-1], path[i])
		if !ok {
			return math.Inf(1)
		}
		total += l.Weight
	}
	return total
}
