package core

import "math"

// Plane bounds used when placing generated nodes.
const (
	AreaWidth  = 800
	AreaHeight = 500
)

// Position is a node location on the simulation plane.
type Position struct {
	X, Y int
}

// DistanceTo returns the Euclidean distance between two positions.
func (p Position) DistanceTo(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
