package core

import (
	"math/rand"
	"time"
)

// Rand is the source of every random draw made by a simulation run.
// *rand.Rand satisfies it; tests substitute scripted implementations to
// force specific drop rolls.
type Rand interface {
	// Intn returns a uniform integer in [0, n). n must be > 0.
	Intn(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// NewRand returns a deterministic source for seed. A zero seed selects a
// time-based seed so interactive runs differ from one another.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// uniformInt draws an integer in the closed range [lo, hi].
func uniformInt(rng Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
