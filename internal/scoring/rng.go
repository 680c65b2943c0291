package scoring

import (
	"math/rand/v2"
	"sync"
)

// RNG supplies the uniform [0, 1) draws used for score perturbation.
// Implementations must be safe for concurrent use.
type RNG interface {
	Float64() float64
}

// ZeroRNG always returns 0, which removes the random component from scores.
type ZeroRNG struct{}

func (ZeroRNG) Float64() float64 { return 0 }

// FixedRNG always returns the same value.
type FixedRNG float64

func (f FixedRNG) Float64() float64 { return float64(f) }

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRNG returns a goroutine-safe PCG source seeded with seed.
func NewRNG(seed uint64) RNG {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
