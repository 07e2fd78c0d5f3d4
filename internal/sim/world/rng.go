package world

import (
	"math"
	"math/rand/v2"
)

// RandomSource is the one seeded source all stochastic decisions draw from.
// It is threaded explicitly through World and Bot calls; nothing reads
// ambient global randomness.
type RandomSource struct {
	pcg *rand.PCG
	r   *rand.Rand
}

func NewRandomSource(seed int64) *RandomSource {
	pcg := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &RandomSource{pcg: pcg, r: rand.New(pcg)}
}

// Float64 returns a uniform value in [0,1).
func (s *RandomSource) Float64() float64 { return s.r.Float64() }

// IntN returns a uniform value in [0,n). n must be > 0.
func (s *RandomSource) IntN(n int) int { return s.r.IntN(n) }

// Chance draws once and reports whether the draw fell below p.
// p <= 0 never succeeds, p >= 1 always does.
func (s *RandomSource) Chance(p float64) bool { return s.r.Float64() < p }

// Normal draws from N(mean, stdev) and rounds half away from zero.
func (s *RandomSource) Normal(mean, stdev float64) int {
	return int(math.Round(mean + stdev*s.r.NormFloat64()))
}

// State returns the serialized generator state.
func (s *RandomSource) State() ([]byte, error) { return s.pcg.MarshalBinary() }

// Restore replaces the generator state with one produced by State.
func (s *RandomSource) Restore(state []byte) error { return s.pcg.UnmarshalBinary(state) }
