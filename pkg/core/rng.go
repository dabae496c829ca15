package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float32Range returns a random value in [lo, hi).
func (r *RNG) Float32Range(lo, hi float32) float32 {
	if hi <= lo {
		return lo
	}
	return lo + r.r.Float32()*(hi-lo)
}

// Seed derives a child seed, used to give independent noise layers their own
// stream.
func (r *RNG) Seed() int64 {
	return r.r.Int64()
}

// FillMasked sets each element of buf to on with probability p and to off
// otherwise.
func FillMasked[T any](r *rand.Rand, buf []T, p float64, on, off T) {
	for i := range buf {
		if r.Float64() < p {
			buf[i] = on
			continue
		}
		buf[i] = off
	}
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
