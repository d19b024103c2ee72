// Package sampling provides the deterministic per-invocation RNG and the
// Monte Carlo sampling primitives used by the material, light and
// integrator packages (spec 4.A).
package sampling

// RNG is a small, seedable pseudo-random generator. A fresh RNG is derived
// per shading invocation from a hash of (iteration, pathIndex, depth) so
// that re-seeding happens per step and the worker-pool scheduling model is
// free to reorder samples without affecting correctness (spec 4.A).
type RNG struct {
	state uint64
}

// NewRNG seeds a generator from the triple that uniquely identifies one
// shading invocation. The hash is a splitmix64-style avalanche so that
// adjacent (iteration, pathIndex, depth) triples do not produce correlated
// streams.
func NewRNG(iteration, pathIndex, depth uint32) *RNG {
	h := uint64(iteration)*0x9E3779B97F4A7C15 ^
		uint64(pathIndex)*0xBF58476D1CE4E5B9 ^
		uint64(depth)*0x94D049BB133111EB
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	h *= 0xC4CEB9FE1A85EC53
	h ^= h >> 33
	if h == 0 {
		h = 0x9E3779B97F4A7C15
	}
	return &RNG{state: h}
}

// NewSeededRNG seeds directly from an explicit 64 bit value; used by tests
// that need a reproducible, caller-controlled stream.
func NewSeededRNG(seed uint64) *RNG {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &RNG{state: seed}
}

// next advances an xorshift64* generator.
func (r *RNG) next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	return r.state * 0x2545F4914F6CDD1D
}

// Float32 returns a uniform sample in [0, 1).
func (r *RNG) Float32() float32 {
	return float32(r.next()>>40) / float32(1<<24)
}

// Float32_2 returns two independent uniform samples in [0, 1).
func (r *RNG) Float32_2() (float32, float32) {
	return r.Float32(), r.Float32()
}
