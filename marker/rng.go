// RNG policy for the orchestrator.
//
// One user-provided seed fans out into independent deterministic streams for
// the permutation and bootstrap engines, so adding replicates to one engine
// never perturbs the other. Streams are derived with a SplitMix64-style
// avalanche mix; no time-based sources anywhere.
package marker

import "math/rand"

// defaultRNGSeed is the fixed "zero" seed used when callers pass seed==0.
// Arbitrary but stable, to keep reproducible defaults.
const defaultRNGSeed int64 = 1

// Stream identifiers for the two resampling engines.
const (
	permutationStream uint64 = iota + 1
	bootstrapStream
)

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ defaultRNGSeed; otherwise the provided seed verbatim.
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with the canonical SplitMix64 finalizer (strong bit diffusion keeps
// sibling streams uncorrelated).
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// deriveRNG creates an independent deterministic stream from the base RNG.
// base.Int63() is consumed once so repeated derivations with the same stream
// id still diverge.
func deriveRNG(base *rand.Rand, stream uint64) *rand.Rand {
	parent := defaultRNGSeed
	if base != nil {
		parent = base.Int63()
	}

	return rand.New(rand.NewSource(deriveSeed(parent, stream)))
}
