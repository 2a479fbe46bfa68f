package world

import (
	"hash/fnv"
	"math/rand"
	"strings"
)

// DefaultSeed names the root seed used when a configuration leaves it blank.
const DefaultSeed = "yew-art"

// DeterministicSeedValue folds a root seed and a subsystem label into a non-zero
// rand seed.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministicRNG returns a generator that replays the same sequence for the
// same seed and label.
func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	seed := strings.TrimSpace(rootSeed)
	if seed == "" {
		seed = DefaultSeed
	}
	return rand.New(rand.NewSource(DeterministicSeedValue(seed, label)))
}
