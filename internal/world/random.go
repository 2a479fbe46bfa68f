package world

import (
	"math"
	"math/rand"
	"sync"
)

// fallbackRNG serves callers that pass a nil rng. It is seeded once, so
// successive draws advance instead of repeating the first value.
var fallbackRNG = struct {
	sync.Mutex
	rng *rand.Rand
}{rng: rand.New(rand.NewSource(DeterministicSeedValue(DefaultSeed, "world")))}

// RandomFloat returns a value in [0, 1) from rng. A nil rng draws from a
// shared source seeded with DefaultSeed.
func RandomFloat(rng *rand.Rand) float64 {
	if rng == nil {
		fallbackRNG.Lock()
		defer fallbackRNG.Unlock()
		return fallbackRNG.rng.Float64()
	}
	return rng.Float64()
}

// RandomBetween draws uniformly from the half-open interval [min, max). An empty or
// single-point interval yields min.
func RandomBetween(rng *rand.Rand, min, max float64) float64 {
	if !(max > min) {
		return min
	}
	value := min + RandomFloat(rng)*(max-min)
	if value >= max {
		// Rounding can land exactly on the open bound.
		value = math.Nextafter(max, min)
	}
	if value < min {
		value = min
	}
	return value
}

// BoundedStep draws the next value of a bounded random walk: uniform in
// [max(lo, current-delta), min(hi, current+delta)). A current value already outside
// [lo, hi] is pulled back onto the nearest bound.
func BoundedStep(rng *rand.Rand, lo, hi, current, delta float64) float64 {
	low := math.Max(lo, current-delta)
	high := math.Min(hi, current+delta)
	if low > high {
		return Clamp(current, lo, hi)
	}
	return RandomBetween(rng, low, high)
}

// Clamp limits value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
