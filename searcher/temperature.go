package searcher

import (
	"math"

	"golang.org/x/exp/rand"
)

// MinTemperature is the lowest temperature that still samples; below it the
// policy is a one-hot argmax.
const MinTemperature = 1e-3

// Policy turns visit counts into move probabilities. Temperature 1 is
// proportional to the counts, lower temperatures sharpen toward the most
// visited move. Without any visits the policy is all zeros.
func Policy(visits []int, temperature float64) []float64 {
	policy := make([]float64, len(visits))
	peak := 0
	for _, n := range visits {
		if n > peak {
			peak = n
		}
	}
	if peak == 0 {
		return policy
	}

	if temperature < MinTemperature {
		for move, n := range visits {
			if n == peak {
				policy[move] = 1
				return policy
			}
		}
	}

	// Scale by the peak before the power so large counts cannot overflow
	exponent := 1.0 / temperature
	sum := 0.0
	for move, n := range visits {
		if n > 0 {
			policy[move] = math.Pow(float64(n)/float64(peak), exponent)
			sum += policy[move]
		}
	}
	for move := range policy {
		policy[move] /= sum
	}
	return policy
}

// Sample draws a move from the policy, or returns -1 if it is all zeros.
func Sample(policy []float64, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	last := -1
	for move, prob := range policy {
		if prob <= 0 {
			continue
		}
		last = move
		cumulative += prob
		if sampled < cumulative {
			return move
		}
	}
	return last // Fallback in case of rounding errors
}

// Argmax returns the index of the largest value, preferring the lowest index on ties.
func Argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
