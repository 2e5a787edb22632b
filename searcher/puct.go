package searcher

import "math"

// Hyperparameters for MCTS

const Exploration = 1.4 // Default exploration constant

type puct struct {
	numerator float64
}

func newPUCT(c float64, N int) puct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return puct{numerator: c * math.Sqrt(float64(N))}
}

func (p puct) evaluate(q, prior float64, n int) float64 {
	// PUCT = q + c*P*sqrt(N)/(1+n)
	return q + p.numerator*prior/float64(1+n)
}
