package opt

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library to conform to our
// Minimizer interface. It is a bounded population search rather than a
// gradient method: the starting point only fixes the dimensionality, and the
// search box is symmetric around the origin of the unconstrained space.
// Useful as a rough global pass when derivative-based methods struggle.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	bound    float64
}

// NewMayfly creates a new Mayfly optimizer adapter searching [-bound, bound]
// in every dimension.
func NewMayfly(maxIters, popSize int, bound float64) Minimizer {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		bound:    bound,
	}
}

// Minimize executes the Mayfly optimization using the external library.
func (m *MayflyAdapter) Minimize(eval func([]float64) float64, x0 []float64, seed uint64) ([]float64, float64, error) {
	config := mayfly.NewDefaultConfig()

	config.ObjectiveFunc = eval
	config.ProblemSize = len(x0)
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize

	// External library uses scalar bounds shared by all dimensions.
	config.LowerBound = -m.bound
	config.UpperBound = m.bound

	config.Rand = rand.New(rand.NewSource(int64(seed)))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, 0, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	best := result.GlobalBest
	if math.IsNaN(best.Cost) || math.IsInf(best.Cost, 0) {
		return nil, 0, fmt.Errorf("mayfly optimization returned non-finite cost")
	}

	return best.Position, best.Cost, nil
}
