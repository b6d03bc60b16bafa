package opt

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// defaultRelTol is the relative-change convergence tolerance. The search is
// bounded by convergence, not by an iteration budget.
const defaultRelTol = 1e-10

// GonumAdapter wraps a gonum/optimize local method to conform to our
// Minimizer interface. The objective is supplied as a plain closure and its
// gradient is computed by central finite differences (diff/fd), which the
// gradient-based methods require.
type GonumAdapter struct {
	method optimize.Method
	relTol float64
}

// NewQuasiNewton creates the default BFGS minimizer adapter.
func NewQuasiNewton() Minimizer {
	return &GonumAdapter{method: &optimize.BFGS{}, relTol: defaultRelTol}
}

// NewGonumMethod creates a minimizer adapter for a named gonum method.
func NewGonumMethod(name string) (Minimizer, error) {
	var method optimize.Method
	switch name {
	case "bfgs":
		method = &optimize.BFGS{}
	case "lbfgs":
		method = &optimize.LBFGS{}
	case "nelder-mead":
		method = &optimize.NelderMead{}
	default:
		return nil, fmt.Errorf("unknown minimization method: %s", name)
	}
	return &GonumAdapter{method: method, relTol: defaultRelTol}, nil
}

// Minimize executes the local minimization. A non-finite objective at the
// optimum or a panic inside the method are reported as errors; the caller
// decides whether to retry from elsewhere. Linesearch breakdowns near a
// minimum are a normal terminating condition with finite-difference
// gradients at tight tolerances, so the best point found is kept.
func (g *GonumAdapter) Minimize(eval func([]float64) float64, x0 []float64, _ uint64) (x []float64, f float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			x, f = nil, 0
			err = fmt.Errorf("local minimization panicked: %v", r)
		}
	}()

	if f0 := eval(x0); math.IsNaN(f0) || math.IsInf(f0, 0) {
		return nil, 0, fmt.Errorf("objective is non-finite at starting point")
	}

	problem := optimize.Problem{
		Func: eval,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, eval, x, nil)
		},
	}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Relative:   g.relTol,
			Iterations: 20,
		},
	}

	start := append([]float64(nil), x0...)
	result, err := optimize.Minimize(problem, start, settings, g.method)
	if err != nil && !(softTermination(err) && result != nil) {
		return nil, 0, fmt.Errorf("local minimization failed: %w", err)
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return nil, 0, fmt.Errorf("local minimization returned non-finite objective")
	}

	return result.X, result.F, nil
}

// softTermination reports whether err is a stalled-search condition under
// which gonum still returns the best point found.
func softTermination(err error) bool {
	return errors.Is(err, optimize.ErrLinesearcherFailure) ||
		errors.Is(err, optimize.ErrNoProgress)
}
