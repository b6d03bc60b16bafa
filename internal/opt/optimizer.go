package opt

// Minimizer defines a local minimization algorithm
type Minimizer interface {
	// Minimize runs the minimization
	// eval: objective function to minimize
	// x0: starting point in unconstrained parameter space
	// seed: per-attempt seed, used by stochastic methods and ignored by
	// deterministic ones
	// Returns: minimizing parameters and objective value, or an error when
	// the method fails to converge or hits a numerical fault
	Minimize(eval func([]float64) float64, x0 []float64, seed uint64) ([]float64, float64, error)
}
