package opt

import (
	"math"
	"testing"

	"github.com/cwbudde/dpsdfit/internal/dpsd"
)

// Sphere function: f(x) = sum(x_i^2), minimum at origin
func sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func TestQuasiNewtonOnSphere(t *testing.T) {
	minimizer := NewQuasiNewton()

	x0 := []float64{3, -2, 1.5}
	x, f, err := minimizer.Minimize(sphere, x0, 0)
	if err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}

	if len(x) != len(x0) {
		t.Fatalf("Expected %d parameters, got %d", len(x0), len(x))
	}
	if f > 1e-8 {
		t.Errorf("Expected objective near 0, got %g", f)
	}
	for i, v := range x {
		if math.Abs(v) > 1e-3 {
			t.Errorf("Parameter %d = %f, expected near 0", i, v)
		}
	}
}

func TestQuasiNewtonOnRosenbrock(t *testing.T) {
	rosenbrock := func(x []float64) float64 {
		a := 1 - x[0]
		b := x[1] - x[0]*x[0]
		return a*a + 100*b*b
	}

	minimizer := NewQuasiNewton()
	x, f, err := minimizer.Minimize(rosenbrock, []float64{-1.2, 1}, 0)
	if err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}
	if f > 1e-6 {
		t.Errorf("Expected objective near 0, got %g", f)
	}
	if math.Abs(x[0]-1) > 1e-2 || math.Abs(x[1]-1) > 1e-2 {
		t.Errorf("Expected minimum near (1,1), got (%f, %f)", x[0], x[1])
	}
}

func TestQuasiNewtonOnModelObjective(t *testing.T) {
	// The model SSE surface ends linesearches without strict convergence at
	// tight tolerances; the adapter must still hand back the best point
	// instead of discarding the attempt.
	variant := dpsd.VariantFor(true, false)
	objective := dpsd.Objective(variant, []float64{0.1, 0.3, 0.6}, []float64{0.4, 0.7, 0.9})

	starts := []dpsd.Params{
		{RecollectionTarget: 0.4, RecollectionLure: 0.4, Familiarity: 0.5, SDTarget: 1, Criteria: []float64{-1, 0, 1}},
		{RecollectionTarget: 0.25, RecollectionLure: 0.25, Familiarity: 0.3, SDTarget: 1, Criteria: []float64{-2, 1, 3}},
		{RecollectionTarget: 0.65, RecollectionLure: 0.65, Familiarity: 0.45, SDTarget: 1, Criteria: []float64{4, -4, 0.5}},
	}

	minimizer := NewQuasiNewton()
	for i, p := range starts {
		x0 := variant.Encode(p)
		x, f, err := minimizer.Minimize(objective, x0, 0)
		if err != nil {
			t.Fatalf("start %d: Minimize failed: %v", i, err)
		}
		if len(x) != len(x0) {
			t.Fatalf("start %d: expected %d parameters, got %d", i, len(x0), len(x))
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("start %d: non-finite objective %v", i, f)
		}
		if f0 := objective(x0); f > f0 {
			t.Errorf("start %d: objective rose from %g to %g", i, f0, f)
		}
		if f > 0.05 {
			t.Errorf("start %d: expected a near-fit, got SSE %g", i, f)
		}
	}
}

func TestQuasiNewtonNonFiniteStart(t *testing.T) {
	nanObjective := func(x []float64) float64 {
		return math.NaN()
	}

	minimizer := NewQuasiNewton()
	_, _, err := minimizer.Minimize(nanObjective, []float64{1, 1}, 0)
	if err == nil {
		t.Error("Expected error for NaN objective, got nil")
	}
}

func TestQuasiNewtonDoesNotMutateStart(t *testing.T) {
	x0 := []float64{2, 2}
	want := []float64{2, 2}

	minimizer := NewQuasiNewton()
	if _, _, err := minimizer.Minimize(sphere, x0, 0); err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}
	if x0[0] != want[0] || x0[1] != want[1] {
		t.Errorf("Starting point mutated: %v", x0)
	}
}

func TestNewGonumMethod(t *testing.T) {
	for _, name := range []string{"bfgs", "lbfgs", "nelder-mead"} {
		minimizer, err := NewGonumMethod(name)
		if err != nil {
			t.Fatalf("NewGonumMethod(%q) failed: %v", name, err)
		}

		_, f, err := minimizer.Minimize(sphere, []float64{1, -1}, 0)
		if err != nil {
			t.Fatalf("%s: Minimize failed: %v", name, err)
		}
		if f > 1e-6 {
			t.Errorf("%s: expected objective near 0, got %g", name, f)
		}
	}
}

func TestNewGonumMethodUnknown(t *testing.T) {
	if _, err := NewGonumMethod("simulated-annealing"); err == nil {
		t.Error("Expected error for unknown method name, got nil")
	}
}
