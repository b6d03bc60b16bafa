package server

import (
	"fmt"

	"github.com/cwbudde/dpsdfit/internal/opt"
)

// Mayfly search settings used when a job requests the global method. The
// box covers the plausible unconstrained range: logits and log-transforms of
// realistic parameters as well as the criterion start range.
const (
	mayflyIters  = 500
	mayflyPop    = 40
	mayflyBound  = 10.0
	methodMayfly = "mayfly"
)

// minimizerFor maps a job's method name to a Minimizer. An empty name means
// the default quasi-Newton method.
func minimizerFor(method string) (opt.Minimizer, error) {
	switch method {
	case "":
		return opt.NewQuasiNewton(), nil
	case methodMayfly:
		return opt.NewMayfly(mayflyIters, mayflyPop, mayflyBound), nil
	default:
		m, err := opt.NewGonumMethod(method)
		if err != nil {
			return nil, fmt.Errorf("invalid job method: %w", err)
		}
		return m, nil
	}
}

// validateJobConfig checks a submitted job configuration and fills defaults.
// Length validation happens here so bad requests fail before any attempt
// starts.
func validateJobConfig(config *JobConfig) error {
	if len(config.FalseAlarms) != len(config.Hits) {
		return fmt.Errorf("falseAlarms and hits must have the same length (%d vs %d)",
			len(config.FalseAlarms), len(config.Hits))
	}
	if len(config.Hits) == 0 {
		return fmt.Errorf("at least one observed data point is required")
	}
	if config.Iterations <= 0 {
		config.Iterations = 200
	}
	if config.Seed == 0 {
		config.Seed = 1
	}
	if _, err := minimizerFor(config.Method); err != nil {
		return err
	}
	return nil
}
