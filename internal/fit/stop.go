package fit

import (
	"log/slog"
	"math"
)

// StopConfig defines parameters for stopping the multi-start search before
// the full attempt budget is spent
type StopConfig struct {
	// Enabled controls whether early stopping is active. Disabled by
	// default: the contract is exactly Iterations attempts.
	Enabled bool

	// Patience is the number of completed attempts with no improvement in
	// the running best SSE before stopping
	Patience int

	// Threshold is the minimum relative improvement required to count as
	// progress. Example: 0.001 = 0.1% improvement required.
	Threshold float64
}

// DefaultStopConfig returns sensible defaults for early stopping when a
// caller opts in.
func DefaultStopConfig() StopConfig {
	return StopConfig{
		Enabled:   true,
		Patience:  50,
		Threshold: 0.001,
	}
}

// stopTracker tracks the running best SSE across completed attempts and
// detects when the search has gone stale. Callers must serialize Update.
type stopTracker struct {
	config          StopConfig
	bestSSE         float64
	lastSignificant float64
	staleCount      int
}

func newStopTracker(config StopConfig) *stopTracker {
	return &stopTracker{
		config:          config,
		bestSSE:         math.Inf(1),
		lastSignificant: math.Inf(1),
	}
}

// Update records the SSE of a completed attempt and returns true when the
// search should stop early.
func (s *stopTracker) Update(sse float64) bool {
	if !s.config.Enabled {
		return false
	}

	if sse < s.bestSSE {
		s.bestSSE = sse
	}

	relativeImprovement := (s.lastSignificant - sse) / s.lastSignificant
	if math.IsInf(s.lastSignificant, 1) && !math.IsInf(sse, 1) {
		relativeImprovement = 1
	}

	if relativeImprovement >= s.config.Threshold {
		s.lastSignificant = sse
		s.staleCount = 0
		return false
	}

	s.staleCount++
	if s.staleCount >= s.config.Patience {
		slog.Info("Multi-start search stale, stopping early",
			"stale_count", s.staleCount,
			"patience", s.config.Patience,
			"best_sse", s.bestSSE,
		)
		return true
	}
	return false
}
