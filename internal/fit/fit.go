package fit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/dpsdfit/internal/dpsd"
	"github.com/cwbudde/dpsdfit/internal/opt"
)

// DefaultIterations is the attempt budget used when the caller does not set
// one. High on purpose: cheap attempts are the escape hatch from local
// minima.
const DefaultIterations = 200

// ProgressFunc observes multi-start progress. It is invoked once per
// completed attempt with the number of completed attempts, the total budget
// and the best SSE seen so far (+Inf until an attempt succeeds). May be
// called from multiple goroutines, one call per attempt.
type ProgressFunc func(completed, total int, bestSSE float64)

// Config holds the settings for one fit call.
type Config struct {
	// Iterations is the number of independent randomized attempts.
	Iterations int

	// EqualVariance fixes the target standard deviation at 1.
	EqualVariance bool

	// EqualRecollection shares a single recollection rate between targets
	// and lures.
	EqualRecollection bool

	// Seed is the base random seed; each attempt derives its own seed from
	// it and the attempt index.
	Seed uint64

	// Workers bounds the number of concurrent attempts (0 = NumCPU).
	Workers int

	// Minimizer is the local minimizer run from each starting point
	// (nil = BFGS).
	Minimizer opt.Minimizer

	// Progress, when non-nil, is invoked once per completed attempt.
	Progress ProgressFunc

	// Stop configures optional early stopping of the attempt loop.
	Stop StopConfig
}

// DefaultConfig returns the standard fit configuration: 200 attempts,
// equal-variance, separate recollection rates, BFGS.
func DefaultConfig() Config {
	return Config{
		Iterations:        DefaultIterations,
		EqualVariance:     true,
		EqualRecollection: false,
		Seed:              1,
	}
}

// Result is the outcome of a fit: the natural parameters of the best
// attempt plus the minimum SSE achieved.
type Result struct {
	Variant  dpsd.Variant
	Params   dpsd.Params
	SSE      float64
	Attempts int // attempts actually run
	Failed   int // attempts that did not produce a usable minimum
}

// Columns returns the single-row result table as parallel label and value
// slices: recollection_target, recollection_lure, familiarity, sd_target,
// c1..ck, SSE.
func (r *Result) Columns() ([]string, []float64) {
	names := []string{"recollection_target", "recollection_lure", "familiarity", "sd_target"}
	values := []float64{
		r.Params.RecollectionTarget,
		r.Params.RecollectionLure,
		r.Params.Familiarity,
		r.Params.SDTarget,
	}
	for i, c := range r.Params.Criteria {
		names = append(names, fmt.Sprintf("c%d", i+1))
		values = append(values, c)
	}
	names = append(names, "SSE")
	values = append(values, r.SSE)
	return names, values
}

type attemptRecord struct {
	x   []float64
	sse float64
	ok  bool
	ran bool
}

// Fit estimates the DPSD parameters for the observed cumulative rates by
// multi-start local minimization.
//
// Each attempt draws an independent starting vector, runs the local
// minimizer to convergence and records the outcome; a failed attempt never
// aborts its siblings. The winner is the first attempt in index order to
// achieve the minimum SSE, decoded into natural parameters. If every attempt
// fails, Fit returns a NoFitError.
func Fit(ctx context.Context, falseAlarms, hits []float64, cfg Config) (*Result, error) {
	if len(falseAlarms) != len(hits) {
		return nil, &InputMismatchError{FalseAlarms: len(falseAlarms), Hits: len(hits)}
	}
	k := len(hits)
	if k == 0 {
		return nil, fmt.Errorf("no observed data points")
	}

	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Minimizer == nil {
		cfg.Minimizer = opt.NewQuasiNewton()
	}

	variant := dpsd.VariantFor(cfg.EqualVariance, cfg.EqualRecollection)
	objective := dpsd.Objective(variant, falseAlarms, hits)

	slog.Debug("Starting fit",
		"variant", variant.String(),
		"points", k,
		"iterations", cfg.Iterations,
		"workers", cfg.Workers,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make([]attemptRecord, cfg.Iterations)

	var (
		mu        sync.Mutex
		completed int
		best      = math.Inf(1)
		tracker   = newStopTracker(cfg.Stop)
	)

	var g errgroup.Group
	g.SetLimit(cfg.Workers)

	for i := 0; i < cfg.Iterations; i++ {
		g.Go(func() error {
			select {
			case <-runCtx.Done():
				return nil
			default:
			}

			seed := attemptSeed(cfg.Seed, i)
			x0 := newStartSampler(variant, k, seed).sample()

			rec := attemptRecord{ran: true}
			x, sse, err := cfg.Minimizer.Minimize(objective, x0, seed)
			switch {
			case err != nil:
				slog.Debug("Attempt failed", "attempt", i, "error", err)
			case math.IsNaN(sse) || math.IsInf(sse, 0):
				slog.Debug("Attempt produced non-finite SSE", "attempt", i)
			default:
				rec.x, rec.sse, rec.ok = x, sse, true
			}
			records[i] = rec

			mu.Lock()
			completed++
			if rec.ok && rec.sse < best {
				best = rec.sse
			}
			done, bestNow := completed, best
			observed := rec.sse
			if !rec.ok {
				observed = math.Inf(1)
			}
			stale := tracker.Update(observed)
			mu.Unlock()

			if cfg.Progress != nil {
				cfg.Progress(done, cfg.Iterations, bestNow)
			}
			if stale {
				cancel()
			}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bestIdx := -1
	attempts, failed := 0, 0
	for i, rec := range records {
		if !rec.ran {
			continue
		}
		attempts++
		if !rec.ok {
			failed++
			continue
		}
		if bestIdx == -1 || rec.sse < records[bestIdx].sse {
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		return nil, &NoFitError{Attempts: attempts}
	}

	result := &Result{
		Variant:  variant,
		Params:   variant.Decode(records[bestIdx].x),
		SSE:      records[bestIdx].sse,
		Attempts: attempts,
		Failed:   failed,
	}

	slog.Debug("Fit complete",
		"variant", variant.String(),
		"sse", result.SSE,
		"attempts", attempts,
		"failed", failed,
	)
	return result, nil
}

// attemptSeed derives the per-attempt seed from the base seed and attempt
// index (splitmix64 finalizer), so attempts are reproducible regardless of
// scheduling order.
func attemptSeed(base uint64, attempt int) uint64 {
	z := base + uint64(attempt+1)*0x9e3779b97f4a7c15
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return z
}
