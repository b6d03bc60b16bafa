package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/dpsdfit/internal/fit"
	"github.com/cwbudde/dpsdfit/internal/opt"
	"github.com/spf13/cobra"
)

var (
	faList            string
	hitList           string
	csvPath           string
	iterations        int
	equalVariance     bool
	equalRecollection bool
	fitSeed           uint64
	fitWorkers        int
	fitMethod         string
	quiet             bool
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the DPSD model to observed cumulative rates",
	Long: `Fits the dual process signal detection model to observed cumulative
false-alarm and hit rates and prints the estimated natural parameters as a
single-row table. Rates are given either inline as comma-separated lists or
as a two-column CSV file (false alarms, hits).`,
	RunE: runFit,
}

func init() {
	fitCmd.Flags().StringVar(&faList, "fa", "", "Cumulative false-alarm rates, comma-separated")
	fitCmd.Flags().StringVar(&hitList, "hits", "", "Cumulative hit rates, comma-separated")
	fitCmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with false-alarm and hit columns")
	fitCmd.Flags().IntVar(&iterations, "iters", fit.DefaultIterations, "Number of randomized attempts")
	fitCmd.Flags().BoolVar(&equalVariance, "equal-variance", true, "Fix target sd at 1")
	fitCmd.Flags().BoolVar(&equalRecollection, "equal-recollection", false, "Share one recollection rate between targets and lures")
	fitCmd.Flags().Uint64Var(&fitSeed, "seed", 1, "Base random seed")
	fitCmd.Flags().IntVar(&fitWorkers, "workers", 0, "Concurrent attempts (0 = NumCPU)")
	fitCmd.Flags().StringVar(&fitMethod, "method", "bfgs", "Local minimizer: bfgs, lbfgs, nelder-mead, mayfly")
	fitCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the progress indicator")

	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	falseAlarms, hits, err := loadRates()
	if err != nil {
		return err
	}

	minimizer, err := buildMinimizer(fitMethod)
	if err != nil {
		return err
	}

	cfg := fit.Config{
		Iterations:        iterations,
		EqualVariance:     equalVariance,
		EqualRecollection: equalRecollection,
		Seed:              fitSeed,
		Workers:           fitWorkers,
		Minimizer:         minimizer,
	}
	if !quiet {
		var mu sync.Mutex
		cfg.Progress = func(completed, total int, bestSSE float64) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(os.Stderr, "\rfit: %d/%d attempts", completed, total)
			if completed == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	start := time.Now()
	result, err := fit.Fit(context.Background(), falseAlarms, hits, cfg)
	if err != nil {
		if !quiet {
			fmt.Fprintln(os.Stderr)
		}
		return err
	}

	printResult(result)
	fmt.Printf("\n%d attempts (%d failed) in %s\n", result.Attempts, result.Failed, time.Since(start).Round(time.Millisecond))
	return nil
}

// printResult writes the single-row labeled result table to stdout.
func printResult(result *fit.Result) {
	names, values := result.Columns()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(names, "\t"))
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	fmt.Fprintln(w, strings.Join(formatted, "\t"))
	w.Flush()
}

// loadRates reads the observed rates either from the inline flags or from
// the CSV file, whichever was provided.
func loadRates() (falseAlarms, hits []float64, err error) {
	switch {
	case csvPath != "" && (faList != "" || hitList != ""):
		return nil, nil, fmt.Errorf("use either --csv or --fa/--hits, not both")
	case csvPath != "":
		return loadRatesCSV(csvPath)
	case faList == "" || hitList == "":
		return nil, nil, fmt.Errorf("observed rates required: --fa and --hits, or --csv")
	}

	falseAlarms, err = parseRateList(faList)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --fa: %w", err)
	}
	hits, err = parseRateList(hitList)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --hits: %w", err)
	}
	return falseAlarms, hits, nil
}

func parseRateList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	rates := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad rate %q: %w", part, err)
		}
		rates = append(rates, v)
	}
	return rates, nil
}

// loadRatesCSV reads a two-column CSV file (false alarms, hits), skipping a
// non-numeric header row if present.
func loadRatesCSV(path string) (falseAlarms, hits []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	for i, row := range rows {
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("row %d: expected 2 columns, got %d", i+1, len(row))
		}
		fa, errFA := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		hit, errHit := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if errFA != nil || errHit != nil {
			if i == 0 {
				continue // header row
			}
			return nil, nil, fmt.Errorf("row %d: non-numeric rate", i+1)
		}
		falseAlarms = append(falseAlarms, fa)
		hits = append(hits, hit)
	}

	if len(hits) == 0 {
		return nil, nil, fmt.Errorf("no data rows in %s", path)
	}
	return falseAlarms, hits, nil
}

// buildMinimizer maps the --method flag to a Minimizer.
func buildMinimizer(method string) (opt.Minimizer, error) {
	if method == "mayfly" {
		return opt.NewMayfly(500, 40, 10), nil
	}
	return opt.NewGonumMethod(method)
}
