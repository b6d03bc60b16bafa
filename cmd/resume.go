package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cwbudde/dpsdfit/internal/fit"
	"github.com/cwbudde/dpsdfit/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir string
	resumeIters   int
	resumeSeed    uint64
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Re-run a checkpointed fit with additional attempts",
	Long: `Loads a checkpoint, runs a fresh multi-start search over the same data
and model variant, and keeps whichever result has the lower SSE. Because the
final result is the best over all attempts ever made, resuming can only
improve the stored fit.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", fit.DefaultIterations, "Additional attempts to run")
	resumeCmd.Flags().Uint64Var(&resumeSeed, "seed", 0, "Base seed for the new attempts (0 = derive from stored seed)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is not resumable: %w", err)
	}

	seed := resumeSeed
	if seed == 0 {
		// Shift past the stored run's attempt seeds
		seed = checkpoint.Config.Seed + uint64(checkpoint.Attempts) + 1
	}

	minimizer, err := buildMinimizer(methodOrDefault(checkpoint.Config.Method))
	if err != nil {
		return err
	}

	cfg := fit.Config{
		Iterations:        resumeIters,
		EqualVariance:     checkpoint.Config.EqualVariance,
		EqualRecollection: checkpoint.Config.EqualRecollection,
		Seed:              seed,
		Workers:           checkpoint.Config.Workers,
		Minimizer:         minimizer,
	}

	fmt.Printf("Resuming %s: %d additional attempts (stored SSE %.6g)\n", jobID, resumeIters, checkpoint.SSE)

	result, err := fit.Fit(context.Background(), checkpoint.Config.FalseAlarms, checkpoint.Config.Hits, cfg)
	if err != nil {
		return fmt.Errorf("resumed fit failed: %w", err)
	}

	if result.SSE < checkpoint.SSE {
		checkpoint.RecollectionTarget = result.Params.RecollectionTarget
		checkpoint.RecollectionLure = result.Params.RecollectionLure
		checkpoint.Familiarity = result.Params.Familiarity
		checkpoint.SDTarget = result.Params.SDTarget
		checkpoint.Criteria = result.Params.Criteria
		checkpoint.SSE = result.SSE
		fmt.Printf("Improved: SSE %.6g\n", result.SSE)
	} else {
		fmt.Printf("No improvement: new SSE %.6g, keeping %.6g\n", result.SSE, checkpoint.SSE)
	}

	checkpoint.Attempts += result.Attempts
	checkpoint.Failed += result.Failed
	checkpoint.Timestamp = time.Now()

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	printCheckpointResult(checkpoint)
	return nil
}

func methodOrDefault(method string) string {
	if method == "" {
		return "bfgs"
	}
	return method
}

func printCheckpointResult(checkpoint *store.Checkpoint) {
	result := &fit.Result{
		SSE: checkpoint.SSE,
	}
	result.Params.RecollectionTarget = checkpoint.RecollectionTarget
	result.Params.RecollectionLure = checkpoint.RecollectionLure
	result.Params.Familiarity = checkpoint.Familiarity
	result.Params.SDTarget = checkpoint.SDTarget
	result.Params.Criteria = checkpoint.Criteria
	printResult(result)
}
