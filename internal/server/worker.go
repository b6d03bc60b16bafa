package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/dpsdfit/internal/fit"
	"github.com/cwbudde/dpsdfit/internal/store"
)

// runJob executes a fit job in the background.
// If checkpointStore is not nil, the final result is checkpointed and a
// best-SSE trace is written alongside it.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job",
		"job_id", jobID,
		"points", len(job.Config.Hits),
		"iterations", job.Config.Iterations,
		"method", job.Config.Method,
	)

	minimizer, err := minimizerFor(job.Config.Method)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	var trace *store.TraceWriter
	if fsStore, ok := checkpointStore.(*store.FSStore); ok {
		trace, err = store.NewTraceWriter(fsStore.BaseDir(), jobID, false)
		if err != nil {
			slog.Warn("Failed to open trace file, continuing without trace", "job_id", jobID, "error", err)
			trace = nil
		} else {
			defer trace.Close()
		}
	}

	start := time.Now()

	// Per-attempt observer: keeps the job record current and appends to the
	// trace. Broadcasting is throttled by the monitor goroutine instead.
	progress := func(completed, total int, bestSSE float64) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Completed = completed
			if !math.IsInf(bestSSE, 1) {
				j.BestSSE = bestSSE
			}
		})
		if trace != nil {
			entry := store.TraceEntry{Completed: completed, Total: total, Timestamp: time.Now()}
			if !math.IsInf(bestSSE, 1) {
				v := bestSSE
				entry.BestSSE = &v
			}
			if err := trace.Write(entry); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}
	}

	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	cfg := fit.Config{
		Iterations:        job.Config.Iterations,
		EqualVariance:     job.Config.EqualVariance,
		EqualRecollection: job.Config.EqualRecollection,
		Seed:              job.Config.Seed,
		Workers:           job.Config.Workers,
		Minimizer:         minimizer,
		Progress:          progress,
	}

	result, err := fit.Fit(ctx, job.Config.FalseAlarms, job.Config.Hits, cfg)
	close(progressDone)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			markJobCancelled(jm, jobID)
			return err
		}
		markJobFailed(jm, jobID, err)
		return err
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Result = &JobResult{
			RecollectionTarget: result.Params.RecollectionTarget,
			RecollectionLure:   result.Params.RecollectionLure,
			Familiarity:        result.Params.Familiarity,
			SDTarget:           result.Params.SDTarget,
			Criteria:           result.Params.Criteria,
			SSE:                result.SSE,
		}
		j.Completed = result.Attempts
		j.Failed = result.Failed
		j.BestSSE = result.SSE
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	aps := float64(result.Attempts) / elapsed.Seconds()

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"sse", result.SSE,
		"attempts", result.Attempts,
		"failed", result.Failed,
		"attempts_per_second", aps,
	)

	if checkpointStore != nil {
		if err := saveCheckpoint(checkpointStore, jm, jobID, result); err != nil {
			slog.Warn("Failed to save checkpoint", "job_id", jobID, "error", err)
		}
	}
	if trace != nil {
		if err := trace.Flush(); err != nil {
			slog.Warn("Failed to flush trace", "job_id", jobID, "error", err)
		}
	}

	// Broadcast final completion event
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:          jobID,
		State:          StateCompleted,
		Completed:      result.Attempts,
		Total:          job.Config.Iterations,
		BestSSE:        result.SSE,
		AttemptsPerSec: aps,
		Timestamp:      time.Now(),
	})

	return nil
}

// monitorProgress periodically broadcasts progress events while a fit runs
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()
			var aps float64
			if elapsed > 0 {
				aps = float64(job.Completed) / elapsed
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:          jobID,
				State:          job.State,
				Completed:      job.Completed,
				Total:          job.Config.Iterations,
				BestSSE:        job.BestSSE,
				AttemptsPerSec: aps,
				Timestamp:      time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// saveCheckpoint persists the completed fit result for the given job
func saveCheckpoint(checkpointStore store.Store, jm *JobManager, jobID string, result *fit.Result) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	checkpoint := &store.Checkpoint{
		JobID:              jobID,
		RecollectionTarget: result.Params.RecollectionTarget,
		RecollectionLure:   result.Params.RecollectionLure,
		Familiarity:        result.Params.Familiarity,
		SDTarget:           result.Params.SDTarget,
		Criteria:           result.Params.Criteria,
		SSE:                result.SSE,
		Attempts:           result.Attempts,
		Failed:             result.Failed,
		Timestamp:          time.Now(),
		Config:             job.Config,
	}

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved", "job_id", jobID, "sse", result.SSE, "attempts", result.Attempts)
	return nil
}
