package store

import (
	"fmt"
	"time"
)

// JobConfig holds configuration for a fit job (checkpoint copy).
// This avoids import cycles with server package.
type JobConfig struct {
	FalseAlarms       []float64 `json:"falseAlarms"`
	Hits              []float64 `json:"hits"`
	Iterations        int       `json:"iterations"`
	EqualVariance     bool      `json:"equalVariance"`
	EqualRecollection bool      `json:"equalRecollection"`
	Seed              uint64    `json:"seed"`
	Workers           int       `json:"workers,omitempty"`
	Method            string    `json:"method,omitempty"` // bfgs, lbfgs, nelder-mead, mayfly
}

// Checkpoint persists the outcome of a fit job so it can be inspected or
// resumed later. Resuming re-runs the multi-start search with a fresh
// attempt budget and keeps whichever result has the lower SSE; best-of-N
// selection means a resumed job can never get worse.
type Checkpoint struct {
	// JobID is the unique identifier for this fit job
	JobID string `json:"jobId"`

	// Natural parameters of the best attempt so far
	RecollectionTarget float64   `json:"recollectionTarget"`
	RecollectionLure   float64   `json:"recollectionLure"`
	Familiarity        float64   `json:"familiarity"`
	SDTarget           float64   `json:"sdTarget"`
	Criteria           []float64 `json:"criteria"`

	// SSE is the minimum total squared error achieved
	SSE float64 `json:"sse"`

	// Attempts is the number of attempts run; Failed the number discarded
	Attempts int `json:"attempts"`
	Failed   int `json:"failed"`

	// Timestamp records when this checkpoint was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during
	// resume. Resumed jobs must use the same data and model variant.
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the full
// parameter data. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	JobID             string    `json:"jobId"`
	SSE               float64   `json:"sse"`
	Attempts          int       `json:"attempts"`
	Timestamp         time.Time `json:"timestamp"`
	EqualVariance     bool      `json:"equalVariance"`
	EqualRecollection bool      `json:"equalRecollection"`
	Points            int       `json:"points"`
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:             c.JobID,
		SSE:               c.SSE,
		Attempts:          c.Attempts,
		Timestamp:         c.Timestamp,
		EqualVariance:     c.Config.EqualVariance,
		EqualRecollection: c.Config.EqualRecollection,
		Points:            len(c.Config.Hits),
	}
}

// Validate checks if the checkpoint has valid data.
// Returns an error if any required field is missing or invalid.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if c.RecollectionTarget < 0 || c.RecollectionTarget > 1 {
		return &ValidationError{Field: "RecollectionTarget", Reason: "must be in [0,1]"}
	}
	if c.RecollectionLure < 0 || c.RecollectionLure > 1 {
		return &ValidationError{Field: "RecollectionLure", Reason: "must be in [0,1]"}
	}
	if c.Familiarity <= 0 {
		return &ValidationError{Field: "Familiarity", Reason: "must be positive"}
	}
	if c.SDTarget <= 0 {
		return &ValidationError{Field: "SDTarget", Reason: "must be positive"}
	}
	if c.SSE < 0 {
		return &ValidationError{Field: "SSE", Reason: "cannot be negative"}
	}
	if c.Attempts <= 0 {
		return &ValidationError{Field: "Attempts", Reason: "must be positive"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if len(c.Config.Hits) == 0 {
		return &ValidationError{Field: "Config.Hits", Reason: "cannot be empty"}
	}
	if len(c.Config.FalseAlarms) != len(c.Config.Hits) {
		return &ValidationError{Field: "Config.FalseAlarms", Reason: "length must match Config.Hits"}
	}
	if len(c.Criteria) != len(c.Config.Hits) {
		return &ValidationError{
			Field:  "Criteria",
			Reason: fmt.Sprintf("length mismatch: expected %d criteria for %d data points", len(c.Config.Hits), len(c.Config.Hits)),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given
// config. The observed data and model variant must match; attempt budget,
// seed and method are free to change.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if !equalRates(c.Config.FalseAlarms, config.FalseAlarms) {
		return &CompatibilityError{Field: "FalseAlarms", Reason: "observed data differs"}
	}
	if !equalRates(c.Config.Hits, config.Hits) {
		return &CompatibilityError{Field: "Hits", Reason: "observed data differs"}
	}
	if c.Config.EqualVariance != config.EqualVariance {
		return &CompatibilityError{Field: "EqualVariance", Reason: "model variant differs"}
	}
	if c.Config.EqualRecollection != config.EqualRecollection {
		return &CompatibilityError{Field: "EqualRecollection", Reason: "model variant differs"}
	}
	return nil
}

func equalRates(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field  string
	Reason string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + ": " + e.Reason
}
