package main

import (
	"testing"
	"time"

	"github.com/cwbudde/dpsdfit/internal/store"
)

func infoAt(jobID string, age time.Duration) store.CheckpointInfo {
	return store.CheckpointInfo{
		JobID:     jobID,
		Timestamp: time.Now().Add(-age),
	}
}

func TestSelectCheckpointsForDeletion_KeepLast(t *testing.T) {
	infos := []store.CheckpointInfo{
		infoAt("old", 72*time.Hour),
		infoAt("mid", 48*time.Hour),
		infoAt("new", 24*time.Hour),
	}

	toDelete := selectCheckpointsForDeletion(infos, 2, 0)

	if len(toDelete) != 1 {
		t.Fatalf("Expected 1 checkpoint to delete, got %d", len(toDelete))
	}
	if toDelete[0].JobID != "old" {
		t.Errorf("Expected oldest checkpoint to be deleted, got %s", toDelete[0].JobID)
	}
}

func TestSelectCheckpointsForDeletion_KeepLastCoversAll(t *testing.T) {
	infos := []store.CheckpointInfo{
		infoAt("a", 24*time.Hour),
		infoAt("b", 48*time.Hour),
	}

	if toDelete := selectCheckpointsForDeletion(infos, 5, 0); len(toDelete) != 0 {
		t.Errorf("Expected nothing to delete when keepLast exceeds count, got %d", len(toDelete))
	}
}

func TestSelectCheckpointsForDeletion_OlderThan(t *testing.T) {
	infos := []store.CheckpointInfo{
		infoAt("ancient", 10*24*time.Hour),
		infoAt("recent", 24*time.Hour),
	}

	toDelete := selectCheckpointsForDeletion(infos, 0, 7)

	if len(toDelete) != 1 {
		t.Fatalf("Expected 1 checkpoint to delete, got %d", len(toDelete))
	}
	if toDelete[0].JobID != "ancient" {
		t.Errorf("Expected aged checkpoint to be deleted, got %s", toDelete[0].JobID)
	}
}

func TestSelectCheckpointsForDeletion_CombinedNoDuplicates(t *testing.T) {
	infos := []store.CheckpointInfo{
		infoAt("ancient", 10*24*time.Hour),
		infoAt("old", 8*24*time.Hour),
		infoAt("new", time.Hour),
	}

	// The ancient checkpoints match both the age cutoff and the count trim;
	// each must appear once.
	toDelete := selectCheckpointsForDeletion(infos, 1, 7)

	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 checkpoints to delete, got %d", len(toDelete))
	}
	seen := make(map[string]bool)
	for _, info := range toDelete {
		if seen[info.JobID] {
			t.Errorf("Checkpoint %s listed twice", info.JobID)
		}
		seen[info.JobID] = true
	}
	if seen["new"] {
		t.Error("Newest checkpoint should be retained")
	}
}

func TestVariantLabel(t *testing.T) {
	tests := []struct {
		equalVariance     bool
		equalRecollection bool
		want              string
	}{
		{true, false, "equal-var"},
		{false, false, "free-var"},
		{true, true, "equal-var/shared-rec"},
		{false, true, "free-var/shared-rec"},
	}

	for _, tt := range tests {
		if got := variantLabel(tt.equalVariance, tt.equalRecollection); got != tt.want {
			t.Errorf("variantLabel(%v, %v) = %q, want %q", tt.equalVariance, tt.equalRecollection, got, tt.want)
		}
	}
}
