package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseRateList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr bool
	}{
		{
			name:  "simple list",
			input: "0.1,0.3,0.6",
			want:  []float64{0.1, 0.3, 0.6},
		},
		{
			name:  "spaces around values",
			input: " 0.1 , 0.3 , 0.6 ",
			want:  []float64{0.1, 0.3, 0.6},
		},
		{
			name:  "single value",
			input: "0.5",
			want:  []float64{0.5},
		},
		{
			name:    "non-numeric value",
			input:   "0.1,abc,0.6",
			wantErr: true,
		},
		{
			name:    "trailing comma",
			input:   "0.1,0.3,",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRateList(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d rates, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Rate %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test CSV: %v", err)
	}
	return path
}

func TestLoadRatesCSV(t *testing.T) {
	path := writeTestCSV(t, "0.1,0.4\n0.3,0.7\n0.6,0.9\n")

	falseAlarms, hits, err := loadRatesCSV(path)
	if err != nil {
		t.Fatalf("loadRatesCSV failed: %v", err)
	}

	if len(falseAlarms) != 3 || len(hits) != 3 {
		t.Fatalf("Expected 3 rows, got %d/%d", len(falseAlarms), len(hits))
	}
	if falseAlarms[0] != 0.1 || hits[2] != 0.9 {
		t.Errorf("Wrong values: fa=%v hits=%v", falseAlarms, hits)
	}
}

func TestLoadRatesCSV_HeaderSkipped(t *testing.T) {
	path := writeTestCSV(t, "fa,hit\n0.1,0.4\n0.3,0.7\n")

	falseAlarms, hits, err := loadRatesCSV(path)
	if err != nil {
		t.Fatalf("loadRatesCSV failed: %v", err)
	}

	if len(falseAlarms) != 2 || len(hits) != 2 {
		t.Errorf("Expected header to be skipped, got %d/%d rows", len(falseAlarms), len(hits))
	}
}

func TestLoadRatesCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "header only", content: "fa,hit\n"},
		{name: "missing column", content: "0.1\n"},
		{name: "non-numeric data row", content: "0.1,0.4\nbad,0.7\n"},
		{name: "empty file", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestCSV(t, tt.content)
			if _, _, err := loadRatesCSV(path); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadRatesCSV_MissingFile(t *testing.T) {
	if _, _, err := loadRatesCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestBuildMinimizer(t *testing.T) {
	for _, method := range []string{"bfgs", "lbfgs", "nelder-mead", "mayfly"} {
		if _, err := buildMinimizer(method); err != nil {
			t.Errorf("buildMinimizer(%q) failed: %v", method, err)
		}
	}

	if _, err := buildMinimizer("genetic"); err == nil {
		t.Error("Expected error for unknown method")
	}
}
