package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		// List all jobs
		url := fmt.Sprintf("%s/api/v1/jobs", serverURL)
		return listJobs(url)
	}
	jobID := args[0]
	url := fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID)
	return getJobStatus(url, jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		config, _ := job["config"].(map[string]interface{})
		if config != nil {
			if hits, ok := config["hits"].([]interface{}); ok {
				fmt.Printf("  Points: %d\n", len(hits))
			}
			fmt.Printf("  Iterations: %v\n", config["iterations"])
		}
		if sse, ok := job["bestSSE"].(float64); ok && sse > 0 {
			fmt.Printf("  Best SSE: %.6g\n", sse)
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		if hits, ok := config["hits"].([]interface{}); ok {
			fmt.Printf("  Points: %d\n", len(hits))
		}
		fmt.Printf("  Iterations: %v\n", config["iterations"])
		fmt.Printf("  Equal variance: %v\n", config["equalVariance"])
		fmt.Printf("  Equal recollection: %v\n", config["equalRecollection"])
		fmt.Println()
	}

	fmt.Println("Progress:")
	fmt.Printf("  Completed: %v\n", status["completed"])
	fmt.Printf("  Failed: %v\n", status["failed"])
	if sse, ok := status["bestSSE"].(float64); ok && sse > 0 {
		fmt.Printf("  Best SSE: %.6g\n", sse)
	}
	if elapsed, ok := status["elapsed"].(float64); ok {
		fmt.Printf("  Elapsed: %.1fs\n", elapsed)
	}
	if aps, ok := status["attemptsPerSec"].(float64); ok && aps > 0 {
		fmt.Printf("  Attempts/sec: %.1f\n", aps)
	}
	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("  Error: %s\n", errMsg)
	}

	return nil
}
