package runtime

import (
	"fmt"
	"time"

	"github.com/justapithecus/seam/metrics"
)

// Exit codes for a triggered run.
const (
	// ExitCodeSuccess: all terminal partitions succeeded (warnings allowed).
	ExitCodeSuccess = 0
	// ExitCodeFailed: at least one partition failed.
	ExitCodeFailed = 1
	// ExitCodeConfig: configuration validation error, no run attempted.
	ExitCodeConfig = 2
)

// Report aggregates the outcome of one scheduler run.
type Report struct {
	// RunID identifies the run.
	RunID string `json:"run_id"`
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Total is the number of asset-partitions in scope.
	Total int `json:"total"`
	// Succeeded counts clean successes, including no-op already-succeeded keys.
	Succeeded int `json:"succeeded"`
	// Warned counts successes with warn-severity check failures.
	Warned int `json:"warned"`
	// Failed counts materialization errors and error-severity check failures.
	Failed int `json:"failed"`
	// Skipped counts partitions skipped due to upstream failure.
	Skipped int `json:"skipped"`
	// Pending counts partitions left pending (blocked or cancelled).
	Pending int `json:"pending"`

	// Metrics is the collector snapshot at run end.
	Metrics metrics.Snapshot `json:"-"`
}

// ExitCode maps the report to the process exit code contract.
func (r *Report) ExitCode() int {
	if r.Failed > 0 {
		return ExitCodeFailed
	}
	return ExitCodeSuccess
}

// Duration returns the wall-clock run duration.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// buildReport folds final task statuses into a Report.
func buildReport(runID string, started, finished time.Time, tasks []*task, collector *metrics.Collector) *Report {
	report := &Report{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: finished,
		Total:      len(tasks),
	}
	for _, t := range tasks {
		switch t.status {
		case taskSatisfied:
			report.Succeeded++
		case taskWarned:
			report.Warned++
		case taskFailed:
			report.Failed++
		case taskSkipped:
			report.Skipped++
		default:
			report.Pending++
		}
	}

	if collector != nil {
		report.Metrics = collector.Snapshot()
	}
	return report
}

// PrintRunSummary prints a human-readable run summary to stdout.
func PrintRunSummary(report *Report) {
	fmt.Printf("\n=== Run Summary ===\n")
	fmt.Printf("Run ID:      %s\n", report.RunID)
	fmt.Printf("Duration:    %s\n", report.Duration().Round(time.Millisecond))
	fmt.Printf("Partitions:  %d total, %d succeeded, %d with warnings, %d failed, %d skipped, %d pending\n",
		report.Total, report.Succeeded, report.Warned, report.Failed, report.Skipped, report.Pending)
	if report.Metrics.ChecksPassed+report.Metrics.ChecksFailed > 0 {
		fmt.Printf("Checks:      %d passed, %d failed (%d warnings)\n",
			report.Metrics.ChecksPassed, report.Metrics.ChecksFailed, report.Metrics.CheckWarnings)
	}
}
