package types

import (
	"errors"
	"fmt"
	"time"
)

// RunState represents the lifecycle state of one asset-partition materialization.
type RunState string

// Run state constants.
const (
	// StatePending indicates the partition is scheduled but not yet dispatched.
	StatePending RunState = "pending"
	// StateRunning indicates materialization is in flight.
	StateRunning RunState = "running"
	// StateSucceeded indicates materialization completed and no error-severity
	// check failed.
	StateSucceeded RunState = "succeeded"
	// StateSucceededWithWarnings indicates materialization completed with only
	// warn-severity check failures. Counts as succeeded for dependency gating.
	StateSucceededWithWarnings RunState = "succeeded_with_warnings"
	// StateFailed indicates materialization errored or an error-severity check failed.
	StateFailed RunState = "failed"
	// StateSkipped indicates an upstream mapped partition failed, so this
	// partition was never dispatched.
	StateSkipped RunState = "skipped"
)

// Terminal returns true if the state is final for this scheduler pass.
func (s RunState) Terminal() bool {
	switch s {
	case StateSucceeded, StateSucceededWithWarnings, StateFailed, StateSkipped:
		return true
	}
	return false
}

// Satisfied returns true if the state satisfies a downstream dependency.
func (s RunState) Satisfied() bool {
	return s == StateSucceeded || s == StateSucceededWithWarnings
}

// RunMeta contains run identity metadata bound into log context.
type RunMeta struct {
	// RunID is the canonical run identifier. Must be globally unique.
	RunID string
	// Trigger describes what initiated the run (e.g. "manual", "cron").
	Trigger string
	// Attempt is the attempt number. Starts at 1 for initial runs.
	Attempt int
}

// Validate checks run identity rules.
func (r *RunMeta) Validate() error {
	if r.RunID == "" {
		return errors.New("run_id must be non-empty")
	}
	if r.Attempt < 1 {
		return fmt.Errorf("attempt must be >= 1, got %d", r.Attempt)
	}
	return nil
}

// RunRecord is the persisted state of one asset-partition materialization.
// Created when the partition is first scheduled; mutated only by the
// scheduler and the check engine, always through the store's locked API.
type RunRecord struct {
	// Asset is the asset name.
	Asset string `msgpack:"asset" json:"asset"`
	// Key is the partition key, in the asset's declared dimension order.
	Key PartitionKey `msgpack:"key" json:"key"`
	// State is the current lifecycle state.
	State RunState `msgpack:"state" json:"state"`
	// RunID identifies the scheduler run that last touched this record.
	RunID string `msgpack:"run_id" json:"run_id"`
	// Attempt counts materialization attempts for this key.
	Attempt int `msgpack:"attempt" json:"attempt"`
	// Rows is the materialized row count, populated on terminal transition.
	Rows int64 `msgpack:"rows" json:"rows"`
	// Checks holds check outcomes. Only attached on terminal transition,
	// so a reader never observes a running record with results.
	Checks []CheckResult `msgpack:"checks,omitempty" json:"checks,omitempty"`
	// Error is the materialization failure cause, if any.
	Error string `msgpack:"error,omitempty" json:"error,omitempty"`
	// ScheduledAt is when the record was created for this run.
	ScheduledAt time.Time `msgpack:"scheduled_at" json:"scheduled_at"`
	// StartedAt is when materialization was dispatched. Nil while pending.
	StartedAt *time.Time `msgpack:"started_at,omitempty" json:"started_at,omitempty"`
	// FinishedAt is when the record reached a terminal state. Nil until then.
	FinishedAt *time.Time `msgpack:"finished_at,omitempty" json:"finished_at,omitempty"`
}

// Warnings returns the failed warn-severity check results.
func (r *RunRecord) Warnings() []CheckResult {
	var warnings []CheckResult
	for _, c := range r.Checks {
		if !c.Passed && c.Severity == SeverityWarn {
			warnings = append(warnings, c)
		}
	}
	return warnings
}

// Clone returns a deep copy. The store hands out clones so callers can
// never mutate persisted state in place.
func (r *RunRecord) Clone() *RunRecord {
	out := *r
	out.Key = append(PartitionKey(nil), r.Key...)
	out.Checks = append([]CheckResult(nil), r.Checks...)
	if r.StartedAt != nil {
		t := *r.StartedAt
		out.StartedAt = &t
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}
