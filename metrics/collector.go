// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single scheduler run. It is a
// leaf package with no internal dependencies. All increment methods are
// nil-receiver safe so callers never need to guard against a missing collector.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all run metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Partition lifecycle
	PartitionsScheduled int64
	PartitionsSucceeded int64
	PartitionsWarned    int64
	PartitionsFailed    int64
	PartitionsSkipped   int64

	// Checks
	ChecksPassed    int64
	ChecksFailed    int64
	CheckWarnings   int64
	MissingColumns  int64

	// Materialization
	MaterializeErrors int64

	// Dimensions (informational, set at construction)
	RunID        string
	StoreBackend string
}

// Collector accumulates metrics during a single scheduler run.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	partitionsScheduled int64
	partitionsSucceeded int64
	partitionsWarned    int64
	partitionsFailed    int64
	partitionsSkipped   int64

	checksPassed   int64
	checksFailed   int64
	checkWarnings  int64
	missingColumns int64

	materializeErrors int64

	runID        string
	storeBackend string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(runID, storeBackend string) *Collector {
	return &Collector{runID: runID, storeBackend: storeBackend}
}

// IncPartitionScheduled records an asset-partition entering the run.
func (c *Collector) IncPartitionScheduled() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.partitionsScheduled++
	c.mu.Unlock()
}

// IncPartitionSucceeded records a clean success.
func (c *Collector) IncPartitionSucceeded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.partitionsSucceeded++
	c.mu.Unlock()
}

// IncPartitionWarned records a success with warn-severity check failures.
func (c *Collector) IncPartitionWarned() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.partitionsWarned++
	c.mu.Unlock()
}

// IncPartitionFailed records a failed materialization or error-severity check.
func (c *Collector) IncPartitionFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.partitionsFailed++
	c.mu.Unlock()
}

// IncPartitionSkipped records a partition skipped due to upstream failure.
func (c *Collector) IncPartitionSkipped() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.partitionsSkipped++
	c.mu.Unlock()
}

// IncMaterializeError records a resource collaborator failure.
func (c *Collector) IncMaterializeError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.materializeErrors++
	c.mu.Unlock()
}

// AbsorbCheckResults folds one partition's check outcomes into the counters.
func (c *Collector) AbsorbCheckResults(passed, failed, warnings, missingColumns int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.checksPassed += passed
	c.checksFailed += failed
	c.checkWarnings += warnings
	c.missingColumns += missingColumns
	c.mu.Unlock()
}

// Snapshot returns an immutable copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		PartitionsScheduled: c.partitionsScheduled,
		PartitionsSucceeded: c.partitionsSucceeded,
		PartitionsWarned:    c.partitionsWarned,
		PartitionsFailed:    c.partitionsFailed,
		PartitionsSkipped:   c.partitionsSkipped,
		ChecksPassed:        c.checksPassed,
		ChecksFailed:        c.checksFailed,
		CheckWarnings:       c.checkWarnings,
		MissingColumns:      c.missingColumns,
		MaterializeErrors:   c.materializeErrors,
		RunID:               c.runID,
		StoreBackend:        c.storeBackend,
	}
}
