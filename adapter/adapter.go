// Package adapter defines the event-bus adapter boundary.
//
// Adapters publish asset-partition completion notifications to downstream
// systems. The scheduler owns adapter lifecycle; users provide
// configuration only.
package adapter

import "context"

// PartitionCompletedEvent is the payload published when an asset-partition
// reaches a terminal state.
type PartitionCompletedEvent struct {
	EventType    string `json:"event_type"` // always "partition_completed"
	RunID        string `json:"run_id"`
	Asset        string `json:"asset"`
	PartitionKey string `json:"partition_key"`
	State        string `json:"state"` // succeeded, succeeded_with_warnings, failed, skipped
	Rows         int64  `json:"rows"`
	ChecksPassed int    `json:"checks_passed"`
	ChecksFailed int    `json:"checks_failed"`
	Error        string `json:"error,omitempty"`
	Timestamp    string `json:"timestamp"` // ISO 8601
}

// Adapter publishes partition completion events to a downstream system.
// Implementations must be safe for concurrent use across partitions.
type Adapter interface {
	// Publish sends a partition completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *PartitionCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
