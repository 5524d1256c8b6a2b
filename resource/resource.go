// Package resource defines the collaborator boundary between the engine and
// the systems that actually read and write data. The engine never touches
// storage or compute directly: it asks a named Resource to materialize an
// asset-partition and receives back a DataHandle describing the result.
//
// Resources must be safe for concurrent use across distinct partitions.
// They are not assumed safe for concurrent use on the same partition; the
// scheduler's per-key lock enforces at-most-one materialization per key.
package resource

import (
	"context"
	"fmt"
	"sort"

	"github.com/justapithecus/seam/types"
)

// Column describes one column of a materialized partition.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// ColumnStats holds per-column statistics for check evaluation.
type ColumnStats struct {
	// NullFraction is nulls / row count, in [0,1]. Zero for empty partitions.
	NullFraction float64
	// DistinctCount is the number of distinct non-null values.
	DistinctCount int64
	// Min and Max are the numeric extrema of the column.
	// Nil when the column has no numeric values.
	Min *float64
	Max *float64
}

// DataHandle describes one materialized partition: its schema, row count,
// and per-column statistics. Handles are read-only and safe for concurrent
// use once returned.
type DataHandle interface {
	// Columns returns the materialized column set, in storage order.
	Columns() []Column

	// RowCount returns the partition's row count.
	RowCount() int64

	// Stats returns statistics for the named column.
	// ok is false when the column does not exist.
	Stats(column string) (stats ColumnStats, ok bool)

	// Values returns the column's non-null values rendered as strings,
	// for value-scanned checks. ok is false when the column does not exist.
	Values(column string) (values []string, ok bool)
}

// Resource materializes asset-partitions. One implementation exists per
// distinct resource name in the configuration.
type Resource interface {
	// Name returns the resource's registered name.
	Name() string

	// Materialize produces or refreshes the data for one asset-partition
	// and returns a handle describing the result. Must respect context
	// cancellation.
	Materialize(ctx context.Context, asset string, key types.PartitionKey) (DataHandle, error)
}

// Registry resolves resource names to implementations. Populated once at
// startup; read-only afterwards.
type Registry struct {
	resources map[string]Resource
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]Resource)}
}

// Register adds a resource under its name. Re-registering a name replaces
// the previous implementation.
func (r *Registry) Register(res Resource) {
	r.resources[res.Name()] = res
}

// Resolve maps the given names to implementations, in order. Fails on the
// first unknown name so misconfigured assets are caught before scheduling.
func (r *Registry) Resolve(names []string) ([]Resource, error) {
	resolved := make([]Resource, 0, len(names))
	for _, name := range names {
		res, ok := r.resources[name]
		if !ok {
			return nil, fmt.Errorf("no resource registered under %q (have %v)", name, r.names())
		}
		resolved = append(resolved, res)
	}
	return resolved, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
