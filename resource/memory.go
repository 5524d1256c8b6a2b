package resource

import (
	"context"
	"strconv"

	"github.com/justapithecus/seam/types"
)

// MemHandle is an in-memory DataHandle for tests and dry runs.
// Populate Cols, Rows, and per-column data, then hand it to the check engine.
type MemHandle struct {
	// Cols is the materialized column set.
	Cols []Column
	// Rows is the partition row count.
	Rows int64
	// ColValues holds each column's non-null values rendered as strings.
	ColValues map[string][]string
	// Nulls holds each column's null count.
	Nulls map[string]int64
}

// Columns returns the materialized column set.
func (h *MemHandle) Columns() []Column {
	return h.Cols
}

// RowCount returns the partition row count.
func (h *MemHandle) RowCount() int64 {
	return h.Rows
}

// Stats computes statistics from the in-memory column data.
func (h *MemHandle) Stats(column string) (ColumnStats, bool) {
	if !h.hasColumn(column) {
		return ColumnStats{}, false
	}

	var stats ColumnStats
	if h.Rows > 0 {
		stats.NullFraction = float64(h.Nulls[column]) / float64(h.Rows)
	}

	distinct := make(map[string]struct{})
	for _, v := range h.ColValues[column] {
		distinct[v] = struct{}{}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			if stats.Min == nil || f < *stats.Min {
				min := f
				stats.Min = &min
			}
			if stats.Max == nil || f > *stats.Max {
				max := f
				stats.Max = &max
			}
		}
	}
	stats.DistinctCount = int64(len(distinct))
	return stats, true
}

// Values returns the column's non-null values.
func (h *MemHandle) Values(column string) ([]string, bool) {
	if !h.hasColumn(column) {
		return nil, false
	}
	return h.ColValues[column], true
}

func (h *MemHandle) hasColumn(column string) bool {
	for _, c := range h.Cols {
		if c.Name == column {
			return true
		}
	}
	return false
}

var _ DataHandle = (*MemHandle)(nil)

// HandleFunc produces a DataHandle for an asset-partition.
type HandleFunc func(asset string, key types.PartitionKey) (DataHandle, error)

// MemResource is an in-memory Resource backed by a HandleFunc.
// Deterministic by construction, so tests can assert exact check outcomes.
type MemResource struct {
	name   string
	handle HandleFunc
}

// NewMemResource creates an in-memory resource with the given name and
// handle producer.
func NewMemResource(name string, handle HandleFunc) *MemResource {
	return &MemResource{name: name, handle: handle}
}

// NewStaticResource creates an in-memory resource that returns the same
// handle for every partition.
func NewStaticResource(name string, handle DataHandle) *MemResource {
	return &MemResource{
		name: name,
		handle: func(string, types.PartitionKey) (DataHandle, error) {
			return handle, nil
		},
	}
}

// Name returns the resource's registered name.
func (r *MemResource) Name() string {
	return r.name
}

// Materialize invokes the handle producer, honoring cancellation.
func (r *MemResource) Materialize(ctx context.Context, asset string, key types.PartitionKey) (DataHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.handle(asset, key)
}

var _ Resource = (*MemResource)(nil)
