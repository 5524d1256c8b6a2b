// Package store implements the run/result store: the single source of truth
// for per-asset-partition run state and check outcomes.
//
// The store guarantees atomic visibility: records are cloned on the way in
// and on the way out, so a reader never observes a partially-written record,
// and in particular never observes a running record carrying check results
// (checks are only attached on terminal transition). Single-writer-per-key
// is the scheduler's responsibility, enforced through its per-key lock.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/justapithecus/seam/types"
)

// Store persists run records keyed by (asset, partition key).
type Store interface {
	// Get returns the record for the key, or nil when none exists.
	Get(ctx context.Context, asset string, key types.PartitionKey) (*types.RunRecord, error)

	// Put overwrites the record for (record.Asset, record.Key).
	// Last writer wins.
	Put(ctx context.Context, record *types.RunRecord) error

	// ListByAsset returns the asset's records, sorted by partition key.
	ListByAsset(ctx context.Context, asset string) ([]*types.RunRecord, error)

	// ListPending returns all records in state pending, sorted by asset
	// then partition key.
	ListPending(ctx context.Context) ([]*types.RunRecord, error)

	// Close releases store resources.
	Close() error
}

// MemStore is an in-memory Store. The default backend for tests and
// single-process runs.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]map[string]*types.RunRecord // asset -> key string -> record
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]map[string]*types.RunRecord)}
}

// Get returns a clone of the record, or nil when absent.
func (s *MemStore) Get(_ context.Context, asset string, key types.PartitionKey) (*types.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[asset][key.String()]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Put stores a clone of the record, overwriting any previous version.
func (s *MemStore) Put(_ context.Context, record *types.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.records[record.Asset]
	if !ok {
		byKey = make(map[string]*types.RunRecord)
		s.records[record.Asset] = byKey
	}
	byKey[record.Key.String()] = record.Clone()
	return nil
}

// ListByAsset returns clones of the asset's records, sorted by key.
func (s *MemStore) ListByAsset(_ context.Context, asset string) ([]*types.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := s.records[asset]
	out := make([]*types.RunRecord, 0, len(byKey))
	for _, rec := range byKey {
		out = append(out, rec.Clone())
	}
	sortRecords(out)
	return out, nil
}

// ListPending returns clones of all pending records, sorted by asset then key.
func (s *MemStore) ListPending(_ context.Context) ([]*types.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.RunRecord
	for _, byKey := range s.records {
		for _, rec := range byKey {
			if rec.State == types.StatePending {
				out = append(out, rec.Clone())
			}
		}
	}
	sortRecords(out)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}

var _ Store = (*MemStore)(nil)

// sortRecords orders records by asset name, then partition key string.
func sortRecords(records []*types.RunRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Asset != records[j].Asset {
			return records[i].Asset < records[j].Asset
		}
		return records[i].Key.String() < records[j].Key.String()
	})
}
