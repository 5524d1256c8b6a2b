package partition

import (
	"fmt"

	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/types"
)

// Space is the global set of resolved partition dimensions, shared across
// assets so two assets naming the same dimension see identical sequences.
type Space struct {
	dims map[string]*Dimension
}

// NewSpace resolves every dimension spec in the configuration.
// Fails on the first invalid dimension; no partial space is returned.
func NewSpace(specs []config.Partition, now Clock) (*Space, error) {
	dims := make(map[string]*Dimension, len(specs))
	for _, spec := range specs {
		d, err := NewDimension(spec, now)
		if err != nil {
			return nil, err
		}
		dims[spec.Name] = d
	}
	return &Space{dims: dims}, nil
}

// Dimension returns the named dimension, if declared.
func (s *Space) Dimension(name string) (*Dimension, bool) {
	d, ok := s.dims[name]
	return d, ok
}

// Has reports whether the named dimension is declared.
func (s *Space) Has(name string) bool {
	_, ok := s.dims[name]
	return ok
}

// Keyspace returns the composite partition keyspace for the given dimension
// names: the cartesian product of the per-dimension sequences, in declared
// order. Declared order fixes both tuple layout and enumeration order (the
// last dimension varies fastest).
//
// An empty dimension list yields a single empty key: an unpartitioned asset
// materializes exactly once.
func (s *Space) Keyspace(dimensions []string) ([]types.PartitionKey, error) {
	if len(dimensions) == 0 {
		return []types.PartitionKey{{}}, nil
	}

	sequences := make([][]string, len(dimensions))
	for i, name := range dimensions {
		d, ok := s.dims[name]
		if !ok {
			return nil, fmt.Errorf("unknown partition dimension %q", name)
		}
		sequences[i] = d.Values()
	}

	keys := []types.PartitionKey{{}}
	for i, name := range dimensions {
		next := make([]types.PartitionKey, 0, len(keys)*len(sequences[i]))
		for _, prefix := range keys {
			for _, value := range sequences[i] {
				key := make(types.PartitionKey, len(prefix), len(prefix)+1)
				copy(key, prefix)
				key = append(key, types.KeyComponent{Dimension: name, Value: value})
				next = append(next, key)
			}
		}
		keys = next
	}
	return keys, nil
}
