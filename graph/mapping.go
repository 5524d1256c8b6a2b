package graph

import (
	"sort"

	"github.com/justapithecus/seam/types"
)

// SharedDimensions returns the partition dimensions declared by both assets,
// sorted by name for deterministic restriction comparison.
func SharedDimensions(a, b *Node) []string {
	inB := make(map[string]bool, len(b.Spec.Partitions))
	for _, d := range b.Spec.Partitions {
		inB[d] = true
	}

	var shared []string
	for _, d := range a.Spec.Partitions {
		if inB[d] {
			shared = append(shared, d)
		}
	}
	sort.Strings(shared)
	return shared
}

// MapUpstream returns the upstream partition keys a downstream key depends
// on, out of the given upstream keyspace.
//
// Keys are matched on the dimensions both assets share: an upstream key is
// mapped iff its restriction to the shared dimensions equals the downstream
// key's restriction. When the assets share no dimension, every downstream
// key depends on every upstream key. This is intentionally conservative: an
// asset cannot start until all of an unrelated upstream's partitions are
// terminal.
func MapUpstream(downKey types.PartitionKey, down, up *Node, upstreamKeys []types.PartitionKey) []types.PartitionKey {
	shared := SharedDimensions(down, up)
	if len(shared) == 0 {
		return append([]types.PartitionKey(nil), upstreamKeys...)
	}

	want := downKey.Restrict(shared).String()
	var mapped []types.PartitionKey
	for _, upKey := range upstreamKeys {
		if upKey.Restrict(shared).String() == want {
			mapped = append(mapped, upKey)
		}
	}
	return mapped
}
