// Package types defines core domain types for the Seam engine.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"fmt"
	"sort"
	"strings"
)

// PartitionType represents the kind of a partition dimension.
type PartitionType string

// Partition type constants.
const (
	PartitionCategorical PartitionType = "categorical"
	PartitionMonthly     PartitionType = "monthly"
	PartitionWeekly      PartitionType = "weekly"
)

// Valid returns true if the partition type is a known member of the closed set.
func (p PartitionType) Valid() bool {
	switch p {
	case PartitionCategorical, PartitionMonthly, PartitionWeekly:
		return true
	}
	return false
}

// KeyComponent is one (dimension, value) coordinate of a partition key.
type KeyComponent struct {
	// Dimension is the partition dimension name.
	Dimension string `msgpack:"dimension" json:"dimension"`
	// Value is the concrete partition value (category name or ISO date).
	Value string `msgpack:"value" json:"value"`
}

// PartitionKey is an ordered tuple of (dimension, value) coordinates.
// Component order is the asset's declared partition order and is preserved
// everywhere a key is serialized or compared.
type PartitionKey []KeyComponent

// String returns the canonical serialized form, "dim=value|dim=value".
// Components appear in declared order.
func (k PartitionKey) String() string {
	if len(k) == 0 {
		return ""
	}
	parts := make([]string, len(k))
	for i, c := range k {
		parts[i] = c.Dimension + "=" + c.Value
	}
	return strings.Join(parts, "|")
}

// Equal reports whether two keys have identical components in identical order.
func (k PartitionKey) Equal(other PartitionKey) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Value returns the value for the named dimension, if present.
func (k PartitionKey) Value(dimension string) (string, bool) {
	for _, c := range k {
		if c.Dimension == dimension {
			return c.Value, true
		}
	}
	return "", false
}

// Dimensions returns the dimension names in declared order.
func (k PartitionKey) Dimensions() []string {
	dims := make([]string, len(k))
	for i, c := range k {
		dims[i] = c.Dimension
	}
	return dims
}

// Restrict projects the key onto the given dimensions, returning components
// sorted by dimension name. The sorted order makes restrictions comparable
// across assets that declare the same dimensions in different orders.
// Dimensions absent from the key are ignored.
func (k PartitionKey) Restrict(dimensions []string) PartitionKey {
	want := make(map[string]bool, len(dimensions))
	for _, d := range dimensions {
		want[d] = true
	}

	restricted := make(PartitionKey, 0, len(dimensions))
	for _, c := range k {
		if want[c.Dimension] {
			restricted = append(restricted, c)
		}
	}
	sort.Slice(restricted, func(i, j int) bool {
		return restricted[i].Dimension < restricted[j].Dimension
	})
	return restricted
}

// ParsePartitionKey parses the canonical "dim=value|dim=value" form.
// An empty string parses to an empty key (unpartitioned asset).
func ParsePartitionKey(s string) (PartitionKey, error) {
	if s == "" {
		return PartitionKey{}, nil
	}

	parts := strings.Split(s, "|")
	key := make(PartitionKey, 0, len(parts))
	for _, part := range parts {
		dim, value, found := strings.Cut(part, "=")
		if !found || dim == "" {
			return nil, fmt.Errorf("malformed partition key component %q", part)
		}
		key = append(key, KeyComponent{Dimension: dim, Value: value})
	}
	return key, nil
}
