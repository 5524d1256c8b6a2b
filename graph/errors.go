// Package graph builds and validates the asset dependency graph.
package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for graph validation failures.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrUnknownAsset indicates a depends_on name that resolves to no declared asset.
	ErrUnknownAsset = errors.New("unknown asset")

	// ErrUnknownPartition indicates an asset referencing an undeclared partition dimension.
	ErrUnknownPartition = errors.New("unknown partition dimension")

	// ErrCyclicDependency indicates a dependency cycle between assets.
	ErrCyclicDependency = errors.New("cyclic dependency")
)

// UnknownAssetError reports a depends_on reference to an undeclared asset.
type UnknownAssetError struct {
	// Asset is the asset whose depends_on list is invalid.
	Asset string
	// Reference is the unresolved name.
	Reference string
}

func (e *UnknownAssetError) Error() string {
	return fmt.Sprintf("asset %q depends on undeclared asset %q", e.Asset, e.Reference)
}

// Is reports whether the error matches ErrUnknownAsset.
func (e *UnknownAssetError) Is(target error) bool {
	return target == ErrUnknownAsset
}

// UnknownPartitionError reports an asset referencing an undeclared dimension.
type UnknownPartitionError struct {
	// Asset is the asset whose partition list is invalid.
	Asset string
	// Dimension is the unresolved dimension name.
	Dimension string
}

func (e *UnknownPartitionError) Error() string {
	return fmt.Sprintf("asset %q references undeclared partition dimension %q", e.Asset, e.Dimension)
}

// Is reports whether the error matches ErrUnknownPartition.
func (e *UnknownPartitionError) Is(target error) bool {
	return target == ErrUnknownPartition
}

// CyclicDependencyError names a dependency cycle between assets.
type CyclicDependencyError struct {
	// Cycle lists the assets on the cycle, in walk order; the first
	// element is repeated at the end.
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return "cyclic dependency: " + strings.Join(e.Cycle, " -> ")
}

// Is reports whether the error matches ErrCyclicDependency.
func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}
