package types

import "fmt"

// CheckType represents the kind of a data-quality check.
// The set is closed; the check engine dispatches exhaustively over it.
type CheckType string

// Check type constants.
const (
	CheckSchema  CheckType = "schema"
	CheckVolume  CheckType = "volume"
	CheckUnique  CheckType = "unique"
	CheckBounds  CheckType = "bounds"
	CheckNullity CheckType = "nullity"
	CheckRegex   CheckType = "regex"
)

// Valid returns true if the check type is a known member of the closed set.
func (c CheckType) Valid() bool {
	switch c {
	case CheckSchema, CheckVolume, CheckUnique, CheckBounds, CheckNullity, CheckRegex:
		return true
	}
	return false
}

// Severity classifies the consequence of a failed check.
type Severity string

const (
	// SeverityWarn records the failure without blocking downstream work.
	SeverityWarn Severity = "warn"
	// SeverityError fails the asset-partition and skips mapped downstream partitions.
	SeverityError Severity = "error"
)

// Valid returns true if the severity is warn or error.
func (s Severity) Valid() bool {
	return s == SeverityWarn || s == SeverityError
}

// Operator is a comparison operator used by volume and bounds checks.
type Operator string

// Operator constants.
const (
	OpGT Operator = "gt"
	OpGE Operator = "ge"
	OpLT Operator = "lt"
	OpLE Operator = "le"
	OpEQ Operator = "eq"
)

// ParseOperator parses an operator string, returning an error for
// anything outside the closed set.
func ParseOperator(s string) (Operator, error) {
	switch Operator(s) {
	case OpGT, OpGE, OpLT, OpLE, OpEQ:
		return Operator(s), nil
	}
	return "", fmt.Errorf("unknown comparison operator %q (must be gt, ge, lt, le, or eq)", s)
}

// Compare applies the operator to (actual, reference), e.g. OpGE reports
// actual >= reference.
func (o Operator) Compare(actual, reference float64) bool {
	switch o {
	case OpGT:
		return actual > reference
	case OpGE:
		return actual >= reference
	case OpLT:
		return actual < reference
	case OpLE:
		return actual <= reference
	case OpEQ:
		return actual == reference
	}
	return false
}

// CheckResult is the outcome of one check against one materialized partition.
// Owned by the RunRecord it belongs to; immutable once written.
type CheckResult struct {
	// CheckType is the check that produced this result.
	CheckType CheckType `msgpack:"check_type" json:"check_type"`
	// Passed reports whether the check passed.
	Passed bool `msgpack:"passed" json:"passed"`
	// Severity is the effective severity. A missing required column is
	// escalated to error regardless of the configured severity.
	Severity Severity `msgpack:"severity" json:"severity"`
	// Column is the column the check targeted, if column-scoped.
	Column string `msgpack:"column,omitempty" json:"column,omitempty"`
	// Message is a human-readable description of the outcome.
	Message string `msgpack:"message" json:"message"`
}
