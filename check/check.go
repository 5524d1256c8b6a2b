// Package check implements the data-quality check engine: a closed set of
// check evaluators compiled from configuration at load time and dispatched
// through a single Evaluate capability.
//
// Compilation happens before any scheduling, so malformed check config
// (bad pattern, unknown operator) is a load-time failure, never a runtime
// surprise. Evaluation consumes only the DataHandle: checks never reach
// back into storage.
package check

import (
	"fmt"

	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/resource"
	"github.com/justapithecus/seam/types"
)

// Check evaluates one compiled data-quality rule against a materialized
// partition. Implementations are stateless and safe for concurrent use.
type Check interface {
	// Type returns the check's type discriminator.
	Type() types.CheckType

	// Evaluate runs the check against the handle and returns the outcome.
	Evaluate(handle resource.DataHandle) types.CheckResult
}

// Compile resolves one check spec into an executable check.
// The spec must already have passed config validation; Compile still guards
// the closed set so an unhandled type is an explicit error, not a silent pass.
func Compile(asset *config.Asset, spec *config.Check) (Check, error) {
	severity := spec.EffectiveSeverity()

	switch spec.CheckType {
	case types.CheckSchema:
		return &schemaCheck{severity: severity, declared: asset.ColumnSchema}, nil
	case types.CheckVolume:
		return &volumeCheck{severity: severity, min: bound(spec.Min, types.OpGE), max: bound(spec.Max, types.OpLE)}, nil
	case types.CheckUnique:
		return &uniqueCheck{severity: severity, column: spec.Column}, nil
	case types.CheckBounds:
		return &boundsCheck{severity: severity, column: spec.Column,
			min: bound(spec.Min, types.OpGE), max: bound(spec.Max, types.OpLE)}, nil
	case types.CheckNullity:
		return &nullityCheck{severity: severity, column: spec.Column, thresholdPct: *spec.ThresholdPct}, nil
	case types.CheckRegex:
		return newRegexCheck(severity, spec.Column, spec.Pattern)
	}
	return nil, fmt.Errorf("unknown check_type %q", spec.CheckType)
}

// CompileAll compiles an asset's declared checks, in declared order.
func CompileAll(asset *config.Asset) ([]Check, error) {
	checks := make([]Check, 0, len(asset.Checks))
	for i := range asset.Checks {
		c, err := Compile(asset, &asset.Checks[i])
		if err != nil {
			return nil, fmt.Errorf("asset %s check[%d]: %w", asset.Name, i, err)
		}
		checks = append(checks, c)
	}
	return checks, nil
}

// Run evaluates every check against the handle. Checks run independently;
// results carry no ordering semantics beyond declaration order.
func Run(checks []Check, handle resource.DataHandle) []types.CheckResult {
	results := make([]types.CheckResult, 0, len(checks))
	for _, c := range checks {
		results = append(results, c.Evaluate(handle))
	}
	return results
}

// Aggregate folds check results into the partition's terminal state:
// any failed error-severity check fails the partition; failed warn-severity
// checks are recorded but do not block.
func Aggregate(results []types.CheckResult) types.RunState {
	state := types.StateSucceeded
	for _, r := range results {
		if r.Passed {
			continue
		}
		if r.Severity == types.SeverityError {
			return types.StateFailed
		}
		state = types.StateSucceededWithWarnings
	}
	return state
}

// comparison is a compiled operator/value bound.
type comparison struct {
	op    types.Operator
	value float64
}

// bound compiles an optional operator/value pair, applying the side's
// default operator when none is configured.
func bound(ov *config.OperatorValue, defaultOp types.Operator) *comparison {
	if ov == nil {
		return nil
	}
	op := defaultOp
	if ov.Operator != "" {
		op = types.Operator(ov.Operator)
	}
	return &comparison{op: op, value: ov.Value}
}

// missingColumn builds the escalated result for a column that does not
// exist in the materialized data. Always error severity, regardless of the
// configured severity: no further evaluation of that column is meaningful.
func missingColumn(checkType types.CheckType, column string) types.CheckResult {
	return types.CheckResult{
		CheckType: checkType,
		Passed:    false,
		Severity:  types.SeverityError,
		Column:    column,
		Message:   fmt.Sprintf("required column %q missing from materialized data", column),
	}
}
