package check

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/resource"
	"github.com/justapithecus/seam/types"
)

// schemaCheck verifies the materialized column set and data types exactly
// match the asset's declared schema. Order-insensitive on names,
// type-sensitive.
type schemaCheck struct {
	severity types.Severity
	declared []config.Column
}

func (c *schemaCheck) Type() types.CheckType { return types.CheckSchema }

func (c *schemaCheck) Evaluate(handle resource.DataHandle) types.CheckResult {
	declared := make(map[string]string, len(c.declared))
	for _, col := range c.declared {
		declared[col.Name] = col.DataType
	}

	var problems []string
	seen := make(map[string]bool, len(declared))
	for _, col := range handle.Columns() {
		wantType, ok := declared[col.Name]
		if !ok {
			problems = append(problems, fmt.Sprintf("unexpected column %q", col.Name))
			continue
		}
		seen[col.Name] = true
		if col.DataType != wantType {
			problems = append(problems, fmt.Sprintf("column %q has type %s, want %s", col.Name, col.DataType, wantType))
		}
	}
	for name := range declared {
		if !seen[name] {
			problems = append(problems, fmt.Sprintf("missing column %q", name))
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return c.fail(strings.Join(problems, "; "))
	}
	return c.pass(fmt.Sprintf("schema matches (%d columns)", len(c.declared)))
}

func (c *schemaCheck) pass(msg string) types.CheckResult {
	return types.CheckResult{CheckType: types.CheckSchema, Passed: true, Severity: c.severity, Message: msg}
}

func (c *schemaCheck) fail(msg string) types.CheckResult {
	return types.CheckResult{CheckType: types.CheckSchema, Passed: false, Severity: c.severity, Message: msg}
}

// volumeCheck verifies the row count satisfies the configured min/max
// comparisons. With neither bound configured it is a presence check and
// always passes.
type volumeCheck struct {
	severity types.Severity
	min      *comparison
	max      *comparison
}

func (c *volumeCheck) Type() types.CheckType { return types.CheckVolume }

func (c *volumeCheck) Evaluate(handle resource.DataHandle) types.CheckResult {
	rows := float64(handle.RowCount())

	if c.min != nil && !c.min.op.Compare(rows, c.min.value) {
		return types.CheckResult{
			CheckType: types.CheckVolume, Passed: false, Severity: c.severity,
			Message: fmt.Sprintf("row count %d violates min bound (%s %g)", handle.RowCount(), c.min.op, c.min.value),
		}
	}
	if c.max != nil && !c.max.op.Compare(rows, c.max.value) {
		return types.CheckResult{
			CheckType: types.CheckVolume, Passed: false, Severity: c.severity,
			Message: fmt.Sprintf("row count %d violates max bound (%s %g)", handle.RowCount(), c.max.op, c.max.value),
		}
	}

	return types.CheckResult{
		CheckType: types.CheckVolume, Passed: true, Severity: c.severity,
		Message: fmt.Sprintf("row count %d within bounds", handle.RowCount()),
	}
}

// uniqueCheck verifies the named column has no duplicate non-null values.
type uniqueCheck struct {
	severity types.Severity
	column   string
}

func (c *uniqueCheck) Type() types.CheckType { return types.CheckUnique }

func (c *uniqueCheck) Evaluate(handle resource.DataHandle) types.CheckResult {
	stats, ok := handle.Stats(c.column)
	if !ok {
		return missingColumn(types.CheckUnique, c.column)
	}
	values, _ := handle.Values(c.column)

	nonNull := int64(len(values))
	if stats.DistinctCount < nonNull {
		return types.CheckResult{
			CheckType: types.CheckUnique, Passed: false, Severity: c.severity, Column: c.column,
			Message: fmt.Sprintf("column %q has %d duplicate values", c.column, nonNull-stats.DistinctCount),
		}
	}
	return types.CheckResult{
		CheckType: types.CheckUnique, Passed: true, Severity: c.severity, Column: c.column,
		Message: fmt.Sprintf("column %q unique across %d values", c.column, nonNull),
	}
}

// boundsCheck verifies every value in the named column satisfies the
// configured min/max comparisons. Non-numeric values fail the check.
type boundsCheck struct {
	severity types.Severity
	column   string
	min      *comparison
	max      *comparison
}

func (c *boundsCheck) Type() types.CheckType { return types.CheckBounds }

func (c *boundsCheck) Evaluate(handle resource.DataHandle) types.CheckResult {
	values, ok := handle.Values(c.column)
	if !ok {
		return missingColumn(types.CheckBounds, c.column)
	}

	for _, raw := range values {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.CheckResult{
				CheckType: types.CheckBounds, Passed: false, Severity: c.severity, Column: c.column,
				Message: fmt.Sprintf("column %q has non-numeric value %q", c.column, raw),
			}
		}
		if c.min != nil && !c.min.op.Compare(v, c.min.value) {
			return types.CheckResult{
				CheckType: types.CheckBounds, Passed: false, Severity: c.severity, Column: c.column,
				Message: fmt.Sprintf("value %g violates min bound (%s %g)", v, c.min.op, c.min.value),
			}
		}
		if c.max != nil && !c.max.op.Compare(v, c.max.value) {
			return types.CheckResult{
				CheckType: types.CheckBounds, Passed: false, Severity: c.severity, Column: c.column,
				Message: fmt.Sprintf("value %g violates max bound (%s %g)", v, c.max.op, c.max.value),
			}
		}
	}

	return types.CheckResult{
		CheckType: types.CheckBounds, Passed: true, Severity: c.severity, Column: c.column,
		Message: fmt.Sprintf("all %d values within bounds", len(values)),
	}
}

// nullityCheck verifies the column's null fraction does not exceed the
// configured threshold. The boundary is inclusive: a fraction exactly equal
// to threshold_pct passes.
type nullityCheck struct {
	severity     types.Severity
	column       string
	thresholdPct float64
}

func (c *nullityCheck) Type() types.CheckType { return types.CheckNullity }

func (c *nullityCheck) Evaluate(handle resource.DataHandle) types.CheckResult {
	stats, ok := handle.Stats(c.column)
	if !ok {
		return missingColumn(types.CheckNullity, c.column)
	}

	if stats.NullFraction > c.thresholdPct {
		return types.CheckResult{
			CheckType: types.CheckNullity, Passed: false, Severity: c.severity, Column: c.column,
			Message: fmt.Sprintf("null fraction %.4f exceeds threshold %.4f", stats.NullFraction, c.thresholdPct),
		}
	}
	return types.CheckResult{
		CheckType: types.CheckNullity, Passed: true, Severity: c.severity, Column: c.column,
		Message: fmt.Sprintf("null fraction %.4f within threshold %.4f", stats.NullFraction, c.thresholdPct),
	}
}

// regexCheck verifies every value in the named column matches the pattern.
type regexCheck struct {
	severity types.Severity
	column   string
	pattern  *regexp.Regexp
}

func newRegexCheck(severity types.Severity, column, pattern string) (*regexCheck, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &regexCheck{severity: severity, column: column, pattern: re}, nil
}

func (c *regexCheck) Type() types.CheckType { return types.CheckRegex }

func (c *regexCheck) Evaluate(handle resource.DataHandle) types.CheckResult {
	values, ok := handle.Values(c.column)
	if !ok {
		return missingColumn(types.CheckRegex, c.column)
	}

	for _, v := range values {
		if !c.pattern.MatchString(v) {
			return types.CheckResult{
				CheckType: types.CheckRegex, Passed: false, Severity: c.severity, Column: c.column,
				Message: fmt.Sprintf("value %q does not match pattern %q", v, c.pattern.String()),
			}
		}
	}
	return types.CheckResult{
		CheckType: types.CheckRegex, Passed: true, Severity: c.severity, Column: c.column,
		Message: fmt.Sprintf("all %d values match pattern %q", len(values), c.pattern.String()),
	}
}
