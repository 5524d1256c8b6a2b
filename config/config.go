// Package config defines the declarative asset configuration consumed by the
// engine: partition dimensions, assets, and their data-quality checks.
//
// Loading and syntax-level validation happen here, before any graph is built
// or any scheduling begins. A Config that passes Validate is structurally
// sound; cross-reference validation (unknown assets, unknown dimensions,
// cycles) is the graph builder's job.
package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/justapithecus/seam/types"
)

// Config is the root configuration object: the engine's sole input.
type Config struct {
	Partitions []Partition `yaml:"partitions"`
	Assets     []Asset     `yaml:"assets"`
}

// Partition declares one partition dimension.
type Partition struct {
	Name   string              `yaml:"name"`
	Type   types.PartitionType `yaml:"partition_type"`
	Config PartitionConfig     `yaml:"config"`
}

// PartitionConfig holds the type-specific dimension configuration.
type PartitionConfig struct {
	// Categories is the category list for categorical dimensions.
	Categories []string `yaml:"categories,omitempty"`
	// StartDate is the inclusive ISO date lower bound for time dimensions.
	StartDate string `yaml:"start_date,omitempty"`
}

// Column is one entry of an asset's declared column schema.
type Column struct {
	Name     string `yaml:"name"`
	DataType string `yaml:"data_type"`
}

// Asset declares one data asset.
type Asset struct {
	Name         string   `yaml:"name"`
	Resources    []string `yaml:"resources"`
	ColumnSchema []Column `yaml:"column_schema"`
	// Partitions lists partition dimension names in declared order.
	// The order is semantically significant: it fixes partition key
	// tuple layout.
	Partitions []string `yaml:"partitions,omitempty"`
	DependsOn  []string `yaml:"depends_on,omitempty"`
	// Schedule is an optional cron expression. The engine does not
	// interpret it; it is handed to an external trigger.
	Schedule string  `yaml:"schedule,omitempty"`
	Checks   []Check `yaml:"checks,omitempty"`
}

// Check declares one data-quality check.
type Check struct {
	CheckType types.CheckType `yaml:"check_type"`
	// Severity defaults to error when omitted.
	Severity types.Severity `yaml:"severity,omitempty"`
	// Column is required for unique, bounds, nullity, and regex checks.
	Column string `yaml:"column,omitempty"`
	// Min and Max bound volume and bounds checks. Both optional.
	Min *OperatorValue `yaml:"min,omitempty"`
	Max *OperatorValue `yaml:"max,omitempty"`
	// ThresholdPct is the inclusive null-fraction ceiling for nullity checks.
	ThresholdPct *float64 `yaml:"threshold_pct,omitempty"`
	// Pattern is the regular expression for regex checks.
	Pattern string `yaml:"pattern,omitempty"`
}

// OperatorValue pairs a comparison operator with its reference value.
type OperatorValue struct {
	Value    float64 `yaml:"value"`
	Operator string  `yaml:"operator,omitempty"`
}

// EffectiveSeverity returns the configured severity, defaulting to error.
func (c *Check) EffectiveSeverity() types.Severity {
	if c.Severity == "" {
		return types.SeverityError
	}
	return c.Severity
}

// Validate checks the configuration for syntax-level soundness: closed-set
// membership, required per-check fields, operator and threshold ranges, and
// name uniqueness. It does not resolve cross-references between assets.
func (c *Config) Validate() error {
	seenDims := make(map[string]bool, len(c.Partitions))
	for _, p := range c.Partitions {
		if p.Name == "" {
			return NewConfigError("partitions", "dimension name must be non-empty", nil)
		}
		if seenDims[p.Name] {
			return NewConfigError("partitions", fmt.Sprintf("duplicate dimension name %q", p.Name), nil)
		}
		seenDims[p.Name] = true

		if !p.Type.Valid() {
			return NewConfigError("partition "+p.Name,
				fmt.Sprintf("unknown partition_type %q (must be categorical, monthly, or weekly)", p.Type), nil)
		}
		switch p.Type {
		case types.PartitionCategorical:
			if len(p.Config.Categories) == 0 {
				return NewConfigError("partition "+p.Name, "categorical dimension requires a non-empty category list", nil)
			}
		case types.PartitionMonthly, types.PartitionWeekly:
			if p.Config.StartDate == "" {
				return NewConfigError("partition "+p.Name, "time dimension requires start_date", nil)
			}
		}
	}

	seenAssets := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		if a.Name == "" {
			return NewConfigError("assets", "asset name must be non-empty", nil)
		}
		if seenAssets[a.Name] {
			return NewConfigError("assets", fmt.Sprintf("duplicate asset name %q", a.Name), nil)
		}
		seenAssets[a.Name] = true

		for i, chk := range a.Checks {
			section := fmt.Sprintf("asset %s check[%d]", a.Name, i)
			if err := validateCheck(section, &chk); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateCheck enforces the per-check-type required fields and value ranges.
func validateCheck(section string, chk *Check) error {
	if !chk.CheckType.Valid() {
		return NewConfigError(section, fmt.Sprintf("unknown check_type %q", chk.CheckType), nil)
	}
	if chk.Severity != "" && !chk.Severity.Valid() {
		return NewConfigError(section, fmt.Sprintf("unknown severity %q (must be warn or error)", chk.Severity), nil)
	}

	switch chk.CheckType {
	case types.CheckSchema:
		// No type-specific config.

	case types.CheckVolume:
		if err := validateOperatorValue(section, "min", chk.Min, minOperators); err != nil {
			return err
		}
		if err := validateOperatorValue(section, "max", chk.Max, maxOperators); err != nil {
			return err
		}
		if chk.Min != nil && chk.Max != nil && chk.Min.Value >= chk.Max.Value {
			return NewConfigError(section, "min value must be less than max value", nil)
		}

	case types.CheckUnique:
		if chk.Column == "" {
			return NewConfigError(section, "unique check requires a column", nil)
		}

	case types.CheckBounds:
		if chk.Column == "" {
			return NewConfigError(section, "bounds check requires a column", nil)
		}
		if chk.Min == nil && chk.Max == nil {
			return NewConfigError(section, "bounds check requires min and/or max", nil)
		}
		if err := validateOperatorValue(section, "min", chk.Min, nil); err != nil {
			return err
		}
		if err := validateOperatorValue(section, "max", chk.Max, nil); err != nil {
			return err
		}

	case types.CheckNullity:
		if chk.Column == "" {
			return NewConfigError(section, "nullity check requires a column", nil)
		}
		if chk.ThresholdPct == nil {
			return NewConfigError(section, "nullity check requires threshold_pct", nil)
		}
		if *chk.ThresholdPct < 0 || *chk.ThresholdPct > 1 {
			return NewConfigError(section,
				fmt.Sprintf("threshold_pct must be in [0,1], got %g", *chk.ThresholdPct), nil)
		}

	case types.CheckRegex:
		if chk.Column == "" {
			return NewConfigError(section, "regex check requires a column", nil)
		}
		if chk.Pattern == "" {
			return NewConfigError(section, "regex check requires a pattern", nil)
		}
		if _, err := regexp.Compile(chk.Pattern); err != nil {
			return NewConfigError(section, fmt.Sprintf("invalid pattern %q", chk.Pattern), err)
		}
	}

	return nil
}

// Volume check bounds carry side-specific operators: a lower bound may only
// demand greater-than, an upper bound only less-than, so a bound can never
// invert its own meaning.
var (
	minOperators = []string{"gt", "ge"}
	maxOperators = []string{"lt", "le"}
)

// validateOperatorValue checks that a bound's operator parses and, when
// allowed is non-nil, belongs to the side's permitted set.
func validateOperatorValue(section, field string, ov *OperatorValue, allowed []string) error {
	if ov == nil || ov.Operator == "" {
		return nil
	}
	if _, err := types.ParseOperator(ov.Operator); err != nil {
		return NewConfigError(section, field+": "+err.Error(), nil)
	}
	if allowed != nil && !slices.Contains(allowed, ov.Operator) {
		return NewConfigError(section,
			fmt.Sprintf("%s: operator must be one of %s, got %q", field, strings.Join(allowed, ", "), ov.Operator), nil)
	}
	return nil
}
