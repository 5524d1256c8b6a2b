package check_test

import (
	"strings"
	"testing"

	"github.com/justapithecus/seam/check"
	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/resource"
	"github.com/justapithecus/seam/types"
)

func floatPtr(v float64) *float64 { return &v }

func ordersAsset() *config.Asset {
	return &config.Asset{
		Name: "orders",
		ColumnSchema: []config.Column{
			{Name: "order_id", DataType: "string"},
			{Name: "amount", DataType: "float"},
		},
	}
}

func ordersHandle() *resource.MemHandle {
	return &resource.MemHandle{
		Cols: []resource.Column{
			{Name: "order_id", DataType: "string"},
			{Name: "amount", DataType: "float"},
		},
		Rows: 4,
		ColValues: map[string][]string{
			"order_id": {"10001", "10002", "10003", "10004"},
			"amount":   {"9.5", "12.0", "3.25", "40"},
		},
		Nulls: map[string]int64{},
	}
}

func compile(t *testing.T, asset *config.Asset, spec config.Check) check.Check {
	t.Helper()
	c, err := check.Compile(asset, &spec)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return c
}

func TestSchemaCheck_Match(t *testing.T) {
	c := compile(t, ordersAsset(), config.Check{CheckType: types.CheckSchema})

	result := c.Evaluate(ordersHandle())
	if !result.Passed {
		t.Errorf("expected pass, got %q", result.Message)
	}
}

func TestSchemaCheck_OrderInsensitive(t *testing.T) {
	c := compile(t, ordersAsset(), config.Check{CheckType: types.CheckSchema})

	handle := ordersHandle()
	handle.Cols = []resource.Column{
		{Name: "amount", DataType: "float"},
		{Name: "order_id", DataType: "string"},
	}

	if result := c.Evaluate(handle); !result.Passed {
		t.Errorf("column order should not matter, got %q", result.Message)
	}
}

func TestSchemaCheck_Problems(t *testing.T) {
	c := compile(t, ordersAsset(), config.Check{CheckType: types.CheckSchema})

	handle := ordersHandle()
	handle.Cols = []resource.Column{
		{Name: "order_id", DataType: "int"}, // wrong type
		{Name: "extra", DataType: "string"}, // unexpected
		// amount missing
	}

	result := c.Evaluate(handle)
	if result.Passed {
		t.Fatal("expected failure")
	}
	for _, want := range []string{`column "order_id" has type int`, `unexpected column "extra"`, `missing column "amount"`} {
		if !strings.Contains(result.Message, want) {
			t.Errorf("message %q missing %q", result.Message, want)
		}
	}
}

func TestVolumeCheck_Bounds(t *testing.T) {
	tests := []struct {
		name string
		spec config.Check
		rows int64
		pass bool
	}{
		{
			name: "no bounds always passes",
			spec: config.Check{CheckType: types.CheckVolume},
			rows: 0,
			pass: true,
		},
		{
			name: "min default ge inclusive",
			spec: config.Check{CheckType: types.CheckVolume, Min: &config.OperatorValue{Value: 4}},
			rows: 4,
			pass: true,
		},
		{
			name: "min violated",
			spec: config.Check{CheckType: types.CheckVolume, Min: &config.OperatorValue{Value: 5}},
			rows: 4,
			pass: false,
		},
		{
			name: "min gt operator excludes boundary",
			spec: config.Check{CheckType: types.CheckVolume, Min: &config.OperatorValue{Value: 4, Operator: "gt"}},
			rows: 4,
			pass: false,
		},
		{
			name: "max default le inclusive",
			spec: config.Check{CheckType: types.CheckVolume, Max: &config.OperatorValue{Value: 4}},
			rows: 4,
			pass: true,
		},
		{
			name: "max violated",
			spec: config.Check{CheckType: types.CheckVolume, Max: &config.OperatorValue{Value: 3}},
			rows: 4,
			pass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compile(t, ordersAsset(), tt.spec)
			handle := ordersHandle()
			handle.Rows = tt.rows

			result := c.Evaluate(handle)
			if result.Passed != tt.pass {
				t.Errorf("passed = %v, want %v (%s)", result.Passed, tt.pass, result.Message)
			}
		})
	}
}

func TestUniqueCheck(t *testing.T) {
	c := compile(t, ordersAsset(), config.Check{CheckType: types.CheckUnique, Column: "order_id"})

	if result := c.Evaluate(ordersHandle()); !result.Passed {
		t.Errorf("expected pass, got %q", result.Message)
	}

	handle := ordersHandle()
	handle.ColValues["order_id"] = []string{"10001", "10001", "10002"}
	result := c.Evaluate(handle)
	if result.Passed {
		t.Fatal("expected duplicate failure")
	}
	if !strings.Contains(result.Message, "1 duplicate") {
		t.Errorf("message = %q", result.Message)
	}
}

func TestBoundsCheck(t *testing.T) {
	c := compile(t, ordersAsset(), config.Check{
		CheckType: types.CheckBounds,
		Column:    "amount",
		Min:       &config.OperatorValue{Value: 0},
		Max:       &config.OperatorValue{Value: 100},
	})

	if result := c.Evaluate(ordersHandle()); !result.Passed {
		t.Errorf("expected pass, got %q", result.Message)
	}

	handle := ordersHandle()
	handle.ColValues["amount"] = []string{"50", "-1"}
	if result := c.Evaluate(handle); result.Passed {
		t.Error("expected min violation")
	}

	handle.ColValues["amount"] = []string{"50", "oops"}
	result := c.Evaluate(handle)
	if result.Passed {
		t.Fatal("expected non-numeric failure")
	}
	if !strings.Contains(result.Message, "non-numeric") {
		t.Errorf("message = %q", result.Message)
	}
}

func TestNullityCheck_InclusiveBoundary(t *testing.T) {
	c := compile(t, ordersAsset(), config.Check{
		CheckType:    types.CheckNullity,
		Column:       "amount",
		ThresholdPct: floatPtr(0.25),
	})

	// 1 null out of 4 rows is exactly the threshold; inclusive, so passes.
	handle := ordersHandle()
	handle.Nulls["amount"] = 1
	if result := c.Evaluate(handle); !result.Passed {
		t.Errorf("boundary fraction should pass, got %q", result.Message)
	}

	handle.Nulls["amount"] = 2
	if result := c.Evaluate(handle); result.Passed {
		t.Error("fraction above threshold should fail")
	}
}

func TestRegexCheck(t *testing.T) {
	c := compile(t, ordersAsset(), config.Check{
		CheckType: types.CheckRegex,
		Column:    "order_id",
		Pattern:   `^\d{5}$`,
	})

	if result := c.Evaluate(ordersHandle()); !result.Passed {
		t.Errorf("expected pass, got %q", result.Message)
	}

	handle := ordersHandle()
	handle.ColValues["order_id"] = []string{"10001", "1234"}
	if result := c.Evaluate(handle); result.Passed {
		t.Error("short value should fail pattern")
	}

	handle.ColValues["order_id"] = []string{"abcde"}
	if result := c.Evaluate(handle); result.Passed {
		t.Error("alphabetic value should fail pattern")
	}
}

func TestCompile_InvalidRegex(t *testing.T) {
	_, err := check.Compile(ordersAsset(), &config.Check{
		CheckType: types.CheckRegex,
		Column:    "order_id",
		Pattern:   "([",
	})
	if err == nil {
		t.Error("expected compile error for invalid pattern")
	}
}

func TestCompile_UnknownType(t *testing.T) {
	_, err := check.Compile(ordersAsset(), &config.Check{CheckType: "rowcount"})
	if err == nil {
		t.Error("expected compile error for unknown check type")
	}
}

func TestMissingColumn_EscalatesToError(t *testing.T) {
	// Column-scoped checks escalate a missing column to error severity
	// regardless of configured severity.
	specs := []config.Check{
		{CheckType: types.CheckUnique, Column: "ghost", Severity: types.SeverityWarn},
		{CheckType: types.CheckBounds, Column: "ghost", Severity: types.SeverityWarn, Min: &config.OperatorValue{Value: 0}},
		{CheckType: types.CheckNullity, Column: "ghost", Severity: types.SeverityWarn, ThresholdPct: floatPtr(0.5)},
		{CheckType: types.CheckRegex, Column: "ghost", Severity: types.SeverityWarn, Pattern: ".*"},
	}

	for _, spec := range specs {
		c := compile(t, ordersAsset(), spec)
		result := c.Evaluate(ordersHandle())
		if result.Passed {
			t.Errorf("%s: expected failure for missing column", spec.CheckType)
		}
		if result.Severity != types.SeverityError {
			t.Errorf("%s: severity = %s, want error", spec.CheckType, result.Severity)
		}
		if !strings.HasPrefix(result.Message, "required column") {
			t.Errorf("%s: message = %q", spec.CheckType, result.Message)
		}
	}
}

func TestAggregate(t *testing.T) {
	pass := types.CheckResult{Passed: true, Severity: types.SeverityError}
	warnFail := types.CheckResult{Passed: false, Severity: types.SeverityWarn}
	errFail := types.CheckResult{Passed: false, Severity: types.SeverityError}

	tests := []struct {
		name    string
		results []types.CheckResult
		want    types.RunState
	}{
		{"all pass", []types.CheckResult{pass, pass}, types.StateSucceeded},
		{"empty", nil, types.StateSucceeded},
		{"warn only", []types.CheckResult{pass, warnFail}, types.StateSucceededWithWarnings},
		{"error fails", []types.CheckResult{pass, errFail}, types.StateFailed},
		{"error beats warn", []types.CheckResult{warnFail, errFail}, types.StateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := check.Aggregate(tt.results); got != tt.want {
				t.Errorf("Aggregate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCompileAll_DeclaredOrder(t *testing.T) {
	asset := ordersAsset()
	asset.Checks = []config.Check{
		{CheckType: types.CheckVolume},
		{CheckType: types.CheckSchema},
		{CheckType: types.CheckUnique, Column: "order_id"},
	}

	checks, err := check.CompileAll(asset)
	if err != nil {
		t.Fatalf("compile all: %v", err)
	}
	if len(checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(checks))
	}

	want := []types.CheckType{types.CheckVolume, types.CheckSchema, types.CheckUnique}
	for i, w := range want {
		if checks[i].Type() != w {
			t.Errorf("checks[%d] = %s, want %s", i, checks[i].Type(), w)
		}
	}
}

func TestRun_EvaluatesAll(t *testing.T) {
	asset := ordersAsset()
	asset.Checks = []config.Check{
		{CheckType: types.CheckSchema},
		{CheckType: types.CheckUnique, Column: "order_id"},
	}
	checks, err := check.CompileAll(asset)
	if err != nil {
		t.Fatalf("compile all: %v", err)
	}

	results := check.Run(checks, ordersHandle())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("%s: %q", r.CheckType, r.Message)
		}
	}
}
