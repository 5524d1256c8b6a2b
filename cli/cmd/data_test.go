package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/types"
)

const sampleDataYAML = `datasets:
  orders:
    rows: 100
    columns:
      - name: order_id
        data_type: string
      - name: amount
        data_type: float
    values:
      order_id: ["10001", "10002"]
    nulls:
      amount: 5
    partitions:
      region=eu:
        rows: 40
        columns:
          - name: order_id
            data_type: string
`

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write data file: %v", err)
	}
	return path
}

func TestLoadDataFile(t *testing.T) {
	df, err := loadDataFile(writeDataFile(t, sampleDataYAML))
	if err != nil {
		t.Fatalf("loadDataFile: %v", err)
	}

	ds, ok := df.Datasets["orders"]
	if !ok {
		t.Fatal("orders dataset missing")
	}
	if ds.Rows != 100 || len(ds.Columns) != 2 {
		t.Errorf("dataset = %d rows, %d columns, want 100/2", ds.Rows, len(ds.Columns))
	}
	if !reflect.DeepEqual(ds.Values["order_id"], []string{"10001", "10002"}) {
		t.Errorf("values = %v", ds.Values["order_id"])
	}
	if ds.Nulls["amount"] != 5 {
		t.Errorf("nulls = %d, want 5", ds.Nulls["amount"])
	}
	if override, ok := ds.Partitions["region=eu"]; !ok || override.Rows != 40 {
		t.Errorf("partition override = %+v", override)
	}
}

func TestLoadDataFile_Errors(t *testing.T) {
	if _, err := loadDataFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loadDataFile(writeDataFile(t, "datasets: [")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func dataConfig() *config.Config {
	return &config.Config{
		Assets: []config.Asset{
			{
				Name:      "orders",
				Resources: []string{"warehouse", "lake"},
				ColumnSchema: []config.Column{
					{Name: "order_id", DataType: "string"},
				},
			},
			{
				Name:      "customers",
				Resources: []string{"warehouse"},
				ColumnSchema: []config.Column{
					{Name: "customer_id", DataType: "string"},
					{Name: "email", DataType: "string"},
				},
			},
		},
	}
}

func TestBuildRegistry_ServesDatasets(t *testing.T) {
	df, err := loadDataFile(writeDataFile(t, sampleDataYAML))
	if err != nil {
		t.Fatalf("loadDataFile: %v", err)
	}
	registry := buildRegistry(dataConfig(), df)

	resources, err := registry.Resolve([]string{"warehouse", "lake"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	ctx := t.Context()

	// Default dataset lookup by asset name.
	handle, err := resources[0].Materialize(ctx, "orders", nil)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if handle.RowCount() != 100 {
		t.Errorf("rows = %d, want 100", handle.RowCount())
	}
	values, ok := handle.Values("order_id")
	if !ok || len(values) != 2 {
		t.Errorf("order_id values = %v, %v", values, ok)
	}

	// Partition override wins for its key.
	key, err := types.ParsePartitionKey("region=eu")
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	handle, err = resources[1].Materialize(ctx, "orders", key)
	if err != nil {
		t.Fatalf("materialize override: %v", err)
	}
	if handle.RowCount() != 40 {
		t.Errorf("override rows = %d, want 40", handle.RowCount())
	}
}

func TestBuildRegistry_EmptyHandleFallback(t *testing.T) {
	registry := buildRegistry(dataConfig(), nil)

	resources, err := registry.Resolve([]string{"warehouse"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	handle, err := resources[0].Materialize(t.Context(), "customers", nil)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if handle.RowCount() != 0 {
		t.Errorf("rows = %d, want 0", handle.RowCount())
	}

	// Empty partitions still expose the declared schema, so schema checks pass.
	cols := handle.Columns()
	if len(cols) != 2 || cols[0].Name != "customer_id" || cols[1].Name != "email" {
		t.Errorf("columns = %+v", cols)
	}
}

func TestResourceNames_Dedup(t *testing.T) {
	names := resourceNames(dataConfig())
	if !reflect.DeepEqual(names, []string{"warehouse", "lake"}) {
		t.Errorf("names = %v, want [warehouse lake]", names)
	}
}
