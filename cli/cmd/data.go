package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/justapithecus/seam/config"
	"github.com/justapithecus/seam/resource"
	"github.com/justapithecus/seam/types"
)

// DataFile declares in-memory datasets served to assets during a run.
// Every resource name referenced by the pipeline config resolves to the
// same dataset table; lookup is by asset name, with optional per-partition
// overrides keyed by the partition key string ("dim=value|dim=value").
type DataFile struct {
	Datasets map[string]Dataset `yaml:"datasets"`
}

// Dataset describes one asset's materialized data.
type Dataset struct {
	Rows    int64           `yaml:"rows"`
	Columns []DatasetColumn `yaml:"columns"`
	// Values holds each column's non-null values rendered as strings.
	Values map[string][]string `yaml:"values,omitempty"`
	// Nulls holds each column's null count.
	Nulls map[string]int64 `yaml:"nulls,omitempty"`
	// Partitions overrides the dataset for specific partition keys.
	Partitions map[string]Dataset `yaml:"partitions,omitempty"`
}

// DatasetColumn mirrors resource.Column with yaml tags.
type DatasetColumn struct {
	Name     string `yaml:"name"`
	DataType string `yaml:"data_type"`
}

// loadDataFile reads and parses a dataset fixture file.
func loadDataFile(path string) (*DataFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	var df DataFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	return &df, nil
}

// buildRegistry registers one in-memory resource per resource name the
// config references. With a data file, handles come from its datasets;
// without one, each asset materializes an empty partition matching its
// declared column schema.
func buildRegistry(cfg *config.Config, df *DataFile) *resource.Registry {
	schemas := make(map[string][]config.Column, len(cfg.Assets))
	for _, asset := range cfg.Assets {
		schemas[asset.Name] = asset.ColumnSchema
	}

	handle := func(asset string, key types.PartitionKey) (resource.DataHandle, error) {
		if df != nil {
			if ds, ok := df.Datasets[asset]; ok {
				if override, ok := ds.Partitions[key.String()]; ok {
					return override.toHandle(), nil
				}
				return ds.toHandle(), nil
			}
		}
		return emptyHandle(schemas[asset]), nil
	}

	registry := resource.NewRegistry()
	for _, name := range resourceNames(cfg) {
		registry.Register(resource.NewMemResource(name, handle))
	}
	return registry
}

func resourceNames(cfg *config.Config) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, asset := range cfg.Assets {
		for _, name := range asset.Resources {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func (d Dataset) toHandle() *resource.MemHandle {
	cols := make([]resource.Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = resource.Column{Name: c.Name, DataType: c.DataType}
	}
	return &resource.MemHandle{
		Cols:      cols,
		Rows:      d.Rows,
		ColValues: d.Values,
		Nulls:     d.Nulls,
	}
}

func emptyHandle(schema []config.Column) *resource.MemHandle {
	cols := make([]resource.Column, len(schema))
	for i, c := range schema {
		cols[i] = resource.Column{Name: c.Name, DataType: c.DataType}
	}
	return &resource.MemHandle{Cols: cols}
}
