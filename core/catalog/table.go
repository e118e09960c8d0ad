// Package catalog - Raw rate tables
// Tables are the loader's hand-off format: named columns, string cells.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Canonical column names
const (
	ColComputeFamily = "compute_family"
	ColInstanceID    = "instance_id"
	ColVCPU          = "vcpu"
	ColMemoryGB      = "memory_gb"
	ColDBUPerHour    = "dbu_per_hour"
	ColUnitRate      = "unit_rate"
	ColInfraRate     = "infra_rate"

	ColStorageClass = "storage_class"
	ColRateTier1    = "rate_tier1"
	ColRateTier2    = "rate_tier2"
	ColRateTier3    = "rate_tier3"
)

// RequiredComputeColumns must be present in every compute rate table
var RequiredComputeColumns = []string{
	ColComputeFamily, ColInstanceID, ColVCPU, ColMemoryGB, ColUnitRate, ColInfraRate,
}

// RequiredStorageColumns must be present in the storage rate table
var RequiredStorageColumns = []string{
	ColStorageClass, ColRateTier1, ColRateTier2, ColRateTier3,
}

// Row is one record keyed by canonical column name
type Row map[string]string

// Get returns a trimmed cell value
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Table is a named collection of rows with a declared header
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header declares a column
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns returns required columns absent from the header
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// RawTables are the four inputs a catalog is built from
type RawTables struct {
	Jobs        *Table
	Warehouse   *Table
	Development *Table
	Storage     *Table
}

// parseAmount parses a numeric cell, tolerating a leading currency sign and
// thousands separators. An empty optional cell parses as zero.
func parseAmount(raw string, optional bool) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" && optional {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
