// Package types defines core domain types shared across all layers.
// This package contains NO business logic beyond small enum helpers.
package types

import "strings"

// Currency represents a currency code. Only USD rate cards are supported.
type Currency string

const (
	CurrencyUSD Currency = "USD"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Category partitions the rate card by usage
type Category string

const (
	CategoryJobs        Category = "jobs"
	CategoryWarehouse   Category = "warehouse"
	CategoryDevelopment Category = "development"
)

// Categories lists all rate categories in display order
var Categories = []Category{CategoryJobs, CategoryWarehouse, CategoryDevelopment}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryJobs, CategoryWarehouse, CategoryDevelopment:
		return true
	default:
		return false
	}
}

// Tier is a data-maturity stage with its own default compute families
type Tier string

const (
	TierStage       Tier = "Stage"
	TierRaw         Tier = "Raw"
	TierCurated     Tier = "Curated"
	TierDataProduct Tier = "DataProduct"
)

// Tiers lists all tiers in pipeline order
var Tiers = []Tier{TierStage, TierRaw, TierCurated, TierDataProduct}

// String returns the string representation
func (t Tier) String() string {
	return string(t)
}

// DisplayName returns the label used in reports and exports
func (t Tier) DisplayName() string {
	switch t {
	case TierRaw:
		return "L0 / Raw"
	case TierCurated:
		return "L1 / Curated"
	case TierDataProduct:
		return "L2 / Data Product"
	default:
		return string(t)
	}
}

// IsValid checks if the tier is known
func (t Tier) IsValid() bool {
	switch t {
	case TierStage, TierRaw, TierCurated, TierDataProduct:
		return true
	default:
		return false
	}
}

// ParseTier resolves a tier from its identifier or display name
func ParseTier(s string) (Tier, bool) {
	needle := strings.TrimSpace(s)
	for _, t := range Tiers {
		if strings.EqualFold(needle, string(t)) || strings.EqualFold(needle, t.DisplayName()) {
			return t, true
		}
	}
	return "", false
}

// StorageMode selects how storage cost is estimated for a session
type StorageMode string

const (
	// StorageDirect prices user-declared volumes per zone
	StorageDirect StorageMode = "direct"

	// StorageTableBased estimates volume from per-table cardinality
	StorageTableBased StorageMode = "table"
)

// IsValid checks if the storage mode is known
func (m StorageMode) IsValid() bool {
	return m == StorageDirect || m == StorageTableBased
}

// StorageUnit is the unit a storage amount is declared in
type StorageUnit string

const (
	UnitGB StorageUnit = "GB"
	UnitTB StorageUnit = "TB"
)

// IsValid checks if the unit is known
func (u StorageUnit) IsValid() bool {
	return u == UnitGB || u == UnitTB
}
