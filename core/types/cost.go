// Package types - Priced record and estimate types
package types

import "github.com/shopspring/decimal"

// PricedJob is a job augmented with its computed costs
type PricedJob struct {
	JobConfig

	Tier      Tier            `json:"tier"`
	UnitRate  decimal.Decimal `json:"unit_rate"`
	InfraRate decimal.Decimal `json:"infra_rate"`

	// NodeHours is active nodes × runtime × runs
	NodeHours   decimal.Decimal `json:"node_hours"`
	UsageUnits  decimal.Decimal `json:"usage_units"`
	ComputeCost decimal.Decimal `json:"compute_cost"`
	InfraCost   decimal.Decimal `json:"infra_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// JobResult holds the priced jobs of one tier and their subtotals
type JobResult struct {
	Tier        Tier            `json:"tier"`
	Jobs        []PricedJob     `json:"jobs"`
	ComputeCost decimal.Decimal `json:"compute_cost"`
	InfraCost   decimal.Decimal `json:"infra_cost"`
	UsageUnits  decimal.Decimal `json:"usage_units"`
	Warnings    []RateWarning   `json:"warnings,omitempty"`
}

// Total returns compute plus infrastructure cost
func (r JobResult) Total() decimal.Decimal {
	return r.ComputeCost.Add(r.InfraCost)
}

// PricedZone is a direct-mode zone with its monthly cost and projections
type PricedZone struct {
	StorageZoneConfig

	VolumeGB    decimal.Decimal `json:"volume_gb"`
	RatePerGB   decimal.Decimal `json:"rate_per_gb"`
	MonthlyCost decimal.Decimal `json:"monthly_cost"`
	Quarterly   decimal.Decimal `json:"quarterly_cost"`
	HalfYearly  decimal.Decimal `json:"half_yearly_cost"`
	Yearly      decimal.Decimal `json:"yearly_cost"`
}

// DirectStorageResult totals direct-mode zones
type DirectStorageResult struct {
	Zones      []PricedZone    `json:"zones"`
	Monthly    decimal.Decimal `json:"monthly"`
	Quarterly  decimal.Decimal `json:"quarterly"`
	HalfYearly decimal.Decimal `json:"half_yearly"`
	Yearly     decimal.Decimal `json:"yearly"`
	Warnings   []RateWarning   `json:"warnings,omitempty"`
}

// PricedTableZone is a table-based zone with its estimated volume
type PricedTableZone struct {
	Zone        string                `json:"zone"`
	Tables      []TableEstimateConfig `json:"tables"`
	EstimatedGB decimal.Decimal       `json:"estimated_gb"`
	MonthlyCost decimal.Decimal       `json:"monthly_cost"`
}

// TableStorageResult totals table-based zones
type TableStorageResult struct {
	Zones       []PricedTableZone `json:"zones"`
	EstimatedGB decimal.Decimal   `json:"estimated_gb"`
	MonthlyCost decimal.Decimal   `json:"monthly_cost"`
}

// PricedWarehouse is a warehouse with its computed costs
type PricedWarehouse struct {
	WarehouseConfig

	// Priced is false when hours, days or nodes is zero
	Priced        bool            `json:"priced"`
	UnitRate      decimal.Decimal `json:"unit_rate"`
	InfraRate     decimal.Decimal `json:"infra_rate"`
	HoursPerMonth decimal.Decimal `json:"hours_per_month"`
	DBUCost       decimal.Decimal `json:"dbu_cost"`
	InfraCost     decimal.Decimal `json:"infra_cost"`
	UsageUnits    decimal.Decimal `json:"usage_units"`
}

// WarehouseResult totals all warehouses
type WarehouseResult struct {
	Warehouses []PricedWarehouse `json:"warehouses"`
	DBUCost    decimal.Decimal   `json:"dbu_cost"`
	InfraCost  decimal.Decimal   `json:"infra_cost"`
	UsageUnits decimal.Decimal   `json:"usage_units"`
	Warnings   []RateWarning     `json:"warnings,omitempty"`
}

// Total returns DBU plus infrastructure cost
func (r WarehouseResult) Total() decimal.Decimal {
	return r.DBUCost.Add(r.InfraCost)
}

// PricedDevCluster is a development cluster with its computed costs
type PricedDevCluster struct {
	DevClusterConfig

	ComputeCost decimal.Decimal `json:"compute_cost"`
	InfraCost   decimal.Decimal `json:"infra_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// DevClusterResult totals all development clusters
type DevClusterResult struct {
	Clusters    []PricedDevCluster `json:"clusters"`
	ComputeCost decimal.Decimal    `json:"compute_cost"`
	InfraCost   decimal.Decimal    `json:"infra_cost"`
	Warnings    []RateWarning      `json:"warnings,omitempty"`
}

// Total returns compute plus infrastructure cost
func (r DevClusterResult) Total() decimal.Decimal {
	return r.ComputeCost.Add(r.InfraCost)
}

// SummaryCategory names a line of the consolidated summary
type SummaryCategory string

const (
	SummaryCompute      SummaryCategory = "compute"
	SummaryStorage      SummaryCategory = "storage"
	SummarySQLWarehouse SummaryCategory = "sql_warehouse"
	SummaryDevelopment  SummaryCategory = "development"
)

// SummaryCategories lists summary lines in report order
var SummaryCategories = []SummaryCategory{SummaryCompute, SummaryStorage, SummarySQLWarehouse, SummaryDevelopment}

// Label returns the human-readable category name
func (c SummaryCategory) Label() string {
	switch c {
	case SummaryCompute:
		return "Jobs & Compute"
	case SummaryStorage:
		return "Storage"
	case SummarySQLWarehouse:
		return "SQL Warehouses"
	case SummaryDevelopment:
		return "Development"
	default:
		return string(c)
	}
}

// HorizonCosts is a monthly amount scaled linearly to longer horizons
type HorizonCosts struct {
	Monthly    decimal.Decimal `json:"monthly"`
	Quarterly  decimal.Decimal `json:"quarterly"`
	HalfYearly decimal.Decimal `json:"half_yearly"`
	Yearly     decimal.Decimal `json:"yearly"`
}

// SummaryLine is one category of the consolidated summary
type SummaryLine struct {
	Category SummaryCategory `json:"category"`
	Label    string          `json:"label"`
	HorizonCosts
}

// Summary is the consolidated cost across all categories
type Summary struct {
	Lines []SummaryLine `json:"lines"`
	Total HorizonCosts  `json:"total"`
}

// Estimate is the result of one full recalculation pass
type Estimate struct {
	Currency Currency `json:"currency"`

	Jobs            []JobResult     `json:"jobs"`
	JobsComputeCost decimal.Decimal `json:"jobs_compute_cost"`
	JobsInfraCost   decimal.Decimal `json:"jobs_infra_cost"`
	JobsUsageUnits  decimal.Decimal `json:"jobs_usage_units"`

	StorageMode   StorageMode          `json:"storage_mode"`
	DirectStorage *DirectStorageResult `json:"direct_storage,omitempty"`
	TableStorage  *TableStorageResult  `json:"table_storage,omitempty"`

	Warehouses  WarehouseResult  `json:"warehouses"`
	DevClusters DevClusterResult `json:"dev_clusters"`

	Summary  Summary       `json:"summary"`
	Warnings []RateWarning `json:"warnings,omitempty"`
}
