// Package types - Rate card types
package types

import "github.com/shopspring/decimal"

// RateEntry is one instance's pricing within a compute family
type RateEntry struct {
	// InstanceID is the instance or warehouse size identifier
	InstanceID string `json:"instance_id"`

	// ComputeFamily is the compute type the rate belongs to (e.g. "Jobs Compute")
	ComputeFamily string `json:"compute_family"`

	// VCPU is the number of virtual CPUs
	VCPU decimal.Decimal `json:"vcpu"`

	// MemoryGB is the instance memory in GB
	MemoryGB decimal.Decimal `json:"memory_gb"`

	// DBUPerHour is the usage units consumed per node-hour
	DBUPerHour decimal.Decimal `json:"dbu_per_hour"`

	// UnitRate is the usage cost per node-hour
	UnitRate decimal.Decimal `json:"unit_rate"`

	// InfraRate is the raw infrastructure cost per node-hour
	InfraRate decimal.Decimal `json:"infra_rate"`
}

// StorageRate holds per-GB monthly rates for one storage class
type StorageRate struct {
	// StorageClass names the class (e.g. "S3 Standard")
	StorageClass string `json:"storage_class"`

	// Tier1 applies up to and including 50 TB
	Tier1 decimal.Decimal `json:"rate_tier1"`

	// Tier2 applies up to and including 500 TB
	Tier2 decimal.Decimal `json:"rate_tier2"`

	// Tier3 applies above 500 TB
	Tier3 decimal.Decimal `json:"rate_tier3"`
}

// RateWarning reports a rate lookup that fell back to a zero rate
type RateWarning struct {
	// Category is the rate category that was searched
	Category string `json:"category"`

	// Key is the identifier that was not found
	Key string `json:"key"`

	// Record names the configuration record that triggered the lookup
	Record string `json:"record"`
}
