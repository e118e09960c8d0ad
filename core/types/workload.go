// Package types - Workload configuration types
package types

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"lakehouse-cost/internal/errors"
)

// JobConfig is one batch or pipeline workload unit
type JobConfig struct {
	Name          string  `json:"name" yaml:"name"`
	RuntimeHours  float64 `json:"runtime_hours" yaml:"runtime_hours"`
	RunsPerMonth  float64 `json:"runs_per_month" yaml:"runs_per_month"`
	ComputeFamily string  `json:"compute_family" yaml:"compute_family"`
	InstanceID    string  `json:"instance_id" yaml:"instance_id"`
	WorkerNodes   int     `json:"worker_nodes" yaml:"worker_nodes"`
}

// finite reports whether v is neither NaN nor infinite
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ActiveNodes counts the workers plus the implied driver node
func (j JobConfig) ActiveNodes() int {
	return j.WorkerNodes + 1
}

// Validate checks the job's numeric invariants
func (j JobConfig) Validate() error {
	switch {
	case !finite(j.RuntimeHours) || !finite(j.RunsPerMonth):
		return errors.Inputf("job %q: runtime_hours and runs_per_month must be finite", j.Name)
	case j.WorkerNodes < 0:
		return errors.Inputf("job %q: worker_nodes must be >= 0, got %d", j.Name, j.WorkerNodes)
	case j.RuntimeHours < 0:
		return errors.Inputf("job %q: runtime_hours must be >= 0, got %g", j.Name, j.RuntimeHours)
	case j.RunsPerMonth < 0:
		return errors.Inputf("job %q: runs_per_month must be >= 0, got %g", j.Name, j.RunsPerMonth)
	}
	return nil
}

// TierJobs groups the jobs configured for one tier
type TierJobs struct {
	Tier    Tier        `json:"tier" yaml:"tier"`
	Enabled bool        `json:"enabled" yaml:"enabled"`
	Jobs    []JobConfig `json:"jobs" yaml:"jobs"`
}

// Projection caches growth-compounded storage cost for the standard horizons
type Projection struct {
	Quarterly  decimal.Decimal `json:"quarterly"`
	HalfYearly decimal.Decimal `json:"half_yearly"`
	Yearly     decimal.Decimal `json:"yearly"`
}

// StageZone is the optional direct-mode zone gated by IncludeStageZone
const StageZone = "Stage"

// StorageZoneConfig declares a zone's storage volume for direct mode
type StorageZoneConfig struct {
	Zone                 string      `json:"zone" yaml:"zone"`
	StorageClass         string      `json:"storage_class" yaml:"storage_class"`
	Amount               float64     `json:"amount" yaml:"amount"`
	Unit                 StorageUnit `json:"unit" yaml:"unit"`
	MonthlyGrowthPercent float64     `json:"monthly_growth_percent" yaml:"monthly_growth_percent"`

	// Projection is derived; it is overwritten on every recalculation
	Projection *Projection `json:"projection,omitempty" yaml:"-"`
}

// VolumeGB converts the declared amount to GB (1 TB = 1024 GB)
func (z StorageZoneConfig) VolumeGB() decimal.Decimal {
	amount := decimal.NewFromFloat(z.Amount)
	if z.Unit == UnitTB {
		return amount.Mul(decimal.NewFromInt(1024))
	}
	return amount
}

// Validate checks the zone's invariants
func (z StorageZoneConfig) Validate() error {
	switch {
	case !finite(z.Amount) || !finite(z.MonthlyGrowthPercent):
		return errors.Inputf("zone %q: amount and monthly_growth_percent must be finite", z.Zone)
	case z.Amount < 0:
		return errors.Inputf("zone %q: amount must be >= 0, got %g", z.Zone, z.Amount)
	case !z.Unit.IsValid():
		return errors.Inputf("zone %q: unit must be GB or TB, got %q", z.Zone, z.Unit)
	case z.MonthlyGrowthPercent < 0 || z.MonthlyGrowthPercent > 100:
		return errors.Inputf("zone %q: monthly_growth_percent must be within [0,100], got %g", z.Zone, z.MonthlyGrowthPercent)
	}
	return nil
}

// TableEstimateConfig describes one group of similar tables
type TableEstimateConfig struct {
	TableName       string  `json:"table_name" yaml:"table_name"`
	Records         float64 `json:"records" yaml:"records"`
	Columns         float64 `json:"columns" yaml:"columns"`
	TableCount      float64 `json:"table_count" yaml:"table_count"`
	AvgColumnLength float64 `json:"avg_column_length" yaml:"avg_column_length"`
}

// Validate checks that all counts are non-negative
func (t TableEstimateConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"records", t.Records},
		{"columns", t.Columns},
		{"table_count", t.TableCount},
		{"avg_column_length", t.AvgColumnLength},
	}
	for _, f := range fields {
		if !finite(f.value) {
			return errors.Inputf("table %q: %s must be finite", t.TableName, f.name)
		}
		if f.value < 0 {
			return errors.Inputf("table %q: %s must be >= 0, got %g", t.TableName, f.name, f.value)
		}
	}
	return nil
}

// TableZoneConfig groups table estimates for a zone in table-based mode
type TableZoneConfig struct {
	Zone   string                `json:"zone" yaml:"zone"`
	Tables []TableEstimateConfig `json:"tables" yaml:"tables"`
}

// WarehouseConfig is one SQL warehouse
type WarehouseConfig struct {
	ID                  string  `json:"id" yaml:"id"`
	Name                string  `json:"name" yaml:"name"`
	ComputeType         string  `json:"compute_type" yaml:"compute_type"`
	SizeID              string  `json:"size_id" yaml:"size_id"`
	NodeCount           int     `json:"node_count" yaml:"node_count"`
	HoursPerDay         float64 `json:"hours_per_day" yaml:"hours_per_day"`
	DaysPerMonth        float64 `json:"days_per_month" yaml:"days_per_month"`
	AutoSuspend         bool    `json:"auto_suspend" yaml:"auto_suspend"`
	SuspendAfterMinutes int     `json:"suspend_after_minutes" yaml:"suspend_after_minutes"`
}

// Validate checks the warehouse's range invariants. The node cap depends on
// the rate card and is enforced by the session.
func (w WarehouseConfig) Validate() error {
	switch {
	case !finite(w.HoursPerDay) || !finite(w.DaysPerMonth):
		return errors.Inputf("warehouse %q: hours_per_day and days_per_month must be finite", w.Name)
	case w.NodeCount < 0:
		return errors.Inputf("warehouse %q: node_count must be >= 0, got %d", w.Name, w.NodeCount)
	case w.HoursPerDay < 0 || w.HoursPerDay > 24:
		return errors.Inputf("warehouse %q: hours_per_day must be within [0,24], got %g", w.Name, w.HoursPerDay)
	case w.DaysPerMonth < 0 || w.DaysPerMonth > 31:
		return errors.Inputf("warehouse %q: days_per_month must be within [0,31], got %g", w.Name, w.DaysPerMonth)
	case w.SuspendAfterMinutes < 0:
		return errors.Inputf("warehouse %q: suspend_after_minutes must be >= 0", w.Name)
	}
	return nil
}

// DevClusterConfig is one interactive development cluster
type DevClusterConfig struct {
	ComputeType      string  `json:"compute_type" yaml:"compute_type"`
	DriverInstanceID string  `json:"driver_instance_id" yaml:"driver_instance_id"`
	WorkerInstanceID string  `json:"worker_instance_id" yaml:"worker_instance_id"`
	WorkerNodes      int     `json:"worker_nodes" yaml:"worker_nodes"`
	HoursPerMonth    float64 `json:"hours_per_month" yaml:"hours_per_month"`
	Months           float64 `json:"months" yaml:"months"`
}

// Label identifies the cluster in warnings and reports
func (d DevClusterConfig) Label() string {
	return fmt.Sprintf("%s (%s/%s)", d.ComputeType, d.DriverInstanceID, d.WorkerInstanceID)
}

// Validate checks that all counts are non-negative
func (d DevClusterConfig) Validate() error {
	switch {
	case !finite(d.HoursPerMonth) || !finite(d.Months):
		return errors.Inputf("dev cluster %s: hours_per_month and months must be finite", d.Label())
	case d.WorkerNodes < 0:
		return errors.Inputf("dev cluster %s: worker_nodes must be >= 0, got %d", d.Label(), d.WorkerNodes)
	case d.HoursPerMonth < 0:
		return errors.Inputf("dev cluster %s: hours_per_month must be >= 0, got %g", d.Label(), d.HoursPerMonth)
	case d.Months < 0:
		return errors.Inputf("dev cluster %s: months must be >= 0, got %g", d.Label(), d.Months)
	}
	return nil
}

// Workload is the full configuration owned by one session
type Workload struct {
	// Tiers holds jobs per tier in pipeline order
	Tiers []TierJobs `json:"tiers" yaml:"tiers"`

	// StorageMode selects direct or table-based storage estimation
	StorageMode StorageMode `json:"storage_mode" yaml:"storage_mode"`

	// IncludeStageZone prices the "Stage" direct zone when true
	IncludeStageZone bool `json:"include_stage_zone" yaml:"include_stage_zone"`

	DirectZones []StorageZoneConfig `json:"direct_zones" yaml:"direct_zones"`
	TableZones  []TableZoneConfig   `json:"table_zones" yaml:"table_zones"`
	Warehouses  []WarehouseConfig   `json:"warehouses" yaml:"warehouses"`
	DevClusters []DevClusterConfig  `json:"dev_clusters" yaml:"dev_clusters"`
}

// TierJobs returns the job group for a tier, or nil
func (w *Workload) TierJobs(tier Tier) *TierJobs {
	for i := range w.Tiers {
		if w.Tiers[i].Tier == tier {
			return &w.Tiers[i]
		}
	}
	return nil
}

// Validate checks every record at the input boundary
func (w *Workload) Validate() error {
	if w.StorageMode != "" && !w.StorageMode.IsValid() {
		return errors.Inputf("storage_mode must be %q or %q, got %q", StorageDirect, StorageTableBased, w.StorageMode)
	}

	seen := make(map[Tier]bool)
	for _, tj := range w.Tiers {
		if !tj.Tier.IsValid() {
			return errors.Inputf("unknown tier %q", tj.Tier)
		}
		if seen[tj.Tier] {
			return errors.Inputf("tier %q declared twice", tj.Tier)
		}
		seen[tj.Tier] = true
		for _, j := range tj.Jobs {
			if err := j.Validate(); err != nil {
				return err
			}
		}
	}
	for _, z := range w.DirectZones {
		if err := z.Validate(); err != nil {
			return err
		}
	}
	for _, tz := range w.TableZones {
		for _, t := range tz.Tables {
			if err := t.Validate(); err != nil {
				return err
			}
		}
	}
	for _, wh := range w.Warehouses {
		if err := wh.Validate(); err != nil {
			return err
		}
	}
	for _, d := range w.DevClusters {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so callers can price without holding locks
func (w *Workload) Clone() *Workload {
	if w == nil {
		return nil
	}
	out := &Workload{
		StorageMode:      w.StorageMode,
		IncludeStageZone: w.IncludeStageZone,
		Tiers:            make([]TierJobs, len(w.Tiers)),
		DirectZones:      make([]StorageZoneConfig, len(w.DirectZones)),
		TableZones:       make([]TableZoneConfig, len(w.TableZones)),
		Warehouses:       append([]WarehouseConfig(nil), w.Warehouses...),
		DevClusters:      append([]DevClusterConfig(nil), w.DevClusters...),
	}
	for i, tj := range w.Tiers {
		out.Tiers[i] = TierJobs{Tier: tj.Tier, Enabled: tj.Enabled, Jobs: append([]JobConfig(nil), tj.Jobs...)}
	}
	for i, z := range w.DirectZones {
		if z.Projection != nil {
			p := *z.Projection
			z.Projection = &p
		}
		out.DirectZones[i] = z
	}
	for i, tz := range w.TableZones {
		out.TableZones[i] = TableZoneConfig{Zone: tz.Zone, Tables: append([]TableEstimateConfig(nil), tz.Tables...)}
	}
	return out
}
