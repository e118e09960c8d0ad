package workload

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
)

// hclFile is the block layout of an .hcl workload:
//
//	storage_mode       = "direct"
//	include_stage_zone = true
//
//	tier "Raw" { enabled = false }
//
//	job "Curated" "nightly" {
//	  runtime_hours  = 2
//	  runs_per_month = 30
//	  compute_family = "Jobs Compute"
//	  instance_id    = "m5.xlarge"
//	  worker_nodes   = 4
//	}
//
//	storage_zone "L0 / Raw" { ... }
//	table_zone "L0 / Raw" { table "events" { ... } }
//	warehouse "warehouse_0" { ... }
//	dev_cluster { ... }
type hclFile struct {
	StorageMode      *string          `hcl:"storage_mode,optional"`
	IncludeStageZone *bool            `hcl:"include_stage_zone,optional"`
	Tiers            []hclTier        `hcl:"tier,block"`
	Jobs             []hclJob         `hcl:"job,block"`
	StorageZones     []hclStorageZone `hcl:"storage_zone,block"`
	TableZones       []hclTableZone   `hcl:"table_zone,block"`
	Warehouses       []hclWarehouse   `hcl:"warehouse,block"`
	DevClusters      []hclDevCluster  `hcl:"dev_cluster,block"`
}

type hclTier struct {
	Name    string `hcl:"name,label"`
	Enabled *bool  `hcl:"enabled,optional"`
}

type hclJob struct {
	Tier          string  `hcl:"tier,label"`
	Name          string  `hcl:"name,label"`
	RuntimeHours  float64 `hcl:"runtime_hours,optional"`
	RunsPerMonth  float64 `hcl:"runs_per_month,optional"`
	ComputeFamily string  `hcl:"compute_family,optional"`
	InstanceID    string  `hcl:"instance_id"`
	WorkerNodes   int     `hcl:"worker_nodes,optional"`
}

type hclStorageZone struct {
	Zone                 string  `hcl:"zone,label"`
	StorageClass         string  `hcl:"storage_class"`
	Amount               float64 `hcl:"amount,optional"`
	Unit                 string  `hcl:"unit,optional"`
	MonthlyGrowthPercent float64 `hcl:"monthly_growth_percent,optional"`
}

type hclTableZone struct {
	Zone   string     `hcl:"zone,label"`
	Tables []hclTable `hcl:"table,block"`
}

type hclTable struct {
	Name            string  `hcl:"name,label"`
	Records         float64 `hcl:"records,optional"`
	Columns         float64 `hcl:"columns,optional"`
	TableCount      float64 `hcl:"table_count,optional"`
	AvgColumnLength float64 `hcl:"avg_column_length,optional"`
}

type hclWarehouse struct {
	ID                  string  `hcl:"id,label"`
	Name                string  `hcl:"name,optional"`
	ComputeType         string  `hcl:"compute_type"`
	SizeID              string  `hcl:"size_id"`
	NodeCount           int     `hcl:"node_count,optional"`
	HoursPerDay         float64 `hcl:"hours_per_day,optional"`
	DaysPerMonth        float64 `hcl:"days_per_month,optional"`
	AutoSuspend         *bool   `hcl:"auto_suspend,optional"`
	SuspendAfterMinutes *int    `hcl:"suspend_after_minutes,optional"`
}

type hclDevCluster struct {
	ComputeType      string  `hcl:"compute_type,optional"`
	DriverInstanceID string  `hcl:"driver_instance_id"`
	WorkerInstanceID string  `hcl:"worker_instance_id"`
	WorkerNodes      int     `hcl:"worker_nodes,optional"`
	HoursPerMonth    float64 `hcl:"hours_per_month,optional"`
	Months           float64 `hcl:"months,optional"`
}

func parseHCL(name string, src []byte) (*types.Workload, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, name)
	if diags.HasErrors() {
		return nil, diagError(name, diags)
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, diagError(name, diags)
	}
	return raw.toWorkload()
}

func diagError(name string, diags hcl.Diagnostics) error {
	err := errors.Wrap(errors.TypeInput, "parse workload "+name, diags)
	for _, d := range diags {
		if d.Severity == hcl.DiagError && d.Subject != nil {
			err = err.WithContext("line", d.Subject.Start.Line)
			break
		}
	}
	return err
}

func (f *hclFile) toWorkload() (*types.Workload, error) {
	w := newWorkload()
	if f.StorageMode != nil {
		w.StorageMode = types.StorageMode(*f.StorageMode)
	}
	if f.IncludeStageZone != nil {
		w.IncludeStageZone = *f.IncludeStageZone
	}

	tierFor := func(label string) (*types.TierJobs, error) {
		tier, ok := types.ParseTier(label)
		if !ok {
			return nil, errors.Inputf("unknown tier %q", label)
		}
		if tj := w.TierJobs(tier); tj != nil {
			return tj, nil
		}
		w.Tiers = append(w.Tiers, types.TierJobs{Tier: tier, Enabled: true, Jobs: []types.JobConfig{}})
		return &w.Tiers[len(w.Tiers)-1], nil
	}

	for _, t := range f.Tiers {
		tj, err := tierFor(t.Name)
		if err != nil {
			return nil, err
		}
		if t.Enabled != nil {
			tj.Enabled = *t.Enabled
		}
	}
	for _, j := range f.Jobs {
		tj, err := tierFor(j.Tier)
		if err != nil {
			return nil, err
		}
		tj.Jobs = append(tj.Jobs, types.JobConfig{
			Name:          j.Name,
			RuntimeHours:  j.RuntimeHours,
			RunsPerMonth:  j.RunsPerMonth,
			ComputeFamily: j.ComputeFamily,
			InstanceID:    j.InstanceID,
			WorkerNodes:   j.WorkerNodes,
		})
	}

	for _, z := range f.StorageZones {
		unit := types.StorageUnit(z.Unit)
		if unit == "" {
			unit = types.UnitGB
		}
		w.DirectZones = append(w.DirectZones, types.StorageZoneConfig{
			Zone:                 z.Zone,
			StorageClass:         z.StorageClass,
			Amount:               z.Amount,
			Unit:                 unit,
			MonthlyGrowthPercent: z.MonthlyGrowthPercent,
		})
	}

	for _, tz := range f.TableZones {
		zone := types.TableZoneConfig{Zone: tz.Zone, Tables: make([]types.TableEstimateConfig, 0, len(tz.Tables))}
		for _, t := range tz.Tables {
			zone.Tables = append(zone.Tables, types.TableEstimateConfig{
				TableName:       t.Name,
				Records:         t.Records,
				Columns:         t.Columns,
				TableCount:      t.TableCount,
				AvgColumnLength: t.AvgColumnLength,
			})
		}
		w.TableZones = append(w.TableZones, zone)
	}

	for _, wh := range f.Warehouses {
		cfg := types.WarehouseConfig{
			ID:                  wh.ID,
			Name:                wh.Name,
			ComputeType:         wh.ComputeType,
			SizeID:              wh.SizeID,
			NodeCount:           wh.NodeCount,
			HoursPerDay:         wh.HoursPerDay,
			DaysPerMonth:        wh.DaysPerMonth,
			AutoSuspend:         true,
			SuspendAfterMinutes: defaultSuspendMinutes,
		}
		if cfg.Name == "" {
			cfg.Name = wh.ID
		}
		if wh.AutoSuspend != nil {
			cfg.AutoSuspend = *wh.AutoSuspend
		}
		if wh.SuspendAfterMinutes != nil {
			cfg.SuspendAfterMinutes = *wh.SuspendAfterMinutes
		}
		w.Warehouses = append(w.Warehouses, cfg)
	}

	for _, d := range f.DevClusters {
		ct := d.ComputeType
		if ct == "" {
			ct = defaultDevComputeType
		}
		w.DevClusters = append(w.DevClusters, types.DevClusterConfig{
			ComputeType:      ct,
			DriverInstanceID: d.DriverInstanceID,
			WorkerInstanceID: d.WorkerInstanceID,
			WorkerNodes:      d.WorkerNodes,
			HoursPerMonth:    d.HoursPerMonth,
			Months:           d.Months,
		})
	}

	return w, nil
}
