// Package session holds per-user workload state.
//
// Each Session owns its Workload exclusively and serialises edits with its
// own mutex. The rate catalog is shared and read-only, so sessions never
// coordinate with each other.
package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"lakehouse-cost/core/cost"
	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/config"
	"lakehouse-cost/internal/errors"
	"lakehouse-cost/internal/logging"
)

// Session is one user's editable workload
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	catalog   Catalog
	workload  *types.Workload
	updatedAt time.Time
	last      *types.Estimate
	logger    *zap.Logger
}

// New creates a session populated with catalog defaults
func New(id string, cat Catalog, cfg config.WorkloadConfig) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		CreatedAt: now,
		catalog:   cat,
		workload:  DefaultWorkload(cat, cfg),
		updatedAt: now,
		logger:    logging.Named("session").With(logging.Session(id)),
	}
}

// Snapshot returns a deep copy of the current workload
func (s *Session) Snapshot() *types.Workload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workload.Clone()
}

// UpdatedAt returns the time of the last change
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// LastEstimate returns the result of the most recent recalculation, if any
func (s *Session) LastEstimate() *types.Estimate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// touch must be called with mu held
func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
	s.last = nil
}

// Replace swaps in a whole workload after validation. Warehouse node counts
// are clamped to their size's maximum.
func (s *Session) Replace(w *types.Workload) error {
	if w == nil {
		return errors.Input("workload is required")
	}
	if err := w.Validate(); err != nil {
		return err
	}
	next := w.Clone()
	if next.StorageMode == "" {
		next.StorageMode = types.StorageDirect
	}
	for i := range next.Warehouses {
		s.clampWarehouse(&next.Warehouses[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workload = next
	s.touch()
	s.logger.Debug("workload replaced", zap.Int("tiers", len(next.Tiers)))
	return nil
}

// tierJobs must be called with mu held
func (s *Session) tierJobs(tier types.Tier) (*types.TierJobs, error) {
	if !tier.IsValid() {
		return nil, errors.Inputf("unknown tier %q", tier)
	}
	if tj := s.workload.TierJobs(tier); tj != nil {
		return tj, nil
	}
	s.workload.Tiers = append(s.workload.Tiers, types.TierJobs{Tier: tier, Enabled: true})
	return &s.workload.Tiers[len(s.workload.Tiers)-1], nil
}

// AddJob appends a job to a tier. A nil job adds the tier's default job;
// empty family or instance fields are filled from the catalog.
func (s *Session) AddJob(tier types.Tier, job *types.JobConfig) (types.JobConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tj, err := s.tierJobs(tier)
	if err != nil {
		return types.JobConfig{}, err
	}

	def := defaultJob(s.catalog, tier, len(tj.Jobs)+1)
	added := def
	if job != nil {
		added = *job
		if added.Name == "" {
			added.Name = def.Name
		}
		if added.ComputeFamily == "" {
			added.ComputeFamily = def.ComputeFamily
		}
		if added.InstanceID == "" {
			added.InstanceID = def.InstanceID
		}
	}
	if err := added.Validate(); err != nil {
		return types.JobConfig{}, err
	}

	tj.Jobs = append(tj.Jobs, added)
	s.touch()
	s.logger.Debug("job added", logging.Tier(tier.String()), zap.String("job", added.Name))
	return added, nil
}

// UpdateJob replaces the job at index in a tier
func (s *Session) UpdateJob(tier types.Tier, index int, job types.JobConfig) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tj, err := s.tierJobs(tier)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(tj.Jobs) {
		return errors.NotFound("job", fmt.Sprintf("%s/%d", tier, index))
	}
	tj.Jobs[index] = job
	s.touch()
	return nil
}

// RemoveJob deletes the job at index in a tier
func (s *Session) RemoveJob(tier types.Tier, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tj, err := s.tierJobs(tier)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(tj.Jobs) {
		return errors.NotFound("job", fmt.Sprintf("%s/%d", tier, index))
	}
	tj.Jobs = append(tj.Jobs[:index], tj.Jobs[index+1:]...)
	s.touch()
	return nil
}

// EnableTier toggles whether a tier's jobs are priced. Jobs are kept either way.
func (s *Session) EnableTier(tier types.Tier, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tj, err := s.tierJobs(tier)
	if err != nil {
		return err
	}
	tj.Enabled = enabled
	s.touch()
	return nil
}

// SetStorageMode selects direct or table-based storage estimation
func (s *Session) SetStorageMode(mode types.StorageMode) error {
	if !mode.IsValid() {
		return errors.Inputf("storage_mode must be %q or %q, got %q", types.StorageDirect, types.StorageTableBased, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workload.StorageMode = mode
	s.touch()
	return nil
}

// SetIncludeStageZone toggles pricing of the Stage zone
func (s *Session) SetIncludeStageZone(include bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workload.IncludeStageZone = include
	s.touch()
}

// SetDirectZone updates the zone with the same name or appends a new one
func (s *Session) SetDirectZone(zone types.StorageZoneConfig) error {
	if strings.TrimSpace(zone.Zone) == "" {
		return errors.Input("zone name is required")
	}
	if zone.Unit == "" {
		zone.Unit = types.UnitGB
	}
	if err := zone.Validate(); err != nil {
		return err
	}
	zone.Projection = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workload.DirectZones {
		if s.workload.DirectZones[i].Zone == zone.Zone {
			s.workload.DirectZones[i] = zone
			s.touch()
			return nil
		}
	}
	s.workload.DirectZones = append(s.workload.DirectZones, zone)
	s.touch()
	return nil
}

// AddTable appends a table estimate to a zone, creating the zone if needed
func (s *Session) AddTable(zone string, table types.TableEstimateConfig) error {
	if strings.TrimSpace(zone) == "" {
		return errors.Input("zone name is required")
	}
	if err := table.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workload.TableZones {
		tz := &s.workload.TableZones[i]
		if tz.Zone == zone {
			if table.TableName == "" {
				table.TableName = fmt.Sprintf("%s Table %d", strings.ReplaceAll(zone, " / ", "_"), len(tz.Tables)+1)
			}
			tz.Tables = append(tz.Tables, table)
			s.touch()
			return nil
		}
	}
	if table.TableName == "" {
		table.TableName = fmt.Sprintf("%s Table 1", strings.ReplaceAll(zone, " / ", "_"))
	}
	s.workload.TableZones = append(s.workload.TableZones, types.TableZoneConfig{
		Zone:   zone,
		Tables: []types.TableEstimateConfig{table},
	})
	s.touch()
	return nil
}

// RemoveTable deletes the table at index in a zone
func (s *Session) RemoveTable(zone string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workload.TableZones {
		tz := &s.workload.TableZones[i]
		if tz.Zone != zone {
			continue
		}
		if index < 0 || index >= len(tz.Tables) {
			break
		}
		tz.Tables = append(tz.Tables[:index], tz.Tables[index+1:]...)
		s.touch()
		return nil
	}
	return errors.NotFound("table", fmt.Sprintf("%s/%d", zone, index))
}

// clampWarehouse caps the node count at the size's maximum
func (s *Session) clampWarehouse(wh *types.WarehouseConfig) {
	if limit := s.catalog.MaxWorkerNodesFor(wh.SizeID); wh.NodeCount > limit {
		s.logger.Debug("clamping warehouse nodes",
			zap.String("warehouse", wh.ID),
			zap.String("size", wh.SizeID),
			zap.Int("requested", wh.NodeCount),
			zap.Int("max", limit),
		)
		wh.NodeCount = limit
	}
}

// nextWarehouseID must be called with mu held
func (s *Session) nextWarehouseID() int {
	next := 0
	for _, wh := range s.workload.Warehouses {
		if n, err := strconv.Atoi(strings.TrimPrefix(wh.ID, warehouseIDPrefix)); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

// AddWarehouse appends a warehouse with a generated id. A nil config adds
// the default warehouse; empty type or size fields are filled from the
// catalog.
func (s *Session) AddWarehouse(wh *types.WarehouseConfig) (types.WarehouseConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.nextWarehouseID()
	def := defaultWarehouse(s.catalog, n)
	added := def
	if wh != nil {
		added = *wh
		added.ID = def.ID
		if added.Name == "" {
			added.Name = def.Name
		}
		if added.ComputeType == "" {
			added.ComputeType = def.ComputeType
		}
		if added.SizeID == "" {
			added.SizeID = def.SizeID
		}
	}
	if err := added.Validate(); err != nil {
		return types.WarehouseConfig{}, err
	}
	s.clampWarehouse(&added)

	s.workload.Warehouses = append(s.workload.Warehouses, added)
	s.touch()
	return added, nil
}

// UpdateWarehouse replaces the warehouse with the given id, keeping the id
func (s *Session) UpdateWarehouse(id string, wh types.WarehouseConfig) (types.WarehouseConfig, error) {
	wh.ID = id
	if err := wh.Validate(); err != nil {
		return types.WarehouseConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workload.Warehouses {
		if s.workload.Warehouses[i].ID == id {
			s.clampWarehouse(&wh)
			s.workload.Warehouses[i] = wh
			s.touch()
			return wh, nil
		}
	}
	return types.WarehouseConfig{}, errors.NotFound("warehouse", id)
}

// RemoveWarehouse deletes the warehouse with the given id
func (s *Session) RemoveWarehouse(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workload.Warehouses {
		if s.workload.Warehouses[i].ID == id {
			s.workload.Warehouses = append(s.workload.Warehouses[:i], s.workload.Warehouses[i+1:]...)
			s.touch()
			return nil
		}
	}
	return errors.NotFound("warehouse", id)
}

// AddDevCluster appends a development cluster. A nil config adds the default.
func (s *Session) AddDevCluster(c *types.DevClusterConfig) (types.DevClusterConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := defaultDevCluster(s.catalog)
	if c != nil {
		def := added
		added = *c
		if added.ComputeType == "" {
			added.ComputeType = def.ComputeType
		}
		if added.DriverInstanceID == "" {
			added.DriverInstanceID = def.DriverInstanceID
		}
		if added.WorkerInstanceID == "" {
			added.WorkerInstanceID = def.WorkerInstanceID
		}
	}
	if err := added.Validate(); err != nil {
		return types.DevClusterConfig{}, err
	}

	s.workload.DevClusters = append(s.workload.DevClusters, added)
	s.touch()
	return added, nil
}

// RemoveDevCluster deletes the development cluster at index
func (s *Session) RemoveDevCluster(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.workload.DevClusters) {
		return errors.NotFound("dev cluster", strconv.Itoa(index))
	}
	s.workload.DevClusters = append(s.workload.DevClusters[:index], s.workload.DevClusters[index+1:]...)
	s.touch()
	return nil
}

// Recalculate runs a full estimate and caches growth projections on the
// session's direct zones. Zones excluded from pricing have no projection.
// The returned workload is the snapshot that was priced.
func (s *Session) Recalculate(ctx context.Context, est cost.Estimator) (*types.Estimate, *types.Workload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := est.Estimate(ctx, s.workload)
	if err != nil {
		return nil, nil, err
	}

	projections := make(map[string]types.Projection)
	if result.DirectStorage != nil {
		for _, z := range result.DirectStorage.Zones {
			projections[z.Zone] = types.Projection{
				Quarterly:  z.Quarterly,
				HalfYearly: z.HalfYearly,
				Yearly:     z.Yearly,
			}
		}
	}
	for i := range s.workload.DirectZones {
		z := &s.workload.DirectZones[i]
		if p, ok := projections[z.Zone]; ok {
			z.Projection = &p
		} else {
			z.Projection = nil
		}
	}

	s.last = result
	s.logger.Debug("recalculated",
		zap.String("monthly_total", result.Summary.Total.Monthly.StringFixed(2)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, s.workload.Clone(), nil
}
