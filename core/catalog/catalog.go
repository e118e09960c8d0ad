// Package catalog - Authoritative rate catalog
// Built once from raw rate tables, then read-only. All calculators resolve
// rates through it; nothing mutates it after Build returns.
package catalog

import (
	stderrors "errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
	"lakehouse-cost/internal/logging"
	"lakehouse-cost/internal/metrics"
)

// Options selects which compute families each category keeps
type Options struct {
	// IngestFamilies are offered to Stage and Raw tiers, in preference order
	IngestFamilies []string

	// TransformFamilies are offered to Curated and DataProduct tiers
	TransformFamilies []string

	// WarehouseFamilies filters the warehouse table; empty keeps every row
	WarehouseFamilies []string

	// DevelopmentFamilies filters the development table; empty keeps every row
	DevelopmentFamilies []string

	// Rules overrides the rate entry validation rules
	Rules []ValidationRule
}

// DefaultOptions returns the standard family groupings
func DefaultOptions() Options {
	return Options{
		IngestFamilies:      []string{"DLT Advanced Compute Photon", "DLT Advanced Compute"},
		TransformFamilies:   []string{"Jobs Compute", "Jobs Compute Photon"},
		WarehouseFamilies:   []string{"SQL Pro Compute", "SQL Compute"},
		DevelopmentFamilies: []string{"All-Purpose Compute"},
	}
}

// jobFamilies is the union of ingest and transform families
func (o Options) jobFamilies() []string {
	out := make([]string, 0, len(o.IngestFamilies)+len(o.TransformFamilies))
	out = append(out, o.IngestFamilies...)
	return append(out, o.TransformFamilies...)
}

// familyKey indexes an entry by family and instance
type familyKey struct {
	family   string
	instance string
}

// computeIndex holds one category's entries
type computeIndex struct {
	ordered  []types.RateEntry
	byFamily map[familyKey]types.RateEntry
	byID     map[string]types.RateEntry
	families []string
}

func newComputeIndex() *computeIndex {
	return &computeIndex{
		byFamily: make(map[familyKey]types.RateEntry),
		byID:     make(map[string]types.RateEntry),
	}
}

func (x *computeIndex) add(e types.RateEntry) bool {
	key := familyKey{e.ComputeFamily, e.InstanceID}
	if _, dup := x.byFamily[key]; dup {
		return false
	}
	x.byFamily[key] = e
	// later rows overwrite earlier ones in the flat index
	x.byID[e.InstanceID] = e
	if !containsString(x.families, e.ComputeFamily) {
		x.families = append(x.families, e.ComputeFamily)
	}
	x.ordered = append(x.ordered, e)
	return true
}

// RateCatalog is the immutable, indexed rate card
type RateCatalog struct {
	opts         Options
	compute      map[types.Category]*computeIndex
	storage      map[string]types.StorageRate
	storageOrder []string
}

// Build validates raw tables and indexes them
func Build(tables RawTables, opts Options) (*RateCatalog, error) {
	if opts.Rules == nil {
		opts.Rules = DefaultValidationRules()
	}

	c := &RateCatalog{
		opts:    opts,
		compute: make(map[types.Category]*computeIndex),
		storage: make(map[string]types.StorageRate),
	}

	sources := []struct {
		category types.Category
		table    *Table
		families []string
	}{
		{types.CategoryJobs, tables.Jobs, opts.jobFamilies()},
		{types.CategoryWarehouse, tables.Warehouse, opts.WarehouseFamilies},
		{types.CategoryDevelopment, tables.Development, opts.DevelopmentFamilies},
	}
	for _, src := range sources {
		idx, err := buildComputeIndex(src.category, src.table, src.families, opts.Rules)
		if err != nil {
			return nil, err
		}
		c.compute[src.category] = idx
	}

	if err := c.loadStorage(tables.Storage); err != nil {
		return nil, err
	}

	log := logging.Named("catalog")
	for _, cat := range types.Categories {
		n := len(c.compute[cat].ordered)
		metrics.CatalogEntries.WithLabelValues(cat.String()).Set(float64(n))
		log.Debug("indexed rates", logging.Category(cat.String()), zap.Int("entries", n))
	}
	metrics.CatalogEntries.WithLabelValues("storage").Set(float64(len(c.storageOrder)))
	log.Info("rate catalog built",
		zap.Int("jobs", len(c.compute[types.CategoryJobs].ordered)),
		zap.Int("warehouse", len(c.compute[types.CategoryWarehouse].ordered)),
		zap.Int("development", len(c.compute[types.CategoryDevelopment].ordered)),
		zap.Int("storage_classes", len(c.storageOrder)),
	)

	return c, nil
}

func buildComputeIndex(category types.Category, t *Table, families []string, rules []ValidationRule) (*computeIndex, error) {
	if t == nil || len(t.Rows) == 0 {
		return nil, errors.DataLoadf("%s rate table is empty or missing", category)
	}
	if missing := t.MissingColumns(RequiredComputeColumns); len(missing) > 0 {
		return nil, errors.DataLoadf("%s rate table %q is missing columns %v", category, t.Name, missing).
			WithContext("table", t.Name)
	}

	idx := newComputeIndex()
	for i, row := range t.Rows {
		family := row.Get(ColComputeFamily)
		if len(families) > 0 && !containsString(families, family) {
			continue
		}

		entry, err := parseRateEntry(row)
		if err != nil {
			return nil, errors.DataLoad(fmt.Sprintf("%s rate table %q row %d", category, t.Name, i+1), err)
		}
		if violations := validateEntry(&entry, rules); len(violations) > 0 {
			return nil, errors.DataLoad(fmt.Sprintf("%s rate table %q row %d", category, t.Name, i+1),
				stderrors.Join(violations...))
		}
		if !idx.add(entry) {
			return nil, errors.DataLoadf("%s rate table %q row %d: duplicate entry %s / %s",
				category, t.Name, i+1, entry.ComputeFamily, entry.InstanceID)
		}
	}

	if len(idx.ordered) == 0 {
		return nil, errors.DataLoadf("%s rate table %q has no rows for families %v", category, t.Name, families)
	}
	return idx, nil
}

func parseRateEntry(row Row) (types.RateEntry, error) {
	e := types.RateEntry{
		InstanceID:    row.Get(ColInstanceID),
		ComputeFamily: row.Get(ColComputeFamily),
	}

	fields := []struct {
		column   string
		dst      *decimal.Decimal
		optional bool
	}{
		{ColVCPU, &e.VCPU, false},
		{ColMemoryGB, &e.MemoryGB, false},
		{ColDBUPerHour, &e.DBUPerHour, true},
		{ColUnitRate, &e.UnitRate, false},
		{ColInfraRate, &e.InfraRate, false},
	}
	for _, f := range fields {
		v, err := parseAmount(row[f.column], f.optional)
		if err != nil {
			return e, fmt.Errorf("%s: invalid number %q", f.column, row.Get(f.column))
		}
		*f.dst = v
	}
	return e, nil
}

func (c *RateCatalog) loadStorage(t *Table) error {
	if t == nil || len(t.Rows) == 0 {
		return errors.DataLoadf("storage rate table is empty or missing")
	}
	if missing := t.MissingColumns(RequiredStorageColumns); len(missing) > 0 {
		return errors.DataLoadf("storage rate table %q is missing columns %v", t.Name, missing).
			WithContext("table", t.Name)
	}

	rules := DefaultStorageValidationRules()
	for i, row := range t.Rows {
		r := types.StorageRate{StorageClass: row.Get(ColStorageClass)}
		tiers := []struct {
			column string
			dst    *decimal.Decimal
		}{
			{ColRateTier1, &r.Tier1},
			{ColRateTier2, &r.Tier2},
			{ColRateTier3, &r.Tier3},
		}
		for _, tier := range tiers {
			v, err := parseAmount(row[tier.column], false)
			if err != nil {
				return errors.DataLoad(fmt.Sprintf("storage rate table %q row %d", t.Name, i+1),
					fmt.Errorf("%s: invalid number %q", tier.column, row.Get(tier.column)))
			}
			*tier.dst = v
		}
		for _, rule := range rules {
			if err := rule(&r); err != nil {
				return errors.DataLoad(fmt.Sprintf("storage rate table %q row %d", t.Name, i+1), err)
			}
		}
		if _, dup := c.storage[r.StorageClass]; dup {
			return errors.DataLoadf("storage rate table %q row %d: duplicate storage class %s",
				t.Name, i+1, r.StorageClass)
		}
		c.storage[r.StorageClass] = r
		c.storageOrder = append(c.storageOrder, r.StorageClass)
	}
	return nil
}

// LookupFamilyRate returns the entry for an instance within one family
func (c *RateCatalog) LookupFamilyRate(category types.Category, family, instanceID string) (types.RateEntry, bool) {
	idx, ok := c.compute[category]
	if !ok {
		return types.RateEntry{}, false
	}
	e, ok := idx.byFamily[familyKey{family, instanceID}]
	return e, ok
}

// LookupInstanceRate returns the last-loaded entry for an instance in any family
// of the category
func (c *RateCatalog) LookupInstanceRate(category types.Category, instanceID string) (types.RateEntry, bool) {
	idx, ok := c.compute[category]
	if !ok {
		return types.RateEntry{}, false
	}
	e, ok := idx.byID[instanceID]
	return e, ok
}

// LookupWarehouseRate returns the rate for a warehouse type and size
func (c *RateCatalog) LookupWarehouseRate(computeType, sizeID string) (types.RateEntry, bool) {
	return c.LookupFamilyRate(types.CategoryWarehouse, computeType, sizeID)
}

// LookupStorageRate returns the per-GB rate for a class at a volume
func (c *RateCatalog) LookupStorageRate(storageClass string, volumeGB decimal.Decimal) (decimal.Decimal, bool) {
	r, ok := c.storage[storageClass]
	if !ok {
		return decimal.Zero, false
	}
	return storageTierRate(r, volumeGB), true
}

// StorageRate returns the full bracket set for a class
func (c *RateCatalog) StorageRate(storageClass string) (types.StorageRate, bool) {
	r, ok := c.storage[storageClass]
	return r, ok
}

// ComputeFamiliesForTier returns the families a tier may use, in preference
// order, restricted to families present in the jobs table
func (c *RateCatalog) ComputeFamiliesForTier(tier types.Tier) []string {
	declared := c.opts.TransformFamilies
	if isIngestTier(tier) {
		declared = c.opts.IngestFamilies
	}
	present := c.Families(types.CategoryJobs)

	out := make([]string, 0, len(declared))
	for _, f := range declared {
		if containsString(present, f) {
			out = append(out, f)
		}
	}
	return out
}

// Families returns the families of a category in load order
func (c *RateCatalog) Families(category types.Category) []string {
	idx, ok := c.compute[category]
	if !ok {
		return nil
	}
	return append([]string(nil), idx.families...)
}

// WarehouseTypes returns the available warehouse compute types
func (c *RateCatalog) WarehouseTypes() []string {
	return c.Families(types.CategoryWarehouse)
}

// Instances returns the entries of a category in load order. An empty family
// returns every entry.
func (c *RateCatalog) Instances(category types.Category, family string) []types.RateEntry {
	idx, ok := c.compute[category]
	if !ok {
		return nil
	}
	var out []types.RateEntry
	for _, e := range idx.ordered {
		if family == "" || e.ComputeFamily == family {
			out = append(out, e)
		}
	}
	return out
}

// DefaultInstance returns the first entry of a family
func (c *RateCatalog) DefaultInstance(category types.Category, family string) (types.RateEntry, bool) {
	entries := c.Instances(category, family)
	if len(entries) == 0 {
		return types.RateEntry{}, false
	}
	return entries[0], true
}

// StorageClasses returns storage classes in load order
func (c *RateCatalog) StorageClasses() []string {
	return append([]string(nil), c.storageOrder...)
}

// Stats returns catalog statistics
func (c *RateCatalog) Stats() CatalogStats {
	stats := CatalogStats{
		ByCategory: make(map[types.Category]CategoryStats),
	}
	for cat, idx := range c.compute {
		stats.ByCategory[cat] = CategoryStats{
			Entries:  len(idx.ordered),
			Families: len(idx.families),
		}
		stats.Total += len(idx.ordered)
	}
	stats.StorageClasses = len(c.storageOrder)
	return stats
}

// CatalogStats holds catalog statistics
type CatalogStats struct {
	Total          int                              `json:"total"`
	ByCategory     map[types.Category]CategoryStats `json:"by_category"`
	StorageClasses int                              `json:"storage_classes"`
}

// CategoryStats holds per-category statistics
type CategoryStats struct {
	Entries  int `json:"entries"`
	Families int `json:"families"`
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
