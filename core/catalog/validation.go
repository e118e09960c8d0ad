// Package catalog - Rate entry validation
// Ensures loaded rates satisfy the invariants calculators rely on.
package catalog

import (
	"fmt"

	"lakehouse-cost/core/types"
)

// ValidationRule is a rate entry validation rule
type ValidationRule func(*types.RateEntry) error

// StorageValidationRule is a storage rate validation rule
type StorageValidationRule func(*types.StorageRate) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateIdentity,
		validateNonNegativeRates,
	}
}

// DefaultStorageValidationRules returns the standard storage validation rules
func DefaultStorageValidationRules() []StorageValidationRule {
	return []StorageValidationRule{
		validateStorageRates,
	}
}

func validateIdentity(e *types.RateEntry) error {
	if e.InstanceID == "" {
		return fmt.Errorf("instance_id is empty")
	}
	if e.ComputeFamily == "" {
		return fmt.Errorf("compute_family is empty")
	}
	return nil
}

func validateNonNegativeRates(e *types.RateEntry) error {
	fields := []struct {
		name  string
		value interface{ IsNegative() bool }
	}{
		{ColVCPU, e.VCPU},
		{ColMemoryGB, e.MemoryGB},
		{ColDBUPerHour, e.DBUPerHour},
		{ColUnitRate, e.UnitRate},
		{ColInfraRate, e.InfraRate},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return fmt.Errorf("%s is negative", f.name)
		}
	}
	return nil
}

func validateStorageRates(r *types.StorageRate) error {
	if r.StorageClass == "" {
		return fmt.Errorf("storage_class is empty")
	}
	if r.Tier1.IsNegative() || r.Tier2.IsNegative() || r.Tier3.IsNegative() {
		return fmt.Errorf("tier rates must be non-negative")
	}
	return nil
}

// validateEntry applies rules and collects every violation
func validateEntry(e *types.RateEntry, rules []ValidationRule) []error {
	var errs []error
	for _, rule := range rules {
		if err := rule(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
