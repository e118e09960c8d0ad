// Package api - Request and response types for the v1 endpoints.
package api

import (
	"time"

	"lakehouse-cost/core/types"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionResponse describes a session and its current workload
type SessionResponse struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Workload  *types.Workload `json:"workload"`
}

// SessionListResponse lists live session ids
type SessionListResponse struct {
	Sessions []string `json:"sessions"`
	Count    int      `json:"count"`
}

// JobResponse is a job as stored in a tier
type JobResponse struct {
	Tier types.Tier      `json:"tier"`
	Job  types.JobConfig `json:"job"`
}

// TierRequest toggles a tier
type TierRequest struct {
	Enabled bool `json:"enabled"`
}

// StorageModeRequest selects the storage estimation mode
type StorageModeRequest struct {
	Mode types.StorageMode `json:"mode"`
}

// StageZoneRequest includes or excludes the Stage zone from pricing
type StageZoneRequest struct {
	Include bool `json:"include"`
}

// TableRequest adds a table estimate to a zone
type TableRequest struct {
	Zone  string                    `json:"zone"`
	Table types.TableEstimateConfig `json:"table"`
}

// FamiliesResponse lists the compute families offered to a tier
type FamiliesResponse struct {
	Tier     types.Tier `json:"tier"`
	Families []string   `json:"families"`
}

// InstancesResponse lists rate entries for a category, optionally one family
type InstancesResponse struct {
	Category  types.Category    `json:"category"`
	Family    string            `json:"family,omitempty"`
	Instances []types.RateEntry `json:"instances"`
}

// StorageClassesResponse lists storage classes with their bracket rates
type StorageClassesResponse struct {
	Classes []types.StorageRate `json:"classes"`
}
