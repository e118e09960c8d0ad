package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
)

// handleCatalogStats handles GET /v1/catalog
func (s *Server) handleCatalogStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.catalog.Stats(), http.StatusOK)
}

// handleTierFamilies handles GET /v1/catalog/tiers/{tier}/families
func (s *Server) handleTierFamilies(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["tier"]
	tier, ok := types.ParseTier(raw)
	if !ok {
		s.writeError(w, errors.Inputf("unknown tier %q", raw))
		return
	}
	families := s.catalog.ComputeFamiliesForTier(tier)
	if families == nil {
		families = []string{}
	}
	s.writeJSON(w, FamiliesResponse{Tier: tier, Families: families}, http.StatusOK)
}

// handleInstances handles GET /v1/catalog/instances?category=&family=
func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := types.CategoryJobs
	if raw := q.Get("category"); raw != "" {
		category = types.Category(raw)
		if !category.IsValid() {
			s.writeError(w, errors.Inputf("unknown category %q", raw))
			return
		}
	}

	family := q.Get("family")
	instances := s.catalog.Instances(category, family)
	if instances == nil {
		instances = []types.RateEntry{}
	}
	s.writeJSON(w, InstancesResponse{Category: category, Family: family, Instances: instances}, http.StatusOK)
}

// handleStorageClasses handles GET /v1/catalog/storage-classes
func (s *Server) handleStorageClasses(w http.ResponseWriter, r *http.Request) {
	resp := StorageClassesResponse{Classes: []types.StorageRate{}}
	for _, class := range s.catalog.StorageClasses() {
		if rate, ok := s.catalog.StorageRate(class); ok {
			resp.Classes = append(resp.Classes, rate)
		}
	}
	s.writeJSON(w, resp, http.StatusOK)
}
