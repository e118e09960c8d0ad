// Package api - Session handlers
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"lakehouse-cost/core/cost"
	"lakehouse-cost/core/output"
	"lakehouse-cost/core/session"
	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// lookupSession resolves the {id} path variable, writing a 404 when unknown
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func pathTier(r *http.Request) (types.Tier, error) {
	raw := mux.Vars(r)["tier"]
	tier, ok := types.ParseTier(raw)
	if !ok {
		return "", errors.Inputf("unknown tier %q", raw)
	}
	return tier, nil
}

func sessionResponse(sess *session.Session) SessionResponse {
	return SessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt(),
		Workload:  sess.Snapshot(),
	}
}

// handleCreateSession handles POST /v1/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+sess.ID)
	s.writeJSON(w, sessionResponse(sess), http.StatusCreated)
}

// handleListSessions handles GET /v1/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.IDs()
	s.writeJSON(w, SessionListResponse{Sessions: ids, Count: len(ids)}, http.StatusOK)
}

// handleGetSession handles GET /v1/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, sessionResponse(sess), http.StatusOK)
}

// handleReplaceSession handles PUT /v1/sessions/{id}
func (s *Server) handleReplaceSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var wl types.Workload
	present, err := decodeJSON(r, &wl)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !present {
		s.writeError(w, errors.Input("workload body is required"))
		return
	}
	if err := sess.Replace(&wl); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, sessionResponse(sess), http.StatusOK)
}

// handleDeleteSession handles DELETE /v1/sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddJob handles POST /v1/sessions/{id}/jobs/{tier}. An empty body
// adds the tier's default job.
func (s *Server) handleAddJob(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	tier, err := pathTier(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var job types.JobConfig
	present, err := decodeJSON(r, &job)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var in *types.JobConfig
	if present {
		in = &job
	}

	added, err := sess.AddJob(tier, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, JobResponse{Tier: tier, Job: added}, http.StatusCreated)
}

// handleUpdateJob handles PUT /v1/sessions/{id}/jobs/{tier}/{index}
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	tier, err := pathTier(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var job types.JobConfig
	if err := requireJSON(r, &job); err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.UpdateJob(tier, index, job); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, JobResponse{Tier: tier, Job: job}, http.StatusOK)
}

// handleRemoveJob handles DELETE /v1/sessions/{id}/jobs/{tier}/{index}
func (s *Server) handleRemoveJob(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	tier, err := pathTier(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.RemoveJob(tier, index); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEnableTier handles PUT /v1/sessions/{id}/tiers/{tier}
func (s *Server) handleEnableTier(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	tier, err := pathTier(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req TierRequest
	if err := requireJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.EnableTier(tier, req.Enabled); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, sessionResponse(sess), http.StatusOK)
}

// handleStorageMode handles PUT /v1/sessions/{id}/storage-mode
func (s *Server) handleStorageMode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var req StorageModeRequest
	if err := requireJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.SetStorageMode(req.Mode); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, sessionResponse(sess), http.StatusOK)
}

// handleStageZone handles PUT /v1/sessions/{id}/stage-zone
func (s *Server) handleStageZone(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var req StageZoneRequest
	if err := requireJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess.SetIncludeStageZone(req.Include)
	s.writeJSON(w, sessionResponse(sess), http.StatusOK)
}

// handleSetDirectZone handles PUT /v1/sessions/{id}/storage-zones
func (s *Server) handleSetDirectZone(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var zone types.StorageZoneConfig
	if err := requireJSON(r, &zone); err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.SetDirectZone(zone); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, sessionResponse(sess), http.StatusOK)
}

// handleAddTable handles POST /v1/sessions/{id}/tables
func (s *Server) handleAddTable(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var req TableRequest
	if err := requireJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.AddTable(req.Zone, req.Table); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, sessionResponse(sess), http.StatusCreated)
}

// handleRemoveTable handles DELETE /v1/sessions/{id}/tables?zone=&index=
func (s *Server) handleRemoveTable(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	index, err := strconv.Atoi(q.Get("index"))
	if err != nil {
		s.writeError(w, errors.Inputf("invalid index %q", q.Get("index")))
		return
	}
	if err := sess.RemoveTable(q.Get("zone"), index); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddWarehouse handles POST /v1/sessions/{id}/warehouses
func (s *Server) handleAddWarehouse(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var wh types.WarehouseConfig
	present, err := decodeJSON(r, &wh)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var in *types.WarehouseConfig
	if present {
		in = &wh
	}
	added, err := sess.AddWarehouse(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, added, http.StatusCreated)
}

// handleUpdateWarehouse handles PUT /v1/sessions/{id}/warehouses/{wid}
func (s *Server) handleUpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var wh types.WarehouseConfig
	if err := requireJSON(r, &wh); err != nil {
		s.writeError(w, err)
		return
	}
	updated, err := sess.UpdateWarehouse(mux.Vars(r)["wid"], wh)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, updated, http.StatusOK)
}

// handleRemoveWarehouse handles DELETE /v1/sessions/{id}/warehouses/{wid}
func (s *Server) handleRemoveWarehouse(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveWarehouse(mux.Vars(r)["wid"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddDevCluster handles POST /v1/sessions/{id}/dev-clusters
func (s *Server) handleAddDevCluster(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var c types.DevClusterConfig
	present, err := decodeJSON(r, &c)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var in *types.DevClusterConfig
	if present {
		in = &c
	}
	added, err := sess.AddDevCluster(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, added, http.StatusCreated)
}

// handleRemoveDevCluster handles DELETE /v1/sessions/{id}/dev-clusters/{index}
func (s *Server) handleRemoveDevCluster(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.RemoveDevCluster(index); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recalculate runs the engine for a session and wraps the result in a report
func (s *Server) recalculate(r *http.Request, sess *session.Session, withWorkload bool) (*output.Report, error) {
	est, priced, err := sess.Recalculate(cost.WithSource(r.Context(), "api"), s.engine)
	if err != nil {
		return nil, err
	}
	var wl *types.Workload
	if withWorkload {
		wl = priced
	}
	report := output.NewReport(est, wl, "api", s.version)
	report.Metadata.SessionID = sess.ID
	return report, nil
}

// handleEstimate handles GET /v1/sessions/{id}/estimate
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	report, err := s.recalculate(r, sess, false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, report, http.StatusOK)
}

// handleExport handles GET /v1/sessions/{id}/export?format=xlsx|json|table.
// The report is rendered in full before any byte is written so failures
// still produce a JSON error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	format := output.FormatXLSX
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := output.ParseFormat(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		format = f
	}

	report, err := s.recalculate(r, sess, true)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.formats.Render(&buf, format, report); err != nil {
		s.writeError(w, err)
		return
	}

	switch format {
	case output.FormatXLSX:
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "lakehouse-cost-"+sess.ID+".xlsx"))
	case output.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("write export", zap.Error(err))
	}
}
