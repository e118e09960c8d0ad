package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse-cost/core/catalog"
	"lakehouse-cost/core/catalog/catalogtest"
	"lakehouse-cost/core/output"
	"lakehouse-cost/core/session"
	"lakehouse-cost/core/types"
	"lakehouse-cost/internal/config"
)

func newTestServer(t *testing.T, maxSessions int) *Server {
	t.Helper()
	cat := catalogtest.New(t)
	return NewServer("test", cat, session.NewStore(cat, config.Default().Workload, maxSessions))
}

func do(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decode(t, rec, &resp)
	return resp.Error.Code
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp SessionResponse
	decode(t, rec, &resp)
	return resp.ID
}

func TestOperationalEndpoints(t *testing.T) {
	srv := newTestServer(t, 0)

	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = do(t, srv, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)

	rec = do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lakehouse_cost_http_requests_total")
}

func TestUnknownRoutes(t *testing.T) {
	srv := newTestServer(t, 0)

	rec := do(t, srv, http.MethodGet, "/v2/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))

	rec = do(t, srv, http.MethodPatch, "/v1/sessions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t, 0)

	rec := do(t, srv, http.MethodGet, "/v1/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats catalog.CatalogStats
	decode(t, rec, &stats)
	assert.Equal(t, 12, stats.Total)
	assert.Equal(t, 2, stats.StorageClasses)

	rec = do(t, srv, http.MethodGet, "/v1/catalog/tiers/Raw/families", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fam FamiliesResponse
	decode(t, rec, &fam)
	assert.Equal(t, types.TierRaw, fam.Tier)
	assert.Equal(t, []string{"DLT Advanced Compute Photon", "DLT Advanced Compute"}, fam.Families)

	rec = do(t, srv, http.MethodGet, "/v1/catalog/tiers/Platinum/families", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INPUT_ERROR", errorCode(t, rec))

	rec = do(t, srv, http.MethodGet, "/v1/catalog/instances?category=warehouse&family=SQL+Compute", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inst InstancesResponse
	decode(t, rec, &inst)
	require.Len(t, inst.Instances, 2)
	assert.Equal(t, "2X-Small", inst.Instances[0].InstanceID)

	rec = do(t, srv, http.MethodGet, "/v1/catalog/instances?family=Nope", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"instances":[]`)

	rec = do(t, srv, http.MethodGet, "/v1/catalog/instances?category=gpu", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/v1/catalog/storage-classes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var classes StorageClassesResponse
	decode(t, rec, &classes)
	require.Len(t, classes.Classes, 2)
	assert.Equal(t, "S3 Standard", classes.Classes[0].StorageClass)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, 0)
	id := createSession(t, srv)
	base := "/v1/sessions/" + id

	rec := do(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess SessionResponse
	decode(t, rec, &sess)
	assert.Equal(t, id, sess.ID)
	require.NotNil(t, sess.Workload)
	assert.Len(t, sess.Workload.Tiers, 4)

	rec = do(t, srv, http.MethodGet, "/v1/sessions", nil)
	var list SessionListResponse
	decode(t, rec, &list)
	assert.Equal(t, []string{id}, list.Sessions)

	rec = do(t, srv, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionCapacity(t *testing.T) {
	srv := newTestServer(t, 1)
	createSession(t, srv)

	rec := do(t, srv, http.MethodPost, "/v1/sessions", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "CAPACITY_ERROR", errorCode(t, rec))
}

func TestJobEndpoints(t *testing.T) {
	srv := newTestServer(t, 0)
	base := "/v1/sessions/" + createSession(t, srv)

	rec := do(t, srv, http.MethodPost, base+"/jobs/Raw", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var job JobResponse
	decode(t, rec, &job)
	assert.Equal(t, "Raw Job 2", job.Job.Name)

	rec = do(t, srv, http.MethodPost, base+"/jobs/Raw", types.JobConfig{Name: "cdc", RuntimeHours: 1, RunsPerMonth: 720})
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, rec, &job)
	assert.Equal(t, "m5.xlarge", job.Job.InstanceID)

	rec = do(t, srv, http.MethodPost, base+"/jobs/Raw", `{"name":"x","surprise":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/jobs/Platinum", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, base+"/jobs/Raw/0", types.JobConfig{Name: "renamed", WorkerNodes: 2})
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/jobs/Raw/0", "/tiers/Raw", "/storage-mode", "/stage-zone", "/storage-zones", "/warehouses/warehouse_0"} {
		rec = do(t, srv, http.MethodPut, base+path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "empty PUT %s", path)
		assert.Equal(t, "INPUT_ERROR", errorCode(t, rec))
	}

	rec = do(t, srv, http.MethodDelete, base+"/jobs/Raw/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodDelete, base+"/jobs/Raw/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPut, base+"/tiers/Stage", TierRequest{Enabled: false})
	require.Equal(t, http.StatusOK, rec.Code)
	var sess SessionResponse
	decode(t, rec, &sess)
	assert.False(t, sess.Workload.TierJobs(types.TierStage).Enabled)

	raw := sess.Workload.TierJobs(types.TierRaw)
	require.Len(t, raw.Jobs, 2)
	assert.Equal(t, "renamed", raw.Jobs[0].Name)
	assert.Equal(t, "cdc", raw.Jobs[1].Name)
}

func TestStorageEndpoints(t *testing.T) {
	srv := newTestServer(t, 0)
	base := "/v1/sessions/" + createSession(t, srv)

	rec := do(t, srv, http.MethodPut, base+"/storage-mode", StorageModeRequest{Mode: types.StorageTableBased})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPut, base+"/storage-mode", StorageModeRequest{Mode: "guess"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, base+"/stage-zone", StageZoneRequest{Include: false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPut, base+"/storage-zones", types.StorageZoneConfig{
		Zone: "L0 / Raw", StorageClass: "S3 Standard", Amount: 5, Unit: types.UnitTB,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/tables", TableRequest{
		Zone: "L0 / Raw", Table: types.TableEstimateConfig{Records: 10, Columns: 2, TableCount: 1, AvgColumnLength: 4},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sess SessionResponse
	decode(t, rec, &sess)
	assert.Equal(t, types.StorageTableBased, sess.Workload.StorageMode)
	assert.False(t, sess.Workload.IncludeStageZone)
	assert.Len(t, sess.Workload.TableZones[1].Tables, 2)

	q := url.Values{"zone": {"L0 / Raw"}, "index": {"0"}}
	rec = do(t, srv, http.MethodDelete, base+"/tables?"+q.Encode(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	q.Set("index", "x")
	rec = do(t, srv, http.MethodDelete, base+"/tables?"+q.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWarehouseAndDevClusterEndpoints(t *testing.T) {
	srv := newTestServer(t, 0)
	base := "/v1/sessions/" + createSession(t, srv)

	rec := do(t, srv, http.MethodPost, base+"/warehouses", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var wh types.WarehouseConfig
	decode(t, rec, &wh)
	assert.Equal(t, "warehouse_1", wh.ID)

	rec = do(t, srv, http.MethodPut, base+"/warehouses/warehouse_1", types.WarehouseConfig{
		Name: "Adhoc", ComputeType: "SQL Compute", SizeID: "Medium", NodeCount: 50, HoursPerDay: 8, DaysPerMonth: 20,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &wh)
	assert.Equal(t, 8, wh.NodeCount)

	rec = do(t, srv, http.MethodDelete, base+"/warehouses/warehouse_1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodDelete, base+"/warehouses/warehouse_1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/dev-clusters", types.DevClusterConfig{WorkerInstanceID: "r5.xlarge", WorkerNodes: 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	var dc types.DevClusterConfig
	decode(t, rec, &dc)
	assert.Equal(t, "m5.xlarge", dc.DriverInstanceID)

	rec = do(t, srv, http.MethodDelete, base+"/dev-clusters/0", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodDelete, base+"/dev-clusters/7", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReplaceSession(t *testing.T) {
	srv := newTestServer(t, 0)
	base := "/v1/sessions/" + createSession(t, srv)

	rec := do(t, srv, http.MethodPut, base, types.Workload{
		StorageMode: types.StorageDirect,
		Warehouses: []types.WarehouseConfig{{
			ID: "w", Name: "BI", ComputeType: "SQL Pro Compute", SizeID: "Small",
			NodeCount: 100, HoursPerDay: 10, DaysPerMonth: 22,
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sess SessionResponse
	decode(t, rec, &sess)
	assert.Equal(t, 4, sess.Workload.Warehouses[0].NodeCount)

	rec = do(t, srv, http.MethodPut, base, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, base, `{"storage_mode":"direct","bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, base, `{"warehouses":[{"id":"w","hours_per_day":30}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEstimateAndExport(t *testing.T) {
	srv := newTestServer(t, 0)
	id := createSession(t, srv)
	base := "/v1/sessions/" + id

	rec := do(t, srv, http.MethodPut, base, types.Workload{
		StorageMode: types.StorageDirect,
		Tiers: []types.TierJobs{{Tier: types.TierCurated, Enabled: true, Jobs: []types.JobConfig{{
			Name: "nightly", RuntimeHours: 2, RunsPerMonth: 10,
			ComputeFamily: "Jobs Compute", InstanceID: "m5.xlarge", WorkerNodes: 2,
		}}}},
		DirectZones: []types.StorageZoneConfig{{
			Zone: "L1 / Curated", StorageClass: "S3 Standard", Amount: 100, Unit: types.UnitGB, MonthlyGrowthPercent: 10,
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodGet, base+"/estimate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		Estimate types.Estimate `json:"estimate"`
		Metadata output.Metadata `json:"metadata"`
	}
	decode(t, rec, &report)
	assert.Equal(t, id, report.Metadata.SessionID)
	assert.Equal(t, "api", report.Metadata.Source)
	// 3 nodes × 20h × (0.15 + 0.192) plus 100 GB × 0.023
	assert.Equal(t, "22.82", report.Estimate.Summary.Total.Monthly.String())

	rec = do(t, srv, http.MethodGet, base, nil)
	var sess SessionResponse
	decode(t, rec, &sess)
	require.NotNil(t, sess.Workload.DirectZones[0].Projection, "estimate caches projections")
	assert.Equal(t, "7.613", sess.Workload.DirectZones[0].Projection.Quarterly.String())

	rec = do(t, srv, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), id+".xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	rec = do(t, srv, http.MethodGet, base+"/export?format=table", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), "$22.82")

	rec = do(t, srv, http.MethodGet, base+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/v1/sessions/missing/estimate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
