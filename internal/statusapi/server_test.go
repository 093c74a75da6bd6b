package statusapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/datastore"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/logging"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/metrics"
)

func newTestServer(t *testing.T) (*Server, *datastore.SQLiteStore) {
	t.Helper()

	dir := t.TempDir()
	settings := &conf.Settings{}
	settings.Store.Path = filepath.Join(dir, "test.db")

	ds := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	m, err := metrics.New()
	require.NoError(t, err)

	s := New(settings, ds, m, logging.ForService("statusapi-test"))
	return s, ds
}

func TestHandleHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleListJobs_Empty(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleListJobs_ReturnsSavedJobs(t *testing.T) {
	s, ds := newTestServer(t)
	require.NoError(t, ds.SaveJob(&datastore.JobRecord{ID: "job-1", Name: "My Movie", Status: "done"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "My Movie")
}

func TestHandleGetJob_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetJob_ReturnsDetail(t *testing.T) {
	s, ds := newTestServer(t)
	sourcesJSON, err := datastore.MarshalSources(map[string]string{"Source 1": "a.mkv"})
	require.NoError(t, err)
	require.NoError(t, ds.SaveJob(&datastore.JobRecord{ID: "job-1", Name: "My Movie", Status: "done", SourcesJSON: sourcesJSON}))
	require.NoError(t, ds.SaveChunkResults([]datastore.ChunkResultRecord{
		{JobID: "job-1", Source: "Source 2", ChunkIndex: 0, OffsetMs: 1000, Confidence: 0.9, Accepted: true},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"offsetMs\":1000")
}

func TestMetricsEndpoint_ServesPrometheusFormat(t *testing.T) {
	s, _ := newTestServer(t)
	s.Metrics.Datastore.RecordDbOperation("select", "job_records", "success")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "vsgsync_datastore_operations_total")
}
