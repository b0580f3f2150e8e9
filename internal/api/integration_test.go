package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/foodtracker/internal/api/dto"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/storage"
)

// =============================================================================
// API Integration Tests
// =============================================================================
// These tests run the full stack against a real SQLite file:
// HTTP request → Router → Handlers → Services → Engine → Adapters → fake
// platform → OrderStore → SQLite

func createIntegrationServer(t *testing.T) (*httptest.Server, *testEnv) {
	t.Helper()

	kv, err := storage.Open(context.Background(), storage.BackendSQLite, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	env := newTestEnv(t, kv)
	ts := httptest.NewServer(env.server.Router())
	t.Cleanup(ts.Close)
	return ts, env
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON[T any](t *testing.T, url string) (T, int) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out, resp.StatusCode
}

func TestAPI_Integration_HealthCheck(t *testing.T) {
	ts, _ := createIntegrationServer(t)

	health, status := getJSON[dto.HealthResponse](t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", health.Status)
}

func TestAPI_Integration_SyncThenAnalytics(t *testing.T) {
	ts, _ := createIntegrationServer(t)

	resp := postJSON(t, ts.URL+"/api/sync", dto.SyncRequest{Platform: "swiggy"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result dto.SyncResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 2, result.Added)

	// A second sync finds nothing new.
	resp = postJSON(t, ts.URL+"/api/sync", dto.SyncRequest{Platform: "swiggy"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Zero(t, result.Added)
	assert.Equal(t, 2, result.Total)

	report, status := getJSON[dto.AnalyticsResponse](t, ts.URL+"/api/platforms/swiggy/analytics?range=all")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, report.Summary.OrderCount)
	assert.Equal(t, 700.0, report.Summary.TotalSpent)
	assert.Zero(t, report.InvalidDates)
	assert.NotNil(t, report.LastSync)

	buckets := map[string]int{}
	for _, b := range report.Summary.TimeOfDay {
		buckets[b.Name] = b.Count
	}
	assert.Equal(t, 1, buckets["Afternoon"])
	assert.Equal(t, 1, buckets["Late Night"])

	runs, status := getJSON[dto.SyncRunListResponse](t, ts.URL+"/api/platforms/swiggy/runs")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, runs.Count)
	assert.Zero(t, runs.Runs[0].Added, "newest first")
	assert.Equal(t, 2, runs.Runs[1].Added)
}

func TestAPI_Integration_SyncJobs(t *testing.T) {
	ts, _ := createIntegrationServer(t)

	resp := postJSON(t, ts.URL+"/api/sync/jobs", dto.SyncRequest{Platform: "zomato"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var started dto.StartSyncResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	require.NotEmpty(t, started.JobID)
	assert.Equal(t, "pending", started.Status)

	var job dto.SyncJobResponse
	require.Eventually(t, func() bool {
		var status int
		job, status = getJSON[dto.SyncJobResponse](t, ts.URL+"/api/sync/jobs/"+started.JobID)
		return status == http.StatusOK && job.Status == "completed"
	}, 5*time.Second, 20*time.Millisecond)

	require.NotNil(t, job.Result)
	assert.Equal(t, 2, job.Result.Added)
	assert.Equal(t, "done", job.Result.State)
	assert.Equal(t, 100, job.Progress.Percent)
	assert.NotNil(t, job.CompletedAt)

	all, _ := getJSON[dto.SyncJobsResponse](t, ts.URL+"/api/sync/jobs")
	assert.Equal(t, 1, all.Count)

	active, _ := getJSON[dto.SyncJobsResponse](t, ts.URL+"/api/sync/jobs/active")
	assert.Zero(t, active.Count)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/sync/jobs/"+started.JobID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	assert.Equal(t, http.StatusConflict, del.StatusCode, "finished jobs cannot be cancelled")

	_, status := getJSON[dto.APIError](t, ts.URL+"/api/sync/jobs/missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_Integration_SyncJobs_Validation(t *testing.T) {
	ts, _ := createIntegrationServer(t)

	resp := postJSON(t, ts.URL+"/api/sync/jobs", dto.SyncRequest{Platform: "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/sync/jobs", dto.SyncRequest{Platform: "zomato", MaxPages: -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
