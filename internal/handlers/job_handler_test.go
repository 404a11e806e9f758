package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lj-michale/airbyte-platform/internal/models"
)

func listJobs(t *testing.T, query string) models.PaginatedResponse {
	t.Helper()
	w := performRequest(http.MethodGet, "/api/v1/jobs/"+query, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	var resp models.PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListJobs(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Job Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Job Conn")

	createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusSucceeded)
	createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusFailed)
	createTestJob(t, &connection.ID, models.JobConfigResetConnection, models.JobStatusPending)

	resp := listJobs(t, "")
	assert.Equal(t, int64(3), resp.Total)
	items, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 3)
}

func TestListJobs_StatusFilter(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Status Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Status Conn")

	createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusSucceeded)
	createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusFailed)
	createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusCancelled)

	resp := listJobs(t, "?status=failed")
	assert.Equal(t, int64(1), resp.Total)

	// "all" disables the status predicate entirely.
	resp = listJobs(t, "?status=all")
	assert.Equal(t, int64(3), resp.Total)

	w := performRequest(http.MethodGet, "/api/v1/jobs/?status=exploded", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrorCodeInvalidEnumValue, decodeAPIError(t, w).Code)
}

func TestListJobs_ConfigTypesFilter(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Type Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Type Conn")

	createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusSucceeded)
	createTestJob(t, &connection.ID, models.JobConfigResetConnection, models.JobStatusSucceeded)
	createTestJob(t, nil, models.JobConfigDiscoverSchema, models.JobStatusSucceeded)

	resp := listJobs(t, "?config_types=sync,reset_connection")
	assert.Equal(t, int64(2), resp.Total)

	resp = listJobs(t, "?config_types=discover_schema")
	assert.Equal(t, int64(1), resp.Total)

	w := performRequest(http.MethodGet, "/api/v1/jobs/?config_types=sync,unknown", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrorCodeInvalidEnumValue, decodeAPIError(t, w).Code)
}

func TestListJobs_ConnectionFilter(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Filter Source", "postgres", `{"host":"db"}`)
	connA := createTestConnection(t, source.ID, "Conn A")
	connB := createTestConnection(t, source.ID, "Conn B")

	createTestJob(t, &connA.ID, models.JobConfigSync, models.JobStatusSucceeded)
	createTestJob(t, &connA.ID, models.JobConfigSync, models.JobStatusFailed)
	createTestJob(t, &connB.ID, models.JobConfigSync, models.JobStatusSucceeded)

	resp := listJobs(t, "?connection_id="+connA.ID.String())
	assert.Equal(t, int64(2), resp.Total)

	w := performRequest(http.MethodGet, "/api/v1/jobs/?connection_id=not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrorCodeInvalidIDFormat, decodeAPIError(t, w).Code)
}

func TestListJobs_UpdatedAtDayBoundaries(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Range Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Range Conn")

	early := createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusSucceeded)
	middle := createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusSucceeded)
	late := createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusSucceeded)

	setJobTimestamps(t, early.ID,
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	setJobTimestamps(t, middle.ID,
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	setJobTimestamps(t, late.ID,
		time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))

	// A date-only bound covers the whole UTC day on both ends.
	resp := listJobs(t, "?updated_at_start=2026-03-02&updated_at_end=2026-03-02")
	assert.Equal(t, int64(1), resp.Total)

	resp = listJobs(t, "?updated_at_start=2026-03-02")
	assert.Equal(t, int64(2), resp.Total)

	resp = listJobs(t, "?updated_at_end=2026-03-02")
	assert.Equal(t, int64(2), resp.Total)

	// Full timestamps are honored as-is.
	resp = listJobs(t, "?updated_at_start=2026-03-02T11%3A00%3A00Z")
	assert.Equal(t, int64(1), resp.Total)
}

func TestListJobs_InvalidRange(t *testing.T) {
	clearTables(t)

	w := performRequest(http.MethodGet, "/api/v1/jobs/?updated_at_start=2026-03-05&updated_at_end=2026-03-01", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrorCodeValidation, decodeAPIError(t, w).Code)

	w = performRequest(http.MethodGet, "/api/v1/jobs/?updated_at_start=yesterday", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrorCodeValidation, decodeAPIError(t, w).Code)
}

func TestListJobs_PaginationTotal(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Page Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Page Conn")
	for i := 0; i < 5; i++ {
		createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusSucceeded)
	}

	resp := listJobs(t, "?limit=2&offset=4")
	assert.Equal(t, int64(5), resp.Total)
	items, _ := resp.Data.([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, 4, resp.Offset)
}

func TestListJobs_DefaultSortNewestFirst(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Sort Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Sort Conn")

	older := createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusSucceeded)
	newer := createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusSucceeded)
	setJobTimestamps(t, older.ID,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	setJobTimestamps(t, newer.ID,
		time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	resp := listJobs(t, "")
	items, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 2)
	first, ok := items[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, newer.ID.String(), first["id"])
}

func TestGetJob_WithAttempts(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Attempt Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Attempt Conn")
	job := createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusFailed)

	attempt := models.JobAttempt{
		ID:                    uuid.New(),
		JobID:                 job.ID,
		Number:                1,
		Status:                models.JobStatusFailed,
		ExternalFailureReason: "Could not reach source.",
		InternalFailureReason: "dial tcp: connection refused",
	}
	require.NoError(t, testDB.Create(&attempt).Error)

	w := performRequest(http.MethodGet, "/api/v1/jobs/"+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, job.ID, got.ID)
	require.Len(t, got.Attempts, 1)
	assert.Equal(t, "Could not reach source.", got.Attempts[0].ExternalFailureReason)
}

func TestGetJob_NotFound(t *testing.T) {
	clearTables(t)

	w := performRequest(http.MethodGet, "/api/v1/jobs/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrorCodeJobNotFound, decodeAPIError(t, w).Code)
}

func TestCancelJob(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Cancel Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Cancel Conn")
	job := createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusPending)

	w := performRequest(http.MethodPost, "/api/v1/jobs/"+job.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cancelled models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.EndedAt)

	var stored models.Job
	require.NoError(t, testDB.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, models.JobStatusCancelled, stored.Status)

	// Cancelling again hits the terminal-state guard.
	w = performRequest(http.MethodPost, "/api/v1/jobs/"+job.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrorCodeConflict, decodeAPIError(t, w).Code)
}

func TestCancelJob_TerminalStates(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Terminal Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Terminal Conn")

	for _, status := range []string{models.JobStatusSucceeded, models.JobStatusFailed, models.JobStatusCancelled} {
		job := createTestJob(t, &connection.ID, models.JobConfigSync, status)
		w := performRequest(http.MethodPost, "/api/v1/jobs/"+job.ID.String()+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, w.Code, "status %s should not be cancellable", status)
	}
}

func TestCancelJob_Running(t *testing.T) {
	clearTables(t)
	source := createTestSource(t, "Running Source", "postgres", `{"host":"db"}`)
	connection := createTestConnection(t, source.ID, "Running Conn")
	job := createTestJob(t, &connection.ID, models.JobConfigSync, models.JobStatusRunning)

	w := performRequest(http.MethodPost, "/api/v1/jobs/"+job.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Job
	require.NoError(t, testDB.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, models.JobStatusCancelled, stored.Status)
}
