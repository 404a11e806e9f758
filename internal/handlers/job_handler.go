package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lj-michale/airbyte-platform/internal/database"
	"github.com/lj-michale/airbyte-platform/internal/models"
)

// AllowedJobSortByFields defines the fields by which a list of jobs can be sorted.
var AllowedJobSortByFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"status":     true,
}

const dateOnlyLayout = "2006-01-02"

// ListJobs godoc
// @Summary List jobs
// @Description Paginated job listing. Filter by connection, config types, status and an updated-at range. Date-only range bounds cover the whole UTC day.
// @Tags jobs
// @Produce  json
// @Param   connection_id     query   string  false  "Filter by connection ID (UUID)"
// @Param   config_types      query   string  false  "Comma-separated job config types (sync, reset_connection, discover_schema)"
// @Param   status            query   string  false  "Job status filter; 'all' disables the filter"  Enums(all, pending, running, succeeded, failed, cancelled)
// @Param   updated_at_start  query   string  false  "Lower updated-at bound (RFC3339 or YYYY-MM-DD)"
// @Param   updated_at_end    query   string  false  "Upper updated-at bound (RFC3339 or YYYY-MM-DD)"
// @Param   limit             query   int     false  "Page size (max 100)"
// @Param   offset            query   int     false  "Page offset"
// @Param   sort_by           query   string  false  "Sort field: created_at, updated_at, status"
// @Param   sort_order        query   string  false  "asc or desc"
// @Success 200 {object} models.PaginatedResponse "Jobs with total count"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /jobs [get]
func ListJobs(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}
	sortBy, sortOrder, ok := parseSort(c, AllowedJobSortByFields, "created_at", "desc")
	if !ok {
		return
	}

	db := database.GetDB()
	query := db.Model(&models.Job{})

	if connectionIDStr := c.Query("connection_id"); connectionIDStr != "" {
		connectionID, err := uuid.Parse(connectionIDStr)
		if err != nil {
			RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidIDFormat, "Invalid ID format for connection ID", gin.H{"connection_id": connectionIDStr})
			return
		}
		query = query.Where("connection_id = ?", connectionID)
	}

	if configTypesStr := c.Query("config_types"); configTypesStr != "" {
		configTypes := strings.Split(configTypesStr, ",")
		for i, configType := range configTypes {
			configType = strings.TrimSpace(configType)
			if !models.ValidJobConfigTypes[configType] {
				RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidEnumValue, "Invalid job config type.", gin.H{"config_type": configType})
				return
			}
			configTypes[i] = configType
		}
		query = query.Where("config_type IN ?", configTypes)
	}

	// "all" (and an absent parameter) means no status predicate at all.
	if status := c.Query("status"); status != "" && status != "all" {
		if !models.ValidJobStatuses[status] {
			RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidEnumValue, "Invalid job status.", gin.H{"status": status})
			return
		}
		query = query.Where("status = ?", status)
	}

	start, end, ok := parseUpdatedAtRange(c)
	if !ok {
		return
	}
	if start != nil {
		query = query.Where("updated_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("updated_at <= ?", *end)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to count jobs", nil)
		return
	}

	var jobs []models.Job
	if err := query.Order(sortBy + " " + sortOrder).Limit(limit).Offset(offset).Find(&jobs).Error; err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list jobs", nil)
		return
	}

	RespondWithSuccess(c, http.StatusOK, models.PaginatedResponse{
		Data:   jobs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetJob godoc
// @Summary Get a job by ID
// @Description Fetch a single job including its execution attempts.
// @Tags jobs
// @Produce  json
// @Param   id     path   string     true  "Job ID (UUID)"
// @Success 200 {object} models.Job "Successfully retrieved job"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /jobs/{id} [get]
func GetJob(c *gin.Context) {
	idStr := c.Param("id")
	jobID, err := uuid.Parse(idStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidIDFormat, "Invalid ID format for job ID", gin.H{"id": idStr})
		return
	}

	db := database.GetDB()
	var job models.Job
	if err := db.Preload("Attempts").First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondWithError(c, http.StatusNotFound, models.ErrorCodeJobNotFound, "Job not found", gin.H{"id": jobID})
		} else {
			RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to get job", nil)
		}
		return
	}
	RespondWithSuccess(c, http.StatusOK, job)
}

// CancelJob godoc
// @Summary Cancel a job
// @Description Cancel a pending or running job. Jobs already in a terminal state cannot be cancelled.
// @Tags jobs
// @Produce  json
// @Param   id     path   string     true  "Job ID (UUID)"
// @Success 200 {object} models.Job "Cancelled job"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 409 {object} models.APIError "Conflict (job already terminal)"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /jobs/{id}/cancel [post]
func CancelJob(c *gin.Context) {
	idStr := c.Param("id")
	jobID, err := uuid.Parse(idStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidIDFormat, "Invalid ID format for job ID", gin.H{"id": idStr})
		return
	}

	db := database.GetDB()
	var job models.Job
	if err := db.First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondWithError(c, http.StatusNotFound, models.ErrorCodeJobNotFound, "Job not found", gin.H{"id": jobID})
		} else {
			RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to get job", nil)
		}
		return
	}

	if models.TerminalJobStatuses[job.Status] {
		RespondWithError(c, http.StatusConflict, models.ErrorCodeConflict, "Job is already in a terminal state.", gin.H{"id": jobID, "status": job.Status})
		return
	}

	now := time.Now().UTC()
	// Guarded transition so a launcher completing the same job at the same
	// moment cannot overwrite the cancellation.
	res := db.Model(&models.Job{}).
		Where("id = ? AND status IN ?", jobID, []string{models.JobStatusPending, models.JobStatusRunning}).
		Updates(map[string]interface{}{
			"status":   models.JobStatusCancelled,
			"ended_at": now,
		})
	if res.Error != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to cancel job", nil)
		return
	}
	if res.RowsAffected == 0 {
		// The job reached a terminal state between the read and the update.
		if err := db.First(&job, "id = ?", jobID).Error; err == nil {
			RespondWithError(c, http.StatusConflict, models.ErrorCodeConflict, "Job is already in a terminal state.", gin.H{"id": jobID, "status": job.Status})
			return
		}
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to cancel job", nil)
		return
	}

	job.Status = models.JobStatusCancelled
	job.EndedAt = &now
	publishJobEvent(&job, models.JobStatusCancelled)
	RespondWithSuccess(c, http.StatusOK, job)
}

// parseUpdatedAtRange reads the updated_at_start / updated_at_end query
// parameters. Each accepts either a full RFC3339 timestamp or a bare
// YYYY-MM-DD date; date-only values expand to the start and end of that UTC
// day respectively. Writes the error response itself on failure.
func parseUpdatedAtRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	var start, end *time.Time

	if startStr := c.Query("updated_at_start"); startStr != "" {
		t, err := parseRangeBound(startStr, false)
		if err != nil {
			RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid updated_at_start value.", gin.H{"updated_at_start": startStr})
			return nil, nil, false
		}
		start = &t
	}
	if endStr := c.Query("updated_at_end"); endStr != "" {
		t, err := parseRangeBound(endStr, true)
		if err != nil {
			RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid updated_at_end value.", gin.H{"updated_at_end": endStr})
			return nil, nil, false
		}
		end = &t
	}

	if start != nil && end != nil && start.After(*end) {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "updated_at_start must not be after updated_at_end.", gin.H{
			"updated_at_start": c.Query("updated_at_start"),
			"updated_at_end":   c.Query("updated_at_end"),
		})
		return nil, nil, false
	}
	return start, end, true
}

func parseRangeBound(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnlyLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.UTC), nil
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
