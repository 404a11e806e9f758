package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/lj-michale/airbyte-platform/internal/database"
	"github.com/lj-michale/airbyte-platform/internal/discovery"
	"github.com/lj-michale/airbyte-platform/internal/events"
	"github.com/lj-michale/airbyte-platform/internal/metrics"
	"github.com/lj-michale/airbyte-platform/internal/models"
)

const discoverTimeout = 60 * time.Second

// AllowedSourceSortByFields defines the fields by which a list of sources can be sorted.
var AllowedSourceSortByFields = map[string]bool{
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

// CreateSource godoc
// @Summary Create a new source
// @Description Create a new source with a name, connector type and connection configuration.
// @Tags sources
// @Accept  json
// @Produce  json
// @Param   source  body   models.CreateSourceRequest   true  "Source to create"
// @Success 201 {object} models.Source "Successfully created source"
// @Failure 400 {object} models.APIError "Bad Request (see 'code' in response for specifics like VALIDATION_ERROR)"
// @Failure 409 {object} models.APIError "Conflict (e.g., duplicate name - see 'code' in response for specifics like DUPLICATE_NAME)"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /sources [post]
func CreateSource(c *gin.Context) {
	var req models.CreateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	if !json.Valid([]byte(req.Configuration)) {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Configuration must be a valid JSON document.", nil)
		return
	}

	db := database.GetDB()
	source := models.Source{
		ID:            uuid.New(),
		Name:          req.Name,
		SourceType:    req.SourceType,
		Configuration: req.Configuration,
	}

	if err := db.Create(&source).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code == "23505" { // PostgreSQL error code for unique_violation
				RespondWithError(c, http.StatusConflict, models.ErrorCodeDuplicateName, "Source with this name already exists.", gin.H{"name": source.Name})
				return
			}
		}
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to create source.", nil)
		return
	}

	RespondWithSuccess(c, http.StatusCreated, source)
}

// ListSources godoc
// @Summary List sources
// @Description Get a paginated list of sources. Tombstoned sources are excluded.
// @Tags sources
// @Produce  json
// @Param   limit      query   int     false  "Page size (max 100)"
// @Param   offset     query   int     false  "Page offset"
// @Param   sort_by    query   string  false  "Sort field: name, created_at, updated_at"
// @Param   sort_order query   string  false  "asc or desc"
// @Success 200 {object} models.PaginatedResponse "Sources with total count"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /sources [get]
func ListSources(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}
	sortBy, sortOrder, ok := parseSort(c, AllowedSourceSortByFields, "created_at", DefaultSortOrder)
	if !ok {
		return
	}

	db := database.GetDB()
	query := db.Model(&models.Source{}).Where("tombstone = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to count sources", nil)
		return
	}

	var sources []models.Source
	if err := query.Order(sortBy + " " + sortOrder).Limit(limit).Offset(offset).Find(&sources).Error; err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list sources", nil)
		return
	}

	RespondWithSuccess(c, http.StatusOK, models.PaginatedResponse{
		Data:   sources,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetSource godoc
// @Summary Get a source by ID
// @Tags sources
// @Produce  json
// @Param   id     path   string     true  "Source ID (UUID)"
// @Success 200 {object} models.Source "Successfully retrieved source"
// @Failure 400 {object} models.APIError "Bad Request (e.g., invalid ID format)"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /sources/{id} [get]
func GetSource(c *gin.Context) {
	source, ok := loadSource(c)
	if !ok {
		return
	}
	RespondWithSuccess(c, http.StatusOK, source)
}

// UpdateSource godoc
// @Summary Fully update a source
// @Description Replace the source's name and configuration. The connector type is immutable.
// @Tags sources
// @Accept  json
// @Produce  json
// @Param   id      path   string                      true  "Source ID (UUID)"
// @Param   source  body   models.UpdateSourceRequest  true  "Replacement fields"
// @Success 200 {object} models.Source "Successfully updated source"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 409 {object} models.APIError "Conflict"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /sources/{id} [put]
func UpdateSource(c *gin.Context) {
	source, ok := loadSource(c)
	if !ok {
		return
	}
	if source.Tombstone {
		RespondWithError(c, http.StatusConflict, models.ErrorCodeConflict, "Cannot update a deleted source.", gin.H{"id": source.ID})
		return
	}

	var req models.UpdateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	if !json.Valid([]byte(req.Configuration)) {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Configuration must be a valid JSON document.", nil)
		return
	}

	source.Name = req.Name
	source.Configuration = req.Configuration
	saveSource(c, source)
}

// PatchSource godoc
// @Summary Partially update a source
// @Description Copy only the provided fields onto the source; absent fields are left untouched.
// @Tags sources
// @Accept  json
// @Produce  json
// @Param   id      path   string                     true  "Source ID (UUID)"
// @Param   source  body   models.PatchSourceRequest  true  "Fields to update"
// @Success 200 {object} models.Source "Successfully updated source"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 409 {object} models.APIError "Conflict"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /sources/{id} [patch]
func PatchSource(c *gin.Context) {
	source, ok := loadSource(c)
	if !ok {
		return
	}
	if source.Tombstone {
		RespondWithError(c, http.StatusConflict, models.ErrorCodeConflict, "Cannot update a deleted source.", gin.H{"id": source.ID})
		return
	}

	var req models.PatchSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	// Update fields if provided in the request
	if req.Name != nil {
		source.Name = *req.Name
	}
	if req.Configuration != nil {
		if !json.Valid([]byte(*req.Configuration)) {
			RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Configuration must be a valid JSON document.", nil)
			return
		}
		source.Configuration = *req.Configuration
	}
	saveSource(c, source)
}

// DeleteSource godoc
// @Summary Delete a source
// @Description Delete a source. Sources still referenced by connections are tombstoned instead of removed so job history stays resolvable.
// @Tags sources
// @Param   id     path   string     true  "Source ID (UUID)"
// @Success 204 "Successfully deleted source"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /sources/{id} [delete]
func DeleteSource(c *gin.Context) {
	source, ok := loadSource(c)
	if !ok {
		return
	}

	db := database.GetDB()
	var referencing int64
	if err := db.Model(&models.Connection{}).Where("source_id = ?", source.ID).Count(&referencing).Error; err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to check connections for source", nil)
		return
	}

	if referencing > 0 {
		source.Tombstone = true
		if err := db.Save(source).Error; err != nil {
			RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to tombstone source", nil)
			return
		}
	} else {
		if err := db.Delete(&models.Source{}, "id = ?", source.ID).Error; err != nil {
			RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to delete source", nil)
			return
		}
	}
	RespondWithSuccess(c, http.StatusNoContent, nil)
}

// DiscoverSchema godoc
// @Summary Discover the schema of a source
// @Description Run the source's connector to discover its catalog of streams. The discovery is recorded as a job; a connector failure yields HTTP 400 carrying the connector's failure message.
// @Tags sources
// @Produce  json
// @Param   id     path   string     true  "Source ID (UUID)"
// @Success 200 {object} models.DiscoverSchemaResponse "Discovered catalog"
// @Failure 400 {object} models.APIError "Bad Request (see 'code' for SCHEMA_DISCOVERY_FAILED)"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /sources/{id}/discover_schema [post]
func DiscoverSchema(c *gin.Context) {
	source, ok := loadSource(c)
	if !ok {
		return
	}
	if source.Tombstone {
		RespondWithError(c, http.StatusNotFound, models.ErrorCodeSourceNotFound, "Source not found", gin.H{"id": source.ID})
		return
	}

	db := database.GetDB()
	now := time.Now().UTC()
	job := models.Job{
		ID:         uuid.New(),
		ConfigType: models.JobConfigDiscoverSchema,
		SourceID:   &source.ID,
		Status:     models.JobStatusRunning,
		StartedAt:  &now,
	}
	if err := db.Create(&job).Error; err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to record discovery job", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), discoverTimeout)
	defer cancel()

	catalog, cached, err := Discovery.DiscoverSource(ctx, source)
	if err != nil {
		external, internal := "", err.Error()
		if ce, isConnectorErr := discovery.AsError(err); isConnectorErr {
			external, internal = ce.ExternalMessage, ce.InternalMessage
		}
		finishDiscoverJob(job.ID, models.JobStatusFailed, external, internal)
		metrics.DiscoveryRequests.WithLabelValues("failed").Inc()
		publishJobEvent(&job, models.JobStatusFailed)

		message := external
		if message == "" {
			message = internal
		}
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeDiscoveryFailed, message, gin.H{"job_id": job.ID})
		return
	}

	finishDiscoverJob(job.ID, models.JobStatusSucceeded, "", "")
	if cached {
		metrics.DiscoveryRequests.WithLabelValues("cached").Inc()
	} else {
		metrics.DiscoveryRequests.WithLabelValues("succeeded").Inc()
	}
	publishJobEvent(&job, models.JobStatusSucceeded)

	RespondWithSuccess(c, http.StatusOK, models.DiscoverSchemaResponse{
		JobID:   job.ID,
		Catalog: *catalog,
		Cached:  cached,
	})
}

// InitiateOAuth godoc
// @Summary Initiate an OAuth flow for a source
// @Description OAuth flow initiation is not implemented.
// @Tags sources
// @Produce  json
// @Param   id     path   string     true  "Source ID (UUID)"
// @Failure 501 {object} models.APIError "Not Implemented"
// @Router /sources/{id}/oauth [post]
func InitiateOAuth(c *gin.Context) {
	RespondWithError(c, http.StatusNotImplemented, models.ErrorCodeNotImplemented, "OAuth flow initiation is not implemented.", nil)
}

// loadSource parses the :id parameter and fetches the source, writing the
// error response itself on failure.
func loadSource(c *gin.Context) (*models.Source, bool) {
	idStr := c.Param("id")
	sourceID, err := uuid.Parse(idStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidIDFormat, "Invalid ID format for source ID", gin.H{"id": idStr})
		return nil, false
	}

	db := database.GetDB()
	var source models.Source
	if err := db.First(&source, "id = ?", sourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondWithError(c, http.StatusNotFound, models.ErrorCodeSourceNotFound, "Source not found", gin.H{"id": sourceID})
		} else {
			RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to get source", nil)
		}
		return nil, false
	}
	return &source, true
}

func saveSource(c *gin.Context, source *models.Source) {
	db := database.GetDB()
	if err := db.Save(source).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code == "23505" {
				RespondWithError(c, http.StatusConflict, models.ErrorCodeDuplicateName, "Source with this name already exists.", gin.H{"name": source.Name})
				return
			}
		}
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to update source.", nil)
		return
	}
	RespondWithSuccess(c, http.StatusOK, source)
}

// finishDiscoverJob records the terminal state and attempt of a discovery job.
// Failures here are logged by gorm; the API response does not depend on it.
func finishDiscoverJob(jobID uuid.UUID, status, externalFailure, internalFailure string) {
	db := database.GetDB()
	now := time.Now().UTC()
	db.Model(&models.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{"status": status, "ended_at": now})
	db.Create(&models.JobAttempt{
		ID:                    uuid.New(),
		JobID:                 jobID,
		Number:                1,
		Status:                status,
		ExternalFailureReason: externalFailure,
		InternalFailureReason: internalFailure,
	})
}

func publishJobEvent(job *models.Job, status string) {
	event := events.JobEvent{
		JobID:        job.ID,
		ConfigType:   job.ConfigType,
		ConnectionID: job.ConnectionID,
		SourceID:     job.SourceID,
		Status:       status,
		Timestamp:    time.Now().UTC(),
	}
	if err := Events.PublishJobEvent(event); err != nil {
		log.Printf("Error publishing %s event for job %s: %v", status, job.ID, err)
	}
}
