package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/lj-michale/airbyte-platform/internal/database"
	"github.com/lj-michale/airbyte-platform/internal/models"
	"github.com/lj-michale/airbyte-platform/internal/scheduler"
)

// AllowedConnectionSortByFields defines the fields by which a list of connections can be sorted.
var AllowedConnectionSortByFields = map[string]bool{
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

// CreateConnection godoc
// @Summary Create a new connection
// @Description Pair a source with a destination, optionally with a cron sync schedule (seconds-field expressions).
// @Tags connections
// @Accept  json
// @Produce  json
// @Param   connection  body   models.CreateConnectionRequest   true  "Connection to create"
// @Success 201 {object} models.Connection "Successfully created connection"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Source not found"
// @Failure 409 {object} models.APIError "Conflict"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /connections [post]
func CreateConnection(c *gin.Context) {
	var req models.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidIDFormat, "Invalid ID format for source ID", gin.H{"source_id": req.SourceID})
		return
	}

	db := database.GetDB()
	var source models.Source
	if err := db.First(&source, "id = ?", sourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondWithError(c, http.StatusNotFound, models.ErrorCodeSourceNotFound, "Source not found", gin.H{"source_id": sourceID})
		} else {
			RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to check source existence", nil)
		}
		return
	}
	if source.Tombstone {
		RespondWithError(c, http.StatusNotFound, models.ErrorCodeSourceNotFound, "Source not found", gin.H{"source_id": sourceID})
		return
	}

	if req.CronExpression != "" {
		if err := scheduler.ValidateCronExpression(req.CronExpression); err != nil {
			RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid cron expression.", gin.H{"cron_expression": req.CronExpression, "reason": err.Error()})
			return
		}
	}

	connection := models.Connection{
		ID:              uuid.New(),
		SourceID:        sourceID,
		Name:            req.Name,
		DestinationName: req.DestinationName,
		CronExpression:  req.CronExpression,
	}
	if req.IsEnabled != nil {
		connection.IsEnabled = *req.IsEnabled
	}

	if err := db.Create(&connection).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code == "23505" {
				RespondWithError(c, http.StatusConflict, models.ErrorCodeDuplicateName, "Connection with this name already exists.", gin.H{"name": connection.Name})
				return
			}
		}
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to create connection.", nil)
		return
	}
	RespondWithSuccess(c, http.StatusCreated, connection)
}

// ListConnections godoc
// @Summary List connections
// @Tags connections
// @Produce  json
// @Param   source_id  query   string  false  "Filter by source ID (UUID)"
// @Param   limit      query   int     false  "Page size (max 100)"
// @Param   offset     query   int     false  "Page offset"
// @Param   sort_by    query   string  false  "Sort field: name, created_at, updated_at"
// @Param   sort_order query   string  false  "asc or desc"
// @Success 200 {object} models.PaginatedResponse "Connections with total count"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /connections [get]
func ListConnections(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}
	sortBy, sortOrder, ok := parseSort(c, AllowedConnectionSortByFields, "created_at", DefaultSortOrder)
	if !ok {
		return
	}

	db := database.GetDB()
	query := db.Model(&models.Connection{})

	if sourceIDStr := c.Query("source_id"); sourceIDStr != "" {
		sourceID, err := uuid.Parse(sourceIDStr)
		if err != nil {
			RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidIDFormat, "Invalid ID format for source ID", gin.H{"source_id": sourceIDStr})
			return
		}
		query = query.Where("source_id = ?", sourceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to count connections", nil)
		return
	}

	var connections []models.Connection
	if err := query.Order(sortBy + " " + sortOrder).Limit(limit).Offset(offset).Find(&connections).Error; err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to list connections", nil)
		return
	}

	RespondWithSuccess(c, http.StatusOK, models.PaginatedResponse{
		Data:   connections,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetConnection godoc
// @Summary Get a connection by ID
// @Tags connections
// @Produce  json
// @Param   id     path   string     true  "Connection ID (UUID)"
// @Success 200 {object} models.Connection "Successfully retrieved connection"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /connections/{id} [get]
func GetConnection(c *gin.Context) {
	connection, ok := loadConnection(c)
	if !ok {
		return
	}
	RespondWithSuccess(c, http.StatusOK, connection)
}

// UpdateConnection godoc
// @Summary Update a connection
// @Description Update the provided fields of a connection. The source pairing is immutable.
// @Tags connections
// @Accept  json
// @Produce  json
// @Param   id          path   string                           true  "Connection ID (UUID)"
// @Param   connection  body   models.UpdateConnectionRequest   true  "Fields to update"
// @Success 200 {object} models.Connection "Successfully updated connection"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 409 {object} models.APIError "Conflict"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /connections/{id} [put]
func UpdateConnection(c *gin.Context) {
	connection, ok := loadConnection(c)
	if !ok {
		return
	}

	var req models.UpdateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	if req.Name != nil {
		connection.Name = *req.Name
	}
	if req.DestinationName != nil {
		connection.DestinationName = *req.DestinationName
	}
	if req.CronExpression != nil {
		if *req.CronExpression != "" {
			if err := scheduler.ValidateCronExpression(*req.CronExpression); err != nil {
				RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid cron expression.", gin.H{"cron_expression": *req.CronExpression, "reason": err.Error()})
				return
			}
		}
		connection.CronExpression = *req.CronExpression
	}
	if req.IsEnabled != nil {
		connection.IsEnabled = *req.IsEnabled
	}

	db := database.GetDB()
	if err := db.Save(connection).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code == "23505" {
				RespondWithError(c, http.StatusConflict, models.ErrorCodeDuplicateName, "Connection with this name already exists.", gin.H{"name": connection.Name})
				return
			}
		}
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to update connection.", nil)
		return
	}
	RespondWithSuccess(c, http.StatusOK, connection)
}

// DeleteConnection godoc
// @Summary Delete a connection
// @Tags connections
// @Param   id     path   string     true  "Connection ID (UUID)"
// @Success 204 "Successfully deleted connection"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /connections/{id} [delete]
func DeleteConnection(c *gin.Context) {
	connection, ok := loadConnection(c)
	if !ok {
		return
	}

	db := database.GetDB()
	if err := db.Delete(&models.Connection{}, "id = ?", connection.ID).Error; err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to delete connection", nil)
		return
	}
	RespondWithSuccess(c, http.StatusNoContent, nil)
}

// SyncConnection godoc
// @Summary Trigger a manual sync
// @Description Enqueue a sync job for the connection. Rejected when a pending or running job already exists.
// @Tags connections
// @Produce  json
// @Param   id     path   string     true  "Connection ID (UUID)"
// @Success 202 {object} models.Job "Enqueued sync job"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 409 {object} models.APIError "Conflict (active job exists)"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /connections/{id}/sync [post]
func SyncConnection(c *gin.Context) {
	enqueueConnectionJob(c, models.JobConfigSync)
}

// ResetConnection godoc
// @Summary Trigger a reset
// @Description Enqueue a reset job for the connection. Rejected when a pending or running job already exists.
// @Tags connections
// @Produce  json
// @Param   id     path   string     true  "Connection ID (UUID)"
// @Success 202 {object} models.Job "Enqueued reset job"
// @Failure 400 {object} models.APIError "Bad Request"
// @Failure 404 {object} models.APIError "Not Found"
// @Failure 409 {object} models.APIError "Conflict (active job exists)"
// @Failure 500 {object} models.APIError "Internal Server Error"
// @Router /connections/{id}/reset [post]
func ResetConnection(c *gin.Context) {
	enqueueConnectionJob(c, models.JobConfigResetConnection)
}

func enqueueConnectionJob(c *gin.Context, configType string) {
	connection, ok := loadConnection(c)
	if !ok {
		return
	}

	active, err := Jobs.HasActiveJob(connection.ID)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to check active jobs for connection", nil)
		return
	}
	if active {
		RespondWithError(c, http.StatusConflict, models.ErrorCodeConflict, "Connection already has a pending or running job.", gin.H{"connection_id": connection.ID})
		return
	}

	job, err := Jobs.Enqueue(connection.ID, connection.SourceID, configType)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to enqueue job", nil)
		return
	}
	publishJobEvent(job, models.JobStatusPending)
	RespondWithSuccess(c, http.StatusAccepted, job)
}

// loadConnection parses the :id parameter and fetches the connection, writing
// the error response itself on failure.
func loadConnection(c *gin.Context) (*models.Connection, bool) {
	idStr := c.Param("id")
	connectionID, err := uuid.Parse(idStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidIDFormat, "Invalid ID format for connection ID", gin.H{"id": idStr})
		return nil, false
	}

	db := database.GetDB()
	var connection models.Connection
	if err := db.First(&connection, "id = ?", connectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondWithError(c, http.StatusNotFound, models.ErrorCodeConnectionNotFound, "Connection not found", gin.H{"id": connectionID})
		} else {
			RespondWithError(c, http.StatusInternalServerError, models.ErrorCodeInternalServerError, "Failed to get connection", nil)
		}
		return nil, false
	}
	return &connection, true
}
