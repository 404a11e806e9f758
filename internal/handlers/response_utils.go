package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lj-michale/airbyte-platform/internal/models"
)

// RespondWithError sends a standardized JSON error response. Handlers return
// immediately after calling it, so every failed request produces exactly one
// error payload.
func RespondWithError(c *gin.Context, httpStatus int, appErrorCode string, message string, details interface{}) {
	errResp := models.APIError{
		Code:    appErrorCode,
		Message: message,
		Details: details,
	}
	c.JSON(httpStatus, errResp)
}

// RespondWithSuccess sends a standardized JSON success response.
// This can be used for GET (single resource), PUT, PATCH, DELETE (if returning content).
func RespondWithSuccess(c *gin.Context, httpStatus int, data interface{}) {
	if data != nil {
		c.JSON(httpStatus, data)
	} else {
		// For 204 No Content, send no body
		c.Status(httpStatus)
	}
}

// parsePagination validates the limit/offset query parameters, clamping them
// to the allowed range. The second return value is false when an error
// response has already been written.
func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(DefaultLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid limit parameter: not a number.", gin.H{"limit": limitStr})
		return 0, 0, false
	}
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}

	offsetStr := c.DefaultQuery("offset", "0")
	offset, err = strconv.Atoi(offsetStr)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid offset parameter: not a number.", gin.H{"offset": offsetStr})
		return 0, 0, false
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, true
}

// parseSort validates sort_by against the allowlist and sort_order against
// asc/desc. The third return value is false when an error response has
// already been written.
func parseSort(c *gin.Context, allowed map[string]bool, defaultSortBy, defaultOrder string) (sortBy, sortOrder string, ok bool) {
	sortBy = c.DefaultQuery("sort_by", defaultSortBy)
	if _, isValid := allowed[sortBy]; !isValid {
		allowedFields := make([]string, 0, len(allowed))
		for k := range allowed {
			allowedFields = append(allowedFields, k)
		}
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid sort_by field.", gin.H{"field": sortBy, "allowed": allowedFields})
		return "", "", false
	}

	sortOrder = strings.ToLower(c.DefaultQuery("sort_order", defaultOrder))
	if sortOrder != "asc" && sortOrder != "desc" {
		RespondWithError(c, http.StatusBadRequest, models.ErrorCodeValidation, "Invalid sort_order value. Must be 'asc' or 'desc'.", gin.H{"value": c.Query("sort_order")})
		return "", "", false
	}
	return sortBy, sortOrder, true
}
