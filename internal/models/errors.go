package models

// APIError represents a standardized error response format for the API.
// @Description APIError represents a standardized error response format, including an application-specific error code, a human-readable message, and optional details.
type APIError struct {
	Code    string      `json:"code"`              // Application-specific error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string      `json:"message"`           // Human-readable message describing the error
	Details interface{} `json:"details,omitempty"` // Optional field for additional error details (e.g., validation failures per field)
}

// Predefined application-specific error codes
const (
	// Generic Errors
	ErrorCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrorCodeNotImplemented      = "NOT_IMPLEMENTED"

	// Input Validation & Data Errors
	ErrorCodeValidation       = "VALIDATION_ERROR"   // General validation failure
	ErrorCodeInvalidIDFormat  = "INVALID_ID_FORMAT"  // e.g., UUID format error
	ErrorCodeInvalidEnumValue = "INVALID_ENUM_VALUE" // For fields like SourceType, ConfigType, Status

	// Resource Specific Errors
	ErrorCodeSourceNotFound     = "SOURCE_NOT_FOUND"
	ErrorCodeConnectionNotFound = "CONNECTION_NOT_FOUND"
	ErrorCodeJobNotFound        = "JOB_NOT_FOUND"

	// Business Logic / State Errors
	ErrorCodeConflict        = "CONFLICT_ERROR" // e.g., cancelling a terminal job
	ErrorCodeDuplicateName   = "DUPLICATE_NAME"
	ErrorCodeDiscoveryFailed = "SCHEMA_DISCOVERY_FAILED" // connector ran but reported failure
)
