package models

import (
	"time"

	"github.com/google/uuid"
)

// ValidSourceTypes defines the connector types a source can be configured with.
var ValidSourceTypes = map[string]bool{
	"postgres": true,
	"csv":      true,
	"http_api": true,
}

// Job config types.
const (
	JobConfigSync            = "sync"
	JobConfigResetConnection = "reset_connection"
	JobConfigDiscoverSchema  = "discover_schema"
)

// ValidJobConfigTypes defines the kinds of work a job record can describe.
var ValidJobConfigTypes = map[string]bool{
	JobConfigSync:            true,
	JobConfigResetConnection: true,
	JobConfigDiscoverSchema:  true,
}

// Job statuses.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"
)

// ValidJobStatuses defines the lifecycle states of a job.
var ValidJobStatuses = map[string]bool{
	JobStatusPending:   true,
	JobStatusRunning:   true,
	JobStatusSucceeded: true,
	JobStatusFailed:    true,
	JobStatusCancelled: true,
}

// TerminalJobStatuses are the states a job can never leave.
var TerminalJobStatuses = map[string]bool{
	JobStatusSucceeded: true,
	JobStatusFailed:    true,
	JobStatusCancelled: true,
}

// Source represents a configured connector instance that extracts data.
// @Description Source represents a configured connector instance that extracts data.
type Source struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name          string    `json:"name" gorm:"type:varchar(255);not null;unique"`
	SourceType    string    `json:"source_type" gorm:"type:varchar(50);not null"`
	Configuration string    `json:"configuration" gorm:"type:text;not null"` // JSON blob of connector settings
	Tombstone     bool      `json:"tombstone" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Connection pairs a source with a destination and carries a sync schedule.
// @Description Connection pairs a source with a destination and carries a sync schedule.
type Connection struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	SourceID        uuid.UUID `json:"source_id" gorm:"type:uuid;not null;index"`
	Name            string    `json:"name" gorm:"type:varchar(255);not null;unique"`
	DestinationName string    `json:"destination_name" gorm:"type:varchar(255);not null"`
	CronExpression  string    `json:"cron_expression,omitempty" gorm:"type:varchar(255)"` // empty means manual-only
	IsEnabled       bool      `json:"is_enabled" gorm:"default:false"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Job is one execution record of a sync, reset or schema-discovery operation.
// @Description Job is one execution record of a sync, reset or schema-discovery operation.
type Job struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key"`
	ConfigType   string       `json:"config_type" gorm:"type:varchar(50);not null;index"`
	ConnectionID *uuid.UUID   `json:"connection_id,omitempty" gorm:"type:uuid;index"` // nil for discover jobs
	SourceID     *uuid.UUID   `json:"source_id,omitempty" gorm:"type:uuid;index"`
	Status       string       `json:"status" gorm:"type:varchar(50);not null;index"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	EndedAt      *time.Time   `json:"ended_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime;index"`
	Attempts     []JobAttempt `json:"attempts,omitempty" gorm:"foreignKey:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// JobAttempt records a single execution attempt of a job, including the
// connector-reported failure messages used for error translation.
type JobAttempt struct {
	ID                    uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	JobID                 uuid.UUID `json:"job_id" gorm:"type:uuid;not null;index"`
	Number                int       `json:"number" gorm:"not null"`
	Status                string    `json:"status" gorm:"type:varchar(50);not null"`
	ExternalFailureReason string    `json:"external_failure_reason,omitempty" gorm:"type:text"`
	InternalFailureReason string    `json:"internal_failure_reason,omitempty" gorm:"type:text"`
	CreatedAt             time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Field is a single column or attribute of a discovered stream.
type Field struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"` // STRING, TEXT, INTEGER, FLOAT, BOOLEAN, DATETIME
}

// Stream is one discoverable table, file or endpoint of a source.
type Stream struct {
	Name      string  `json:"name"`
	Namespace string  `json:"namespace,omitempty"`
	Fields    []Field `json:"fields"`
}

// Catalog is the full schema a connector discovered for a source.
type Catalog struct {
	Streams []Stream `json:"streams"`
}

// PaginatedResponse wraps list results with the total record count.
// @Description PaginatedResponse wraps list results with the total record count.
type PaginatedResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// DiscoverSchemaResponse carries the discovered catalog and the job that
// produced it.
type DiscoverSchemaResponse struct {
	JobID   uuid.UUID `json:"job_id"`
	Catalog Catalog   `json:"catalog"`
	Cached  bool      `json:"cached"`
}
