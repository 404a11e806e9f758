package models

// CreateSourceRequest defines the request payload for creating a source.
type CreateSourceRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=255"`
	SourceType    string `json:"source_type" binding:"required,oneof=postgres csv http_api"`
	Configuration string `json:"configuration" binding:"required"` // JSON blob of connector settings
}

// UpdateSourceRequest defines the request payload for a full source update.
// Name and configuration are replaced wholesale; the source type is immutable.
type UpdateSourceRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=255"`
	Configuration string `json:"configuration" binding:"required"`
}

// PatchSourceRequest defines the request payload for a partial source update.
// Pointers distinguish "not provided" from zero values; only provided fields
// are copied onto the stored source.
type PatchSourceRequest struct {
	Name          *string `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Configuration *string `json:"configuration,omitempty"`
}

// CreateConnectionRequest defines the request payload for creating a connection.
type CreateConnectionRequest struct {
	SourceID        string `json:"source_id" binding:"required,uuid"`
	Name            string `json:"name" binding:"required,min=1,max=255"`
	DestinationName string `json:"destination_name" binding:"required,min=1,max=255"`
	CronExpression  string `json:"cron_expression,omitempty"`
	IsEnabled       *bool  `json:"is_enabled,omitempty"`
}

// UpdateConnectionRequest defines the request payload for updating a connection.
type UpdateConnectionRequest struct {
	Name            *string `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	DestinationName *string `json:"destination_name,omitempty" binding:"omitempty,min=1,max=255"`
	CronExpression  *string `json:"cron_expression,omitempty"`
	IsEnabled       *bool   `json:"is_enabled,omitempty"`
}
