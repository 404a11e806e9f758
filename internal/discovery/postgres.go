package discovery

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/lj-michale/airbyte-platform/internal/models"
)

// PostgresConnectionParams defines the structure for PostgreSQL connection details.
type PostgresConnectionParams struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Schema   string `json:"schema,omitempty"`  // defaults to public
	SSLMode  string `json:"sslmode,omitempty"` // e.g., "disable", "require", "verify-full"
}

// PostgresConnector discovers tables and columns from a PostgreSQL database.
type PostgresConnector struct{}

// NewPostgresConnector creates a PostgresConnector.
func NewPostgresConnector() *PostgresConnector {
	return &PostgresConnector{}
}

func (c *PostgresConnector) open(configuration string) (*sql.DB, *PostgresConnectionParams, error) {
	var params PostgresConnectionParams
	if err := json.Unmarshal([]byte(configuration), &params); err != nil {
		return nil, nil, &Error{
			ExternalMessage: "Source configuration is not valid JSON for a PostgreSQL source.",
			InternalMessage: fmt.Sprintf("failed to parse PostgreSQL connection details: %v", err),
		}
	}

	if params.Host == "" || params.Port == 0 || params.User == "" || params.DBName == "" {
		return nil, nil, &Error{
			ExternalMessage: "Missing required PostgreSQL connection parameters (host, port, user, dbname).",
			InternalMessage: "incomplete PostgreSQL connection parameters",
		}
	}
	if params.SSLMode == "" {
		params.SSLMode = "disable"
	}
	if params.Schema == "" {
		params.Schema = "public"
	}

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, nil, &Error{
			ExternalMessage: fmt.Sprintf("Could not connect to PostgreSQL at %s:%d.", params.Host, params.Port),
			InternalMessage: fmt.Sprintf("sql.Open failed: %v", err),
		}
	}
	return db, &params, nil
}

// Check verifies the database is reachable.
func (c *PostgresConnector) Check(ctx context.Context, configuration string) error {
	db, params, err := c.open(configuration)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return &Error{
			ExternalMessage: fmt.Sprintf("Could not reach PostgreSQL database %q at %s:%d.", params.DBName, params.Host, params.Port),
			InternalMessage: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return nil
}

// Discover lists tables and columns from information_schema and maps them to
// a catalog of streams.
func (c *PostgresConnector) Discover(ctx context.Context, configuration string) (*models.Catalog, error) {
	db, params, err := c.open(configuration)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("Could not reach PostgreSQL database %q at %s:%d.", params.DBName, params.Host, params.Port),
			InternalMessage: fmt.Sprintf("ping failed: %v", err),
		}
	}

	const query = `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1
		ORDER BY table_name, ordinal_position`

	rows, err := db.QueryContext(ctx, query, params.Schema)
	if err != nil {
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("Failed to list columns in schema %q.", params.Schema),
			InternalMessage: fmt.Sprintf("information_schema query failed: %v", err),
		}
	}
	defer rows.Close()

	catalog := &models.Catalog{}
	var current *models.Stream
	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return nil, &Error{
				InternalMessage: fmt.Sprintf("failed to scan column row: %v", err),
			}
		}
		if current == nil || current.Name != tableName {
			catalog.Streams = append(catalog.Streams, models.Stream{
				Name:      tableName,
				Namespace: params.Schema,
			})
			current = &catalog.Streams[len(catalog.Streams)-1]
		}
		current.Fields = append(current.Fields, models.Field{
			Name:     columnName,
			DataType: mapPostgresType(dataType),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{
			InternalMessage: fmt.Sprintf("error iterating column rows: %v", err),
		}
	}

	if len(catalog.Streams) == 0 {
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("No tables found in schema %q of database %q.", params.Schema, params.DBName),
			InternalMessage: "empty information_schema result",
		}
	}
	return catalog, nil
}

// mapPostgresType converts an information_schema data type into the platform
// field type vocabulary.
func mapPostgresType(pgType string) string {
	switch strings.ToLower(pgType) {
	case "smallint", "integer", "bigint", "smallserial", "serial", "bigserial":
		return "INTEGER"
	case "real", "double precision", "numeric", "decimal", "money":
		return "FLOAT"
	case "boolean":
		return "BOOLEAN"
	case "date", "time", "timestamp", "timestamp without time zone", "timestamp with time zone":
		return "DATETIME"
	case "text", "json", "jsonb", "xml", "bytea":
		return "TEXT"
	default:
		return "STRING"
	}
}
