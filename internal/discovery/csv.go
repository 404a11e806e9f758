package discovery

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lj-michale/airbyte-platform/internal/models"
)

// Number of data rows sampled when inferring column types.
const csvSampleRows = 50

// CSVConnectionParams defines the structure for CSV connection details.
type CSVConnectionParams struct {
	Filepath string `json:"filepath"`
}

// CSVConnector discovers the schema of a CSV file: one stream named after the
// file, fields taken from the header row with types inferred from a sample of
// data rows.
type CSVConnector struct{}

// NewCSVConnector creates a CSVConnector.
func NewCSVConnector() *CSVConnector {
	return &CSVConnector{}
}

func (c *CSVConnector) params(configuration string) (*CSVConnectionParams, error) {
	var params CSVConnectionParams
	if err := json.Unmarshal([]byte(configuration), &params); err != nil {
		return nil, &Error{
			ExternalMessage: "Source configuration is not valid JSON for a CSV source.",
			InternalMessage: fmt.Sprintf("failed to parse CSV connection details: %v", err),
		}
	}
	if params.Filepath == "" {
		return nil, &Error{
			ExternalMessage: "A filepath is required for CSV sources.",
			InternalMessage: "empty filepath in CSV connection details",
		}
	}
	return &params, nil
}

// Check verifies the file exists and is readable.
func (c *CSVConnector) Check(ctx context.Context, configuration string) error {
	params, err := c.params(configuration)
	if err != nil {
		return err
	}
	file, err := os.Open(params.Filepath)
	if err != nil {
		return &Error{
			ExternalMessage: fmt.Sprintf("Could not open CSV file %s.", params.Filepath),
			InternalMessage: fmt.Sprintf("open failed: %v", err),
		}
	}
	file.Close()
	return nil
}

// Discover reads the header row and a sample of data rows to build the catalog.
func (c *CSVConnector) Discover(ctx context.Context, configuration string) (*models.Catalog, error) {
	params, err := c.params(configuration)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(params.Filepath)
	if err != nil {
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("Could not open CSV file %s.", params.Filepath),
			InternalMessage: fmt.Sprintf("open failed: %v", err),
		}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &Error{
				ExternalMessage: fmt.Sprintf("CSV file %s is empty.", params.Filepath),
				InternalMessage: "no header row",
			}
		}
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("Failed to read the header row of %s.", params.Filepath),
			InternalMessage: fmt.Sprintf("header read failed: %v", err),
		}
	}

	// Track a candidate type per column; any row that contradicts the
	// candidate demotes the column toward STRING.
	candidates := make([]string, len(headers))
	seeded := false
	for i := 0; i < csvSampleRows; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &Error{
				ExternalMessage: fmt.Sprintf("Failed to read data rows of %s.", params.Filepath),
				InternalMessage: fmt.Sprintf("row read failed: %v", err),
			}
		}
		for col := range headers {
			if col >= len(row) {
				continue
			}
			inferred := inferCSVType(row[col])
			if !seeded {
				candidates[col] = inferred
			} else {
				candidates[col] = mergeCSVTypes(candidates[col], inferred)
			}
		}
		seeded = true
	}

	stream := models.Stream{
		Name: strings.TrimSuffix(filepath.Base(params.Filepath), filepath.Ext(params.Filepath)),
	}
	for i, header := range headers {
		dataType := "STRING"
		if seeded && candidates[i] != "" {
			dataType = candidates[i]
		}
		stream.Fields = append(stream.Fields, models.Field{Name: header, DataType: dataType})
	}

	return &models.Catalog{Streams: []models.Stream{stream}}, nil
}

// inferCSVType guesses a field type for one cell value.
func inferCSVType(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "STRING"
	}
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return "INTEGER"
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return "FLOAT"
	}
	switch strings.ToLower(v) {
	case "true", "false":
		return "BOOLEAN"
	}
	if _, err := time.Parse(time.RFC3339, v); err == nil {
		return "DATETIME"
	}
	if _, err := time.Parse("2006-01-02", v); err == nil {
		return "DATETIME"
	}
	return "STRING"
}

// mergeCSVTypes reconciles the candidate type with a newly inferred one.
func mergeCSVTypes(current, next string) string {
	if current == next {
		return current
	}
	// Integers widen to floats; everything else falls back to STRING.
	if (current == "INTEGER" && next == "FLOAT") || (current == "FLOAT" && next == "INTEGER") {
		return "FLOAT"
	}
	return "STRING"
}
