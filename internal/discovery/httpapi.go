package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/lj-michale/airbyte-platform/internal/models"
)

// HTTPAPIConnectionParams defines the structure for HTTP API connection details.
type HTTPAPIConnectionParams struct {
	URL        string            `json:"url"`
	StreamName string            `json:"stream_name,omitempty"` // defaults to "records"
	Headers    map[string]string `json:"headers,omitempty"`
}

// HTTPAPIConnector discovers the shape of a JSON HTTP endpoint: the response
// must be a JSON object or an array of objects, and the object keys become
// the stream's fields.
type HTTPAPIConnector struct {
	httpClient *http.Client
}

// NewHTTPAPIConnector creates an HTTPAPIConnector.
func NewHTTPAPIConnector() *HTTPAPIConnector {
	return &HTTPAPIConnector{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPAPIConnector) params(configuration string) (*HTTPAPIConnectionParams, error) {
	var params HTTPAPIConnectionParams
	if err := json.Unmarshal([]byte(configuration), &params); err != nil {
		return nil, &Error{
			ExternalMessage: "Source configuration is not valid JSON for an HTTP API source.",
			InternalMessage: fmt.Sprintf("failed to parse HTTP API connection details: %v", err),
		}
	}
	if params.URL == "" {
		return nil, &Error{
			ExternalMessage: "A url is required for HTTP API sources.",
			InternalMessage: "empty url in HTTP API connection details",
		}
	}
	if params.StreamName == "" {
		params.StreamName = "records"
	}
	return &params, nil
}

func (c *HTTPAPIConnector) fetch(ctx context.Context, params *HTTPAPIConnectionParams) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, params.URL, nil)
	if err != nil {
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("Invalid URL %s.", params.URL),
			InternalMessage: fmt.Sprintf("failed to build request: %v", err),
		}
	}
	for key, value := range params.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("Could not reach %s.", params.URL),
			InternalMessage: fmt.Sprintf("request failed: %v", err),
		}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("Endpoint %s returned HTTP %d.", params.URL, resp.StatusCode),
			InternalMessage: fmt.Sprintf("non-OK status %d from %s", resp.StatusCode, params.URL),
		}
	}
	return resp, nil
}

// Check verifies the endpoint responds with HTTP 200.
func (c *HTTPAPIConnector) Check(ctx context.Context, configuration string) error {
	params, err := c.params(configuration)
	if err != nil {
		return err
	}
	resp, err := c.fetch(ctx, params)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Discover fetches the endpoint and derives one stream from the response keys.
func (c *HTTPAPIConnector) Discover(ctx context.Context, configuration string) (*models.Catalog, error) {
	params, err := c.params(configuration)
	if err != nil {
		return nil, err
	}

	resp, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("Response from %s is not valid JSON.", params.URL),
			InternalMessage: fmt.Sprintf("decode failed: %v", err),
		}
	}

	sample, err := firstObject(payload)
	if err != nil {
		return nil, &Error{
			ExternalMessage: fmt.Sprintf("Response from %s is not a JSON object or array of objects.", params.URL),
			InternalMessage: err.Error(),
		}
	}

	stream := models.Stream{Name: params.StreamName}
	names := make([]string, 0, len(sample))
	for name := range sample {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stream.Fields = append(stream.Fields, models.Field{
			Name:     name,
			DataType: mapJSONType(sample[name]),
		})
	}

	return &models.Catalog{Streams: []models.Stream{stream}}, nil
}

// firstObject extracts a representative object from a decoded JSON payload.
func firstObject(payload interface{}) (map[string]interface{}, error) {
	switch v := payload.(type) {
	case map[string]interface{}:
		return v, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty JSON array")
		}
		obj, ok := v[0].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("array elements are not JSON objects")
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported JSON payload of type %T", payload)
	}
}

// mapJSONType converts a decoded JSON value into the platform field type
// vocabulary.
func mapJSONType(value interface{}) string {
	switch v := value.(type) {
	case bool:
		return "BOOLEAN"
	case float64:
		if v == float64(int64(v)) {
			return "INTEGER"
		}
		return "FLOAT"
	case string:
		if _, err := time.Parse(time.RFC3339, v); err == nil {
			return "DATETIME"
		}
		return "STRING"
	case map[string]interface{}, []interface{}:
		return "TEXT"
	default:
		return "STRING"
	}
}
