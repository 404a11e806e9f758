package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAPIConnector_Discover_ObjectArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id": 1, "name": "alice", "score": 9.5, "active": true, "created_at": "2025-01-15T10:00:00Z", "tags": ["a","b"]}]`)
	}))
	defer server.Close()

	config := fmt.Sprintf(`{"url":%q,"stream_name":"users"}`, server.URL)
	catalog, err := NewHTTPAPIConnector().Discover(context.Background(), config)
	require.NoError(t, err)
	require.Len(t, catalog.Streams, 1)

	stream := catalog.Streams[0]
	assert.Equal(t, "users", stream.Name)

	byName := map[string]string{}
	for _, field := range stream.Fields {
		byName[field.Name] = field.DataType
	}
	assert.Equal(t, "INTEGER", byName["id"])
	assert.Equal(t, "STRING", byName["name"])
	assert.Equal(t, "FLOAT", byName["score"])
	assert.Equal(t, "BOOLEAN", byName["active"])
	assert.Equal(t, "DATETIME", byName["created_at"])
	assert.Equal(t, "TEXT", byName["tags"])
}

func TestHTTPAPIConnector_Discover_SingleObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ok", "count": 3}`)
	}))
	defer server.Close()

	catalog, err := NewHTTPAPIConnector().Discover(context.Background(), fmt.Sprintf(`{"url":%q}`, server.URL))
	require.NoError(t, err)
	require.Len(t, catalog.Streams, 1)
	// default stream name
	assert.Equal(t, "records", catalog.Streams[0].Name)
	assert.Len(t, catalog.Streams[0].Fields, 2)
}

func TestHTTPAPIConnector_Discover_SendsHeaders(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer server.Close()

	config := fmt.Sprintf(`{"url":%q,"headers":{"Authorization":"Bearer token123"}}`, server.URL)
	_, err := NewHTTPAPIConnector().Discover(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token123", gotAuth)
}

func TestHTTPAPIConnector_Discover_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewHTTPAPIConnector().Discover(context.Background(), fmt.Sprintf(`{"url":%q}`, server.URL))
	require.Error(t, err)

	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Contains(t, ce.ExternalMessage, "HTTP 403")
}

func TestHTTPAPIConnector_Discover_NotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html></html>")
	}))
	defer server.Close()

	_, err := NewHTTPAPIConnector().Discover(context.Background(), fmt.Sprintf(`{"url":%q}`, server.URL))
	require.Error(t, err)

	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Contains(t, ce.ExternalMessage, "not valid JSON")
}

func TestHTTPAPIConnector_Discover_ScalarPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `"just a string"`)
	}))
	defer server.Close()

	_, err := NewHTTPAPIConnector().Discover(context.Background(), fmt.Sprintf(`{"url":%q}`, server.URL))
	require.Error(t, err)

	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Contains(t, ce.ExternalMessage, "not a JSON object or array of objects")
}

func TestHTTPAPIConnector_Check(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	connector := NewHTTPAPIConnector()
	assert.NoError(t, connector.Check(context.Background(), fmt.Sprintf(`{"url":%q}`, server.URL)))
	assert.Error(t, connector.Check(context.Background(), `{"url":""}`))
}

func TestMapJSONType(t *testing.T) {
	assert.Equal(t, "BOOLEAN", mapJSONType(true))
	assert.Equal(t, "INTEGER", mapJSONType(float64(7)))
	assert.Equal(t, "FLOAT", mapJSONType(7.5))
	assert.Equal(t, "DATETIME", mapJSONType("2025-01-15T10:00:00Z"))
	assert.Equal(t, "STRING", mapJSONType("plain"))
	assert.Equal(t, "TEXT", mapJSONType(map[string]interface{}{"nested": 1}))
	assert.Equal(t, "TEXT", mapJSONType([]interface{}{1, 2}))
	assert.Equal(t, "STRING", mapJSONType(nil))
}
