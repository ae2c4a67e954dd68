// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIGURATION TESTS
// =============================================================================

func TestNewClientWithConfig_FillsDefaults(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{})

	assert.Equal(t, "http://localhost:8000", client.BaseURL())
}

func TestNewClientWithConfig_TrimsTrailingSlash(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://backend:9000/"})

	assert.Equal(t, "http://backend:9000", client.BaseURL())
}

func TestNewClientWithConfig_NilConfig(t *testing.T) {
	client := NewClientWithConfig(nil)

	assert.Equal(t, "http://localhost:8000", client.BaseURL())
}

// =============================================================================
// QUERY TESTS
// =============================================================================

func TestQuery_SendsQuestionAndDecodesAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rag/query", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is the PTO policy?", req.Question)

		json.NewEncoder(w).Encode(QueryResponse{
			Answer:        "21 days per year.",
			Sources:       []string{"hr-handbook.pdf"},
			SourcesUsed:   1,
			ContextLength: 1024,
		})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	result, err := client.Query(context.Background(), "what is the PTO policy?")
	require.NoError(t, err)
	assert.Equal(t, "21 days per year.", result.Answer)
	assert.Equal(t, []string{"hr-handbook.pdf"}, result.Sources)
	assert.Equal(t, 1, result.SourcesUsed)
}

func TestQuery_UnreachableBackend(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := client.Query(context.Background(), "q")
	assert.True(t, IsUnreachable(err), "err = %v", err)
}

func TestQuery_BackendErrorIncludesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"detail": "knowledge base not initialized"})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	_, err := client.Query(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge base not initialized")
}

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestListDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rag/documents", r.URL.Path)
		json.NewEncoder(w).Encode([]DocumentInfo{
			{ID: "doc-1", Filename: "policy.pdf", UploadDate: "2025-08-01", Size: 2048},
		})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	docs, err := client.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.EqualValues(t, 2048, docs[0].Size)
}

func TestUploadDocument_MultipartForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rag/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "notes.txt", header.Filename)

		json.NewEncoder(w).Encode(UploadResponse{Success: true, Filename: "notes.txt"})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	result, err := client.UploadDocument(context.Background(), "notes.txt", strings.NewReader("file body"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "notes.txt", result.Filename)
}

func TestDeleteDocument_EscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	err := client.DeleteDocument(context.Background(), "doc with spaces")
	require.NoError(t, err)
	assert.Equal(t, "/api/rag/documents/doc%20with%20spaces", gotPath)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "document not found"})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	err := client.DeleteDocument(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"components": map[string]any{
				"knowledge_base_documents": 7,
			},
		})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Healthy())
	assert.Equal(t, 7, health.Components.KnowledgeBaseDocuments)
}

func TestHealth_DegradedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "degraded"})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, health.Healthy())
}
