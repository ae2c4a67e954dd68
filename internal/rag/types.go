// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rag provides the HTTP/SSE client for the corporate RAG backend.
package rag

// =============================================================================
// QUERY TYPES
// =============================================================================

// QueryRequest is the body for both the synchronous and streaming query endpoints.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the synchronous answer from POST /api/rag/query.
type QueryResponse struct {
	Answer        string   `json:"answer"`
	Sources       []string `json:"sources"`
	SourcesUsed   int      `json:"sources_used"`
	ContextLength int      `json:"context_length"`
}

// =============================================================================
// STREAM EVENT TYPES
// =============================================================================

// EventType discriminates the streaming event union.
type EventType string

const (
	// EventSources carries the citation list for the in-flight answer.
	EventSources EventType = "sources"
	// EventContent carries a text fragment; Done marks the final fragment.
	EventContent EventType = "content"
	// EventError carries an error description and terminates the answer.
	EventError EventType = "error"
)

// StreamEvent is a single decoded frame from the streaming query endpoint.
//
// The union is closed: sources events populate Sources, content events
// populate Content and Done, error events carry their description in Content
// (that is how the backend frames them on the wire).
type StreamEvent struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
	Done    bool      `json:"done,omitempty"`
	Sources []string  `json:"sources,omitempty"`
}

// Terminal reports whether no further events are expected after this one.
func (e StreamEvent) Terminal() bool {
	switch e.Type {
	case EventError:
		return true
	case EventContent:
		return e.Done
	default:
		return false
	}
}

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// DocumentInfo describes one document in the knowledge base.
type DocumentInfo struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"uploadDate"`
	Size       int64  `json:"size"`
}

// UploadResponse is the result of POST /api/rag/upload.
type UploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// =============================================================================
// HEALTH TYPES
// =============================================================================

// HealthResponse is the result of GET /health.
type HealthResponse struct {
	Status     string           `json:"status"`
	Components HealthComponents `json:"components"`
}

// HealthComponents holds per-component health details.
type HealthComponents struct {
	KnowledgeBaseDocuments int `json:"knowledge_base_documents"`
}

// Healthy reports whether the backend considers itself operational.
func (h *HealthResponse) Healthy() bool {
	return h.Status == "ok" || h.Status == "healthy"
}
