// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Structured JSON output for scripting and automation.
package cli

import (
	"encoding/json"
	"fmt"
	"time"
)

// JSONResponse is the envelope for all --json command output.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Command   string      `json:"command"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// NewJSONResponse creates a successful response for a command.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Command:   command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}
}

// NewJSONErrorResponse creates a failed response for a command.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	return &JSONResponse{
		Success:   false,
		Command:   command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Error:     err.Error(),
	}
}

// Print writes the response to stdout as indented JSON.
func (r *JSONResponse) Print() error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON response: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// AskData is the payload for "ask" in JSON mode.
type AskData struct {
	Answer        string   `json:"answer"`
	Sources       []string `json:"sources"`
	SourcesUsed   int      `json:"sources_used"`
	ContextLength int      `json:"context_length"`
	DurationMs    int64    `json:"duration_ms"`
}

// DocsData is the payload for "docs list" in JSON mode.
type DocsData struct {
	Documents []DocEntry `json:"documents"`
	Count     int        `json:"count"`
}

// DocEntry is one document row in JSON mode.
type DocEntry struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"upload_date"`
	Size       int64  `json:"size"`
}

// StatusData is the payload for "status" in JSON mode.
type StatusData struct {
	Backend   string `json:"backend"`
	Reachable bool   `json:"reachable"`
	Status    string `json:"status,omitempty"`
	Documents int    `json:"documents"`
}
