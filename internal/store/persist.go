// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store manages the conversation list and its persistence.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/corpdoc-tui/internal/model"
	"github.com/jeranaias/corpdoc-tui/internal/util"
)

// Persister loads and saves the full conversation list as a snapshot.
//
// The store writes the whole list on every mutation; implementations do not
// need incremental updates.
type Persister interface {
	Load() ([]*model.Conversation, error)
	Save(conversations []*model.Conversation) error
}

// =============================================================================
// FILE PERSISTER
// =============================================================================

// FilePersister stores conversation history as a JSON file on disk.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister writing to the given path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// DefaultHistoryPath returns the standard history location under the user's
// home directory (~/.corpdoc/history.json).
func DefaultHistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".corpdoc", "history.json"), nil
}

// Load reads the conversation list from disk. A missing file is not an
// error; it returns an empty list so the first run starts clean.
func (p *FilePersister) Load() ([]*model.Conversation, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var conversations []*model.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	return conversations, nil
}

// Save writes the conversation list to disk atomically.
func (p *FilePersister) Save(conversations []*model.Conversation) error {
	data, err := json.MarshalIndent(conversations, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := util.AtomicWriteFile(p.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return nil
}
