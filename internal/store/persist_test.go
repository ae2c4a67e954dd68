// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/corpdoc-tui/internal/model"
)

// =============================================================================
// FILE PERSISTER TESTS
// =============================================================================

func TestFilePersister_MissingFileIsEmptyHistory(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "history.json"))

	convs, err := p.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, missing file should not be an error", err)
	}
	if convs != nil {
		t.Errorf("Load() = %v, want nil for missing file", convs)
	}
}

func TestFilePersister_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	p := NewFilePersister(path)

	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("what is the dress code?"), true)
	conv.Append(model.NewAssistantMessage("Business casual."), false)

	if err := p.Save([]*model.Conversation{conv}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("Load() returned %d conversations, want 1", len(loaded))
	}

	got := loaded[0]
	if got.ID != conv.ID {
		t.Errorf("ID = %q, want %q", got.ID, conv.ID)
	}
	if got.Title != conv.Title {
		t.Errorf("Title = %q, want %q", got.Title, conv.Title)
	}
	if got.MessageCount() != 3 {
		t.Errorf("MessageCount = %d, want 3", got.MessageCount())
	}
	if got.Messages[1].Role != model.RoleUser {
		t.Errorf("Role = %q, want user", got.Messages[1].Role)
	}
}

func TestFilePersister_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	p := NewFilePersister(path)
	if _, err := p.Load(); err == nil {
		t.Error("Load() should fail on corrupt history")
	}
}

func TestFilePersister_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	p := NewFilePersister(path)

	if err := p.Save([]*model.Conversation{model.NewConversation()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("history file mode = %o, want 0600", perm)
	}
}
