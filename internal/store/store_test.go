// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"testing"

	"github.com/jeranaias/corpdoc-tui/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakePersister records saves and serves canned loads.
type fakePersister struct {
	loadResult []*model.Conversation
	loadErr    error
	saveErr    error
	saves      int
	lastSaved  []*model.Conversation
}

func (f *fakePersister) Load() ([]*model.Conversation, error) {
	return f.loadResult, f.loadErr
}

func (f *fakePersister) Save(convs []*model.Conversation) error {
	f.saves++
	f.lastSaved = convs
	return f.saveErr
}

// =============================================================================
// STARTUP
// =============================================================================

func TestNew_EmptyHistorySeedsOneConversation(t *testing.T) {
	p := &fakePersister{}
	s := New(p)

	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}
	if s.Current() == nil {
		t.Fatal("no current conversation after startup")
	}
	if s.Current().MessageCount() != 1 {
		t.Error("seeded conversation should carry the greeting")
	}
	if p.saves == 0 {
		t.Error("seeded conversation should be persisted")
	}
}

func TestNew_CorruptHistoryDiscarded(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("unexpected end of JSON input")}
	s := New(p)

	if s.Count() != 1 {
		t.Fatalf("Count = %d, want a single fresh conversation", s.Count())
	}
	if s.Current() == nil {
		t.Fatal("corrupt history must not leave the store without a selection")
	}
}

func TestNew_ExistingHistorySelectsNewest(t *testing.T) {
	older := model.NewConversation()
	newer := model.NewConversation()
	p := &fakePersister{loadResult: []*model.Conversation{newer, older}}

	s := New(p)

	if s.Count() != 2 {
		t.Fatalf("Count = %d, want 2", s.Count())
	}
	if s.Current().ID != newer.ID {
		t.Error("startup should select the newest (first) conversation")
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestCreateConversation_FrontOfListAndSelected(t *testing.T) {
	s := New(&fakePersister{})
	first := s.Current()

	created := s.CreateConversation()

	convs := s.Conversations()
	if convs[0].ID != created.ID {
		t.Error("new conversation should be first in the list")
	}
	if s.Current().ID != created.ID {
		t.Error("new conversation should be selected")
	}
	if convs[1].ID != first.ID {
		t.Error("existing conversation should remain")
	}
}

func TestSelectConversation_UnknownIDIsNoOp(t *testing.T) {
	s := New(&fakePersister{})
	current := s.Current()

	s.SelectConversation("chat_nope")

	if s.Current().ID != current.ID {
		t.Error("selecting an unknown ID changed the selection")
	}
}

func TestDeleteConversation_LastOneRecreates(t *testing.T) {
	p := &fakePersister{}
	s := New(p)
	old := s.Current()

	s.DeleteConversation(old.ID)

	if s.Count() != 1 {
		t.Fatalf("Count = %d, store must never be empty", s.Count())
	}
	if s.Current().ID == old.ID {
		t.Error("deleted conversation still selected")
	}
}

func TestDeleteConversation_CurrentReselectsFirst(t *testing.T) {
	s := New(&fakePersister{})
	first := s.Current()
	second := s.CreateConversation()

	s.DeleteConversation(second.ID)

	if s.Current().ID != first.ID {
		t.Error("selection should move to the first remaining conversation")
	}
}

func TestDeleteConversation_OtherKeepsSelection(t *testing.T) {
	s := New(&fakePersister{})
	first := s.Current()
	second := s.CreateConversation()

	s.DeleteConversation(first.ID)

	if s.Current().ID != second.ID {
		t.Error("deleting a non-current conversation moved the selection")
	}
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

func TestAppendMessage_PersistsEveryMutation(t *testing.T) {
	p := &fakePersister{}
	s := New(p)
	conv := s.Current()
	before := p.saves

	s.AppendMessage(conv.ID, model.NewUserMessage("question"), true)

	if p.saves != before+1 {
		t.Errorf("saves = %d, want %d", p.saves, before+1)
	}
	if conv.MessageCount() != 2 {
		t.Errorf("MessageCount = %d, want 2", conv.MessageCount())
	}
}

func TestAppendMessage_PersistFailureIsNotFatal(t *testing.T) {
	p := &fakePersister{saveErr: errors.New("disk full")}
	s := New(p)
	conv := s.Current()

	s.AppendMessage(conv.ID, model.NewUserMessage("question"), true)

	// In-memory state stays authoritative even when the write failed.
	if conv.MessageCount() != 2 {
		t.Error("message lost because persistence failed")
	}
}

func TestUpdateMessage_UnknownConversationIsNoOp(t *testing.T) {
	p := &fakePersister{}
	s := New(p)
	before := p.saves

	s.UpdateMessage("chat_gone", "msg_gone", func(m model.Message) model.Message {
		m.Content = "mutated"
		return m
	})

	if p.saves != before {
		t.Error("no-op update should not persist")
	}
}

func TestUpdateMessage_StreamUpdateAfterDelete(t *testing.T) {
	s := New(&fakePersister{})
	conv := s.Current()

	placeholder := model.NewAssistantPlaceholder()
	s.AppendMessage(conv.ID, placeholder, false)
	s.DeleteConversation(conv.ID)

	// A late stream event for the deleted conversation must be dropped.
	s.UpdateMessage(conv.ID, placeholder.ID, func(m model.Message) model.Message {
		t.Error("update applied to a deleted conversation")
		return m
	})
}
