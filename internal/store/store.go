// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"log"
	"sync"

	"github.com/jeranaias/corpdoc-tui/internal/model"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store owns the conversation list and the current selection.
//
// Invariants it maintains:
//   - there is always at least one conversation
//   - the current selection always points at an existing conversation
//   - newest conversations come first
//
// Every mutation is persisted immediately. Persistence failures are logged
// and otherwise ignored; the in-memory state stays authoritative for the
// session.
type Store struct {
	mu            sync.RWMutex
	persister     Persister
	conversations []*model.Conversation
	currentID     string
}

// New creates a store backed by the given persister and loads existing
// history. Corrupt or unreadable history is discarded with a log line and a
// fresh conversation takes its place — losing history must never prevent
// startup.
func New(p Persister) *Store {
	s := &Store{persister: p}

	conversations, err := p.Load()
	if err != nil {
		log.Printf("store: discarding unreadable history: %v", err)
		conversations = nil
	}
	s.conversations = conversations

	if len(s.conversations) == 0 {
		conv := model.NewConversation()
		s.conversations = []*model.Conversation{conv}
		s.currentID = conv.ID
		s.persist()
		return s
	}

	s.currentID = s.conversations[0].ID
	return s
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// CreateConversation adds a fresh conversation at the front of the list and
// selects it.
func (s *Store) CreateConversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := model.NewConversation()
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.currentID = conv.ID
	s.persist()
	return conv
}

// SelectConversation switches the current selection. Selecting an unknown ID
// is a silent no-op.
func (s *Store) SelectConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) != nil {
		s.currentID = id
	}
}

// DeleteConversation removes a conversation by ID. Deleting the current
// conversation moves the selection to the first remaining one; deleting the
// last conversation creates and selects a fresh one, so the store is never
// empty.
func (s *Store) DeleteConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	if len(s.conversations) == 0 {
		conv := model.NewConversation()
		s.conversations = []*model.Conversation{conv}
		s.currentID = conv.ID
	} else if s.currentID == id {
		s.currentID = s.conversations[0].ID
	}

	s.persist()
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AppendMessage appends a message to a conversation. userAuthored controls
// the one-time title derivation on the first user message.
func (s *Store) AppendMessage(convID string, msg model.Message, userAuthored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(convID)
	if conv == nil {
		return
	}

	conv.Append(msg, userAuthored)
	s.persist()
}

// UpdateMessage applies fn to one message of one conversation. Unknown
// conversation or message IDs make this a no-op, which is what stream
// updates arriving after their conversation was deleted rely on.
func (s *Store) UpdateMessage(convID, msgID string, fn func(model.Message) model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(convID)
	if conv == nil {
		return
	}

	if conv.UpdateMessage(msgID, fn) {
		s.persist()
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Current returns the currently selected conversation.
func (s *Store) Current() *model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(s.currentID)
}

// Get returns the conversation with the given ID, or nil.
func (s *Store) Get(id string) *model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id)
}

// Conversations returns the conversation list, newest first. The returned
// slice is a copy; the conversations themselves are shared.
func (s *Store) Conversations() []*model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Count returns the number of conversations.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// =============================================================================
// INTERNAL
// =============================================================================

// find returns the conversation with the given ID. Caller holds the lock.
func (s *Store) find(id string) *model.Conversation {
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// persist writes a snapshot through the persister. Caller holds the lock.
func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.conversations); err != nil {
		log.Printf("store: failed to persist history: %v", err)
	}
}
