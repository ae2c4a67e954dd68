// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/corpdoc-tui/internal/util"
)

// DefaultTitle is the placeholder a conversation carries until the first
// user message names it.
const DefaultTitle = "New chat"

// Display texts for a freshly created conversation.
const (
	greetingText = "Hello! I'm your corporate knowledge-base assistant. " +
		"Ask me about company documents, policies, or procedures."
	defaultPreview = "Ask your first question..."

	// assistantPreviewPrefix marks assistant-authored previews in the sidebar.
	assistantPreviewPrefix = "Assistant: "

	titleMaxRunes   = 30
	previewMaxRunes = 50
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a chat conversation with its derived summary fields.
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PreviewText string    `json:"lastMessage"`
	UpdatedAt   time.Time `json:"timestamp"`

	// Messages is append-only, except for in-place updates to the most
	// recently created assistant message while it streams.
	Messages []Message `json:"messages"`
}

// NewConversation creates a conversation seeded with the assistant greeting.
func NewConversation() *Conversation {
	return &Conversation{
		ID:          "chat_" + uuid.NewString(),
		Title:       DefaultTitle,
		PreviewText: defaultPreview,
		UpdatedAt:   time.Now(),
		Messages:    []Message{NewAssistantMessage(greetingText)},
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the conversation and refreshes the derived
// fields. The title is rewritten exactly once: on the first user-authored
// message while the title still equals the placeholder.
func (c *Conversation) Append(msg Message, userAuthored bool) {
	c.Messages = append(c.Messages, msg)

	if userAuthored && c.Title == DefaultTitle {
		c.Title = util.Truncate(util.Flatten(msg.Content), titleMaxRunes)
	}

	c.PreviewText = derivePreview(msg)
	c.UpdatedAt = time.Now()
}

// UpdateMessage applies fn to the message with the given ID in place and
// recomputes the preview from the (possibly updated) last message. Returns
// false when the ID is unknown, leaving the conversation untouched — a
// dangling update is a no-op, not an error.
func (c *Conversation) UpdateMessage(id string, fn func(Message) Message) bool {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			c.Messages[i] = fn(c.Messages[i])
			c.PreviewText = derivePreview(c.Messages[len(c.Messages)-1])
			c.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// StreamingMessage returns the in-flight assistant message, or nil when the
// conversation is idle. At most one message can be streaming at a time.
func (c *Conversation) StreamingMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Streaming {
			return &c.Messages[i]
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// =============================================================================
// DERIVED FIELDS
// =============================================================================

// derivePreview produces the sidebar summary line for a message: user
// content verbatim, assistant content with a role marker and truncated.
func derivePreview(msg Message) string {
	if msg.Role == RoleUser {
		return util.Flatten(msg.Content)
	}
	runes := []rune(util.Flatten(msg.Content))
	if len(runes) > previewMaxRunes {
		runes = runes[:previewMaxRunes]
	}
	return assistantPreviewPrefix + string(runes) + "..."
}
