// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat page of the corpdoc TUI.
//
// This file defines the Bubble Tea message types used by the chat page.
// Streaming messages carry both the conversation and message ID so that
// events arriving after the user switched or deleted a conversation are
// applied to the right message, or dropped as a no-op.
package chat

import (
	"time"

	"github.com/jeranaias/corpdoc-tui/internal/rag"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamRequestMsg asks the root model to start a streaming query.
// The root model owns the program reference and the cancel function, so
// the chat page requests streaming instead of starting it directly.
type StreamRequestMsg struct {
	ConversationID string
	MessageID      string
	Question       string
}

// StreamStartMsg signals that a streaming query is in flight.
type StreamStartMsg struct {
	ConversationID string
	MessageID      string
	StartTime      time.Time
}

// StreamEventMsg delivers one decoded stream event from the backend.
type StreamEventMsg struct {
	ConversationID string
	MessageID      string
	Event          rag.StreamEvent
}

// StreamInterruptedMsg signals that the stream ended without a terminal
// event: the connection dropped mid-answer or the user cancelled.
type StreamInterruptedMsg struct {
	ConversationID string
	MessageID      string
}

// CancelStreamMsg asks the root model to cancel the in-flight stream.
type CancelStreamMsg struct{}
