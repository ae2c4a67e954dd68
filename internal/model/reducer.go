// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/jeranaias/corpdoc-tui/internal/rag"

// User-facing notices produced by the reducer. The error text embeds the
// backend's description; the interrupt notice is generic because a dropped
// connection carries no description.
const (
	streamErrorPrefix = "Error: "

	// interruptedNotice is appended to whatever partial content arrived
	// before the connection dropped.
	interruptedNotice = "[response interrupted — the connection to the backend was lost]"
)

// =============================================================================
// STREAM REDUCER
// =============================================================================

// Reduce folds one stream event into the in-flight assistant message and
// returns the updated message. It is a pure function: it owns no state, and
// callers apply it sequentially in event arrival order.
//
// A message with Streaming == false is terminal. Terminal messages ignore
// every further event, which makes terminal transitions idempotent and
// guarantees that late frames after an error cannot resurrect a message.
func Reduce(msg Message, event rag.StreamEvent) Message {
	if !msg.Streaming {
		return msg
	}

	switch event.Type {
	case rag.EventSources:
		// Sources may arrive before, between, or after content fragments;
		// they replace the list and touch nothing else.
		msg.Sources = event.Sources

	case rag.EventContent:
		// Exact byte append — truncation rules exist only for the
		// title/preview derivation, never for message content.
		msg.Content += event.Content
		if event.Done {
			msg.Streaming = false
		}

	case rag.EventError:
		msg.Content = streamErrorPrefix + event.Content
		msg.Streaming = false
	}

	return msg
}

// Interrupt degrades a message whose stream ended without a terminal event
// (connection drop). Partial content is kept and a failure notice appended,
// so the conversation is never left with a dangling streaming message.
// Terminal messages are returned unchanged.
func Interrupt(msg Message) Message {
	if !msg.Streaming {
		return msg
	}

	if msg.Content != "" {
		msg.Content += "\n\n"
	}
	msg.Content += interruptedNotice
	msg.Streaming = false
	return msg
}
