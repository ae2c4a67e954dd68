// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat page of the corpdoc TUI.
//
// This file contains the rendering logic for the chat page: the
// conversation sidebar, the message column, and the input area.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/corpdoc-tui/internal/model"
	"github.com/jeranaias/corpdoc-tui/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders the complete chat page.
// Layout: [sidebar] | messages (viewport) + input area.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	column := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		m.renderInput(),
	)

	if !m.sidebarVisible() {
		return column
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderSidebar(),
		column,
	)
}

// =============================================================================
// SIDEBAR
// =============================================================================

// renderSidebar renders the conversation list column.
func (m Model) renderSidebar() string {
	convs := m.store.Conversations()
	current := m.store.Current()

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n\n")

	// Interior width inside the sidebar border and padding.
	itemWidth := sidebarWidth - 4

	for _, conv := range convs {
		title := util.Truncate(conv.Title, itemWidth-2)
		preview := util.Truncate(conv.PreviewText, itemWidth-2)

		if current != nil && conv.ID == current.ID {
			b.WriteString(m.theme.ConversationSelected.Render("> " + title))
		} else {
			b.WriteString(m.theme.ConversationItem.Render("  " + title))
		}
		b.WriteString("\n")
		b.WriteString(m.theme.ConversationPreview.Render("  " + preview))
		b.WriteString("\n\n")
	}

	return m.theme.Sidebar.
		Width(sidebarWidth - 2).
		Height(m.height - 2).
		Render(b.String())
}

// =============================================================================
// MESSAGES
// =============================================================================

// renderMessages renders the current conversation's message history.
func (m *Model) renderMessages() string {
	conv := m.store.Current()
	if conv == nil || len(conv.Messages) == 0 {
		return m.renderEmptyState()
	}

	var parts []string
	for _, msg := range conv.Messages {
		parts = append(parts, m.renderMessage(msg))
	}

	if m.state == StateStreaming && m.isThinking {
		parts = append(parts, m.renderThinking())
	}

	return strings.Join(parts, "\n\n")
}

// renderMessage renders a single message with its role label and bubble.
func (m *Model) renderMessage(msg model.Message) string {
	role := m.theme.MessageRole.Render(msg.Role.DisplayName())
	timestamp := m.theme.MessageTime.Render(msg.Timestamp.Format("15:04"))
	header := role + " " + timestamp

	bubbleWidth := m.chatColumnWidth() - 4
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var body string
	switch msg.Role {
	case model.RoleUser:
		body = m.theme.UserBubble.
			MaxWidth(bubbleWidth).
			Render(msg.Content)
	default:
		body = m.theme.AssistantBubble.
			MaxWidth(bubbleWidth).
			Render(m.renderAssistantContent(msg))
		if len(msg.Sources) > 0 && !msg.Streaming {
			body += "\n" + m.renderSources(msg.Sources)
		}
	}

	return header + "\n" + body
}

// renderAssistantContent renders assistant markdown for finished messages.
// While a message is still streaming the raw text is shown instead, since
// partial markdown renders worse than plain text.
func (m *Model) renderAssistantContent(msg model.Message) string {
	if msg.Content == "" {
		return ""
	}
	if msg.Streaming || m.renderer == nil {
		return msg.Content
	}

	rendered, err := m.renderer.Render(msg.Content)
	if err != nil {
		return msg.Content
	}
	return strings.TrimRight(rendered, "\n")
}

// renderSources renders the source citation list under an assistant answer.
func (m *Model) renderSources(sources []string) string {
	var b strings.Builder
	b.WriteString("Sources:")
	for _, src := range sources {
		b.WriteString("\n- " + src)
	}
	return m.theme.SourcesBlock.Render(b.String())
}

// renderThinking renders the spinner shown before the first fragment.
func (m *Model) renderThinking() string {
	return m.theme.Spinner.Render(m.spinner.View()) +
		m.theme.ThinkingText.Render(" Searching the knowledge base...")
}

// renderEmptyState renders the placeholder for an empty conversation.
func (m *Model) renderEmptyState() string {
	return m.theme.ThinkingText.Render("\n  No messages yet. Ask a question below.")
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInput renders the bordered input box at the bottom of the page.
func (m Model) renderInput() string {
	chatWidth := m.chatColumnWidth()

	var content string
	if m.state == StateStreaming {
		content = m.theme.InputPlaceholder.Render(
			fmt.Sprintf("%s streaming... press Esc to cancel", m.spinner.View()))
	} else {
		content = m.input.View()
	}

	return m.theme.InputContainer.
		Width(chatWidth - 2).
		Render(content)
}
