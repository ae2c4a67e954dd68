// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"

	"github.com/jeranaias/corpdoc-tui/internal/rag"
)

// =============================================================================
// CONTENT EVENTS
// =============================================================================

func TestReduce_ContentAppendsExactly(t *testing.T) {
	msg := NewAssistantPlaceholder()

	fragments := []string{"The travel ", "policy allows ", "21 days."}
	for _, f := range fragments {
		msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Content: f})
	}

	want := strings.Join(fragments, "")
	if msg.Content != want {
		t.Errorf("Content = %q, want %q", msg.Content, want)
	}
	if !msg.Streaming {
		t.Error("message should still be streaming without a done marker")
	}
}

func TestReduce_ContentPreservesWhitespace(t *testing.T) {
	msg := NewAssistantPlaceholder()

	// Fragment boundaries carry significant whitespace; nothing may be
	// trimmed or collapsed.
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Content: "line one\n"})
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Content: "  indented"})

	if msg.Content != "line one\n  indented" {
		t.Errorf("Content = %q, whitespace was altered", msg.Content)
	}
}

func TestReduce_DoneMarksTerminal(t *testing.T) {
	msg := NewAssistantPlaceholder()

	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Content: "answer"})
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Done: true})

	if msg.Streaming {
		t.Error("done event should mark the message terminal")
	}
	if msg.Content != "answer" {
		t.Errorf("Content = %q, want %q", msg.Content, "answer")
	}
}

// =============================================================================
// SOURCES EVENTS
// =============================================================================

func TestReduce_SourcesReplaceRegardlessOfPosition(t *testing.T) {
	tests := []struct {
		name   string
		events []rag.StreamEvent
	}{
		{
			name: "sources before content",
			events: []rag.StreamEvent{
				{Type: rag.EventSources, Sources: []string{"hr.pdf", "onboarding.docx"}},
				{Type: rag.EventContent, Content: "answer"},
			},
		},
		{
			name: "sources between content",
			events: []rag.StreamEvent{
				{Type: rag.EventContent, Content: "ans"},
				{Type: rag.EventSources, Sources: []string{"hr.pdf", "onboarding.docx"}},
				{Type: rag.EventContent, Content: "wer"},
			},
		},
		{
			name: "sources after content",
			events: []rag.StreamEvent{
				{Type: rag.EventContent, Content: "answer"},
				{Type: rag.EventSources, Sources: []string{"hr.pdf", "onboarding.docx"}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewAssistantPlaceholder()
			for _, ev := range tc.events {
				msg = Reduce(msg, ev)
			}

			if msg.Content != "answer" {
				t.Errorf("Content = %q, want %q", msg.Content, "answer")
			}
			if len(msg.Sources) != 2 || msg.Sources[0] != "hr.pdf" {
				t.Errorf("Sources = %v, want [hr.pdf onboarding.docx]", msg.Sources)
			}
		})
	}
}

func TestReduce_LaterSourcesWin(t *testing.T) {
	msg := NewAssistantPlaceholder()

	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventSources, Sources: []string{"a.pdf"}})
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventSources, Sources: []string{"b.pdf", "c.pdf"}})

	if len(msg.Sources) != 2 || msg.Sources[0] != "b.pdf" {
		t.Errorf("Sources = %v, want the replacement list", msg.Sources)
	}
}

// =============================================================================
// ERROR EVENTS
// =============================================================================

func TestReduce_ErrorOverwritesPartialContent(t *testing.T) {
	msg := NewAssistantPlaceholder()

	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Content: "partial ans"})
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventError, Content: "vector store offline"})

	if msg.Content != "Error: vector store offline" {
		t.Errorf("Content = %q, want the error text to replace partial content", msg.Content)
	}
	if msg.Streaming {
		t.Error("error event should mark the message terminal")
	}
}

// =============================================================================
// TERMINAL IDEMPOTENCE
// =============================================================================

func TestReduce_TerminalMessagesIgnoreEverything(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Content: "final"})
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Done: true})

	frozen := msg

	late := []rag.StreamEvent{
		{Type: rag.EventContent, Content: " more"},
		{Type: rag.EventSources, Sources: []string{"late.pdf"}},
		{Type: rag.EventError, Content: "late failure"},
		{Type: rag.EventContent, Done: true},
	}
	for _, ev := range late {
		msg = Reduce(msg, ev)
	}

	if msg.Content != frozen.Content {
		t.Errorf("Content changed after terminal: %q", msg.Content)
	}
	if len(msg.Sources) != len(frozen.Sources) {
		t.Errorf("Sources changed after terminal: %v", msg.Sources)
	}
	if msg.Streaming {
		t.Error("terminal message resurrected")
	}
}

func TestReduce_ErrorAfterErrorKeepsFirst(t *testing.T) {
	msg := NewAssistantPlaceholder()

	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventError, Content: "first"})
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventError, Content: "second"})

	if msg.Content != "Error: first" {
		t.Errorf("Content = %q, the first error should win", msg.Content)
	}
}

// =============================================================================
// INTERRUPT
// =============================================================================

func TestInterrupt_AppendsNoticeToPartialContent(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Content: "half an ans"})

	msg = Interrupt(msg)

	if !strings.HasPrefix(msg.Content, "half an ans") {
		t.Errorf("partial content lost: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "interrupted") {
		t.Errorf("missing interrupt notice: %q", msg.Content)
	}
	if msg.Streaming {
		t.Error("interrupted message should be terminal")
	}
}

func TestInterrupt_EmptyMessageGetsBareNotice(t *testing.T) {
	msg := Interrupt(NewAssistantPlaceholder())

	if strings.HasPrefix(msg.Content, "\n") {
		t.Errorf("notice should not start with blank lines: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "interrupted") {
		t.Errorf("missing interrupt notice: %q", msg.Content)
	}
}

func TestInterrupt_TerminalMessageUnchanged(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg = Reduce(msg, rag.StreamEvent{Type: rag.EventContent, Content: "done", Done: true})

	after := Interrupt(msg)

	if after.Content != "done" {
		t.Errorf("Interrupt modified a terminal message: %q", after.Content)
	}
}

// =============================================================================
// SCRIPTED SEQUENCES
// =============================================================================

func TestReduce_TypicalStream(t *testing.T) {
	msg := NewAssistantPlaceholder()

	script := []rag.StreamEvent{
		{Type: rag.EventSources, Sources: []string{"policy.pdf"}},
		{Type: rag.EventContent, Content: "Employees may "},
		{Type: rag.EventContent, Content: "travel business class "},
		{Type: rag.EventContent, Content: "on flights over 6 hours."},
		{Type: rag.EventContent, Done: true},
	}
	for _, ev := range script {
		msg = Reduce(msg, ev)
	}

	if msg.Streaming {
		t.Error("stream should be terminal")
	}
	if msg.Content != "Employees may travel business class on flights over 6 hours." {
		t.Errorf("unexpected content: %q", msg.Content)
	}
	if len(msg.Sources) != 1 || msg.Sources[0] != "policy.pdf" {
		t.Errorf("unexpected sources: %v", msg.Sources)
	}
}
