// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReader_DecodesEventSequence(t *testing.T) {
	input := `data: {"type": "sources", "sources": ["hr.pdf", "policy.docx"]}
data: {"type": "content", "content": "The answer "}
data: {"type": "content", "content": "is 42."}
data: {"type": "content", "content": "", "done": true}
`
	r := NewStreamReader(strings.NewReader(input))

	ev, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, EventSources, ev.Type)
	assert.Equal(t, []string{"hr.pdf", "policy.docx"}, ev.Sources)

	ev, err = r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, EventContent, ev.Type)
	assert.Equal(t, "The answer ", ev.Content)
	assert.False(t, ev.Terminal())

	ev, err = r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "is 42.", ev.Content)

	ev, err = r.ReadEvent()
	require.NoError(t, err)
	assert.True(t, ev.Done)
	assert.True(t, ev.Terminal())

	_, err = r.ReadEvent()
	assert.Equal(t, io.EOF, err)
}

func TestStreamReader_SkipsJunkFrames(t *testing.T) {
	// Blank keep-alives, non-data lines, malformed JSON, and unknown event
	// types are all skipped without ending the stream.
	input := `
: keep-alive comment
data: {broken json
data: {"type": "telemetry", "content": "ignored"}
event: something
data: {"type": "content", "content": "survived"}
`
	r := NewStreamReader(strings.NewReader(input))

	ev, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "survived", ev.Content)
}

func TestStreamReader_ErrorEventIsTerminal(t *testing.T) {
	input := `data: {"type": "error", "content": "vector store offline"}` + "\n"
	r := NewStreamReader(strings.NewReader(input))

	ev, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "vector store offline", ev.Content)
	assert.True(t, ev.Terminal())
}

func TestStreamReader_UnterminatedFinalLine(t *testing.T) {
	input := `data: {"type": "content", "content": "no trailing newline", "done": true}`
	r := NewStreamReader(strings.NewReader(input))

	ev, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "no trailing newline", ev.Content)
}

// =============================================================================
// PROCESS TESTS
// =============================================================================

func TestProcess_StopsAtTerminalEvent(t *testing.T) {
	input := `data: {"type": "content", "content": "a"}
data: {"type": "content", "content": "b", "done": true}
data: {"type": "content", "content": "after terminal"}
`
	r := NewStreamReader(strings.NewReader(input))

	var got []StreamEvent
	err := r.Process(context.Background(), func(ev StreamEvent) {
		got = append(got, ev)
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Content)
	assert.True(t, got[1].Terminal())
}

func TestProcess_EOFWithoutTerminalIsInterrupted(t *testing.T) {
	input := `data: {"type": "content", "content": "partial"}` + "\n"
	r := NewStreamReader(strings.NewReader(input))

	var got []StreamEvent
	err := r.Process(context.Background(), func(ev StreamEvent) {
		got = append(got, ev)
	})

	assert.True(t, IsStreamInterrupted(err), "err = %v", err)
	require.Len(t, got, 1)
	assert.Equal(t, "partial", got[0].Content)
}

// =============================================================================
// STREAMING QUERY TESTS
// =============================================================================

func streamServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rag/query/stream", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, frame := range frames {
			_, _ = io.WriteString(w, frame+"\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
}

func TestQueryStream_DeliversEventsInOrder(t *testing.T) {
	srv := streamServer(t, []string{
		`data: {"type": "sources", "sources": ["a.pdf"]}`,
		`data: {"type": "content", "content": "hello"}`,
		`data: {"type": "content", "content": "", "done": true}`,
	})
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	var got []StreamEvent
	err := client.QueryStream(context.Background(), "q", func(ev StreamEvent) {
		got = append(got, ev)
	})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, EventSources, got[0].Type)
	assert.Equal(t, "hello", got[1].Content)
	assert.True(t, got[2].Terminal())
}

func TestQueryStream_DropWithoutTerminal(t *testing.T) {
	srv := streamServer(t, []string{
		`data: {"type": "content", "content": "half"}`,
	})
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	err := client.QueryStream(context.Background(), "q", func(StreamEvent) {})
	assert.True(t, IsStreamInterrupted(err), "err = %v", err)
}

func TestQueryStream_UnreachableBackend(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})

	err := client.QueryStream(context.Background(), "q", func(StreamEvent) {})
	assert.True(t, IsUnreachable(err), "err = %v", err)
}

func TestQueryStreamChan_ExactlyOneTerminalEvent(t *testing.T) {
	srv := streamServer(t, []string{
		`data: {"type": "content", "content": "partial"}`,
	})
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	terminals := 0
	for ev := range client.QueryStreamChan(context.Background(), "q") {
		if ev.Terminal() {
			terminals++
		}
	}

	// The dropped stream is converted into a synthetic error event.
	assert.Equal(t, 1, terminals)
}
