// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rag provides the HTTP/SSE client for the corporate RAG backend.
package rag

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
)

// dataPrefix marks a server-sent event frame carrying a JSON payload.
const dataPrefix = "data: "

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader decodes newline-delimited SSE frames into StreamEvents.
//
// Frames prefixed with "data: " are JSON-decoded; anything else — blank
// keep-alive lines, malformed JSON, unknown event types — is skipped without
// terminating the stream. Skipping is a deliberate resilience policy: one bad
// frame must never kill an otherwise healthy answer.
type StreamReader struct {
	reader *bufio.Reader
}

// NewStreamReader creates a stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// ReadEvent reads frames until it can return one decoded StreamEvent.
// Returns io.EOF when the underlying stream is exhausted.
func (s *StreamReader) ReadEvent() (*StreamEvent, error) {
	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if len(bytes.TrimSpace(line)) == 0 {
				return nil, err
			}
			// Fall through: decode the last unterminated line, then
			// the next call reports the read error.
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !bytes.HasPrefix(line, []byte(dataPrefix)) {
			continue
		}

		payload := line[len(dataPrefix):]
		var event StreamEvent
		if jsonErr := json.Unmarshal(payload, &event); jsonErr != nil {
			log.Printf("rag: skipping malformed stream frame: %v", jsonErr)
			continue
		}

		switch event.Type {
		case EventSources, EventContent, EventError:
			return &event, nil
		default:
			// Unknown tag is a decode error, not a crash.
			log.Printf("rag: skipping stream frame with unknown type %q", event.Type)
			continue
		}
	}
}

// StreamCallback is called for each decoded event, in arrival order.
type StreamCallback func(event StreamEvent)

// Process reads the stream and calls the callback for each event.
// Returns nil once a terminal event has been delivered, ErrStreamInterrupted
// when the stream ends without one, or the context error on cancellation.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event, err := s.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return ErrStreamInterrupted
			}
			return &ClientError{Type: ErrTypeStreamInterrupted, Message: "stream read failed", Cause: err}
		}

		callback(*event)
		if event.Terminal() {
			return nil
		}
	}
}

// =============================================================================
// STREAMING QUERY
// =============================================================================

// QueryStream sends a question to the streaming endpoint and calls the
// callback for each event as it arrives. The callback is invoked
// synchronously, so events reach the caller in strict arrival order.
//
// Returns when a terminal event has been seen, the stream drops
// (ErrStreamInterrupted), or the context is cancelled.
func (c *Client) QueryStream(ctx context.Context, question string, callback StreamCallback) error {
	body, err := json.Marshal(QueryRequest{Question: question})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/rag/query/stream", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	// No client timeout for streaming — lifetime is controlled via context.
	streamClient := &http.Client{}

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("streaming query", resp)
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}

// QueryStreamChan sends a streaming query and returns a channel of events.
// The channel is closed when the stream finishes. A transport failure is
// delivered as a synthetic error event so consumers see exactly one
// terminal event per stream.
func (c *Client) QueryStreamChan(ctx context.Context, question string) <-chan StreamEvent {
	ch := make(chan StreamEvent)

	go func() {
		defer close(ch)

		err := c.QueryStream(ctx, question, func(event StreamEvent) {
			select {
			case ch <- event:
			case <-ctx.Done():
			}
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			select {
			case ch <- StreamEvent{Type: EventError, Content: err.Error()}:
			case <-ctx.Done():
			}
		}
	}()

	return ch
}
