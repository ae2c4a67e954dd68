// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the corpdoc CLI.
//
// Handles the "corpdoc ask" command which sends one question to the RAG
// backend and prints the answer with its source citations.
//
// Command: ask [question]
// Short:   Ask a single question
//
// Examples:
//   corpdoc ask "What is the travel policy?"
//   corpdoc ask --stream "Summarize the onboarding guide"
//   corpdoc ask --json "List the security procedures"
//
// Flags:
//   --stream        Stream the answer token by token
//   --json          Output answer and sources as JSON
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/corpdoc-tui/internal/rag"
	"github.com/jeranaias/corpdoc-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayAnswer displays an answer with markdown rendering when appropriate.
// Only renders markdown when stdout is a TTY to avoid corrupting piped output.
func displayAnswer(answer string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(answer))
	} else {
		fmt.Print(answer)
	}
}

// =============================================================================
// STYLES
// =============================================================================

var (
	sourcesHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(styles.Purple)

	sourceItemStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	askSeparatorStyle = lipgloss.NewStyle().
				Foreground(styles.Overlay)

	askErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command.
func HandleAskCommand(args Args) error {
	question := args.Query

	// If no question from args, try reading from stdin (for piped input)
	if question == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			reader := bufio.NewReader(os.Stdin)
			stdinData, err := io.ReadAll(reader)
			if err == nil && len(stdinData) > 0 {
				question = strings.TrimSpace(string(stdinData))
			}
		}
	}

	if question == "" {
		err := fmt.Errorf("no question provided. Usage: corpdoc ask \"your question\"")
		if args.JSON {
			resp := NewJSONErrorResponse("ask", err)
			resp.Print()
		}
		return err
	}

	client := NewBackendClient(args)
	ctx := context.Background()

	if args.Stream && !args.JSON {
		return streamAnswer(ctx, client, question, args)
	}

	startTime := time.Now()
	result, err := client.Query(ctx, question)
	if err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("ask", err)
			resp.Print()
		}
		if rag.IsUnreachable(err) {
			return fmt.Errorf("backend is not reachable at %s. Is it running?", client.BaseURL())
		}
		return err
	}
	duration := time.Since(startTime)

	// JSON output mode
	if args.JSON {
		data := AskData{
			Answer:        result.Answer,
			Sources:       result.Sources,
			SourcesUsed:   result.SourcesUsed,
			ContextLength: result.ContextLength,
			DurationMs:    duration.Milliseconds(),
		}
		resp := NewJSONResponse("ask", data)
		return resp.Print()
	}

	displayAnswer(result.Answer)
	fmt.Println()

	if !args.Quiet {
		printSources(result.Sources)
	}

	return nil
}

// streamAnswer consumes the streaming endpoint and prints fragments as they
// arrive. Sources print after the answer completes.
func streamAnswer(ctx context.Context, client *rag.Client, question string, args Args) error {
	var sources []string
	failed := false

	for event := range client.QueryStreamChan(ctx, question) {
		switch event.Type {
		case rag.EventSources:
			sources = event.Sources

		case rag.EventContent:
			fmt.Print(event.Content)

		case rag.EventError:
			fmt.Fprintf(os.Stderr, "\n%s %s\n",
				askErrorStyle.Render("[Error]"),
				event.Content)
			failed = true
		}
	}

	fmt.Println()

	if failed {
		return fmt.Errorf("streaming query failed")
	}

	if !args.Quiet {
		printSources(sources)
	}

	return nil
}

// printSources renders the source citation list under an answer.
func printSources(sources []string) {
	if len(sources) == 0 {
		return
	}

	separator := strings.Repeat("─", 45)
	fmt.Fprintln(os.Stderr, askSeparatorStyle.Render(separator))
	fmt.Fprintln(os.Stderr, sourcesHeaderStyle.Render("Sources:"))
	for _, src := range sources {
		fmt.Fprintf(os.Stderr, "  %s\n", sourceItemStyle.Render("- "+src))
	}
}
