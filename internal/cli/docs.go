// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs.go - Document management command handlers for the corpdoc CLI.
//
// Command: docs [subcommand]
// Short:   Manage knowledge-base documents
//
// Examples:
//   corpdoc docs list                List documents in the knowledge base
//   corpdoc docs upload ./file.pdf   Upload a document
//   corpdoc docs delete doc-123      Delete a document by ID
//   corpdoc docs list --json         List in JSON format
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/corpdoc-tui/internal/rag"
	"github.com/jeranaias/corpdoc-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	docsHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	docsRowStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	docsMutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// =============================================================================
// DOCS HANDLER
// =============================================================================

// HandleDocsCommand dispatches "docs" subcommands.
func HandleDocsCommand(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list", "ls":
		return handleDocsList(args, parser)
	case "upload", "add":
		return handleDocsUpload(args, parser)
	case "delete", "rm", "remove":
		return handleDocsDelete(args, parser)
	default:
		return fmt.Errorf("unknown docs subcommand: %s (try: list, upload, delete)", parser.Subcommand())
	}
}

// handleDocsList lists all documents in the knowledge base.
//
// Listing degrades to an empty table when the backend cannot be reached;
// the error only surfaces in verbose mode. Upload and delete keep their
// errors because they are explicit actions.
func handleDocsList(args Args, parser *ArgParser) error {
	client := NewBackendClient(args)
	ctx := context.Background()

	docs, err := client.ListDocuments(ctx)
	if err != nil {
		if args.Verbose {
			fmt.Fprintf(os.Stderr, "%s\n", styles.RenderWarning("document list unavailable: "+err.Error()))
		}
		docs = nil
	}

	if args.JSON || parser.BoolFlag("json") {
		entries := make([]DocEntry, 0, len(docs))
		for _, d := range docs {
			entries = append(entries, DocEntry{
				ID:         d.ID,
				Filename:   d.Filename,
				UploadDate: d.UploadDate,
				Size:       d.Size,
			})
		}
		resp := NewJSONResponse("docs.list", DocsData{Documents: entries, Count: len(entries)})
		return resp.Print()
	}

	if len(docs) == 0 {
		fmt.Println(docsMutedStyle.Render("No documents in the knowledge base."))
		return nil
	}

	printDocsTable(docs)
	return nil
}

// printDocsTable renders the document list as an aligned table.
func printDocsTable(docs []rag.DocumentInfo) {
	const (
		idWidth   = 24
		nameWidth = 36
		dateWidth = 20
	)

	header := fmt.Sprintf("%s %s %s %s",
		pad("ID", idWidth),
		pad("FILENAME", nameWidth),
		pad("UPLOADED", dateWidth),
		"SIZE")
	fmt.Println(docsHeaderStyle.Render(header))

	for _, d := range docs {
		row := fmt.Sprintf("%s %s %s %s",
			pad(d.ID, idWidth),
			pad(d.Filename, nameWidth),
			pad(d.UploadDate, dateWidth),
			humanize.Bytes(uint64(d.Size)))
		fmt.Println(docsRowStyle.Render(row))
	}

	fmt.Println()
	fmt.Println(docsMutedStyle.Render(fmt.Sprintf("%d document(s)", len(docs))))
}

// pad truncates or pads s to exactly width display cells.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// handleDocsUpload uploads a local file to the knowledge base.
func handleDocsUpload(args Args, parser *ArgParser) error {
	path := parser.Positional(1)
	if path == "" {
		path = parser.Flag("file")
	}
	if path == "" {
		return fmt.Errorf("no file provided. Usage: corpdoc docs upload FILE")
	}

	client := NewBackendClient(args)
	ctx := context.Background()

	if !args.Quiet && !args.JSON {
		fmt.Printf("Uploading %s...\n", path)
	}

	result, err := client.UploadFile(ctx, path)
	if err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("docs.upload", err)
			resp.Print()
		}
		return fmt.Errorf("upload failed: %w", err)
	}

	if args.JSON {
		resp := NewJSONResponse("docs.upload", result)
		return resp.Print()
	}

	msg := result.Message
	if msg == "" {
		msg = "uploaded " + result.Filename
	}
	if result.Success {
		fmt.Println(styles.RenderSuccess(msg))
	} else {
		fmt.Println(styles.RenderWarning(msg))
	}
	return nil
}

// handleDocsDelete removes a document by ID.
func handleDocsDelete(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return fmt.Errorf("no document ID provided. Usage: corpdoc docs delete ID")
	}

	client := NewBackendClient(args)
	ctx := context.Background()

	if err := client.DeleteDocument(ctx, id); err != nil {
		if args.JSON {
			resp := NewJSONErrorResponse("docs.delete", err)
			resp.Print()
		}
		return fmt.Errorf("delete failed: %w", err)
	}

	if args.JSON {
		resp := NewJSONResponse("docs.delete", map[string]string{"id": id})
		return resp.Print()
	}

	fmt.Println(styles.RenderSuccess("deleted " + strings.TrimSpace(id)))
	return nil
}
