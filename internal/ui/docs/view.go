// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs provides the document management page of the corpdoc TUI.
//
// This file contains the rendering logic: the document table, the upload
// prompt, and the status line.
package docs

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// Column widths for the document table.
const (
	nameColWidth = 40
	dateColWidth = 20
	sizeColWidth = 10
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderDocs renders the complete documents page.
func (m Model) renderDocs() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString("\n")

	if m.loading {
		b.WriteString(m.theme.Spinner.Render(m.spinner.View()))
		b.WriteString(m.theme.ThinkingText.Render(" Loading documents..."))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderTable())

	if m.warning != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.WarningStyle.Render(m.warning))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	if m.uploadMode {
		b.WriteString("\n")
		b.WriteString(m.uploadInput.View())
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================
// TABLE
// =============================================================================

// renderTable renders the aligned document table with the selection marker.
func (m Model) renderTable() string {
	if len(m.docs) == 0 && !m.loading {
		return m.theme.ThinkingText.Render("  No documents in the knowledge base. Press u to upload one.") + "\n"
	}

	var b strings.Builder

	header := fmt.Sprintf("  %s %s %s",
		pad("FILENAME", nameColWidth),
		pad("UPLOADED", dateColWidth),
		pad("SIZE", sizeColWidth))
	b.WriteString(m.theme.DocTableHeader.Render(header))
	b.WriteString("\n")

	for i, doc := range m.docs {
		row := fmt.Sprintf("%s %s %s",
			pad(doc.Filename, nameColWidth),
			pad(doc.UploadDate, dateColWidth),
			pad(humanize.Bytes(uint64(doc.Size)), sizeColWidth))

		if i == m.selected {
			b.WriteString(m.theme.DocTableSelected.Render("> " + row))
		} else {
			b.WriteString(m.theme.DocTableRow.Render("  " + row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ThinkingText.Render(
		fmt.Sprintf("  %d document(s)  |  r refresh  u upload  d delete", len(m.docs))))
	b.WriteString("\n")

	return b.String()
}

// pad truncates or pads s to exactly width display cells.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
