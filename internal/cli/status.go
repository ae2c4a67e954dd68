// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation for corpdoc.
//
// Command: status
// Short:   Display backend status
// Aliases: s, health
//
// Examples:
//   corpdoc status                Show backend status
//   corpdoc status --json         Status in JSON format
//
// Output Fields:
//   Backend    Configured backend URL
//   Health     Backend health status
//   Documents  Number of documents in the knowledge base
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/corpdoc-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	statusTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(styles.Cyan).
				MarginBottom(1)

	statusLabelStyle = lipgloss.NewStyle().
				Foreground(styles.TextSecondary).
				Width(12)

	statusValueStyle = lipgloss.NewStyle().
				Foreground(styles.TextPrimary)

	statusGreenStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald)

	statusRedStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	statusSeparatorStyle = lipgloss.NewStyle().
				Foreground(styles.Overlay)
)

// =============================================================================
// HANDLE STATUS
// =============================================================================

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	client := NewBackendClient(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := client.Health(ctx)

	// JSON output mode
	if args.JSON {
		data := StatusData{
			Backend:   client.BaseURL(),
			Reachable: err == nil,
		}
		if health != nil {
			data.Status = health.Status
			data.Documents = health.Components.KnowledgeBaseDocuments
		}
		resp := NewJSONResponse("status", data)
		return resp.Print()
	}

	separator := strings.Repeat("=", 41)
	fmt.Println()
	fmt.Println(statusTitleStyle.Render("corpdoc Status"))
	fmt.Println(statusSeparatorStyle.Render(separator))
	fmt.Println()

	fmt.Printf("  %s%s\n",
		statusLabelStyle.Render("Backend:"),
		statusValueStyle.Render(client.BaseURL()))

	if err != nil {
		fmt.Printf("  %s%s\n",
			statusLabelStyle.Render("Health:"),
			statusRedStyle.Render("Not reachable"))
		fmt.Println()
		fmt.Println(styles.RenderWarning("Is the backend running? Check the URL with: corpdoc config show"))
		return nil
	}

	healthStr := health.Status
	if health.Healthy() {
		healthStr = statusGreenStyle.Render(healthStr)
	} else {
		healthStr = statusRedStyle.Render(healthStr)
	}
	fmt.Printf("  %s%s\n",
		statusLabelStyle.Render("Health:"),
		healthStr)

	fmt.Printf("  %s%s\n",
		statusLabelStyle.Render("Documents:"),
		statusValueStyle.Render(fmt.Sprintf("%d", health.Components.KnowledgeBaseDocuments)))

	fmt.Println()
	return nil
}
