// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs provides the document management page of the corpdoc TUI.
//
// The page lists the knowledge-base documents, uploads new ones, and
// deletes existing ones. Listing degrades to an empty table when the
// backend is unreachable; upload and delete surface their errors since
// they are explicit user actions.
package docs

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/corpdoc-tui/internal/rag"
	"github.com/jeranaias/corpdoc-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// LoadedMsg delivers the document list, or the reason it is unavailable.
type LoadedMsg struct {
	Docs []rag.DocumentInfo
	Err  error
}

// UploadedMsg reports the outcome of an upload.
type UploadedMsg struct {
	Result *rag.UploadResponse
	Err    error
}

// DeletedMsg reports the outcome of a delete.
type DeletedMsg struct {
	ID  string
	Err error
}

// =============================================================================
// DOCS MODEL
// =============================================================================

// Model is the Bubble Tea model for the documents page.
type Model struct {
	theme  *styles.Theme
	client *rag.Client

	width  int
	height int

	docs     []rag.DocumentInfo
	selected int
	loading  bool

	// Transient status line under the table.
	status  string
	warning string

	// Upload path prompt.
	uploadMode  bool
	uploadInput textinput.Model

	spinner spinner.Model
}

// New creates a new documents page using the given backend client.
func New(theme *styles.Theme, client *rag.Client) Model {
	ti := textinput.New()
	ti.Prompt = "Upload path: "
	ti.Placeholder = "./policy.pdf"
	ti.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Model{
		theme:       theme,
		client:      client,
		loading:     true,
		uploadInput: ti,
		spinner:     sp,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the initial document load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spinner.Tick)
}

// Update handles messages and updates the documents page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case LoadedMsg:
		return m.handleLoaded(msg)

	case UploadedMsg:
		return m.handleUploaded(msg)

	case DeletedMsg:
		return m.handleDeleted(msg)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.uploadMode {
		var cmd tea.Cmd
		m.uploadInput, cmd = m.uploadInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the documents page.
func (m Model) View() string {
	return m.renderDocs()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()

	// Upload prompt captures all keys until submitted or cancelled.
	if m.uploadMode {
		switch keyStr {
		case "esc":
			m.uploadMode = false
			m.uploadInput.Reset()
			return m, nil
		case "enter":
			path := m.uploadInput.Value()
			m.uploadMode = false
			m.uploadInput.Reset()
			if path == "" {
				return m, nil
			}
			m.loading = true
			m.status = "Uploading " + path + "..."
			return m, tea.Batch(m.uploadCmd(path), m.spinner.Tick)
		}
		var cmd tea.Cmd
		m.uploadInput, cmd = m.uploadInput.Update(msg)
		return m, cmd
	}

	switch keyStr {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.selected < len(m.docs)-1 {
			m.selected++
		}
		return m, nil

	case "r":
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.loadCmd(), m.spinner.Tick)

	case "u":
		m.uploadMode = true
		m.uploadInput.Focus()
		return m, textinput.Blink

	case "d", "delete":
		if m.selected < len(m.docs) {
			doc := m.docs[m.selected]
			m.loading = true
			m.status = "Deleting " + doc.Filename + "..."
			return m, tea.Batch(m.deleteCmd(doc.ID), m.spinner.Tick)
		}
		return m, nil
	}

	return m, nil
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

func (m Model) handleLoaded(msg LoadedMsg) (Model, tea.Cmd) {
	m.loading = false

	// Degrade to an empty list when the backend cannot be reached.
	if msg.Err != nil {
		m.docs = nil
		m.selected = 0
		m.warning = "Document list unavailable: " + msg.Err.Error()
		return m, nil
	}

	m.warning = ""
	m.docs = msg.Docs
	if m.selected >= len(m.docs) {
		m.selected = len(m.docs) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	return m, nil
}

func (m Model) handleUploaded(msg UploadedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.loading = false
		m.status = styles.RenderError("Upload failed: " + msg.Err.Error())
		return m, nil
	}

	text := msg.Result.Message
	if text == "" {
		text = "uploaded " + msg.Result.Filename
	}
	if msg.Result.Success {
		m.status = styles.RenderSuccess(text)
	} else {
		m.status = styles.RenderWarning(text)
	}

	// Reload so the new document shows up with its backend-assigned ID.
	return m, tea.Batch(m.loadCmd(), m.spinner.Tick)
}

func (m Model) handleDeleted(msg DeletedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.loading = false
		m.status = styles.RenderError("Delete failed: " + msg.Err.Error())
		return m, nil
	}

	m.status = styles.RenderSuccess("deleted " + msg.ID)
	return m, tea.Batch(m.loadCmd(), m.spinner.Tick)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loadCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		docs, err := client.ListDocuments(ctx)
		return LoadedMsg{Docs: docs, Err: err}
	}
}

func (m Model) uploadCmd(path string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.UploadFile(context.Background(), path)
		return UploadedMsg{Result: result, Err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := client.DeleteDocument(ctx, id)
		return DeletedMsg{ID: id, Err: err}
	}
}

// =============================================================================
// GETTERS
// =============================================================================

// Count returns the number of documents currently listed.
func (m *Model) Count() int {
	return len(m.docs)
}
