// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat page of the corpdoc TUI.
package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/corpdoc-tui/internal/model"
	"github.com/jeranaias/corpdoc-tui/internal/store"
	"github.com/jeranaias/corpdoc-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat page.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streaming answer
)

// sidebarWidth is the fixed width of the conversation list column.
// The sidebar is hidden entirely on narrow terminals.
const (
	sidebarWidth    = 28
	minSidebarTerm  = 90
	inputCharLimit  = 4096
	defaultChatCols = 80
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat page.
type Model struct {
	state State

	theme *styles.Theme
	store *store.Store

	width  int
	height int

	// Current streaming target. Events for any other message are dropped.
	streamingConvID string
	streamingMsgID  string

	// True between submit and the first content fragment.
	isThinking    bool
	thinkingStart time.Time

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Markdown renderer, rebuilt on resize to match the chat column width.
	renderer *glamour.TermRenderer
}

// New creates a new chat page backed by the given conversation store.
func New(theme *styles.Theme, st *store.Store) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about company documents..."
	ti.CharLimit = inputCharLimit
	ti.Focus()

	vp := viewport.New(defaultChatCols, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	m := Model{
		state:    StateReady,
		theme:    theme,
		store:    st,
		viewport: vp,
		input:    ti,
		spinner:  sp,
		keyMap:   DefaultKeyMap(),
	}
	m.rebuildRenderer(defaultChatCols)
	m.updateViewport()
	return m
}

// rebuildRenderer recreates the glamour renderer for the given wrap width.
func (m *Model) rebuildRenderer(width int) {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the chat page.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the chat page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamStartMsg:
		return m.handleStreamStart(msg)

	case StreamEventMsg:
		return m.handleStreamEvent(msg)

	case StreamInterruptedMsg:
		return m.handleStreamInterrupted(msg)

	case spinner.TickMsg:
		if m.state == StateStreaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Unhandled messages go to the input and the viewport so cursor
	// blinking and mouse scrolling keep working.
	var cmds []tea.Cmd
	if m.state == StateReady {
		var inputCmd tea.Cmd
		m.input, inputCmd = m.input.Update(msg)
		cmds = append(cmds, inputCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// View renders the chat page.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Layout: viewport (dynamic) + input area (3 lines: border top,
	// input line, border bottom). The root model already subtracted the
	// header and status bar from msg.Height.
	const inputAreaHeight = 3

	viewportHeight := m.height - inputAreaHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	chatWidth := m.chatColumnWidth()

	m.viewport.Width = chatWidth
	m.viewport.Height = viewportHeight

	// Border (2) + padding (2) + prompt (2)
	inputWidth := chatWidth - 6
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.rebuildRenderer(chatWidth - 4)
	m.updateViewport()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

// chatColumnWidth returns the width available to the message column.
func (m Model) chatColumnWidth() int {
	if m.width <= 0 {
		return defaultChatCols
	}
	if m.sidebarVisible() {
		return m.width - sidebarWidth
	}
	return m.width
}

func (m Model) sidebarVisible() bool {
	return m.width >= minSidebarTerm
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()

	// ==========================================================================
	// STREAMING STATE - only cancel and scrolling are allowed
	// ==========================================================================

	if m.state == StateStreaming {
		switch keyStr {
		case "esc":
			return m, func() tea.Msg { return CancelStreamMsg{} }
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		}
		return m, nil
	}

	// ==========================================================================
	// READY STATE
	// ==========================================================================

	switch keyStr {
	case "enter":
		if strings.TrimSpace(m.input.Value()) != "" {
			return m.submitInput()
		}
		return m, nil

	case "ctrl+n":
		m.store.CreateConversation()
		m.updateViewport()
		m.viewport.GotoTop()
		return m, nil

	case "ctrl+x":
		if conv := m.store.Current(); conv != nil {
			m.store.DeleteConversation(conv.ID)
		}
		m.updateViewport()
		return m, nil

	case "ctrl+up", "ctrl+p":
		m.selectAdjacent(-1)
		return m, nil

	case "ctrl+down":
		m.selectAdjacent(1)
		return m, nil

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil

	case "home":
		m.viewport.GotoTop()
		return m, nil

	case "end":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// selectAdjacent moves the conversation selection up or down the sidebar.
func (m *Model) selectAdjacent(delta int) {
	convs := m.store.Conversations()
	current := m.store.Current()
	if len(convs) == 0 || current == nil {
		return
	}

	idx := 0
	for i, c := range convs {
		if c.ID == current.ID {
			idx = i
			break
		}
	}

	idx += delta
	if idx < 0 || idx >= len(convs) {
		return
	}

	m.store.SelectConversation(convs[idx].ID)
	m.updateViewport()
	m.viewport.GotoBottom()
}

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

// submitInput appends the user message and an assistant placeholder, then
// asks the root model to start streaming into the placeholder.
func (m Model) submitInput() (Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	conv := m.store.Current()
	if question == "" || conv == nil {
		return m, nil
	}

	m.input.Reset()

	userMsg := model.NewUserMessage(question)
	m.store.AppendMessage(conv.ID, userMsg, true)

	placeholder := model.NewAssistantPlaceholder()
	m.store.AppendMessage(conv.ID, placeholder, false)

	m.state = StateStreaming
	m.streamingConvID = conv.ID
	m.streamingMsgID = placeholder.ID
	m.isThinking = true
	m.thinkingStart = time.Now()
	m.input.Blur()

	m.updateViewport()
	m.viewport.GotoBottom()

	convID := conv.ID
	msgID := placeholder.ID
	request := func() tea.Msg {
		return StreamRequestMsg{
			ConversationID: convID,
			MessageID:      msgID,
			Question:       question,
		}
	}

	return m, tea.Batch(request, m.spinner.Tick)
}

// =============================================================================
// STREAM HANDLERS
// =============================================================================

func (m Model) handleStreamStart(msg StreamStartMsg) (Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}
	m.thinkingStart = msg.StartTime
	return m, m.spinner.Tick
}

func (m Model) handleStreamEvent(msg StreamEventMsg) (Model, tea.Cmd) {
	// Applying through the store keeps late events for deleted
	// conversations harmless: UpdateMessage is a no-op for unknown IDs.
	m.store.UpdateMessage(msg.ConversationID, msg.MessageID, func(mm model.Message) model.Message {
		return model.Reduce(mm, msg.Event)
	})

	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	if msg.Event.Content != "" {
		m.isThinking = false
	}

	if msg.Event.Terminal() {
		m.finishStreaming()
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, textinput.Blink
	}

	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleStreamInterrupted(msg StreamInterruptedMsg) (Model, tea.Cmd) {
	m.store.UpdateMessage(msg.ConversationID, msg.MessageID, model.Interrupt)

	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	m.finishStreaming()
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, textinput.Blink
}

// finishStreaming resets the streaming state and refocuses the input.
func (m *Model) finishStreaming() {
	m.state = StateReady
	m.isThinking = false
	m.streamingConvID = ""
	m.streamingMsgID = ""
	m.input.Focus()
}

// =============================================================================
// VIEWPORT UPDATE
// =============================================================================

func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderMessages())
}

// =============================================================================
// GETTERS
// =============================================================================

// GetState returns the current state.
func (m *Model) GetState() State {
	return m.state
}

// IsStreaming returns true while an answer is being received.
func (m *Model) IsStreaming() bool {
	return m.state == StateStreaming
}
