// corpdoc TUI - A terminal client for the corporate knowledge-base assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/corpdoc-tui/internal/cli"
	"github.com/jeranaias/corpdoc-tui/internal/config"
	"github.com/jeranaias/corpdoc-tui/internal/rag"
	"github.com/jeranaias/corpdoc-tui/internal/store"
	"github.com/jeranaias/corpdoc-tui/internal/ui/chat"
	"github.com/jeranaias/corpdoc-tui/internal/ui/docs"
	"github.com/jeranaias/corpdoc-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

// programSend delivers a message to the running program, if any.
func programSend(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		if err := cli.HandleAskCommand(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdDocs:
		if err := cli.HandleDocsCommand(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdStatus:
		if err := cli.HandleStatus(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdConfig:
		if err := cli.HandleConfigCommand(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

// runTUI starts the interactive terminal interface.
func runTUI(args cli.Args) {
	cfg := config.Global()

	theme := styles.NewTheme()
	client := cli.NewBackendClient(args)

	historyPath, err := cfg.HistoryPath()
	if err != nil {
		// No resolvable home directory: fall back to the working directory.
		historyPath = "corpdoc-history.json"
	}
	persister := store.NewFilePersister(historyPath)
	st := store.New(persister)

	m := newAppModel(theme, client, st)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running corpdoc: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// page identifies the visible page of the TUI.
type page int

const (
	pageChat page = iota
	pageDocs
)

// appModel is the root Bubble Tea model. It owns the page switcher, the
// health poll, and the streaming lifecycle: the chat page requests a
// stream, the root model runs it in a goroutine and feeds events back
// through the program reference.
type appModel struct {
	theme  *styles.Theme
	client *rag.Client
	store  *store.Store

	page page
	chat chat.Model
	docs docs.Model

	width  int
	height int

	health    *rag.HealthResponse
	healthErr error

	cancelMgr *cancelManager
}

func newAppModel(theme *styles.Theme, client *rag.Client, st *store.Store) appModel {
	return appModel{
		theme:     theme,
		client:    client,
		store:     st,
		page:      pageChat,
		chat:      chat.New(theme, st),
		docs:      docs.New(theme, client),
		cancelMgr: newCancelManager(),
	}
}

// =============================================================================
// HEALTH POLLING
// =============================================================================

const healthPollInterval = 30 * time.Second

type healthMsg struct {
	health *rag.HealthResponse
	err    error
}

type healthTickMsg struct{}

func checkHealthCmd(client *rag.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		health, err := client.Health(ctx)
		return healthMsg{health: health, err: err}
	}
}

func healthTickCmd() tea.Cmd {
	return tea.Tick(healthPollInterval, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		m.chat.Init(),
		m.docs.Init(),
		checkHealthCmd(m.client),
		healthTickCmd(),
	)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case chat.StreamRequestMsg:
		return m, m.startStreamCmd(msg)

	case chat.CancelStreamMsg:
		m.cancelMgr.cancelActive()
		return m, nil

	case chat.StreamStartMsg, chat.StreamEventMsg, chat.StreamInterruptedMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case docs.LoadedMsg, docs.UploadedMsg, docs.DeletedMsg:
		var cmd tea.Cmd
		m.docs, cmd = m.docs.Update(msg)
		return m, cmd

	case healthMsg:
		m.health = msg.health
		m.healthErr = msg.err
		return m, nil

	case healthTickMsg:
		return m, tea.Batch(checkHealthCmd(m.client), healthTickCmd())

	case spinner.TickMsg:
		// Both pages animate with the same tick type.
		var chatCmd, docsCmd tea.Cmd
		m.chat, chatCmd = m.chat.Update(msg)
		m.docs, docsCmd = m.docs.Update(msg)
		return m, tea.Batch(chatCmd, docsCmd)
	}

	return m.forwardToActivePage(msg)
}

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	switch m.page {
	case pageDocs:
		body = m.docs.View()
	default:
		body = m.chat.View()
	}

	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = lipgloss.NewStyle().
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(body)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusBar(),
	)
}

// =============================================================================
// ROOT MESSAGE HANDLERS
// =============================================================================

func (m appModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// Header and status bar take one line each.
	inner := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 2}

	var chatCmd, docsCmd tea.Cmd
	m.chat, chatCmd = m.chat.Update(inner)
	m.docs, docsCmd = m.docs.Update(inner)
	return m, tea.Batch(chatCmd, docsCmd)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+q":
		return m, tea.Quit

	case "ctrl+c":
		if m.chat.IsStreaming() {
			m.cancelMgr.cancelActive()
			return m, nil
		}
		return m, tea.Quit

	case "tab":
		if m.page == pageChat {
			m.page = pageDocs
		} else {
			m.page = pageChat
		}
		return m, nil
	}

	return m.forwardToActivePage(msg)
}

func (m appModel) forwardToActivePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case pageDocs:
		m.docs, cmd = m.docs.Update(msg)
	default:
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// STREAMING
// =============================================================================

// startStreamCmd runs the streaming query in a goroutine, feeding each
// decoded event back into the program. A dropped connection or a user
// cancel becomes a StreamInterruptedMsg; any other failure is surfaced
// as an error event so the reducer records it on the message.
func (m appModel) startStreamCmd(req chat.StreamRequestMsg) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	client := m.client
	return func() tea.Msg {
		go func() {
			defer cancel()

			err := client.QueryStream(ctx, req.Question, func(ev rag.StreamEvent) {
				programSend(chat.StreamEventMsg{
					ConversationID: req.ConversationID,
					MessageID:      req.MessageID,
					Event:          ev,
				})
			})

			switch {
			case err == nil:
				// Terminal event already delivered through the callback.

			case ctx.Err() != nil || rag.IsStreamInterrupted(err):
				programSend(chat.StreamInterruptedMsg{
					ConversationID: req.ConversationID,
					MessageID:      req.MessageID,
				})

			default:
				programSend(chat.StreamEventMsg{
					ConversationID: req.ConversationID,
					MessageID:      req.MessageID,
					Event: rag.StreamEvent{
						Type:    rag.EventError,
						Content: err.Error(),
					},
				})
			}
		}()

		return chat.StreamStartMsg{
			ConversationID: req.ConversationID,
			MessageID:      req.MessageID,
			StartTime:      time.Now(),
		}
	}
}

// cancelManager guards the in-flight stream's cancel function. A pointer
// is held by the model so Bubble Tea's value copies share one mutex.
type cancelManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

func (c *cancelManager) set(cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
}

func (c *cancelManager) cancelActive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// =============================================================================
// CHROME
// =============================================================================

// renderHeader renders the title bar with the page tabs.
func (m appModel) renderHeader() string {
	title := m.theme.HeaderTitle.Render("corpdoc")

	chatTab := m.theme.Tab.Render("Chat")
	docsTab := m.theme.Tab.Render("Documents")
	if m.page == pageChat {
		chatTab = m.theme.TabActive.Render("Chat")
	} else {
		docsTab = m.theme.TabActive.Render("Documents")
	}

	content := title + "  " + chatTab + docsTab

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Width(m.width).
		Padding(0, 1).
		Render(content)
}

// renderStatusBar renders the bottom bar: backend health, document count,
// streaming badge, and key hints.
func (m appModel) renderStatusBar() string {
	var backend string
	switch {
	case m.healthErr != nil:
		backend = m.theme.BackendDown.Render("backend: unreachable")
	case m.health != nil && m.health.Healthy():
		backend = m.theme.BackendHealthy.Render(fmt.Sprintf(
			"backend: ok (%d docs)", m.health.Components.KnowledgeBaseDocuments))
	case m.health != nil:
		backend = m.theme.BackendDown.Render("backend: " + m.health.Status)
	default:
		backend = m.theme.ShortcutDesc.Render("backend: checking...")
	}

	var badge string
	if m.chat.IsStreaming() {
		badge = "  " + m.theme.StreamingBadge.Render("[streaming]")
	}

	hints := m.theme.ShortcutKey.Render("Tab") + m.theme.ShortcutDesc.Render(" switch page  ") +
		m.theme.ShortcutKey.Render("C-n") + m.theme.ShortcutDesc.Render(" new chat  ") +
		m.theme.ShortcutKey.Render("C-c") + m.theme.ShortcutDesc.Render(" quit")

	return m.theme.StatusBar.
		Width(m.width).
		Render(backend + badge + "  " + hints)
}
