// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for corpdoc.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/corpdoc-tui/internal/config"
	"github.com/jeranaias/corpdoc-tui/internal/rag"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdDocs
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Backend string // override backend URL

	// Command-specific
	Query      string
	Stream     bool
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `corpdoc - terminal client for the corporate knowledge-base assistant

Corpdoc talks to a RAG backend that answers questions from your company's
document library. It provides a chat TUI, document management, and one-shot
question answering.

Usage:
  corpdoc                    Start TUI (default)
  corpdoc ask "question"     Ask a single question
  corpdoc docs [subcommand]  Document management
  corpdoc status             Show backend status
  corpdoc config [show]      Configuration
  corpdoc version            Show version
  corpdoc help               Show this help

Ask Command:
  corpdoc ask "What is the travel policy?"
    --stream                 Stream the answer token by token
    --json                   Output answer and sources as JSON

Document Commands:
  corpdoc docs list          List documents in the knowledge base
  corpdoc docs upload FILE   Upload a document
  corpdoc docs delete ID     Delete a document by ID
    --json                   Output in JSON format

Global Flags:
  --backend URL   Override backend URL (also: CORPDOC_BACKEND_URL)
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format

Examples:
  corpdoc                                  Start TUI interface
  corpdoc ask "What is the PTO policy?"    Ask a single question
  corpdoc ask --stream "Summarize the onboarding guide"
  corpdoc docs list                        List knowledge-base documents
  corpdoc docs upload ./handbook.pdf       Upload a document
  corpdoc status                           Check backend health

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("corpdoc version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	// No remaining args: default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "docs", "documents", "doc":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdDocs, parsedArgs

	case "status", "s", "health":
		return CmdStatus, parsedArgs

	case "config":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdConfig, parsedArgs

	case "version", "--version", "-V":
		return CmdVersion, parsedArgs

	case "help", "--help", "-h":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: treat as a question for ask, matching the
		// common "corpdoc what is X" muscle memory.
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags, returning remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	parsed := Args{}
	remaining := make([]string, 0, len(args))

	i := 0
	for i < len(args) {
		switch args[i] {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--backend":
			if i+1 < len(args) {
				parsed.Backend = args[i+1]
				i++
			}
		default:
			if strings.HasPrefix(args[i], "--backend=") {
				parsed.Backend = strings.TrimPrefix(args[i], "--backend=")
			} else {
				remaining = append(remaining, args[i])
			}
		}
		i++
	}

	return remaining, parsed
}

// parseAskArgs parses ask-specific flags and assembles the question from
// the remaining positional args.
func parseAskArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Stream = parser.BoolFlag("stream")
	if parser.BoolFlag("json") {
		args.JSON = true
	}
	args.Query = JoinPositionalArgs(parser, 0)
}

// =============================================================================
// CLIENT CONSTRUCTION
// =============================================================================

// NewBackendClient builds the RAG client from configuration plus any
// --backend override.
func NewBackendClient(args Args) *rag.Client {
	cfg := config.Global()

	baseURL := cfg.Backend.URL
	if args.Backend != "" {
		baseURL = args.Backend
	}

	return rag.NewClientWithConfig(&rag.ClientConfig{
		BaseURL:       baseURL,
		Timeout:       time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		UploadTimeout: time.Duration(cfg.Backend.UploadTimeoutSecs) * time.Second,
	})
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfigCommand handles the "config" command.
func HandleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		cfg := config.Global()
		path, _ := config.ConfigPath()
		fmt.Printf("Config file: %s\n\n", path)
		fmt.Printf("backend.url          = %s\n", cfg.Backend.URL)
		fmt.Printf("backend.timeout_secs = %d\n", cfg.Backend.TimeoutSecs)
		fmt.Printf("history.path         = %s\n", cfg.History.Path)
		fmt.Printf("ui.theme             = %s\n", cfg.UI.Theme)
		return nil

	case "init":
		if err := config.Save(config.Global()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		path, _ := config.ConfigPath()
		fmt.Printf("Wrote %s\n", path)
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s (try: show, init)", args.Subcommand)
	}
}
