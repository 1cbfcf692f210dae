// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing and command routing for bot360.
package cli

import (
	"fmt"
	"os"
	"strings"
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
	CmdChat Command = iota
	CmdPreview
	CmdLogin
	CmdRegister
	CmdLogout
	CmdAssistant
	CmdKB
	CmdTest
	CmdConfig
	CmdHistory
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose   bool
	JSON      bool
	BaseURL   string
	ModelUUID string

	// Command-specific
	Subcommand string
	File       string
	Mode       string
	Raw        []string

	// Options holds named options not covered above (e.g. --name).
	Options map[string]string
}

const usageText = `bot360 - terminal client for the Bot360 assistant platform

Usage:
  bot360                       Start the chat TUI (default)
  bot360 chat                  Start the chat TUI
  bot360 preview               WhatsApp-style widget preview
    --assistant UUID           Preview a specific saved configuration
  bot360 login                 Sign in and store the session
  bot360 register              Create an account
  bot360 logout                Clear the stored session
  bot360 assistant <subcmd>    Saved assistant configurations
      list                     List configurations
      show <uuid>              Show one configuration
      save --file FILE         Validate and save a configuration (JSON)
      delete <uuid>            Delete a configuration
  bot360 kb <subcmd>           Knowledge bases
      list                     List knowledge bases
      create --name NAME       Create an empty knowledge base
      show <id>                List documents and links
      add-link <id> URL        Attach a website link
      wait <id>                Block until indexing finishes
      delete <id>              Delete a knowledge base
  bot360 test <subcmd>         Assistant test suites
      generate <uuid>          Draft a test suite
        --mode quick|normal|extensive
        --ai                   Synthesize cases from knowledge bases
      run <uuid>               Start a test run
        --follow               Watch until it finishes
      watch <run-id>           Follow a running test run
      results <run-id>         Show a run's current results
  bot360 config <subcmd>       Local configuration
      show                     Print the effective configuration
      set <key> <value>        Update one key
      path                     Print the config file location
  bot360 history <subcmd>      Archived conversations
      list                     List saved conversations
      show <id>                Print one conversation
      delete <id>              Delete one conversation
  bot360 version               Print version information

Global flags:
  --verbose                    Log requests to stderr
  --json                       Machine-readable output where supported
  --base-url URL               Override the backend URL for this run

Environment:
  BOT360_CONFIG_DIR            Override ~/.bot360
  BOT360_BASE_URL              Override the backend URL
`

// Parse reads os.Args and resolves the command to run.
func Parse() (Command, Args) {
	args := os.Args[1:]
	remaining, parsed := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdChat, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		parsed.Subcommand = remaining[0]
	}

	switch cmd {
	case "chat", "tui":
		return CmdChat, parsed
	case "preview", "wa":
		return CmdPreview, parsed
	case "login":
		return CmdLogin, parsed
	case "register", "signup":
		return CmdRegister, parsed
	case "logout":
		return CmdLogout, parsed
	case "assistant", "assistants":
		return CmdAssistant, parsed
	case "kb", "knowledge":
		return CmdKB, parsed
	case "test", "tests":
		return CmdTest, parsed
	case "config":
		return CmdConfig, parsed
	case "history":
		return CmdHistory, parsed
	case "version", "-v", "--version":
		return CmdVersion, parsed
	case "help", "-h", "--help":
		return CmdHelp, parsed
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts flags that apply to every command. Named
// options with values are collected into Options so subcommand handlers
// can read them without re-scanning.
func parseGlobalFlags(args []string) ([]string, Args) {
	parsed := Args{Options: make(map[string]string)}
	var remaining []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--ai", "--follow":
			parsed.Options[strings.TrimPrefix(arg, "--")] = "true"
		case "--base-url", "--assistant", "--file", "--mode", "--name":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "Missing value for %s\n", arg)
				os.Exit(2)
			}
			i++
			val := args[i]
			switch arg {
			case "--base-url":
				parsed.BaseURL = val
			case "--assistant":
				parsed.ModelUUID = val
			case "--file":
				parsed.File = val
			case "--mode":
				parsed.Mode = val
			default:
				parsed.Options[strings.TrimPrefix(arg, "--")] = val
			}
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

// PrintUsage writes the top-level help text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information.
func PrintVersion() {
	fmt.Printf("bot360 %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
