// bot360 - terminal client for the Bot360 assistant platform.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bot360/bot360-tui/internal/cli"
	"github.com/bot360/bot360-tui/internal/config"
	"github.com/bot360/bot360-tui/internal/storage"
	"github.com/bot360/bot360-tui/internal/ui/chat"
	"github.com/bot360/bot360-tui/internal/ui/preview"
	"github.com/bot360/bot360-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
	// All diagnostics go to stderr; stdout belongs to command output and
	// the TUI's alternate screen.
	log.SetOutput(os.Stderr)
	log.SetFlags(0)
	log.SetPrefix("bot360: ")
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdChat:
		runChatTUI(args)
	case cli.CmdPreview:
		runPreviewTUI(args)
	case cli.CmdLogin:
		cli.HandleLogin(args)
	case cli.CmdRegister:
		cli.HandleRegister(args)
	case cli.CmdLogout:
		cli.HandleLogout(args)
	case cli.CmdAssistant:
		cli.HandleAssistant(args)
	case cli.CmdKB:
		cli.HandleKB(args)
	case cli.CmdTest:
		cli.HandleTest(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdHistory:
		cli.HandleHistory(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		cli.PrintUsage()
		os.Exit(2)
	}
}

func runChatTUI(args cli.Args) {
	if !cli.IsTTY() {
		cli.Fatalf("The chat TUI requires an interactive terminal. See `bot360 help`.")
	}
	cfg, client := cli.Setup(args)
	theme := styles.NewTheme(cfg.UI.Theme)

	var history *storage.History
	if cfg.History.Enabled {
		h, err := storage.Open(cfg.History.Path)
		if err != nil {
			// Archiving is best effort; chat works without it.
			log.Printf("history disabled: %v", err)
		} else {
			history = h
			defer h.Close()
		}
	}

	m := chat.New(client, cfg, theme, history)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	watcher := watchConfig(p)
	if watcher != nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "bot360: %v\n", err)
		os.Exit(1)
	}
}

func runPreviewTUI(args cli.Args) {
	if !cli.IsTTY() {
		cli.Fatalf("The preview requires an interactive terminal.")
	}
	cfg, client := cli.Setup(args)
	theme := styles.NewTheme(cfg.UI.Theme)

	m := preview.New(client, cfg, theme, args.ModelUUID)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "bot360: %v\n", err)
		os.Exit(1)
	}
}

// watchConfig reloads config.toml on change so edits apply to the next
// send without restarting. The fresh instance is delivered to the update
// loop as a message; the watcher goroutine must not write the config the
// views are reading. Returns nil when watching is unavailable.
func watchConfig(p *tea.Program) *config.Watcher {
	w, err := config.NewWatcher(300 * time.Millisecond)
	if err != nil {
		return nil
	}
	w.Subscribe(func(fresh *config.Config) {
		p.Send(chat.ConfigReloadedMsg{Cfg: fresh})
	})
	if err := w.Watch(); err != nil {
		w.Close()
		return nil
	}
	return w
}
