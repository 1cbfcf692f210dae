// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - local configuration management.
package cli

import (
	"fmt"
	"strconv"

	"github.com/bot360/bot360-tui/internal/config"
)

// HandleConfig routes the config subcommands.
func HandleConfig(args Args) {
	switch args.Subcommand {
	case "show", "":
		configShow(args)
	case "set":
		configSet(args)
	case "path":
		path, err := config.Path()
		if err != nil {
			Fatalf("Cannot resolve config path: %v", err)
		}
		fmt.Println(path)
	default:
		Fatalf("Unknown config subcommand: %s", args.Subcommand)
	}
}

func configShow(args Args) {
	cfg := config.Global()
	if args.JSON {
		printJSON(cfg)
		return
	}
	fmt.Println(TitleStyle.Render("bot360 configuration"))
	print2 := func(key string, val any) {
		fmt.Printf("  %s %v\n", LabelStyle.Render(key), val)
	}
	print2("server.base_url", cfg.Server.BaseURL)
	print2("server.timeout_seconds", cfg.Server.TimeoutSeconds)
	print2("chat.markdown", cfg.Chat.Markdown)
	print2("chat.repaint_fps", cfg.Chat.RepaintFPS)
	print2("preview.word_delay_ms", cfg.Preview.WordDelayMS)
	print2("preview.queue_size", cfg.Preview.QueueSize)
	print2("jobs.poll_interval_ms", cfg.Jobs.PollIntervalMS)
	print2("jobs.poll_timeout_minutes", cfg.Jobs.PollTimeoutMinutes)
	print2("ui.theme", cfg.UI.Theme)
	print2("history.enabled", cfg.History.Enabled)
	print2("history.path", cfg.History.Path)
}

func configSet(args Args) {
	if len(args.Raw) < 3 {
		Fatalf("Usage: bot360 config set <key> <value>")
	}
	key, value := args.Raw[1], args.Raw[2]

	cfg := config.Global()
	if err := applyConfigKey(cfg, key, value); err != nil {
		Fatalf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.Save(); err != nil {
		Fatalf("Saving configuration failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Set %s = %s", key, value)))
}

func applyConfigKey(cfg *config.Config, key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s expects a number, got %q", key, value)
		}
		return n, nil
	}
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		return b, nil
	}

	var err error
	switch key {
	case "server.base_url":
		cfg.Server.BaseURL = value
	case "server.timeout_seconds":
		cfg.Server.TimeoutSeconds, err = atoi()
	case "chat.markdown":
		cfg.Chat.Markdown, err = parseBool()
	case "chat.repaint_fps":
		cfg.Chat.RepaintFPS, err = atoi()
	case "preview.word_delay_ms":
		cfg.Preview.WordDelayMS, err = atoi()
	case "preview.queue_size":
		cfg.Preview.QueueSize, err = atoi()
	case "jobs.poll_interval_ms":
		cfg.Jobs.PollIntervalMS, err = atoi()
	case "jobs.poll_timeout_minutes":
		cfg.Jobs.PollTimeoutMinutes, err = atoi()
	case "ui.theme":
		cfg.UI.Theme = value
	case "history.enabled":
		cfg.History.Enabled, err = parseBool()
	case "history.path":
		cfg.History.Path = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return err
}
