// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// assistant_cmd.go - saved assistant configuration management.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/util"
)

// HandleAssistant routes the assistant subcommands.
func HandleAssistant(args Args) {
	_, client := Setup(args)
	ctx, cancel := SignalContext()
	defer cancel()

	switch args.Subcommand {
	case "list", "":
		assistantList(ctx, client, args)
	case "show":
		assistantShow(ctx, client, args)
	case "save":
		assistantSave(ctx, client, args)
	case "delete":
		assistantDelete(ctx, client, args)
	default:
		Fatalf("Unknown assistant subcommand: %s", args.Subcommand)
	}
}

func assistantList(ctx context.Context, client *api.Client, args Args) {
	list, err := client.ListAssistants(ctx)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Listing assistants failed: %v", err)
	}

	if args.JSON {
		printJSON(list)
		return
	}
	if len(list) == 0 {
		fmt.Println(DimStyle.Render("No saved assistants."))
		return
	}
	fmt.Println(TitleStyle.Render("Saved assistants"))
	for _, a := range list {
		name := "(unnamed)"
		if a.AgentName != nil && *a.AgentName != "" {
			name = *a.AgentName
		}
		fmt.Printf("  %s  %s  %s\n", a.UUID, util.PadWidth(name, 24), DimStyle.Render(a.Model))
	}
}

func assistantShow(ctx context.Context, client *api.Client, args Args) {
	id := secondArg(args, "assistant show <uuid>")
	cfg, err := client.GetConfiguration(ctx, id)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Fetching configuration failed: %v", err)
	}
	printJSON(cfg)
}

func assistantSave(ctx context.Context, client *api.Client, args Args) {
	if args.File == "" {
		Fatalf("Usage: bot360 assistant save --file config.json")
	}
	data, err := os.ReadFile(args.File)
	if err != nil {
		Fatalf("Cannot read %s: %v", args.File, err)
	}

	cfg := api.DefaultAssistantConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		Fatalf("Invalid configuration JSON: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		Fatalf("Invalid configuration: %v", err)
	}

	id, err := client.SaveConfiguration(ctx, cfg)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Saving configuration failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render("Saved assistant " + id + "."))
}

func assistantDelete(ctx context.Context, client *api.Client, args Args) {
	id := secondArg(args, "assistant delete <uuid>")
	if err := FailOnAuth(client.DeleteConfiguration(ctx, id)); err != nil {
		Fatalf("Deleting configuration failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render("Deleted assistant " + id + "."))
}
