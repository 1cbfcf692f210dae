// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - archived conversation management.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bot360/bot360-tui/internal/config"
	"github.com/bot360/bot360-tui/internal/model"
	"github.com/bot360/bot360-tui/internal/storage"
	"github.com/bot360/bot360-tui/internal/util"
)

// HandleHistory routes the history subcommands.
func HandleHistory(args Args) {
	cfg := config.Global()
	h, err := storage.Open(cfg.History.Path)
	if err != nil {
		Fatalf("Cannot open history: %v", err)
	}
	defer h.Close()

	ctx, cancel := SignalContext()
	defer cancel()

	switch args.Subcommand {
	case "list", "":
		historyList(ctx, h, args)
	case "show":
		historyShow(ctx, h, args)
	case "delete":
		historyDelete(ctx, h, args)
	default:
		Fatalf("Unknown history subcommand: %s", args.Subcommand)
	}
}

func historyConvID(args Args, usage string) int64 {
	raw := secondArg(args, usage)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		Fatalf("History id must be a number, got %q", raw)
	}
	return id
}

func historyList(ctx context.Context, h *storage.History, args Args) {
	list, err := h.List(ctx)
	if err != nil {
		Fatalf("Listing history failed: %v", err)
	}

	if args.JSON {
		printJSON(list)
		return
	}
	if len(list) == 0 {
		fmt.Println(DimStyle.Render("No archived conversations."))
		return
	}
	fmt.Println(TitleStyle.Render("Archived conversations"))
	for _, c := range list {
		fmt.Printf("  %4d  %s  %s\n", c.ID,
			c.UpdatedAt.Format("2006-01-02 15:04"),
			util.TruncateWidth(c.Title, 60))
	}
}

func historyShow(ctx context.Context, h *storage.History, args Args) {
	id := historyConvID(args, "history show <id>")
	msgs, err := h.Load(ctx, id)
	if err != nil {
		Fatalf("Loading conversation failed: %v", err)
	}

	if args.JSON {
		printJSON(msgs)
		return
	}
	for _, m := range msgs {
		label := "You"
		if m.Role == model.RoleAssistant {
			label = "Bot360"
		}
		fmt.Println(TitleStyle.Render(label))
		fmt.Println(m.Content)
		for _, g := range m.Graphs {
			fmt.Println(DimStyle.Render(fmt.Sprintf("[%s chart, %d points]", g.Kind, len(g.Points()))))
		}
		fmt.Println()
	}
}

func historyDelete(ctx context.Context, h *storage.History, args Args) {
	id := historyConvID(args, "history delete <id>")
	if err := h.Delete(ctx, id); err != nil {
		Fatalf("Deleting conversation failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Deleted conversation %d.", id)))
}
