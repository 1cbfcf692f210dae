// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// kb_cmd.go - knowledge base management.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/config"
	"github.com/bot360/bot360-tui/internal/util"
)

// HandleKB routes the knowledge base subcommands.
func HandleKB(args Args) {
	cfg, client := Setup(args)
	ctx, cancel := SignalContext()
	defer cancel()

	switch args.Subcommand {
	case "list", "":
		kbList(ctx, client, args)
	case "create":
		kbCreate(ctx, client, args)
	case "show":
		kbShow(ctx, client, args)
	case "add-link":
		kbAddLink(ctx, client, args)
	case "wait":
		kbWait(ctx, cfg, client, args)
	case "delete":
		kbDelete(ctx, client, args)
	default:
		Fatalf("Unknown kb subcommand: %s", args.Subcommand)
	}
}

func kbID(args Args, usage string) int {
	raw := secondArg(args, usage)
	id, err := strconv.Atoi(raw)
	if err != nil {
		Fatalf("Knowledge base id must be a number, got %q", raw)
	}
	return id
}

func kbList(ctx context.Context, client *api.Client, args Args) {
	list, err := client.ListKnowledgeBases(ctx)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Listing knowledge bases failed: %v", err)
	}

	if args.JSON {
		printJSON(list)
		return
	}
	if len(list) == 0 {
		fmt.Println(DimStyle.Render("No knowledge bases."))
		return
	}
	fmt.Println(TitleStyle.Render("Knowledge bases"))
	for _, kb := range list {
		// fmt's %-30s pads by byte count and drifts on CJK names.
		fmt.Printf("  %4d  %s %s\n", kb.ID, util.PadWidth(kb.Name, 30), DimStyle.Render(kb.Status))
	}
}

func kbCreate(ctx context.Context, client *api.Client, args Args) {
	name := args.Options["name"]
	if name == "" {
		Fatalf("Usage: bot360 kb create --name NAME")
	}
	kb, err := client.CreateKnowledgeBase(ctx, name)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Creating knowledge base failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Created knowledge base %d (%s).", kb.ID, kb.Name)))
}

func kbShow(ctx context.Context, client *api.Client, args Args) {
	id := kbID(args, "kb show <id>")

	docs, err := client.ListDocuments(ctx, id)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Listing documents failed: %v", err)
	}
	links, err := client.ListWebsiteLinks(ctx, id)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Listing links failed: %v", err)
	}

	if args.JSON {
		printJSON(map[string]any{"documents": docs, "links": links})
		return
	}
	fmt.Println(TitleStyle.Render(fmt.Sprintf("Knowledge base %d", id)))
	for _, d := range docs {
		fmt.Printf("  doc  %4d  %s (%d bytes)\n", d.ID, d.Name, d.Size)
	}
	for _, l := range links {
		fmt.Printf("  link %4d  %s\n", l.ID, l.URL)
	}
	if len(docs)+len(links) == 0 {
		fmt.Println(DimStyle.Render("  (empty)"))
	}
}

func kbAddLink(ctx context.Context, client *api.Client, args Args) {
	id := kbID(args, "kb add-link <id> URL")
	if len(args.Raw) < 3 {
		Fatalf("Usage: bot360 kb add-link <id> URL")
	}
	url := args.Raw[2]
	if err := FailOnAuth(client.AddWebsiteLink(ctx, id, url)); err != nil {
		Fatalf("Adding link failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render("Link queued for crawling."))
}

// kbWait blocks until the indexing pipeline reaches a terminal status.
func kbWait(ctx context.Context, cfg *config.Config, client *api.Client, args Args) {
	id := kbID(args, "kb wait <id>")

	waitCtx, cancel := context.WithTimeout(ctx, cfg.PollTimeout())
	defer cancel()

	fmt.Println(DimStyle.Render(fmt.Sprintf("Waiting for knowledge base %d to finish indexing...", id)))
	status, err := client.WaitForIndexing(waitCtx, id, cfg.PollInterval())
	switch {
	case errors.Is(err, api.ErrIndexingFailed):
		Fatalf("Indexing failed.")
	case err != nil:
		if FailOnAuth(err) != nil {
			Fatalf("Waiting failed: %v", err)
		}
	}
	fmt.Println(SuccessStyle.Render("Indexing " + status + "."))
}

func kbDelete(ctx context.Context, client *api.Client, args Args) {
	id := kbID(args, "kb delete <id>")
	if err := FailOnAuth(client.DeleteKnowledgeBase(ctx, id)); err != nil {
		Fatalf("Deleting knowledge base failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Deleted knowledge base %d.", id)))
}
