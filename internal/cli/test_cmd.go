// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// test_cmd.go - assistant test suite generation and test runs.
package cli

import (
	"context"
	"fmt"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/config"
	"github.com/bot360/bot360-tui/internal/tasks"
)

// HandleTest routes the test suite subcommands.
func HandleTest(args Args) {
	cfg, client := Setup(args)
	ctx, cancel := SignalContext()
	defer cancel()

	switch args.Subcommand {
	case "generate":
		testGenerate(ctx, client, args)
	case "run":
		testRun(ctx, cfg, client, args)
	case "watch":
		testWatch(ctx, cfg, client, args)
	case "results":
		testResults(ctx, client, args)
	default:
		Fatalf("Unknown test subcommand: %s", args.Subcommand)
	}
}

func testGenerate(ctx context.Context, client *api.Client, args Args) {
	modelUUID := secondArg(args, "test generate <uuid> [--mode quick|normal|extensive] [--ai]")
	mode := args.Mode
	if mode == "" {
		mode = api.TestModeNormal
	}
	useAI := args.Options["ai"] == "true"

	suite, err := client.GenerateTestSuite(ctx, modelUUID, mode, useAI)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Generating test suite failed: %v", err)
	}

	if args.JSON {
		printJSON(suite)
		return
	}
	fmt.Println(TitleStyle.Render(fmt.Sprintf("Generated %d cases", len(suite.Cases))))
	for i, tc := range suite.Cases {
		fmt.Printf("  %2d. %s\n", i+1, tc.Question)
		fmt.Printf("      %s\n", DimStyle.Render(tc.ExpectedAnswer))
	}
}

func testRun(ctx context.Context, cfg *config.Config, client *api.Client, args Args) {
	modelUUID := secondArg(args, "test run <uuid> [--follow]")

	run, err := client.StartTestRun(ctx, modelUUID)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Starting test run failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render("Started test run "+run.ID) +
		DimStyle.Render(fmt.Sprintf(" (%d cases)", len(run.TaskIDs))))

	if args.Options["follow"] != "true" {
		fmt.Println(DimStyle.Render("Follow with: bot360 test watch " + run.ID))
		return
	}
	followRun(ctx, cfg, client, run.ID)
}

func testWatch(ctx context.Context, cfg *config.Config, client *api.Client, args Args) {
	runID := secondArg(args, "test watch <run-id>")
	followRun(ctx, cfg, client, runID)
}

// followRun polls the run through the job tracker and prints progress
// notifications until the run reaches its terminal status.
func followRun(ctx context.Context, cfg *config.Config, client *api.Client, runID string) {
	tracker := tasks.NewTracker()

	var final api.TestRunResults
	job := tracker.Start(tasks.KindTestRun, runID, func(jobCtx context.Context, report func(completed, total int, note string)) error {
		pollCtx, cancel := context.WithTimeout(jobCtx, cfg.PollTimeout())
		defer cancel()

		results, err := client.WatchTestRun(pollCtx, runID, cfg.PollInterval(), func(snapshot api.TestRunResults) {
			report(snapshot.Completed, snapshot.Total, snapshot.Status)
			fmt.Println(DimStyle.Render(fmt.Sprintf("  %d/%d cases (%s)", snapshot.Completed, snapshot.Total, snapshot.Status)))
		})
		if err != nil {
			return err
		}
		final = results
		return nil
	})

	// Ctrl-C cancels the poll rather than abandoning it.
	go func() {
		<-ctx.Done()
		job.Cancel()
	}()

	for note := range tracker.Notifications() {
		if note.JobID != job.ID {
			continue
		}
		if note.Status != tasks.StatusRunning {
			break
		}
	}

	switch job.Status() {
	case tasks.StatusComplete:
		printRunResults(final)
	case tasks.StatusCanceled:
		Fatalf("Watch canceled.")
	default:
		if err := FailOnAuth(job.Err()); err != nil {
			Fatalf("Watching test run failed: %v", err)
		}
	}
}

func testResults(ctx context.Context, client *api.Client, args Args) {
	runID := secondArg(args, "test results <run-id>")
	results, err := client.TestRunResults(ctx, runID)
	if err = FailOnAuth(err); err != nil {
		Fatalf("Fetching results failed: %v", err)
	}
	printRunResults(results)
}

func printRunResults(r api.TestRunResults) {
	fmt.Println(TitleStyle.Render(fmt.Sprintf("Test run: %s (%d/%d)", r.Status, r.Completed, r.Total)))
	passed := 0
	for _, res := range r.Results {
		marker := ErrorStyle.Render("FAIL")
		if res.Passed {
			marker = SuccessStyle.Render("PASS")
			passed++
		}
		fmt.Printf("  %s  %.2f  %s\n", marker, res.Score, res.Question)
	}
	if len(r.Results) > 0 {
		fmt.Println(DimStyle.Render(fmt.Sprintf("%d/%d passed", passed, len(r.Results))))
	}
}
