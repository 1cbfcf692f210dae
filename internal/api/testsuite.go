// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// TEST SUITES
// =============================================================================

// Test-suite generation modes, ordered by how many cases the backend
// produces.
const (
	TestModeQuick     = "quick"
	TestModeNormal    = "normal"
	TestModeExtensive = "extensive"
)

// TestRunFinished is the terminal status of a test run.
const TestRunFinished = "finished"

// TestCase is one question/expectation pair of an assistant's test suite.
type TestCase struct {
	ID             int    `json:"id,omitempty"`
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
}

// TestSuite is the full case list for one assistant configuration.
type TestSuite struct {
	ModelUUID string     `json:"model_uuid"`
	Cases     []TestCase `json:"cases"`
}

// TestRun identifies a started execution and its per-case task ids.
type TestRun struct {
	ID      string   `json:"test_run_id"`
	TaskIDs []string `json:"task_ids"`
}

// TestResult is the outcome of one executed case.
type TestResult struct {
	Question string  `json:"question"`
	Expected string  `json:"expected_answer"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
	Passed   bool    `json:"passed"`
}

// TestRunResults is a point-in-time snapshot of a run. Status is
// TestRunFinished once every case has executed.
type TestRunResults struct {
	Status    string       `json:"status"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Results   []TestResult `json:"results"`
}

// GenerateTestSuite asks the backend to draft a test suite for a saved
// configuration. With useAI the cases are synthesized from the attached
// knowledge bases; otherwise a generic template is returned.
func (c *Client) GenerateTestSuite(ctx context.Context, modelUUID, mode string, useAI bool) (TestSuite, error) {
	switch mode {
	case TestModeQuick, TestModeNormal, TestModeExtensive:
	default:
		return TestSuite{}, fmt.Errorf("unknown test-suite mode %q", mode)
	}

	var out TestSuite
	err := c.postJSON(ctx, "/api/analytics/generate-test-suite/", map[string]any{
		"model_uuid": modelUUID,
		"mode":       mode,
		"use_ai":     useAI,
	}, &out)
	if err != nil {
		return TestSuite{}, err
	}
	if out.ModelUUID == "" {
		out.ModelUUID = modelUUID
	}
	return out, nil
}

// UpdateTestSuite replaces the stored case list after manual edits.
func (c *Client) UpdateTestSuite(ctx context.Context, suite TestSuite) error {
	return c.postJSON(ctx, "/api/analytics/update-test-suite/", suite, nil)
}

// StartTestRun begins executing the stored suite against the configured
// assistant and returns the run handle for polling.
func (c *Client) StartTestRun(ctx context.Context, modelUUID string) (TestRun, error) {
	var out TestRun
	err := c.postJSON(ctx, "/api/analytics/start-test-suite/", map[string]string{
		"model_uuid": modelUUID,
	}, &out)
	if err != nil {
		return TestRun{}, err
	}
	return out, nil
}

// TestRunResults fetches a run snapshot.
func (c *Client) TestRunResults(ctx context.Context, runID string) (TestRunResults, error) {
	var out TestRunResults
	if err := c.getJSON(ctx, "/api/analytics/test-suite-results/"+runID+"/", &out); err != nil {
		return TestRunResults{}, err
	}
	return out, nil
}

// WatchTestRun polls the run at a fixed cadence until it finishes or ctx
// is cancelled. Every snapshot, including intermediate ones, is delivered
// to onUpdate so a progress display can follow along. Test execution is
// backend-side with no push channel; fixed-backoff polling is the
// observation contract.
func (c *Client) WatchTestRun(ctx context.Context, runID string, interval time.Duration, onUpdate func(TestRunResults)) (TestRunResults, error) {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return TestRunResults{}, err
		}
		snapshot, err := c.TestRunResults(ctx, runID)
		if err != nil {
			return TestRunResults{}, err
		}
		if onUpdate != nil {
			onUpdate(snapshot)
		}
		if snapshot.Status == TestRunFinished {
			return snapshot, nil
		}
	}
}
