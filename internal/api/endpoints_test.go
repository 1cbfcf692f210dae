// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewChatReturnsMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, previewChatPath, r.URL.Path)

		var req PreviewRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cfg-1", req.ModelUUID)

		w.Write([]byte(`{"message":"Hello from Bot360!"}`))
	}))

	msg, err := c.PreviewChat(context.Background(), PreviewRequest{
		Messages:  []ChatMessage{{Role: "user", Content: "hi"}},
		ModelUUID: "cfg-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello from Bot360!", msg)
}

func TestPreviewStreamRealignsMultibyteChunks(t *testing.T) {
	// "héllo 世界" with the server flushing mid-character.
	payload := []byte("héllo 世界 done")
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, b := range payload {
			w.Write([]byte{b})
			flusher.Flush()
		}
	}))

	var got strings.Builder
	err := c.PreviewStream(context.Background(), PreviewRequest{
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	}, func(chunk string) {
		assert.True(t, utf8.ValidString(chunk), "chunk must be whole UTF-8: %q", chunk)
		got.WriteString(chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, string(payload), got.String())
}

func TestPreviewRejectsEmptyInput(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := c.PreviewChat(context.Background(), PreviewRequest{})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestAssistantConfigValidate(t *testing.T) {
	cfg := DefaultAssistantConfig()
	require.NoError(t, cfg.Validate())

	cfg.Model = "gpt-2"
	assert.ErrorIs(t, cfg.Validate(), ErrUnsupportedModel)

	cfg = DefaultAssistantConfig()
	cfg.Temperature = 3
	assert.Error(t, cfg.Validate())

	cfg = DefaultAssistantConfig()
	cfg.MaxTokens = 0
	assert.Error(t, cfg.Validate())
}

func TestAssistantOptionalFieldsMarshalAsNull(t *testing.T) {
	cfg := DefaultAssistantConfig()
	cfg.Goal = nil
	cfg.ConversationTone = nil

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"goal":null`)
	assert.Contains(t, string(data), `"conversation_tone":null`)
	assert.Contains(t, string(data), `"agent_name":"Bot360"`)
}

func TestSaveConfigurationCreatesWithFreshUUID(t *testing.T) {
	var posted AssistantConfig
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analytics/save-configuration/", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.WriteHeader(http.StatusCreated)
	}))

	id, err := c.SaveConfiguration(context.Background(), DefaultAssistantConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, posted.UUID)
}

func TestSaveConfigurationUpdatesExisting(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analytics/assistant/config/abc-123/", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusOK)
	}))

	cfg := DefaultAssistantConfig()
	cfg.UUID = "abc-123"
	id, err := c.SaveConfiguration(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestWaitForIndexingTerminalStatuses(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analytics/knowledge-bases/7/status/", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Write([]byte(`{"status":"indexing"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	c, _ := newTestClient(t, mux)
	status, err := c.WaitForIndexing(context.Background(), 7, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, IndexStatusReady, status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitForIndexingFailed(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed"}`))
	}))
	status, err := c.WaitForIndexing(context.Background(), 1, time.Millisecond)
	assert.Equal(t, IndexStatusFailed, status)
	assert.ErrorIs(t, err, ErrIndexingFailed)
}

func TestWaitForIndexingHonorsCancellation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"indexing"}`))
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.WaitForIndexing(ctx, 1, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateTestSuiteValidatesMode(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid mode")
	}))
	_, err := c.GenerateTestSuite(context.Background(), "u1", "turbo", false)
	assert.Error(t, err)
}

func TestWatchTestRunPollsUntilFinished(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analytics/test-suite-results/run-9/", func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n < 3 {
			w.Write([]byte(`{"status":"running","completed":1,"total":3}`))
			return
		}
		w.Write([]byte(`{"status":"finished","completed":3,"total":3,"results":[{"question":"q","answer":"a","passed":true}]}`))
	})

	c, _ := newTestClient(t, mux)

	var snapshots []string
	final, err := c.WatchTestRun(context.Background(), "run-9", time.Millisecond, func(s TestRunResults) {
		snapshots = append(snapshots, s.Status)
	})
	require.NoError(t, err)

	assert.Equal(t, TestRunFinished, final.Status)
	require.Len(t, final.Results, 1)
	assert.True(t, final.Results[0].Passed)
	assert.Equal(t, []string{"running", "running", "finished"}, snapshots)
}

func TestStartTestRunReturnsHandle(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analytics/start-test-suite/", r.URL.Path)
		w.Write([]byte(`{"test_run_id":"run-1","task_ids":["t1","t2"]}`))
	}))

	run, err := c.StartTestRun(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Len(t, run.TaskIDs, 2)
}
