// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, job *Job, want Status) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for job.Status() != want {
		select {
		case <-deadline:
			t.Fatalf("job never reached %s (stuck at %s)", want, job.Status())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestJobCompletesAndReportsProgress(t *testing.T) {
	tr := NewTracker()

	job := tr.Start(KindTestRun, "Bot360", func(ctx context.Context, report func(int, int, string)) error {
		report(1, 3, "warming up")
		report(3, 3, "")
		return nil
	})

	waitForStatus(t, job, StatusComplete)
	completed, total := job.Progress()
	assert.Equal(t, 3, completed)
	assert.Equal(t, 3, total)
	assert.NoError(t, job.Err())
}

func TestJobFailureCarriesError(t *testing.T) {
	tr := NewTracker()
	boom := errors.New("backend gone")

	job := tr.Start(KindIndexing, "faq-kb", func(ctx context.Context, report func(int, int, string)) error {
		return boom
	})

	waitForStatus(t, job, StatusFailed)
	assert.ErrorIs(t, job.Err(), boom)
}

func TestJobCancellation(t *testing.T) {
	tr := NewTracker()

	job := tr.Start(KindTestRun, "Bot360", func(ctx context.Context, report func(int, int, string)) error {
		<-ctx.Done()
		return ctx.Err()
	})

	job.Cancel()
	waitForStatus(t, job, StatusCanceled)
	assert.NoError(t, job.Err())
}

func TestNotificationsDeliverTerminalState(t *testing.T) {
	tr := NewTracker()

	job := tr.Start(KindTestRun, "Bot360", func(ctx context.Context, report func(int, int, string)) error {
		return nil
	})
	waitForStatus(t, job, StatusComplete)

	var got []Status
	for {
		select {
		case n := <-tr.Notifications():
			require.Equal(t, job.ID, n.JobID)
			got = append(got, n.Status)
		default:
			require.Contains(t, got, StatusComplete)
			return
		}
	}
}

func TestRunningAndCancelAll(t *testing.T) {
	tr := NewTracker()

	blocker := func(ctx context.Context, report func(int, int, string)) error {
		<-ctx.Done()
		return ctx.Err()
	}
	j1 := tr.Start(KindTestRun, "a", blocker)
	j2 := tr.Start(KindIndexing, "b", blocker)

	assert.Len(t, tr.Running(), 2)

	tr.CancelAll()
	waitForStatus(t, j1, StatusCanceled)
	waitForStatus(t, j2, StatusCanceled)
	assert.Empty(t, tr.Running())
}

func TestSummaryIncludesProgress(t *testing.T) {
	tr := NewTracker()
	started := make(chan struct{})

	job := tr.Start(KindTestRun, "Bot360", func(ctx context.Context, report func(int, int, string)) error {
		report(2, 5, "")
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	assert.Contains(t, job.Summary(), "2/5")
	job.Cancel()
	waitForStatus(t, job, StatusCanceled)
}
