// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// JOB STATES
// =============================================================================

// Status is the lifecycle state of a tracked job.
type Status string

const (
	StatusRunning  Status = "Running"
	StatusComplete Status = "Complete"
	StatusFailed   Status = "Failed"
	StatusCanceled Status = "Canceled"
)

// Kind names what kind of backend job is being observed.
type Kind string

const (
	KindTestRun  Kind = "test-run"
	KindIndexing Kind = "indexing"
)

// =============================================================================
// JOB
// =============================================================================

// Job is one observed backend job. Fields under mu are updated by the
// polling goroutine and read by the UI.
type Job struct {
	ID   string
	Kind Kind
	// Label is the human-readable subject, e.g. the assistant name or
	// knowledge base being watched.
	Label string

	mu        sync.RWMutex
	status    Status
	note      string
	completed int
	total     int
	err       error
	started   time.Time
	finished  time.Time

	cancel context.CancelFunc
}

func newJob(kind Kind, label string, cancel context.CancelFunc) *Job {
	return &Job{
		ID:      uuid.NewString(),
		Kind:    kind,
		Label:   label,
		status:  StatusRunning,
		started: time.Now(),
		cancel:  cancel,
	}
}

// Status returns the job's lifecycle state.
func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Progress returns completed/total counts; total is 0 when the backend
// has not reported a size yet.
func (j *Job) Progress() (completed, total int) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.completed, j.total
}

// Err returns the failure cause for StatusFailed jobs.
func (j *Job) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.err
}

// Duration reports how long the job has run, or took.
func (j *Job) Duration() time.Duration {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.finished.IsZero() {
		return time.Since(j.started)
	}
	return j.finished.Sub(j.started)
}

// Cancel stops the job's polling loop. Safe to call in any state.
func (j *Job) Cancel() {
	j.cancel()
}

// Summary renders a one-line status for the TUI status bar.
func (j *Job) Summary() string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	s := fmt.Sprintf("[%s] %s %s", j.Kind, j.Label, j.status)
	if j.total > 0 && j.status == StatusRunning {
		s += fmt.Sprintf(" %d/%d", j.completed, j.total)
	}
	if j.note != "" {
		s += " - " + j.note
	}
	return s
}

func (j *Job) report(completed, total int, note string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.completed = completed
	j.total = total
	j.note = note
}

func (j *Job) finish(err error, canceled bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finished = time.Now()
	switch {
	case canceled:
		j.status = StatusCanceled
	case err != nil:
		j.status = StatusFailed
		j.err = err
	default:
		j.status = StatusComplete
	}
}
