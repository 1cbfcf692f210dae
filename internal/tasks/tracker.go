// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"sync"
)

// Notification signals a job state change. The TUI turns these into
// status-line updates.
type Notification struct {
	JobID  string
	Kind   Kind
	Label  string
	Status Status
}

// PollFunc is the job body: a polling loop that reports progress through
// report and returns when the job reaches a terminal status or ctx ends.
type PollFunc func(ctx context.Context, report func(completed, total int, note string)) error

// Tracker owns the live job set.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*Job

	// notifications is buffered; if the UI falls behind, older
	// notifications are dropped in favor of newer ones.
	notifications chan Notification
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		jobs:          make(map[string]*Job),
		notifications: make(chan Notification, 32),
	}
}

// Notifications is consumed by the TUI event loop.
func (t *Tracker) Notifications() <-chan Notification {
	return t.notifications
}

// Start registers a job and runs its polling loop on a new goroutine.
func (t *Tracker) Start(kind Kind, label string, poll PollFunc) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	job := newJob(kind, label, cancel)

	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()

	go func() {
		defer cancel()
		err := poll(ctx, job.report)
		canceled := errors.Is(err, context.Canceled) || (err != nil && ctx.Err() != nil)
		if canceled {
			err = nil
		}
		job.finish(err, canceled)
		t.notify(job)
	}()

	t.notify(job)
	return job
}

// Get returns a job by id.
func (t *Tracker) Get(id string) (*Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	return job, ok
}

// Running returns the jobs still polling.
func (t *Tracker) Running() []*Job {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*Job
	for _, j := range t.jobs {
		if j.Status() == StatusRunning {
			out = append(out, j)
		}
	}
	return out
}

// CancelAll stops every live polling loop; called on TUI teardown.
func (t *Tracker) CancelAll() {
	for _, j := range t.Running() {
		j.Cancel()
	}
}

func (t *Tracker) notify(job *Job) {
	n := Notification{JobID: job.ID, Kind: job.Kind, Label: job.Label, Status: job.Status()}
	for {
		select {
		case t.notifications <- n:
			return
		default:
			// Drop the oldest queued notification.
			select {
			case <-t.notifications:
			default:
			}
		}
	}
}
