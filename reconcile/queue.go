// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Reconciler is the part of Engine the queue drives.
type Reconciler interface {
	Reconcile(ctx context.Context, proposalID string) (int, error)
	Pending(ctx context.Context) ([]string, error)
}

// Queue runs reconciliation passes on background workers.
type Queue struct {
	r       Reconciler
	jobs    chan string
	workers int
}

func NewQueue(r Reconciler, workers, capacity int) *Queue {
	if workers < 1 {
		workers = 1
	}
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{r: r, jobs: make(chan string, capacity), workers: workers}
}

// Enqueue schedules a pass without blocking. It returns false when the queue
// is full; the proposal stays pending and is picked up by the next sweep.
func (q *Queue) Enqueue(proposalID string) bool {
	select {
	case q.jobs <- proposalID:
		return true
	default:
		slog.Warn("reconcile queue full, proposal left pending", "proposal_id", proposalID)
		return false
	}
}

// Run starts the workers, queues every pending proposal, and blocks until
// ctx is cancelled. Jobs still queued at shutdown stay pending in storage.
func (q *Queue) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case id := <-q.jobs:
					n, err := q.r.Reconcile(ctx, id)
					if err != nil {
						slog.Error("background reconciliation failed", "proposal_id", id, "error", err)
						continue
					}
					slog.Debug("background reconciliation done", "proposal_id", id, "new_votes", n)
				}
			}
		})
	}

	g.Go(func() error {
		ids, err := q.r.Pending(ctx)
		if err != nil {
			slog.Error("failed to load pending proposals", "error", err)
			return nil
		}
		for _, id := range ids {
			select {
			case q.jobs <- id:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	return g.Wait()
}
