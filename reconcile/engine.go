// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/votematch/catalog"
	"github.com/danielhkuo/votematch/metrics"
	"github.com/danielhkuo/votematch/models"
)

// DefaultBatchSize is the number of voters read per scan query.
const DefaultBatchSize = 500

// Store is the persistence the engine needs. *db.Store implements it.
type Store interface {
	GetProposal(ctx context.Context, id string) (models.Proposal, error)
	VoterExists(ctx context.Context, id string) (bool, error)
	ScanCandidates(ctx context.Context, proposalID string, categoryID int, after string, limit int) ([]models.Candidate, error)
	RecordVote(ctx context.Context, proposalID, voterID, source string, at time.Time) (bool, error)
	RemoveVote(ctx context.Context, proposalID, voterID string, at time.Time) error
	MarkReconciled(ctx context.Context, proposalID string, at time.Time) error
	PendingProposals(ctx context.Context) ([]string, error)
	FindVoteAsymmetries(ctx context.Context) ([]models.Inconsistency, error)
	RestoreVoteMirror(ctx context.Context, inc models.Inconsistency, at time.Time) (bool, error)
}

// Engine matches proposals against voter preferences and keeps both sides
// of every vote in step.
type Engine struct {
	store     Store
	catalog   *catalog.Catalog
	policy    Policy
	batchSize int
	metrics   *metrics.Metrics
	now       func() time.Time

	passes singleflight.Group
}

type Option func(*Engine)

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithBatchSize sets the voters read per scan. Non-positive values keep the default.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		catalog:   cat,
		policy:    StrictPolicy(),
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile auto-casts a vote for every voter whose preference for the
// proposal's category matches its score vector, and returns the number of
// votes added. Voters already counted, voters who retracted, and voters
// without a usable preference are skipped. Re-running never removes or
// duplicates votes.
//
// Concurrent calls for the same proposal share one pass and its result.
// The shared pass is not bound to any one caller's context: a caller whose
// ctx ends gets ctx.Err() back while the pass runs on for the others.
func (e *Engine) Reconcile(ctx context.Context, proposalID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ch := e.passes.DoChan(proposalID, func() (any, error) {
		return e.reconcile(context.WithoutCancel(ctx), proposalID)
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		n, _ := res.Val.(int)
		return n, res.Err
	}
}

func (e *Engine) reconcile(ctx context.Context, proposalID string) (int, error) {
	start := time.Now()
	defer func() { e.metrics.ReconcilePass(time.Since(start)) }()

	p, err := e.store.GetProposal(ctx, proposalID)
	if err != nil {
		return 0, err
	}

	cat, err := e.catalog.Lookup(p.CategoryName)
	if err != nil {
		slog.Warn("proposal category not in catalog, nothing to reconcile",
			"proposal_id", p.ID, "category", p.CategoryName)
		return 0, e.finish(ctx, p.ID, 0, start)
	}

	if err := p.Scores.Validate(); err != nil {
		slog.Warn("proposal has an invalid score vector, nothing to reconcile",
			"proposal_id", p.ID, "scores", p.Scores.String(), "error", err)
		return 0, e.finish(ctx, p.ID, 0, start)
	}

	added := 0
	after := ""
	var failed []error
	for {
		batch, err := e.store.ScanCandidates(ctx, p.ID, cat.ID, after, e.batchSize)
		if err != nil {
			return added, fmt.Errorf("reconcile proposal %s: %w", p.ID, err)
		}

		for _, c := range batch {
			ok, err := e.consider(ctx, p, c)
			if err != nil {
				failed = append(failed, err)
				continue
			}
			if ok {
				added++
			}
		}

		if len(batch) < e.batchSize {
			break
		}
		after = batch[len(batch)-1].VoterID
	}

	// Unwritten votes keep the proposal pending for the next sweep.
	if len(failed) > 0 {
		return added, fmt.Errorf("reconcile proposal %s: %d auto votes not written: %w",
			p.ID, len(failed), errors.Join(failed...))
	}
	return added, e.finish(ctx, p.ID, added, start)
}

// consider records an auto vote for c if it matches. Problems with this
// voter's data are logged and reported as a skip. A failed write is also
// counted as a skip but returned, so the pass carries on without marking
// the proposal reconciled.
func (e *Engine) consider(ctx context.Context, p models.Proposal, c models.Candidate) (bool, error) {
	if c.Answers == nil {
		e.metrics.VoterSkipped(metrics.SkipNoPreference)
		return false, nil
	}

	pref, err := models.NewVector(c.Answers)
	if err != nil {
		slog.Warn("skipping voter with malformed preference",
			"proposal_id", p.ID, "voter_id", c.VoterID, "error", err)
		e.metrics.VoterSkipped(metrics.SkipInvalid)
		return false, nil
	}

	switch {
	case c.Retracted:
		e.metrics.VoterSkipped(metrics.SkipRetracted)
		return false, nil
	case c.AlreadyVoted:
		e.metrics.VoterSkipped(metrics.SkipAlreadyVoted)
		return false, nil
	case !e.policy.Matches(p.Scores, pref):
		e.metrics.VoterSkipped(metrics.SkipNoMatch)
		return false, nil
	}

	inserted, err := e.store.RecordVote(ctx, p.ID, c.VoterID, models.SourceAuto, e.now())
	switch {
	case err == nil:
	case errors.Is(err, models.ErrVoteRetracted):
		// Unvoted after the scan read this batch.
		e.metrics.VoterSkipped(metrics.SkipRetracted)
		return false, nil
	case errors.Is(err, models.ErrInconsistentVoteState):
		slog.Error("inconsistent vote state, skipping voter",
			"proposal_id", p.ID, "voter_id", c.VoterID, "error", err)
		e.metrics.InconsistencyFound()
		e.metrics.VoterSkipped(metrics.SkipInconsistent)
		return false, nil
	default:
		slog.Error("recording auto vote failed, skipping voter",
			"proposal_id", p.ID, "voter_id", c.VoterID, "error", err)
		e.metrics.VoterSkipped(metrics.SkipWriteFailed)
		return false, fmt.Errorf("voter %s: %w", c.VoterID, err)
	}
	if !inserted {
		// Lost a race with a manual vote.
		e.metrics.VoterSkipped(metrics.SkipAlreadyVoted)
		return false, nil
	}

	e.metrics.VoteRecorded(models.SourceAuto)
	return true, nil
}

func (e *Engine) finish(ctx context.Context, proposalID string, added int, start time.Time) error {
	if err := e.store.MarkReconciled(ctx, proposalID, e.now()); err != nil {
		return err
	}
	slog.Info("proposal reconciled",
		"proposal_id", proposalID, "new_votes", added,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Cast records a manual vote. It applies no threshold but the same
// at-most-once guard as reconciliation.
func (e *Engine) Cast(ctx context.Context, proposalID, voterID string) error {
	if err := e.checkPair(ctx, proposalID, voterID); err != nil {
		return err
	}

	inserted, err := e.store.RecordVote(ctx, proposalID, voterID, models.SourceManual, e.now())
	if err != nil {
		if errors.Is(err, models.ErrInconsistentVoteState) {
			slog.Error("inconsistent vote state on manual vote",
				"proposal_id", proposalID, "voter_id", voterID, "error", err)
			e.metrics.InconsistencyFound()
		}
		return err
	}
	if !inserted {
		return fmt.Errorf("proposal %s voter %s: %w", proposalID, voterID, models.ErrAlreadyVoted)
	}

	e.metrics.VoteRecorded(models.SourceManual)
	slog.Info("manual vote recorded", "proposal_id", proposalID, "voter_id", voterID)
	return nil
}

// Retract removes a vote from both sides. Later reconciliation passes will
// not re-add it until the voter votes again or changes that preference.
func (e *Engine) Retract(ctx context.Context, proposalID, voterID string) error {
	if err := e.checkPair(ctx, proposalID, voterID); err != nil {
		return err
	}

	if err := e.store.RemoveVote(ctx, proposalID, voterID, e.now()); err != nil {
		if errors.Is(err, models.ErrInconsistentVoteState) {
			slog.Error("inconsistent vote state on unvote",
				"proposal_id", proposalID, "voter_id", voterID, "error", err)
			e.metrics.InconsistencyFound()
		}
		return err
	}

	e.metrics.VoteRetracted()
	slog.Info("vote retracted", "proposal_id", proposalID, "voter_id", voterID)
	return nil
}

func (e *Engine) checkPair(ctx context.Context, proposalID, voterID string) error {
	if _, err := e.store.GetProposal(ctx, proposalID); err != nil {
		return err
	}
	exists, err := e.store.VoterExists(ctx, voterID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("voter %s: %w", voterID, models.ErrNotFound)
	}
	return nil
}

// Audit lists votes recorded on only one side.
func (e *Engine) Audit(ctx context.Context) ([]models.Inconsistency, error) {
	found, err := e.store.FindVoteAsymmetries(ctx)
	if err != nil {
		return nil, err
	}
	for _, inc := range found {
		slog.Error("inconsistent vote state",
			"proposal_id", inc.ProposalID, "voter_id", inc.VoterID, "missing_side", inc.MissingSide)
		e.metrics.InconsistencyFound()
	}
	return found, nil
}

// Repair writes the missing side of every one-sided vote and returns how
// many were restored. It never deletes.
func (e *Engine) Repair(ctx context.Context) (int, error) {
	found, err := e.store.FindVoteAsymmetries(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, inc := range found {
		restored, err := e.store.RestoreVoteMirror(ctx, inc, e.now())
		if err != nil {
			return repaired, err
		}
		if restored {
			repaired++
			e.metrics.VoteRecorded(models.SourceRepair)
			slog.Info("vote mirror restored",
				"proposal_id", inc.ProposalID, "voter_id", inc.VoterID, "side", inc.MissingSide)
		}
	}
	return repaired, nil
}

// Pending returns proposals whose reconciliation has not completed.
func (e *Engine) Pending(ctx context.Context) ([]string, error) {
	return e.store.PendingProposals(ctx)
}

// ResumePending reconciles every pending proposal, continuing past
// failures. It returns the total votes added and any errors joined.
func (e *Engine) ResumePending(ctx context.Context) (int, error) {
	ids, err := e.Pending(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		slog.Info("resuming pending reconciliation", "proposals", len(ids))
	}

	total := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		n, err := e.Reconcile(ctx, id)
		total += n
		if err != nil {
			slog.Error("reconciliation failed", "proposal_id", id, "error", err)
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}
