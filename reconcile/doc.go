// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reconcile casts votes on behalf of voters whose stated preferences
agree with a proposal's score vector.

# Engine

	engine := reconcile.NewEngine(store, catalog.Default(),
		reconcile.WithPolicy(policy),
		reconcile.WithBatchSize(500),
		reconcile.WithMetrics(m),
	)
	added, err := engine.Reconcile(ctx, proposalID)

A pass resolves the proposal's category, then scans voters in id order, one
batch at a time. A voter is skipped if they have no preference for the
category, their stored preference is not a valid vector, they already
voted, or they retracted a vote on this proposal. Otherwise the policy
decides; the default requires all three answers to agree.

Each vote is written to the proposal side and the voter side in one
transaction with a conditional insert, so a voter is counted at most once
even when a pass races a manual vote. The pass ends by marking the proposal
reconciled. A pass that fails or never completes leaves the proposal
pending and can be run again. Auto votes are never written for a voter who
has since retracted, even if the retraction lands after the scan.

Concurrent Reconcile calls for one proposal share a single pass. The pass
runs detached from the callers' contexts, so one caller giving up returns
its own ctx.Err() without failing the others. A caller whose ctx is already
done does not start a pass.

# Manual Votes

	err := engine.Cast(ctx, proposalID, voterID)    // models.ErrAlreadyVoted on repeat
	err := engine.Retract(ctx, proposalID, voterID) // models.ErrVoteNotFound if absent

A retraction is remembered: later passes leave that voter alone until they
vote manually or change their preference for the category.

# Audit and Repair

Audit lists votes that exist on only one side. Repair writes the missing
side; it never removes a vote.

# Background Queue

In async mode proposals are handed to a Queue:

	q := reconcile.NewQueue(engine, workers, capacity)
	go q.Run(ctx)
	q.Enqueue(proposalID)

Run first queues every pending proposal, so work dropped by a full queue or
a restart is picked up again.
*/
package reconcile
