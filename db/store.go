// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/danielhkuo/votematch/models"
)

// Store runs the application's queries against a *sql.DB.
// Safe for concurrent use.
type Store struct {
	conn *sql.DB
}

func NewStore(conn *sql.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Politicians

func (s *Store) InsertPolitician(ctx context.Context, p models.Politician) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO politician (id, name, email, age, office, political_id, validation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Name, p.Email, p.Age, p.Office, p.PoliticalID, p.Validation, p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert politician %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetPolitician(ctx context.Context, id string) (models.Politician, error) {
	var p models.Politician
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, name, email, age, office, political_id, validation, created_at
		FROM politician WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Email, &p.Age, &p.Office, &p.PoliticalID, &p.Validation, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("politician %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("get politician %s: %w", id, err)
	}
	return p, nil
}

// Voters

// InsertVoter stores the voter and any initial preferences in one transaction.
func (s *Store) InsertVoter(ctx context.Context, v models.Voter) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := v.CreatedAt.UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO voter (id, name, email, age, postal_code, city, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, v.ID, v.Name, v.Email, v.Age, v.PostalCode, v.City, v.State, created)
	if err != nil {
		return fmt.Errorf("insert voter %s: %w", v.ID, err)
	}

	for categoryID, answers := range v.Preferences {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO voter_preference (voter_id, category_id, answer1, answer2, answer3, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, v.ID, categoryID, answers[0], answers[1], answers[2], created)
		if err != nil {
			return fmt.Errorf("insert preference %d for voter %s: %w", categoryID, v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit voter %s: %w", v.ID, err)
	}
	return nil
}

// GetVoter loads a voter with preferences and voted proposals.
func (s *Store) GetVoter(ctx context.Context, id string) (models.Voter, error) {
	var v models.Voter
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, name, email, age, postal_code, city, state, created_at
		FROM voter WHERE id = $1
	`, id).Scan(&v.ID, &v.Name, &v.Email, &v.Age, &v.PostalCode, &v.City, &v.State, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return v, fmt.Errorf("voter %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return v, fmt.Errorf("get voter %s: %w", id, err)
	}

	v.Preferences = make(map[int]models.Vector)
	rows, err := s.conn.QueryContext(ctx, `
		SELECT category_id, answer1, answer2, answer3
		FROM voter_preference WHERE voter_id = $1
		ORDER BY category_id
	`, id)
	if err != nil {
		return v, fmt.Errorf("get preferences for voter %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID int
		var a models.Vector
		if err := rows.Scan(&categoryID, &a[0], &a[1], &a[2]); err != nil {
			return v, fmt.Errorf("scan preference: %w", err)
		}
		v.Preferences[categoryID] = a
	}
	if err := rows.Err(); err != nil {
		return v, fmt.Errorf("iterate preferences: %w", err)
	}

	v.VotedProposals = []string{}
	voted, err := s.conn.QueryContext(ctx, `
		SELECT proposal_id FROM voter_voted_proposal
		WHERE voter_id = $1
		ORDER BY voted_at, proposal_id
	`, id)
	if err != nil {
		return v, fmt.Errorf("get voted proposals for voter %s: %w", id, err)
	}
	defer voted.Close()

	for voted.Next() {
		var proposalID string
		if err := voted.Scan(&proposalID); err != nil {
			return v, fmt.Errorf("scan voted proposal: %w", err)
		}
		v.VotedProposals = append(v.VotedProposals, proposalID)
	}
	if err := voted.Err(); err != nil {
		return v, fmt.Errorf("iterate voted proposals: %w", err)
	}

	return v, nil
}

func (s *Store) VoterExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.conn.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM voter WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check voter %s: %w", id, err)
	}
	return exists, nil
}

// UpdatePreferences upserts preference vectors and returns the ids of the
// categories whose vector actually changed, sorted. Retractions on proposals
// in a changed category are cleared so the next pass may match again.
func (s *Store) UpdatePreferences(ctx context.Context, voterID string, updates []models.PreferenceUpdate, at time.Time) ([]int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM voter WHERE id = $1)`, voterID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check voter %s: %w", voterID, err)
	}
	if !exists {
		return nil, fmt.Errorf("voter %s: %w", voterID, models.ErrNotFound)
	}

	changed := []int{}
	for _, u := range updates {
		var cur models.Vector
		err := tx.QueryRowContext(ctx, `
			SELECT answer1, answer2, answer3 FROM voter_preference
			WHERE voter_id = $1 AND category_id = $2
		`, voterID, u.CategoryID).Scan(&cur[0], &cur[1], &cur[2])
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, fmt.Errorf("get preference %d for voter %s: %w", u.CategoryID, voterID, err)
		case cur == u.Answers:
			continue
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO voter_preference (voter_id, category_id, answer1, answer2, answer3, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (voter_id, category_id) DO UPDATE SET
				answer1 = excluded.answer1,
				answer2 = excluded.answer2,
				answer3 = excluded.answer3,
				updated_at = excluded.updated_at
		`, voterID, u.CategoryID, u.Answers[0], u.Answers[1], u.Answers[2], at.UTC())
		if err != nil {
			return nil, fmt.Errorf("upsert preference %d for voter %s: %w", u.CategoryID, voterID, err)
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM vote_retraction
			WHERE voter_id = $1
			  AND proposal_id IN (SELECT id FROM proposal WHERE category_name = $2)
		`, voterID, u.CategoryName)
		if err != nil {
			return nil, fmt.Errorf("clear retractions in %s for voter %s: %w", u.CategoryName, voterID, err)
		}

		changed = append(changed, u.CategoryID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit preferences for voter %s: %w", voterID, err)
	}

	sort.Ints(changed)
	return changed, nil
}

// Proposals

// InsertProposal stores a scored proposal. The score vector must already be valid.
func (s *Store) InsertProposal(ctx context.Context, p models.Proposal) error {
	if err := p.Scores.Validate(); err != nil {
		return fmt.Errorf("insert proposal %s: %w", p.ID, err)
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO proposal (id, politician_id, title, description, category_name, score1, score2, score3, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.PoliticianID, p.Title, p.Description, p.CategoryName,
		p.Scores[0], p.Scores[1], p.Scores[2], p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert proposal %s: %w", p.ID, err)
	}
	return nil
}

// GetProposal loads a proposal with its recorded votes.
func (s *Store) GetProposal(ctx context.Context, id string) (models.Proposal, error) {
	var p models.Proposal
	var reconciledAt sql.NullTime
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, politician_id, title, description, category_name, score1, score2, score3, created_at, reconciled_at
		FROM proposal WHERE id = $1
	`, id).Scan(&p.ID, &p.PoliticianID, &p.Title, &p.Description, &p.CategoryName,
		&p.Scores[0], &p.Scores[1], &p.Scores[2], &p.CreatedAt, &reconciledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("proposal %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("get proposal %s: %w", id, err)
	}
	if reconciledAt.Valid {
		t := reconciledAt.Time
		p.ReconciledAt = &t
	}

	p.Votes = []models.Vote{}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT voter_id, source, voted_at FROM proposal_vote
		WHERE proposal_id = $1
		ORDER BY voted_at, voter_id
	`, id)
	if err != nil {
		return p, fmt.Errorf("get votes for proposal %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.VoterID, &v.Source, &v.VotedAt); err != nil {
			return p, fmt.Errorf("scan vote: %w", err)
		}
		p.Votes = append(p.Votes, v)
	}
	if err := rows.Err(); err != nil {
		return p, fmt.Errorf("iterate votes: %w", err)
	}

	return p, nil
}

func (s *Store) MarkReconciled(ctx context.Context, proposalID string, at time.Time) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE proposal SET reconciled_at = $1 WHERE id = $2
	`, at.UTC(), proposalID)
	if err != nil {
		return fmt.Errorf("mark proposal %s reconciled: %w", proposalID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("proposal %s: %w", proposalID, models.ErrNotFound)
	}
	return nil
}

// PendingProposals returns proposals whose reconciliation pass has not
// completed, oldest first.
func (s *Store) PendingProposals(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id FROM proposal
		WHERE reconciled_at IS NULL
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending proposals: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending proposal: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Reconciliation scan

// ScanCandidates returns up to limit voters with ids greater than after, in
// id order, joined with their preference for categoryID and their vote state
// on proposalID. Pass the last VoterID of a batch as after to get the next one.
func (s *Store) ScanCandidates(ctx context.Context, proposalID string, categoryID int, after string, limit int) ([]models.Candidate, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT v.id, vp.answer1, vp.answer2, vp.answer3,
			EXISTS(SELECT 1 FROM vote_retraction r WHERE r.proposal_id = $1 AND r.voter_id = v.id),
			EXISTS(SELECT 1 FROM proposal_vote pv WHERE pv.proposal_id = $1 AND pv.voter_id = v.id)
		FROM voter v
		LEFT JOIN voter_preference vp ON vp.voter_id = v.id AND vp.category_id = $2
		WHERE v.id > $3
		ORDER BY v.id
		LIMIT $4
	`, proposalID, categoryID, after, limit)
	if err != nil {
		return nil, fmt.Errorf("scan candidates for proposal %s: %w", proposalID, err)
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		var c models.Candidate
		var a1, a2, a3 sql.NullInt64
		if err := rows.Scan(&c.VoterID, &a1, &a2, &a3, &c.Retracted, &c.AlreadyVoted); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if a1.Valid && a2.Valid && a3.Valid {
			c.Answers = []int{int(a1.Int64), int(a2.Int64), int(a3.Int64)}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

// Votes

// RecordVote adds the vote to both sides in one transaction. It returns
// false when the vote already exists. A vote present on only one side is
// reported as models.ErrInconsistentVoteState and nothing is written.
// A manual vote clears any retraction for the pair. An auto vote for a
// retracted pair writes nothing and returns models.ErrVoteRetracted.
func (s *Store) RecordVote(ctx context.Context, proposalID, voterID, source string, at time.Time) (bool, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	at = at.UTC()

	// Proposal side first, voter side second, on every write path.
	insert := `
		INSERT INTO proposal_vote (proposal_id, voter_id, source, voted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (proposal_id, voter_id) DO NOTHING
	`
	if source == models.SourceAuto {
		// The retraction check is part of the insert so an unvote that
		// lands after the candidate scan still wins.
		insert = `
			INSERT INTO proposal_vote (proposal_id, voter_id, source, voted_at)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (
				SELECT 1 FROM vote_retraction WHERE proposal_id = $1 AND voter_id = $2
			)
			ON CONFLICT (proposal_id, voter_id) DO NOTHING
		`
	}
	res, err := tx.ExecContext(ctx, insert, proposalID, voterID, source, at)
	if err != nil {
		return false, fmt.Errorf("insert proposal vote: %w", err)
	}
	proposalSide, _ := res.RowsAffected()

	if proposalSide == 0 && source == models.SourceAuto {
		var retracted bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM vote_retraction WHERE proposal_id = $1 AND voter_id = $2)
		`, proposalID, voterID).Scan(&retracted)
		if err != nil {
			return false, fmt.Errorf("check retraction: %w", err)
		}
		if retracted {
			return false, fmt.Errorf("proposal %s voter %s: %w", proposalID, voterID, models.ErrVoteRetracted)
		}
	}

	if proposalSide == 0 {
		var mirrored bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM voter_voted_proposal WHERE voter_id = $1 AND proposal_id = $2)
		`, voterID, proposalID).Scan(&mirrored)
		if err != nil {
			return false, fmt.Errorf("check voter side: %w", err)
		}
		if !mirrored {
			return false, fmt.Errorf("proposal %s voter %s: missing %s: %w",
				proposalID, voterID, models.SideVoter, models.ErrInconsistentVoteState)
		}
		return false, nil
	}

	res, err = tx.ExecContext(ctx, `
		INSERT INTO voter_voted_proposal (voter_id, proposal_id, voted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (voter_id, proposal_id) DO NOTHING
	`, voterID, proposalID, at)
	if err != nil {
		return false, fmt.Errorf("insert voter vote: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, fmt.Errorf("proposal %s voter %s: missing %s: %w",
			proposalID, voterID, models.SideProposal, models.ErrInconsistentVoteState)
	}

	if source == models.SourceManual {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM vote_retraction WHERE proposal_id = $1 AND voter_id = $2
		`, proposalID, voterID)
		if err != nil {
			return false, fmt.Errorf("clear retraction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit vote: %w", err)
	}
	return true, nil
}

// RemoveVote deletes both sides of a vote and records a retraction so later
// reconciliation passes do not re-add it.
func (s *Store) RemoveVote(ctx context.Context, proposalID, voterID string, at time.Time) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM proposal_vote WHERE proposal_id = $1 AND voter_id = $2
	`, proposalID, voterID)
	if err != nil {
		return fmt.Errorf("delete proposal vote: %w", err)
	}
	proposalSide, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `
		DELETE FROM voter_voted_proposal WHERE voter_id = $1 AND proposal_id = $2
	`, voterID, proposalID)
	if err != nil {
		return fmt.Errorf("delete voter vote: %w", err)
	}
	voterSide, _ := res.RowsAffected()

	switch {
	case proposalSide == 0 && voterSide == 0:
		return fmt.Errorf("proposal %s voter %s: %w", proposalID, voterID, models.ErrVoteNotFound)
	case proposalSide == 0:
		return fmt.Errorf("proposal %s voter %s: missing %s: %w",
			proposalID, voterID, models.SideProposal, models.ErrInconsistentVoteState)
	case voterSide == 0:
		return fmt.Errorf("proposal %s voter %s: missing %s: %w",
			proposalID, voterID, models.SideVoter, models.ErrInconsistentVoteState)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote_retraction (proposal_id, voter_id, retracted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (proposal_id, voter_id) DO UPDATE SET retracted_at = excluded.retracted_at
	`, proposalID, voterID, at.UTC())
	if err != nil {
		return fmt.Errorf("record retraction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unvote: %w", err)
	}
	return nil
}

// Audit and repair

const asymmetryQuery = `
	SELECT pv.proposal_id, pv.voter_id, '` + models.SideVoter + `'
	FROM proposal_vote pv
	LEFT JOIN voter_voted_proposal vv ON vv.voter_id = pv.voter_id AND vv.proposal_id = pv.proposal_id
	WHERE vv.voter_id IS NULL
	UNION ALL
	SELECT vv.proposal_id, vv.voter_id, '` + models.SideProposal + `'
	FROM voter_voted_proposal vv
	LEFT JOIN proposal_vote pv ON pv.proposal_id = vv.proposal_id AND pv.voter_id = vv.voter_id
	WHERE pv.proposal_id IS NULL
	ORDER BY 1, 2
`

// FindVoteAsymmetries lists votes recorded on one side only.
func (s *Store) FindVoteAsymmetries(ctx context.Context) ([]models.Inconsistency, error) {
	rows, err := s.conn.QueryContext(ctx, asymmetryQuery)
	if err != nil {
		return nil, fmt.Errorf("query vote asymmetries: %w", err)
	}
	defer rows.Close()

	out := []models.Inconsistency{}
	for rows.Next() {
		var inc models.Inconsistency
		if err := rows.Scan(&inc.ProposalID, &inc.VoterID, &inc.MissingSide); err != nil {
			return nil, fmt.Errorf("scan asymmetry: %w", err)
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// RestoreVoteMirror writes the missing side of an asymmetric vote. It never
// deletes. Returns false if the side was already present.
func (s *Store) RestoreVoteMirror(ctx context.Context, inc models.Inconsistency, at time.Time) (bool, error) {
	var res sql.Result
	var err error
	switch inc.MissingSide {
	case models.SideVoter:
		res, err = s.conn.ExecContext(ctx, `
			INSERT INTO voter_voted_proposal (voter_id, proposal_id, voted_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (voter_id, proposal_id) DO NOTHING
		`, inc.VoterID, inc.ProposalID, at.UTC())
	case models.SideProposal:
		res, err = s.conn.ExecContext(ctx, `
			INSERT INTO proposal_vote (proposal_id, voter_id, source, voted_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (proposal_id, voter_id) DO NOTHING
		`, inc.ProposalID, inc.VoterID, models.SourceRepair, at.UTC())
	default:
		return false, fmt.Errorf("unknown vote side %q", inc.MissingSide)
	}
	if err != nil {
		return false, fmt.Errorf("restore %s for proposal %s voter %s: %w", inc.MissingSide, inc.ProposalID, inc.VoterID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
