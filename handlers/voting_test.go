// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votematch/models"
	"github.com/danielhkuo/votematch/testutil"
)

func TestVote(t *testing.T) {
	env := newTestEnv(t)
	polID, _ := testutil.CreateTestPolitician(t, env.conn, env.cfg)
	proposalID := testutil.CreateTestProposal(t, env.conn, polID, "Salud", models.Vector{4, 3, 5})
	// Manual votes apply no threshold
	voterID, voterKey := testutil.CreateTestVoter(t, env.conn, env.cfg, map[int]models.Vector{saludID: {1, 1, 1}})
	headers := map[string]string{HeaderVoterKey: voterKey}
	path := "/proposals/" + proposalID + "/vote"

	w := env.do(testutil.MakeRequest("POST", path, models.VoteRequest{VoterID: voterID}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.VoteResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, "Vote recorded", resp.Message)

	proposalSide, voterSide := testutil.CountVoteRows(t, env.conn, proposalID, voterID)
	assert.Equal(t, 1, proposalSide)
	assert.Equal(t, 1, voterSide)

	p, err := env.store.GetProposal(t.Context(), proposalID)
	require.NoError(t, err)
	require.Len(t, p.Votes, 1)
	assert.Equal(t, models.SourceManual, p.Votes[0].Source)

	t.Run("duplicate vote", func(t *testing.T) {
		w := env.do(testutil.MakeRequest("POST", path, models.VoteRequest{VoterID: voterID}, headers))
		testutil.AssertStatus(t, w, http.StatusConflict)

		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, CodeAlreadyVoted, resp.Code)

		proposalSide, voterSide := testutil.CountVoteRows(t, env.conn, proposalID, voterID)
		assert.Equal(t, 1, proposalSide)
		assert.Equal(t, 1, voterSide)
	})
}

func TestVote_Errors(t *testing.T) {
	env := newTestEnv(t)
	polID, _ := testutil.CreateTestPolitician(t, env.conn, env.cfg)
	proposalID := testutil.CreateTestProposal(t, env.conn, polID, "Salud", models.Vector{4, 3, 5})
	voterID, voterKey := testutil.CreateTestVoter(t, env.conn, env.cfg, nil)
	_, otherKey := testutil.CreateTestVoter(t, env.conn, env.cfg, nil)

	testCases := []struct {
		name     string
		path     string
		body     interface{}
		headers  map[string]string
		expected int
		code     string
	}{
		{
			name:     "missing key",
			path:     "/proposals/" + proposalID + "/vote",
			body:     models.VoteRequest{VoterID: voterID},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "key of another voter",
			path:     "/proposals/" + proposalID + "/vote",
			body:     models.VoteRequest{VoterID: voterID},
			headers:  map[string]string{HeaderVoterKey: otherKey},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "missing voter_id",
			path:     "/proposals/" + proposalID + "/vote",
			body:     map[string]string{},
			headers:  map[string]string{HeaderVoterKey: voterKey},
			expected: http.StatusBadRequest,
			code:     CodeValidation,
		},
		{
			name:     "unknown proposal",
			path:     "/proposals/missing/vote",
			body:     models.VoteRequest{VoterID: voterID},
			headers:  map[string]string{HeaderVoterKey: voterKey},
			expected: http.StatusNotFound,
			code:     CodeNotFound,
		},
		{
			name:     "unvote without a vote",
			path:     "/proposals/" + proposalID + "/unvote",
			body:     models.VoteRequest{VoterID: voterID},
			headers:  map[string]string{HeaderVoterKey: voterKey},
			expected: http.StatusNotFound,
			code:     CodeVoteNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(testutil.MakeRequest("POST", tc.path, tc.body, tc.headers))
			testutil.AssertStatus(t, w, tc.expected)

			if tc.code != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				assert.Equal(t, tc.code, resp.Code)
			}
		})
	}

	proposalSide, voterSide := testutil.CountVoteRows(t, env.conn, proposalID, voterID)
	assert.Equal(t, 0, proposalSide)
	assert.Equal(t, 0, voterSide)
}

func TestUnvote(t *testing.T) {
	env := newTestEnv(t)
	polID, _ := testutil.CreateTestPolitician(t, env.conn, env.cfg)
	proposalID := testutil.CreateTestProposal(t, env.conn, polID, "Salud", models.Vector{4, 3, 5})
	voterID, voterKey := testutil.CreateTestVoter(t, env.conn, env.cfg, map[int]models.Vector{saludID: {4, 3, 5}})
	headers := map[string]string{HeaderVoterKey: voterKey}

	added, err := env.engine.Reconcile(t.Context(), proposalID)
	require.NoError(t, err)
	require.Equal(t, 1, added)

	w := env.do(testutil.MakeRequest("POST", "/proposals/"+proposalID+"/unvote", models.VoteRequest{VoterID: voterID}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.VoteResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, "Vote removed", resp.Message)

	proposalSide, voterSide := testutil.CountVoteRows(t, env.conn, proposalID, voterID)
	assert.Equal(t, 0, proposalSide)
	assert.Equal(t, 0, voterSide)

	// Re-running reconciliation keeps honouring the unvote
	added, err = env.engine.Reconcile(t.Context(), proposalID)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	t.Run("manual vote after unvote", func(t *testing.T) {
		w := env.do(testutil.MakeRequest("POST", "/proposals/"+proposalID+"/vote", models.VoteRequest{VoterID: voterID}, headers))
		testutil.AssertStatus(t, w, http.StatusOK)

		proposalSide, voterSide := testutil.CountVoteRows(t, env.conn, proposalID, voterID)
		assert.Equal(t, 1, proposalSide)
		assert.Equal(t, 1, voterSide)
	})
}

func TestVote_InconsistentState(t *testing.T) {
	for _, side := range []string{models.SideProposal, models.SideVoter} {
		t.Run(side, func(t *testing.T) {
			env := newTestEnv(t)
			polID, _ := testutil.CreateTestPolitician(t, env.conn, env.cfg)
			proposalID := testutil.CreateTestProposal(t, env.conn, polID, "Salud", models.Vector{4, 3, 5})
			voterID, voterKey := testutil.CreateTestVoter(t, env.conn, env.cfg, nil)
			testutil.WriteVoteSide(t, env.conn, side, proposalID, voterID)
			headers := map[string]string{HeaderVoterKey: voterKey}

			for _, action := range []string{"vote", "unvote"} {
				w := env.do(testutil.MakeRequest("POST", "/proposals/"+proposalID+"/"+action,
					models.VoteRequest{VoterID: voterID}, headers))
				testutil.AssertStatus(t, w, http.StatusConflict)

				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				assert.Equal(t, CodeInconsistentVoteState, resp.Code, action)
			}

			// Nothing was healed or removed by the failed calls
			proposalSide, voterSide := testutil.CountVoteRows(t, env.conn, proposalID, voterID)
			assert.Equal(t, 1, proposalSide+voterSide)
		})
	}
}
