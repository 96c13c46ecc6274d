// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/votematch/models"
)

// TestFullMatchingWorkflow tests the complete end-to-end workflow:
// 1. Register a politician
// 2. Register voters with Salud preferences
// 3. Create a proposal; the matching voter gets an automatic vote
// 4. The other voter votes manually
// 5. The matched voter unvotes
// 6. A second reconciliation leaves the unvote in place
// 7. Verify the proposal and both voters
func TestFullMatchingWorkflow(t *testing.T) {
	env := newTestEnv(t)
	mux := env.mux()

	post := func(path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}
	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		return w
	}

	// Step 1: Register a politician
	w := post("/politicians", models.CreatePoliticianRequest{
		Name:        "María Torres",
		Email:       "maria@example.com",
		Age:         48,
		Office:      models.OfficeGovernor,
		PoliticalID: "INE-9912",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Register politician failed: %d - %s", w.Code, w.Body.String())
	}
	var polResp models.CreatePoliticianResponse
	json.NewDecoder(w.Body).Decode(&polResp)
	t.Logf("Step 1 - Registered politician: %s", polResp.PoliticianID)

	// Step 2: Register voters
	register := func(name string, answers []int) models.CreateVoterResponse {
		w := post("/voters", models.CreateVoterRequest{
			Name:        name,
			Email:       "voter@example.com",
			Age:         29,
			PostalCode:  "06700",
			City:        "Ciudad de México",
			State:       "CDMX",
			Preferences: map[string][]int{"3": answers},
		}, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Register voter %s failed: %d - %s", name, w.Code, w.Body.String())
		}
		var resp models.CreateVoterResponse
		json.NewDecoder(w.Body).Decode(&resp)
		return resp
	}
	matching := register("Matching", []int{4, 3, 5})
	partial := register("Partial", []int{4, 3, 4})
	t.Logf("Step 2 - Registered voters: %s, %s", matching.VoterID, partial.VoterID)

	// Step 3: Create a proposal
	w = post("/proposals", models.CreateProposalRequest{
		PoliticianID: polResp.PoliticianID,
		Title:        "Hospitales de especialidad",
		Description:  "Construir hospitales de especialidad en cada región",
		Category:     "Salud",
	}, map[string]string{HeaderPoliticianKey: polResp.PoliticianKey})
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 3 - Create proposal failed: %d - %s", w.Code, w.Body.String())
	}
	var propResp models.CreateProposalResponse
	json.NewDecoder(w.Body).Decode(&propResp)
	if propResp.VotesRecorded == nil || *propResp.VotesRecorded != 1 {
		t.Fatalf("Step 3 - Expected 1 automatic vote, got %v", propResp.VotesRecorded)
	}
	proposalID := propResp.ProposalID
	t.Logf("Step 3 - Created proposal %s with scores %v", proposalID, propResp.Scores)

	// Step 4: The partial voter votes manually
	w = post("/proposals/"+proposalID+"/vote", models.VoteRequest{VoterID: partial.VoterID},
		map[string]string{HeaderVoterKey: partial.VoterKey})
	if w.Code != http.StatusOK {
		t.Fatalf("Step 4 - Manual vote failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 5: The matched voter unvotes
	w = post("/proposals/"+proposalID+"/unvote", models.VoteRequest{VoterID: matching.VoterID},
		map[string]string{HeaderVoterKey: matching.VoterKey})
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Unvote failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 6: Reconcile again
	w = post("/proposals/"+proposalID+"/reconcile", nil, map[string]string{HeaderAdminKey: env.cfg.AdminKey})
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Reconcile failed: %d - %s", w.Code, w.Body.String())
	}
	var recResp models.ReconcileResponse
	json.NewDecoder(w.Body).Decode(&recResp)
	if recResp.NewVotes != 0 {
		t.Errorf("Step 6 - Expected no new votes after unvote, got %d", recResp.NewVotes)
	}

	// Step 7: Verify
	w = get("/proposals/" + proposalID)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 7 - Get proposal failed: %d - %s", w.Code, w.Body.String())
	}
	var proposal models.ProposalWithStatus
	json.NewDecoder(w.Body).Decode(&proposal)

	if proposal.Status != models.StatusReconciled {
		t.Errorf("Step 7 - Expected status %s, got %s", models.StatusReconciled, proposal.Status)
	}
	if len(proposal.Votes) != 1 || proposal.Votes[0].VoterID != partial.VoterID {
		t.Fatalf("Step 7 - Expected only the manual vote, got %+v", proposal.Votes)
	}
	if proposal.Votes[0].Source != models.SourceManual {
		t.Errorf("Step 7 - Expected source %s, got %s", models.SourceManual, proposal.Votes[0].Source)
	}

	for _, tc := range []struct {
		voterID string
		voted   bool
	}{
		{matching.VoterID, false},
		{partial.VoterID, true},
	} {
		w = get("/voters/" + tc.voterID)
		var voter models.Voter
		json.NewDecoder(w.Body).Decode(&voter)
		if got := len(voter.VotedProposals) == 1; got != tc.voted {
			t.Errorf("Step 7 - Voter %s voted=%v, want %v", tc.voterID, got, tc.voted)
		}
	}

	t.Log("Full matching workflow completed successfully")
}
