// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/votematch/catalog"
	"github.com/danielhkuo/votematch/cliparse"
	"github.com/danielhkuo/votematch/db"
	"github.com/danielhkuo/votematch/oracle"
	"github.com/danielhkuo/votematch/reconcile"
	"github.com/danielhkuo/votematch/testutil"
)

const saludID = 3

// testEnv wires every handler against one SQLite database and a scripted oracle.
type testEnv struct {
	conn   *sql.DB
	store  *db.Store
	cfg    cliparse.Config
	oracle *testutil.FakeTransport
	engine *reconcile.Engine

	categories  *CategoryHandler
	politicians *PoliticianHandler
	voters      *VoterHandler
	proposals   *ProposalHandler
	voting      *VotingHandler
	admin       *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	store := db.NewStore(conn)
	cat := catalog.Default()
	fake := &testutil.FakeTransport{Reply: "4,3,5"}
	scorer := oracle.NewScorer(fake, oracle.WithTimeout(cfg.OracleTimeout))
	engine := reconcile.NewEngine(store, cat, reconcile.WithBatchSize(cfg.ReconcileBatchSize))

	return &testEnv{
		conn:        conn,
		store:       store,
		cfg:         cfg,
		oracle:      fake,
		engine:      engine,
		categories:  NewCategoryHandler(cat),
		politicians: NewPoliticianHandler(store, cfg),
		voters:      NewVoterHandler(store, cat, cfg),
		proposals:   NewProposalHandler(store, cat, scorer, engine, nil, cfg),
		voting:      NewVotingHandler(engine, cfg),
		admin:       NewAdminHandler(engine, cfg),
	}
}

// mux routes requests the way the production router does, so tests can
// exercise path values.
func (e *testEnv) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /categories", e.categories.List)
	mux.HandleFunc("GET /categories/{name}", e.categories.Get)
	mux.HandleFunc("POST /politicians", e.politicians.Create)
	mux.HandleFunc("POST /voters", e.voters.Create)
	mux.HandleFunc("GET /voters/{id}", e.voters.Get)
	mux.HandleFunc("PUT /voters/{id}/preferences", e.voters.UpdatePreferences)
	mux.HandleFunc("POST /proposals", e.proposals.Create)
	mux.HandleFunc("GET /proposals/{id}", e.proposals.Get)
	mux.HandleFunc("POST /proposals/{id}/reconcile", e.proposals.Reconcile)
	mux.HandleFunc("POST /proposals/{id}/vote", e.voting.Vote)
	mux.HandleFunc("POST /proposals/{id}/unvote", e.voting.Unvote)
	mux.HandleFunc("GET /admin/vote-audit", e.admin.Audit)
	mux.HandleFunc("POST /admin/vote-repair", e.admin.Repair)
	return mux
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.mux().ServeHTTP(w, req)
	return w
}

func (e *testEnv) countProposals(t *testing.T) int {
	t.Helper()
	var n int
	if err := e.conn.QueryRow(`SELECT COUNT(*) FROM proposal`).Scan(&n); err != nil {
		t.Fatalf("Failed to count proposals: %v", err)
	}
	return n
}
