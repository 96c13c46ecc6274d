// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/votematch/auth"
	"github.com/danielhkuo/votematch/cliparse"
	"github.com/danielhkuo/votematch/db"
	"github.com/danielhkuo/votematch/models"
)

// TestAdminKey is the admin key in GetTestConfig
const TestAdminKey = "test-admin-key"

// SetupTestDB creates a fresh SQLite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(10000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_txlock=immediate"

	conn, err := db.Open(db.TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "file::memory:",
		DatabaseType:       db.TypeSQLite,
		AdminKey:           TestAdminKey,
		KeySalt:            "test-key-salt",
		OracleAPIKey:       "test-oracle-key",
		OracleTimeout:      time.Second,
		MatchThreshold:     cliparse.DefaultMatchThreshold,
		ReconcileMode:      cliparse.ModeSync,
		ReconcileWorkers:   2,
		ReconcileBatchSize: 2,
	}
}

// CreateTestPolitician inserts a politician and returns its ID and access key
func CreateTestPolitician(t *testing.T, conn *sql.DB, cfg cliparse.Config) (politicianID, key string) {
	t.Helper()

	politicianID = auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO politician (id, name, email, age, office, political_id, validation, created_at)
		VALUES ($1, 'Test Politician', 'pol@example.com', 45, $2, 'INE-0001', $3, $4)
	`, politicianID, models.OfficeMayor, models.ValidationPending, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test politician: %v", err)
	}

	return politicianID, auth.GenerateKey(auth.RolePolitician, politicianID, cfg.KeySalt)
}

// CreateTestVoter inserts a voter with the given preferences (category id to
// answers) and returns its ID and access key
func CreateTestVoter(t *testing.T, conn *sql.DB, cfg cliparse.Config, prefs map[int]models.Vector) (voterID, key string) {
	t.Helper()

	voterID = auth.NewID()
	err := db.NewStore(conn).InsertVoter(context.Background(), models.Voter{
		ID:          voterID,
		Name:        "Test Voter",
		Email:       "voter@example.com",
		Age:         30,
		PostalCode:  "64000",
		City:        "Monterrey",
		State:       "Nuevo León",
		Preferences: prefs,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID, auth.GenerateKey(auth.RoleVoter, voterID, cfg.KeySalt)
}

// CreateTestProposal inserts an already-scored, unreconciled proposal and returns its ID
func CreateTestProposal(t *testing.T, conn *sql.DB, politicianID, category string, scores models.Vector) string {
	t.Helper()

	proposalID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO proposal (id, politician_id, title, description, category_name, score1, score2, score3, created_at)
		VALUES ($1, $2, 'Test Proposal', 'A proposal used in tests', $3, $4, $5, $6, $7)
	`, proposalID, politicianID, category, scores[0], scores[1], scores[2], time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test proposal: %v", err)
	}

	return proposalID
}

// WriteVoteSide writes a single side of a vote, leaving the pair asymmetric.
// side is models.SideProposal or models.SideVoter.
func WriteVoteSide(t *testing.T, conn *sql.DB, side, proposalID, voterID string) {
	t.Helper()

	var err error
	switch side {
	case models.SideProposal:
		_, err = conn.Exec(`
			INSERT INTO proposal_vote (proposal_id, voter_id, source, voted_at)
			VALUES ($1, $2, $3, $4)
		`, proposalID, voterID, models.SourceAuto, time.Now().UTC())
	case models.SideVoter:
		_, err = conn.Exec(`
			INSERT INTO voter_voted_proposal (voter_id, proposal_id, voted_at)
			VALUES ($1, $2, $3)
		`, voterID, proposalID, time.Now().UTC())
	default:
		err = fmt.Errorf("unknown side %q", side)
	}
	if err != nil {
		t.Fatalf("Failed to write vote side: %v", err)
	}
}

// CountVoteRows returns the number of rows on each side of a vote pair
func CountVoteRows(t *testing.T, conn *sql.DB, proposalID, voterID string) (proposalSide, voterSide int) {
	t.Helper()

	err := conn.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM proposal_vote WHERE proposal_id = $1 AND voter_id = $2),
			(SELECT COUNT(*) FROM voter_voted_proposal WHERE proposal_id = $1 AND voter_id = $2)
	`, proposalID, voterID).Scan(&proposalSide, &voterSide)
	if err != nil {
		t.Fatalf("Failed to count vote rows: %v", err)
	}
	return proposalSide, voterSide
}

// FakeTransport is a scripted scoring oracle transport.
type FakeTransport struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	prompts []string
	calls   atomic.Int32
}

func (f *FakeTransport) Send(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.Reply, f.Err
}

// Calls returns how many prompts were sent
func (f *FakeTransport) Calls() int {
	return int(f.calls.Load())
}

// LastPrompt returns the most recent prompt, or "" if none was sent
func (f *FakeTransport) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
