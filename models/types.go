package models

import "time"

// Vote source constants
const (
	SourceAuto   = "auto"
	SourceManual = "manual"
	SourceRepair = "repair"
)

// Proposal status constants
const (
	StatusPending    = "pending"
	StatusReconciled = "reconciled"
)

// Politician office constants
const (
	OfficePresident = "presidente"
	OfficeGovernor  = "gobernador"
	OfficeMayor     = "presidente municipal"
)

// Politician validation constants
const (
	ValidationPending = "pendiente"
	ValidationValid   = "valida"
	ValidationInvalid = "invalida"
)

// Mirror sides reported by the vote audit
const (
	SideProposal = "proposal_votes"
	SideVoter    = "voter_voted_proposals"
)

// Request types

type CreatePoliticianRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Age         int    `json:"age" validate:"gte=18"`
	Office      string `json:"office" validate:"required,oneof=presidente gobernador 'presidente municipal'"`
	PoliticalID string `json:"political_id" validate:"required"`
}

// category_id ("1".."10") -> 3 answers
type CreateVoterRequest struct {
	Name        string           `json:"name" validate:"required"`
	Email       string           `json:"email" validate:"required,email"`
	Age         int              `json:"age" validate:"gte=18"`
	PostalCode  string           `json:"postal_code" validate:"required"`
	City        string           `json:"city" validate:"required"`
	State       string           `json:"state" validate:"required"`
	Preferences map[string][]int `json:"preferences" validate:"omitempty,dive,keys,numeric,endkeys,len=3,dive,min=1,max=5"`
}

type UpdatePreferencesRequest struct {
	Preferences map[string][]int `json:"preferences" validate:"required,min=1,dive,keys,numeric,endkeys,len=3,dive,min=1,max=5"`
}

type CreateProposalRequest struct {
	PoliticianID string `json:"politician_id" validate:"required"`
	Title        string `json:"title" validate:"required,min=5"`
	Description  string `json:"description" validate:"required,min=10"`
	Category     string `json:"category" validate:"required"`
}

type VoteRequest struct {
	VoterID string `json:"voter_id" validate:"required"`
}

// Response types

type CreatePoliticianResponse struct {
	PoliticianID  string `json:"politician_id"`
	PoliticianKey string `json:"politician_key"`
}

type CreateVoterResponse struct {
	VoterID  string `json:"voter_id"`
	VoterKey string `json:"voter_key"`
}

type UpdatePreferencesResponse struct {
	ChangedCategories []int `json:"changed_categories"`
}

type CreateProposalResponse struct {
	ProposalID    string `json:"proposal_id"`
	Scores        Vector `json:"scores"`
	Status        string `json:"status"`
	VotesRecorded *int   `json:"votes_recorded,omitempty"`
}

type ReconcileResponse struct {
	ProposalID string `json:"proposal_id"`
	NewVotes   int    `json:"new_votes"`
}

type VoteResponse struct {
	Message string `json:"message"`
}

type AuditResponse struct {
	Inconsistencies []Inconsistency `json:"inconsistencies"`
}

type RepairResponse struct {
	Repaired int `json:"repaired"`
}

// Domain types

type Politician struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Age         int       `json:"age"`
	Office      string    `json:"office"`
	PoliticalID string    `json:"political_id"`
	Validation  string    `json:"validation"`
	CreatedAt   time.Time `json:"created_at"`
}

type Voter struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Age            int            `json:"age"`
	PostalCode     string         `json:"postal_code"`
	City           string         `json:"city"`
	State          string         `json:"state"`
	Preferences    map[int]Vector `json:"preferences"`
	VotedProposals []string       `json:"voted_proposals"`
	CreatedAt      time.Time      `json:"created_at"`
}

type Proposal struct {
	ID           string     `json:"id"`
	PoliticianID string     `json:"politician_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CategoryName string     `json:"category"`
	Scores       Vector     `json:"scores"`
	CreatedAt    time.Time  `json:"created_at"`
	ReconciledAt *time.Time `json:"reconciled_at,omitempty"`
	Votes        []Vote     `json:"votes"`
}

// ReconcileStatus reports whether the reconciliation pass has completed.
func (p Proposal) ReconcileStatus() string {
	if p.ReconciledAt == nil {
		return StatusPending
	}
	return StatusReconciled
}

type ProposalWithStatus struct {
	Proposal
	Status string `json:"status"`
}

type Vote struct {
	VoterID string    `json:"voter_id"`
	Source  string    `json:"source"`
	VotedAt time.Time `json:"voted_at"`
}

type PreferenceUpdate struct {
	CategoryID   int
	CategoryName string
	Answers      Vector
}

// Candidate is one row of a reconciliation scan. Answers is nil when the
// voter has no preference for the scanned category.
type Candidate struct {
	VoterID      string
	Answers      []int
	Retracted    bool
	AlreadyVoted bool
}

type Inconsistency struct {
	ProposalID  string `json:"proposal_id"`
	VoterID     string `json:"voter_id"`
	MissingSide string `json:"missing_side"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
