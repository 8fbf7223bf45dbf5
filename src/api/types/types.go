package types

import (
	"time"

	"gorm.io/datatypes"
)

// Affiliations derived from classification codes at registration.
const (
	AffiliationPDI     = "pdi"
	AffiliationStudent = "student"
	AffiliationPTGAS   = "ptgas"
	AffiliationNone    = "none"
)

// Users
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"size:256;not null"`
	Username     string `gorm:"size:128;uniqueIndex;not null"`
	Email        string `gorm:"size:256;not null"`
	ClassifCodes datatypes.JSONSlice[string]
	Affiliation  string `gorm:"size:16;not null;default:none"`
	Centres      datatypes.JSONSlice[int]
	IsAdmin      bool `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Proposals, drafts included. Supporter counts are never stored here; they
// are derived from Support rows on every read. IsDraft carries no column
// default: gorm drops zero-valued fields that have one, which would store
// published proposals as drafts. Both creation paths set the flag.
type Proposal struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Categories  datatypes.JSONSlice[string]
	IsDraft     bool `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credited authors of a proposal, ordered. The same user may appear at
// several positions after successive merges.
type ProposalAuthor struct {
	ProposalID string `gorm:"primaryKey;size:36"`
	Position   int    `gorm:"primaryKey"`
	UserID     string `gorm:"index;size:36;not null"`
}

// Historical snapshot carried forward by the merge workflow. Rows are flat:
// a version never references other versions.
type ProposalVersion struct {
	ID          string `gorm:"primaryKey;size:36"`
	ProposalID  string `gorm:"index;size:36;not null"`
	Position    int    `gorm:"not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Categories  datatypes.JSONSlice[string]
	Authors     datatypes.JSONSlice[string]
	CreatedAt   time.Time
}

// Support ledger. The composite primary key makes add/remove conditional
// writes, so duplicate requests surface as conflicts instead of silently
// flipping state.
type Support struct {
	UserID     string `gorm:"primaryKey;size:36"`
	ProposalID string `gorm:"primaryKey;size:36"`
	CreatedAt  time.Time
}

// Candidates running in the election.
type Candidate struct {
	ID             string `gorm:"primaryKey;size:36"`
	Name           string `gorm:"size:256;not null"`
	Email          string `gorm:"size:256;not null"`
	Username       string `gorm:"size:128;uniqueIndex;not null"`
	SurrogateUsers datatypes.JSONSlice[string]
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// One commitment per (proposal, candidate) pair, enforced by the unique
// index rather than read-then-write.
type Commitment struct {
	ID                string `gorm:"primaryKey;size:36"`
	ProposalID        string `gorm:"uniqueIndex:idx_commitment_pair;size:36;not null"`
	CandidateUsername string `gorm:"uniqueIndex:idx_commitment_pair;size:128;not null"`
	Content           string `gorm:"type:text;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Audience questions for the candidate debate.
type Question struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Question    string    `gorm:"type:text;not null"`
	Affiliation string    `gorm:"size:16;not null"`
	Timestamp   time.Time `gorm:"index;not null"`
}

// Parameter store rows. Read-mostly; mutated only through the admin surface.
type Category struct {
	Key   string `gorm:"primaryKey;size:64"`
	Label string `gorm:"size:128;not null"`
}

type AffiliationCode struct {
	Code        string `gorm:"primaryKey;size:8"`
	Affiliation string `gorm:"size:16;not null"`
}

type Affiliation struct {
	Key   string `gorm:"primaryKey;size:16"`
	Label string `gorm:"size:64;not null"`
}

type Centre struct {
	Code int    `gorm:"primaryKey"`
	Name string `gorm:"size:64;not null"`
}

type Feature struct {
	Name    string `gorm:"primaryKey;size:64"`
	Enabled bool   `gorm:"not null;default:false"`
}

type Setting struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:1024;not null"`
}
