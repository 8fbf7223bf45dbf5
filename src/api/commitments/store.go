// Package commitments keeps exactly one commitment per (proposal, candidate)
// pair.
package commitments

import (
	"errors"

	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/sanitize"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// Upsert creates or overwrites the candidate's commitment for a proposal.
// Uniqueness of the pair is enforced by the index, not by read-then-write,
// so concurrent upserts stay race-safe.
func (s *Store) Upsert(proposalID, candidateUsername, content string) (types.Commitment, error) {
	content = sanitize.Rich(content)
	if sanitize.Plain(content) == "" {
		return types.Commitment{}, errs.InvalidInput("commitment content must not be empty")
	}

	var p types.Proposal
	if err := s.db.First(&p, "id = ?", proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Commitment{}, errs.NotFound("proposal not found")
		}
		return types.Commitment{}, errs.Internal("failed to load proposal", err)
	}

	c := types.Commitment{
		ID:                uuid.NewString(),
		ProposalID:        proposalID,
		CandidateUsername: candidateUsername,
		Content:           content,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "candidate_username"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&c).Error
	if err != nil {
		return types.Commitment{}, errs.Internal("failed to store commitment", err)
	}
	return s.Get(proposalID, candidateUsername)
}

// Get returns the commitment for the pair.
func (s *Store) Get(proposalID, candidateUsername string) (types.Commitment, error) {
	var c types.Commitment
	err := s.db.First(&c, "proposal_id = ? AND candidate_username = ?", proposalID, candidateUsername).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Commitment{}, errs.NotFound("commitment does not exist")
		}
		return types.Commitment{}, errs.Internal("failed to load commitment", err)
	}
	return c, nil
}

// Delete removes the candidate's commitment for a proposal.
func (s *Store) Delete(proposalID, candidateUsername string) error {
	res := s.db.Delete(&types.Commitment{}, "proposal_id = ? AND candidate_username = ?", proposalID, candidateUsername)
	if res.Error != nil {
		return errs.Internal("failed to delete commitment", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("commitment does not exist")
	}
	return nil
}

// BookletEntry is the (title, description, commitment) triple handed to the
// document generator.
type BookletEntry struct {
	Title       string
	Description string
	Content     string
}

// BookletEntries collects a candidate's commitments across published
// proposals, most recently updated proposal first.
func (s *Store) BookletEntries(candidateUsername string) ([]BookletEntry, error) {
	type row struct {
		Title       string
		Description string
		Content     string
	}
	var rows []row
	err := s.db.Model(&types.Commitment{}).
		Select("proposals.title AS title, proposals.description AS description, commitments.content AS content").
		Joins("JOIN proposals ON proposals.id = commitments.proposal_id").
		Where("commitments.candidate_username = ? AND proposals.is_draft = ?", candidateUsername, false).
		Order("proposals.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.Internal("failed to collect commitments", err)
	}
	entries := make([]BookletEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, BookletEntry(r))
	}
	return entries, nil
}
