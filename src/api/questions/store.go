// Package questions stores audience questions for the candidate debate.
package questions

import (
	"errors"
	"strings"
	"time"

	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) List() ([]types.Question, error) {
	var qs []types.Question
	if err := s.db.Order("timestamp DESC").Find(&qs).Error; err != nil {
		return nil, errs.Internal("failed to list questions", err)
	}
	return qs, nil
}

// Add records a question, stamping it with the asking user's affiliation so
// results can be broken down without keeping a user reference.
func (s *Store) Add(userID, question string, ts time.Time) (types.Question, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return types.Question{}, errs.InvalidInput("question text is required")
	}

	var u types.User
	if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Question{}, errs.NotFound("user not found")
		}
		return types.Question{}, errs.Internal("failed to load user", err)
	}

	if ts.IsZero() {
		ts = time.Now()
	}
	q := types.Question{
		ID:          uuid.NewString(),
		Question:    question,
		Affiliation: u.Affiliation,
		Timestamp:   ts,
	}
	if err := s.db.Create(&q).Error; err != nil {
		return types.Question{}, errs.Internal("failed to store question", err)
	}
	return q, nil
}

func (s *Store) Delete(id string) error {
	res := s.db.Delete(&types.Question{}, "id = ?", id)
	if res.Error != nil {
		return errs.Internal("failed to delete question", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("question not found")
	}
	return nil
}
