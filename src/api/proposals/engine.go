// Package proposals owns the proposal lifecycle: draft creation, listing and
// aggregation (supporter counts, support levels, affiliation and centre
// rollups) and the draft merge workflow.
package proposals

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/sanitize"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Level bands a proposal by how supported it is relative to the rest.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

const DefaultPageSize = 20

type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine { return &Engine{db: db} }

// Filter narrows List. Page is 1-based; zero disables pagination.
type Filter struct {
	IsDraft      bool
	Search       string
	Categories   []string
	Affiliations []string
	Page         int
	PageSize     int
}

// List returns proposals matching the filter. Draft state, categories,
// affiliations and pagination are applied by the database; the text search
// runs afterwards in-process (see filterSearch).
func (e *Engine) List(f Filter) ([]types.Proposal, error) {
	q := e.db.Model(&types.Proposal{}).Where("is_draft = ?", f.IsDraft)

	if len(f.Categories) > 0 {
		cond := e.db.Where(datatypes.JSONArrayQuery("categories").Contains(f.Categories[0]))
		for _, c := range f.Categories[1:] {
			cond = cond.Or(datatypes.JSONArrayQuery("categories").Contains(c))
		}
		q = q.Where(cond)
	}
	if len(f.Affiliations) > 0 {
		q = q.Where(
			"id IN (SELECT proposal_id FROM proposal_authors WHERE user_id IN (SELECT id FROM users WHERE affiliation IN ?))",
			f.Affiliations,
		)
	}

	q = q.Order("updated_at DESC")
	if f.Page > 0 {
		size := f.PageSize
		if size <= 0 {
			size = DefaultPageSize
		}
		q = q.Offset((f.Page - 1) * size).Limit(size)
	}

	var proposals []types.Proposal
	if err := q.Find(&proposals).Error; err != nil {
		return nil, errs.Internal("failed to list proposals", err)
	}
	if strings.TrimSpace(f.Search) != "" {
		proposals = filterSearch(proposals, f.Search)
	}
	return proposals, nil
}

func (e *Engine) Get(proposalID string) (types.Proposal, error) {
	var p types.Proposal
	if err := e.db.First(&p, "id = ?", proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Proposal{}, errs.NotFound("proposal not found")
		}
		return types.Proposal{}, errs.Internal("failed to load proposal", err)
	}
	return p, nil
}

// CreateDraft validates, sanitizes and stores a new draft credited to its
// author. Categories not present in the parameter store are dropped; an
// empty remainder fails the whole operation.
func (e *Engine) CreateDraft(authorID, title, description string, categories []string) (types.Proposal, error) {
	title = sanitize.Title(title)
	description = sanitize.Rich(description)
	if title == "" {
		return types.Proposal{}, errs.InvalidInput("title must not be empty")
	}
	if sanitize.Plain(description) == "" {
		return types.Proposal{}, errs.InvalidInput("description must not be empty")
	}
	cats := FilterCategories(categories)
	if len(cats) == 0 {
		return types.Proposal{}, errs.InvalidInput("no valid categories given")
	}

	p := types.Proposal{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Categories:  cats,
		IsDraft:     true,
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return tx.Create(&types.ProposalAuthor{ProposalID: p.ID, Position: 0, UserID: authorID}).Error
	})
	if err != nil {
		return types.Proposal{}, errs.Internal("failed to store draft", err)
	}
	return p, nil
}

// FilterCategories keeps the categories present in the current parameter
// store, preserving order and dropping duplicates.
func FilterCategories(categories []string) []string {
	known := data.Params().Categories
	seen := make(map[string]bool, len(categories))
	var out []string
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		if _, ok := known[c]; ok {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// SupportersCount derives the supporter count from the ledger. It is never
// cached and never stored on the proposal row.
func (e *Engine) SupportersCount(proposalID string) (int64, error) {
	var n int64
	if err := e.db.Model(&types.Support{}).Where("proposal_id = ?", proposalID).Count(&n).Error; err != nil {
		return 0, errs.Internal("failed to count supporters", err)
	}
	return n, nil
}

// SupportLevel bands a published proposal by its supporter-count rank across
// all published proposals: ranks up to ceil(n*0.33) are high, up to
// ceil(n*0.66) medium, the rest low. Proposals with equal counts share the
// band of their rank.
func (e *Engine) SupportLevel(proposalID string) (Level, error) {
	type row struct {
		ID         string
		Supporters int64
	}
	var rows []row
	err := e.db.Model(&types.Proposal{}).
		Select("proposals.id AS id, count(supports.user_id) AS supporters").
		Joins("LEFT JOIN supports ON supports.proposal_id = proposals.id").
		Where("proposals.is_draft = ?", false).
		Group("proposals.id").
		Scan(&rows).Error
	if err != nil {
		return "", errs.Internal("failed to rank proposals", err)
	}

	var target *row
	for i := range rows {
		if rows[i].ID == proposalID {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		return "", errs.NotFound("proposal not found")
	}

	rank := 1
	for _, r := range rows {
		if r.Supporters > target.Supporters {
			rank++
		}
	}
	n := len(rows)
	switch {
	case rank <= int(math.Ceil(float64(n)*0.33)):
		return LevelHigh, nil
	case rank <= int(math.Ceil(float64(n)*0.66)):
		return LevelMedium, nil
	default:
		return LevelLow, nil
	}
}

// AffiliationBreakdown returns the distinct affiliations represented by the
// proposal's authors.
func (e *Engine) AffiliationBreakdown(proposalID string) ([]string, error) {
	var affs []string
	err := e.db.Model(&types.User{}).
		Joins("JOIN proposal_authors ON proposal_authors.user_id = users.id").
		Where("proposal_authors.proposal_id = ?", proposalID).
		Distinct().
		Order("users.affiliation").
		Pluck("users.affiliation", &affs).Error
	if err != nil {
		return nil, errs.Internal("failed to load affiliations", err)
	}
	return affs, nil
}

// CentreBreakdown returns the distinct centre codes across the proposal's
// authors.
func (e *Engine) CentreBreakdown(proposalID string) ([]int, error) {
	users, err := e.Authors(proposalID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var centres []int
	for _, u := range users {
		for _, c := range u.Centres {
			if !seen[c] {
				seen[c] = true
				centres = append(centres, c)
			}
		}
	}
	sort.Ints(centres)
	return centres, nil
}

// Authors returns the credited users in author order, duplicates preserved.
func (e *Engine) Authors(proposalID string) ([]types.User, error) {
	var rows []types.ProposalAuthor
	if err := e.db.Where("proposal_id = ?", proposalID).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, errs.Internal("failed to load authors", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	var users []types.User
	if err := e.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errs.Internal("failed to load authors", err)
	}
	byID := make(map[string]types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]types.User, 0, len(rows))
	for _, r := range rows {
		if u, ok := byID[r.UserID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// AddSupporter appends the proposal to the user's support ledger. Only
// published proposals can be supported. The conditional insert makes
// duplicate requests surface as conflicts instead of silently succeeding
// twice. The proposal row itself is never touched.
func (e *Engine) AddSupporter(proposalID, userID string) error {
	p, err := e.Get(proposalID)
	if err != nil {
		return err
	}
	if p.IsDraft {
		return errs.Conflict("draft proposals cannot be supported")
	}
	res := e.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.Support{UserID: userID, ProposalID: proposalID})
	if res.Error != nil {
		return errs.Internal("failed to record support", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Conflict("user already supports this proposal")
	}
	return nil
}

// RemoveSupporter removes the proposal from the user's support ledger.
func (e *Engine) RemoveSupporter(proposalID, userID string) error {
	if _, err := e.Get(proposalID); err != nil {
		return err
	}
	res := e.db.Delete(&types.Support{}, "user_id = ? AND proposal_id = ?", userID, proposalID)
	if res.Error != nil {
		return errs.Internal("failed to remove support", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Conflict("user does not support this proposal")
	}
	return nil
}

// Supports reports whether the user's ledger contains the proposal.
func (e *Engine) Supports(userID, proposalID string) (bool, error) {
	var n int64
	err := e.db.Model(&types.Support{}).
		Where("user_id = ? AND proposal_id = ?", userID, proposalID).
		Count(&n).Error
	if err != nil {
		return false, errs.Internal("failed to check support", err)
	}
	return n > 0, nil
}
