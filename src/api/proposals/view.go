package proposals

import (
	"errors"
	"sort"
	"time"

	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/types"
	"gorm.io/gorm"
)

// ListItem is the fixed projection handed to renderers and API clients: the
// proposal enriched with every derived value a listing needs.
type ListItem struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Categories           []string  `json:"categories"`
	IsDraft              bool      `json:"isDraft"`
	UsersDrafting        []string  `json:"usersDrafting"`
	Supporters           int64     `json:"supporters"`
	Support              Level     `json:"support,omitempty"`
	Affiliations         []string  `json:"affiliations"`
	Centres              []int     `json:"centres"`
	CandidatesSupporters []string  `json:"candidatesSupporters"`
	Supported            bool      `json:"supported"`
	Commitment           string    `json:"commitment,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// ToListItem builds the projection for one proposal. viewerID personalizes
// the Supported flag; candidateUsername, when non-empty, attaches that
// candidate's commitment.
func (e *Engine) ToListItem(p types.Proposal, viewerID, candidateUsername string) (ListItem, error) {
	item := ListItem{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Categories:  p.Categories,
		IsDraft:     p.IsDraft,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	authors, err := e.Authors(p.ID)
	if err != nil {
		return ListItem{}, err
	}
	for _, u := range authors {
		item.UsersDrafting = append(item.UsersDrafting, u.ID)
	}

	if item.Supporters, err = e.SupportersCount(p.ID); err != nil {
		return ListItem{}, err
	}
	if !p.IsDraft {
		if item.Support, err = e.SupportLevel(p.ID); err != nil {
			return ListItem{}, err
		}
	}
	if item.Affiliations, err = e.AffiliationBreakdown(p.ID); err != nil {
		return ListItem{}, err
	}
	if item.Centres, err = e.CentreBreakdown(p.ID); err != nil {
		return ListItem{}, err
	}
	if item.CandidatesSupporters, err = e.candidatesFor(p.ID); err != nil {
		return ListItem{}, err
	}
	if viewerID != "" {
		if item.Supported, err = e.Supports(viewerID, p.ID); err != nil {
			return ListItem{}, err
		}
	}
	if candidateUsername != "" {
		var c types.Commitment
		err := e.db.First(&c, "proposal_id = ? AND candidate_username = ?", p.ID, candidateUsername).Error
		switch {
		case err == nil:
			item.Commitment = c.Content
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return ListItem{}, errs.Internal("failed to load commitment", err)
		}
	}
	return item, nil
}

// ToListItems projects a slice, preserving order.
func (e *Engine) ToListItems(ps []types.Proposal, viewerID, candidateUsername string) ([]ListItem, error) {
	items := make([]ListItem, 0, len(ps))
	for _, p := range ps {
		item, err := e.ToListItem(p, viewerID, candidateUsername)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// candidatesFor lists the candidates committed to a proposal; the commitment
// store is the authoritative source of this view.
func (e *Engine) candidatesFor(proposalID string) ([]string, error) {
	var names []string
	err := e.db.Model(&types.Commitment{}).
		Where("proposal_id = ?", proposalID).
		Distinct().
		Order("candidate_username").
		Pluck("candidate_username", &names).Error
	if err != nil {
		return nil, errs.Internal("failed to load committed candidates", err)
	}
	return names, nil
}

// SortForCandidate orders a candidate's listing: supported proposals first,
// then proposals the candidate already committed to, then recency.
func SortForCandidate(items []ListItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Supported != items[j].Supported {
			return items[i].Supported
		}
		ci, cj := items[i].Commitment != "", items[j].Commitment != ""
		if ci != cj {
			return ci
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
}
