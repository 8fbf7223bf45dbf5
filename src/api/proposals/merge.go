package proposals

import (
	"context"
	"log"
	"time"

	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/sanitize"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier delivers lifecycle mail to proposal authors.
type Notifier interface {
	DraftApproved(user types.User, p types.Proposal) error
	DraftRejected(user types.User, draftTitle, reason string) error
}

// Merger runs the draft merge workflow: N drafts in, one published proposal
// out, authorship and history carried forward.
type Merger struct {
	db       *gorm.DB
	engine   *Engine
	notifier Notifier
	rdb      *redis.Client
}

func NewMerger(db *gorm.DB, rdb *redis.Client, notifier Notifier) *Merger {
	return &Merger{db: db, engine: NewEngine(db), notifier: notifier, rdb: rdb}
}

// PublishResult carries the new proposal plus non-fatal warnings (failed
// notifications) for the admin performing the action.
type PublishResult struct {
	Proposal types.Proposal
	Warnings []string
}

// Publish merges the given drafts into one published proposal. Validation
// runs before any mutation; proposal creation, draft deletion and the
// authors' ledger updates share one transaction; mail stays outside it and
// never rolls anything back.
func (m *Merger) Publish(ctx context.Context, draftIDs []string, title, description string, categories []string) (PublishResult, error) {
	title = sanitize.Title(title)
	description = sanitize.Rich(description)
	if title == "" {
		return PublishResult{}, errs.InvalidInput("title must not be empty")
	}
	if sanitize.Plain(description) == "" {
		return PublishResult{}, errs.InvalidInput("description must not be empty")
	}
	cats := FilterCategories(categories)
	if len(cats) == 0 {
		return PublishResult{}, errs.InvalidInput("no valid categories given")
	}
	if len(draftIDs) == 0 {
		return PublishResult{}, errs.InvalidInput("at least one draft is required")
	}

	drafts, err := m.loadDrafts(draftIDs)
	if err != nil {
		return PublishResult{}, err
	}

	// Authorship is additive: the concatenated list keeps duplicates, in
	// draft order then author position.
	var collected []string
	authorsByDraft := make(map[string][]string, len(drafts))
	for _, d := range drafts {
		users, err := m.engine.Authors(d.ID)
		if err != nil {
			return PublishResult{}, err
		}
		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		authorsByDraft[d.ID] = ids
		collected = append(collected, ids...)
	}

	published := types.Proposal{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Categories:  cats,
		IsDraft:     false,
	}
	versions, err := m.flattenHistory(drafts, authorsByDraft, published.ID)
	if err != nil {
		return PublishResult{}, err
	}
	distinctAuthors := distinct(collected)

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&published).Error; err != nil {
			return err
		}
		for i, uid := range collected {
			row := types.ProposalAuthor{ProposalID: published.ID, Position: i, UserID: uid}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for i := range versions {
			if err := tx.Create(&versions[i]).Error; err != nil {
				return err
			}
		}
		for _, d := range drafts {
			if err := deleteProposal(tx, d.ID); err != nil {
				return err
			}
		}
		// Authors automatically support their own published proposal.
		for _, uid := range distinctAuthors {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&types.Support{UserID: uid, ProposalID: published.ID})
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
	if err != nil {
		return PublishResult{}, errs.Internal("failed to publish drafts", err)
	}

	result := PublishResult{Proposal: published}
	for _, uid := range distinctAuthors {
		var u types.User
		if err := m.db.First(&u, "id = ?", uid).Error; err != nil {
			log.Printf("publish %s: author %s not found for notification: %v", published.ID, uid, err)
			continue
		}
		if err := m.notifier.DraftApproved(u, published); err != nil {
			log.Printf("publish %s: failed to notify %s: %v", published.ID, u.Email, err)
			result.Warnings = append(result.Warnings, "could not notify "+u.Email)
		}
	}

	m.publishEvent(ctx, map[string]interface{}{
		"event":    "published",
		"id":       published.ID,
		"title":    published.Title,
		"drafts":   len(drafts),
		"authors":  len(distinctAuthors),
		"occurred": time.Now().Unix(),
	})
	return result, nil
}

// Reject deletes a draft after notifying its proponent. Notification
// failures are logged but never block the deletion; unlike publish, there is
// no ledger state to keep consistent here.
func (m *Merger) Reject(ctx context.Context, draftID, reason string) error {
	reason = sanitize.Rich(reason)
	if sanitize.Plain(reason) == "" {
		return errs.InvalidInput("a rejection reason is required")
	}

	var draft types.Proposal
	err := m.db.First(&draft, "id = ? AND is_draft = ?", draftID, true).Error
	if err != nil {
		return errs.NotFound("draft not found")
	}

	if proponent, err := m.firstAuthor(draft.ID); err == nil {
		if err := m.notifier.DraftRejected(proponent, draft.Title, reason); err != nil {
			log.Printf("reject %s: failed to notify %s: %v", draft.ID, proponent.Email, err)
		}
	} else {
		log.Printf("reject %s: no proponent to notify: %v", draft.ID, err)
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		return deleteProposal(tx, draft.ID)
	})
	if err != nil {
		return errs.Internal("failed to delete draft", err)
	}

	m.publishEvent(ctx, map[string]interface{}{
		"event":    "rejected",
		"id":       draft.ID,
		"title":    draft.Title,
		"occurred": time.Now().Unix(),
	})
	return nil
}

// loadDrafts resolves the requested IDs to existing drafts, keeping request
// order. A missing or already-published ID fails the whole operation.
func (m *Merger) loadDrafts(draftIDs []string) ([]types.Proposal, error) {
	ids := distinct(draftIDs)
	var drafts []types.Proposal
	if err := m.db.Where("id IN ? AND is_draft = ?", ids, true).Find(&drafts).Error; err != nil {
		return nil, errs.Internal("failed to load drafts", err)
	}
	if len(drafts) != len(ids) {
		return nil, errs.NotFound("one or more drafts do not exist")
	}
	byID := make(map[string]types.Proposal, len(drafts))
	for _, d := range drafts {
		byID[d.ID] = d
	}
	ordered := make([]types.Proposal, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}

// flattenHistory builds the published proposal's version rows. A source
// draft that already carries history contributes that history, re-parented;
// a plain draft contributes its own snapshot. The result is always a flat
// list; version rows never nest. A failed history read fails the publish:
// falling back to a snapshot would silently drop provenance.
func (m *Merger) flattenHistory(drafts []types.Proposal, authorsByDraft map[string][]string, newID string) ([]types.ProposalVersion, error) {
	var out []types.ProposalVersion
	pos := 0
	for _, d := range drafts {
		var inherited []types.ProposalVersion
		if err := m.db.Where("proposal_id = ?", d.ID).Order("position ASC").Find(&inherited).Error; err != nil {
			return nil, errs.Internal("failed to load draft history", err)
		}
		if len(inherited) > 0 {
			for _, v := range inherited {
				out = append(out, types.ProposalVersion{
					ID:          uuid.NewString(),
					ProposalID:  newID,
					Position:    pos,
					Title:       v.Title,
					Description: v.Description,
					Categories:  v.Categories,
					Authors:     v.Authors,
					CreatedAt:   v.CreatedAt,
				})
				pos++
			}
			continue
		}
		out = append(out, types.ProposalVersion{
			ID:          uuid.NewString(),
			ProposalID:  newID,
			Position:    pos,
			Title:       d.Title,
			Description: d.Description,
			Categories:  d.Categories,
			Authors:     authorsByDraft[d.ID],
			CreatedAt:   d.CreatedAt,
		})
		pos++
	}
	return out, nil
}

func (m *Merger) firstAuthor(proposalID string) (types.User, error) {
	var row types.ProposalAuthor
	if err := m.db.Where("proposal_id = ?", proposalID).Order("position ASC").First(&row).Error; err != nil {
		return types.User{}, err
	}
	var u types.User
	if err := m.db.First(&u, "id = ?", row.UserID).Error; err != nil {
		return types.User{}, err
	}
	return u, nil
}

func (m *Merger) publishEvent(ctx context.Context, payload map[string]interface{}) {
	if m.rdb == nil {
		return
	}
	if err := data.PublishProposalEvent(ctx, m.rdb, payload); err != nil {
		log.Printf("failed to publish proposal event: %v", err)
	}
}

// deleteProposal removes a proposal and its dependent rows.
func deleteProposal(tx *gorm.DB, proposalID string) error {
	if err := tx.Delete(&types.ProposalAuthor{}, "proposal_id = ?", proposalID).Error; err != nil {
		return err
	}
	if err := tx.Delete(&types.ProposalVersion{}, "proposal_id = ?", proposalID).Error; err != nil {
		return err
	}
	if err := tx.Delete(&types.Support{}, "proposal_id = ?", proposalID).Error; err != nil {
		return err
	}
	return tx.Delete(&types.Proposal{}, "id = ?", proposalID).Error
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
