package webserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/proposals"
)

type Proposals struct {
	db     *gorm.DB
	engine *proposals.Engine
}

func NewProposals(db *gorm.DB) Proposals {
	return Proposals{db: db, engine: proposals.NewEngine(db)}
}

// List returns the published proposals, filtered and enriched for listing.
func (h Proposals) List(c *gin.Context) {
	filter := proposals.Filter{
		IsDraft:      false,
		Search:       c.Query("search"),
		Categories:   splitCSV(c.QueryArray("categories")),
		Affiliations: splitCSV(c.QueryArray("affiliations")),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
		if size, err := strconv.Atoi(c.Query("pageSize")); err == nil && size > 0 {
			filter.PageSize = size
		}
	}

	ps, err := h.engine.List(filter)
	if err != nil {
		fail(c, err)
		return
	}
	items, err := h.engine.ToListItems(ps, c.GetString("uid"), "")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": items})
}

func (h Proposals) Get(c *gin.Context) {
	p, err := h.engine.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	item, err := h.engine.ToListItem(p, c.GetString("uid"), "")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateDraft submits a new draft, gated by the proposals feature flag.
func (h Proposals) CreateDraft(c *gin.Context) {
	if !data.FeatureEnabled("proposals") {
		fail(c, errs.FeatureDisabled("proposals"))
		return
	}

	var req struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description" binding:"required"`
		Categories  []string `json:"categories" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "err": err.Error()})
		return
	}

	p, err := h.engine.CreateDraft(c.GetString("uid"), req.Title, req.Description, req.Categories)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Proposals) Support(c *gin.Context) {
	h.changeSupport(c, h.engine.AddSupporter)
}

func (h Proposals) Unsupport(c *gin.Context) {
	h.changeSupport(c, h.engine.RemoveSupporter)
}

// changeSupport applies the ledger mutation and returns the refreshed
// projection so the client can re-render the proposal card.
func (h Proposals) changeSupport(c *gin.Context, op func(proposalID, userID string) error) {
	proposalID := c.Param("id")
	if err := op(proposalID, c.GetString("uid")); err != nil {
		fail(c, err)
		return
	}
	p, err := h.engine.Get(proposalID)
	if err != nil {
		fail(c, err)
		return
	}
	item, err := h.engine.ToListItem(p, c.GetString("uid"), "")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h Proposals) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, data.Params().Categories)
}

// splitCSV accepts both repeated query params and comma-separated values.
func splitCSV(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
