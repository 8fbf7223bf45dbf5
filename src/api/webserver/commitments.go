package webserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/da-upm/participa/src/api/commitments"
	"github.com/da-upm/participa/src/api/docgen"
	"github.com/da-upm/participa/src/api/proposals"
	"github.com/da-upm/participa/src/api/types"
)

type Commitments struct {
	db      *gorm.DB
	store   *commitments.Store
	engine  *proposals.Engine
	booklet docgen.Builder
}

func NewCommitments(db *gorm.DB, booklet docgen.Builder) Commitments {
	return Commitments{
		db:      db,
		store:   commitments.NewStore(db),
		engine:  proposals.NewEngine(db),
		booklet: booklet,
	}
}

// Proposals lists the published proposals from the candidate's perspective:
// commitment attached, supported and committed proposals first.
func (h Commitments) Proposals(c *gin.Context) {
	ps, err := h.engine.List(proposals.Filter{IsDraft: false})
	if err != nil {
		fail(c, err)
		return
	}
	items, err := h.engine.ToListItems(ps, c.GetString("uid"), c.GetString("candidate"))
	if err != nil {
		fail(c, err)
		return
	}
	proposals.SortForCandidate(items)
	c.JSON(http.StatusOK, gin.H{"proposals": items})
}

func (h Commitments) Save(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "err": err.Error()})
		return
	}

	commitment, err := h.store.Upsert(c.Param("id"), c.GetString("candidate"), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, commitment)
}

func (h Commitments) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Param("id"), c.GetString("candidate")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "commitment deleted"})
}

// Booklet renders the candidate's commitments as a PDF.
func (h Commitments) Booklet(c *gin.Context) {
	username := c.GetString("candidate")
	entries, err := h.store.BookletEntries(username)
	if err != nil {
		fail(c, err)
		return
	}

	name := username
	var cand types.Candidate
	if err := h.db.First(&cand, "username = ?", username).Error; err == nil {
		name = cand.Name
	}

	doc, err := h.booklet.Booklet(name, entries)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "compromisos-"+username+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}
