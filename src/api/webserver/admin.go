package webserver

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/proposals"
	"github.com/da-upm/participa/src/api/types"
)

type Admin struct {
	db     *gorm.DB
	engine *proposals.Engine
	merger *proposals.Merger
}

func NewAdmin(db *gorm.DB, rdb *redis.Client, notifier proposals.Notifier) Admin {
	return Admin{
		db:     db,
		engine: proposals.NewEngine(db),
		merger: proposals.NewMerger(db, rdb, notifier),
	}
}

// Drafts lists draft proposals for curation, with the same search and
// category narrowing as the public listing.
func (a Admin) Drafts(c *gin.Context) {
	ps, err := a.engine.List(proposals.Filter{
		IsDraft:    true,
		Search:     c.Query("search"),
		Categories: splitCSV(c.QueryArray("categories")),
	})
	if err != nil {
		fail(c, err)
		return
	}
	items, err := a.engine.ToListItems(ps, "", "")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": items})
}

func (a Admin) Draft(c *gin.Context) {
	p, err := a.engine.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	item, err := a.engine.ToListItem(p, "", "")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Publish merges the selected drafts into one published proposal.
func (a Admin) Publish(c *gin.Context) {
	var req struct {
		DraftIDs    []string `json:"draftIds" binding:"required,min=1"`
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description" binding:"required"`
		Categories  []string `json:"categories" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "err": err.Error()})
		return
	}

	log.Printf("admin %s publishing drafts %v", c.GetString("username"), req.DraftIDs)
	result, err := a.merger.Publish(c, req.DraftIDs, req.Title, req.Description, req.Categories)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"proposal": result.Proposal, "warnings": result.Warnings})
}

// Reject deletes a draft, notifying its proponent with the given reason.
func (a Admin) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = c.Query("reason")
	}

	log.Printf("admin %s rejecting draft %s", c.GetString("username"), c.Param("id"))
	if err := a.merger.Reject(c, c.Param("id"), req.Reason); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "draft rejected"})
}

func (a Admin) EnableFeature(c *gin.Context) { a.setFeature(c, true) }

func (a Admin) DisableFeature(c *gin.Context) { a.setFeature(c, false) }

func (a Admin) setFeature(c *gin.Context, enabled bool) {
	name := strings.TrimSpace(c.Param("feature"))

	var feature types.Feature
	if err := a.db.First(&feature, "name = ?", name).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "err": "unknown feature"})
		return
	}
	if feature.Enabled == enabled {
		c.JSON(http.StatusConflict, gin.H{"code": "conflict", "err": "feature already at requested value"})
		return
	}

	if err := a.db.Model(&types.Feature{}).Where("name = ?", name).
		Update("enabled", enabled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_server_error", "err": "failed to update feature"})
		return
	}
	if err := data.RefreshParams(a.db); err != nil {
		log.Printf("failed to refresh params: %v", err)
	}
	log.Printf("admin %s set feature %s=%v", c.GetString("username"), name, enabled)
	c.JSON(http.StatusOK, gin.H{"feature": name, "enabled": enabled})
}

// SetSetting updates a single branding/text value. Field-level writes keep
// concurrent admin edits to unrelated settings from clobbering each other.
func (a Admin) SetSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "err": err.Error()})
		return
	}

	name := strings.TrimSpace(c.Param("name"))
	setting := types.Setting{Name: name, Value: req.Value}
	if err := a.db.Save(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_server_error", "err": "failed to update setting"})
		return
	}
	if err := data.RefreshParams(a.db); err != nil {
		log.Printf("failed to refresh params: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "value": req.Value})
}
