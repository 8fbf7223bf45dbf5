package webserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/questions"
)

type Questions struct {
	store *questions.Store
}

func NewQuestions(db *gorm.DB) Questions {
	return Questions{store: questions.NewStore(db)}
}

func (h Questions) List(c *gin.Context) {
	qs, err := h.store.List()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": qs})
}

func (h Questions) Add(c *gin.Context) {
	if !data.FeatureEnabled("questions") {
		fail(c, errs.FeatureDisabled("questions"))
		return
	}

	var req struct {
		Question  string    `json:"question" binding:"required"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "err": err.Error()})
		return
	}

	q, err := h.store.Add(c.GetString("uid"), req.Question, req.Timestamp)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h Questions) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
