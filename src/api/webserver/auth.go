package webserver

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/da-upm/participa/src/api/config"
	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/identity"
)

// Auth implements the two-step login handover: the SSO gateway deposits
// verified identity claims against a one-time ticket, and the browser
// redeems the ticket for a session token.
type Auth struct {
	cfg config.Config
	db  *gorm.DB
	rdb *redis.Client
}

func NewAuth(cfg config.Config, db *gorm.DB, rdb *redis.Client) Auth {
	return Auth{cfg: cfg, db: db, rdb: rdb}
}

// Ticket is called by the SSO gateway after it has verified the user. The
// gateway authenticates itself with a shared secret.
func (a Auth) Ticket(c *gin.Context) {
	if a.cfg.GatewaySecret != "" && c.GetHeader("X-Gateway-Secret") != a.cfg.GatewaySecret {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "err": "bad gateway secret"})
		return
	}

	var claims identity.Claims
	if err := c.ShouldBindJSON(&claims); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "err": err.Error()})
		return
	}

	raw, err := json.Marshal(claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_server_error", "err": "failed to store claims"})
		return
	}
	ticket := uuid.NewString()
	if err := data.SetTicket(c, a.rdb, ticket, string(raw)); err != nil {
		log.Printf("failed to store login ticket: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_server_error", "err": "failed to create ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// Login redeems a one-time ticket, registering the user on first login.
func (a Auth) Login(c *gin.Context) {
	var req struct {
		Ticket string `json:"ticket" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "err": err.Error()})
		return
	}

	raw, err := data.GetDelTicket(c, a.rdb, req.Ticket)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "err": "ticket expired or not found"})
		return
	}
	var claims identity.Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_server_error", "err": "corrupt ticket"})
		return
	}

	user, err := identity.Resolve(a.db, claims)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := issueJWT(user, []byte(a.cfg.JWTSecret))
	if err != nil {
		log.Printf("failed to issue token for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_server_error", "err": "failed to issue token"})
		return
	}

	log.Printf("authenticated %s (%s)", user.Username, user.Affiliation)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"username":    user.Username,
			"affiliation": user.Affiliation,
			"isAdmin":     user.IsAdmin,
		},
	})
}
