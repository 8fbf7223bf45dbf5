package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/da-upm/participa/src/api/config"
	"github.com/da-upm/participa/src/api/docgen"
	"github.com/da-upm/participa/src/api/proposals"
)

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, notifier proposals.Notifier, booklet docgen.Builder) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(cfg, db, rdb)
	propH := NewProposals(db)
	commitH := NewCommitments(db, booklet)
	questH := NewQuestions(db)
	adminH := NewAdmin(db, rdb, notifier)

	limiter := NewRateLimiter(30, time.Minute)
	secret := []byte(cfg.JWTSecret)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/ticket", authH.Ticket)
		v1.POST("/auth/login", RateLimitMiddleware(limiter), authH.Login)

		secured := v1.Group("")
		secured.Use(JWTMiddleware(secret))
		{
			secured.GET("/proposals", propH.List)
			secured.GET("/proposals/:id", propH.Get)
			secured.POST("/proposals", RateLimitMiddleware(limiter), propH.CreateDraft)
			secured.POST("/proposals/:id/support", propH.Support)
			secured.DELETE("/proposals/:id/support", propH.Unsupport)
			secured.GET("/categories", propH.Categories)

			secured.GET("/questions", questH.List)
			secured.POST("/questions", RateLimitMiddleware(limiter), questH.Add)
		}

		cand := v1.Group("")
		cand.Use(JWTMiddleware(secret), CandidateMiddleware(db))
		{
			cand.GET("/commitments/proposals", commitH.Proposals)
			cand.GET("/commitments/booklet", commitH.Booklet)
			cand.PUT("/proposals/:id/commitment", commitH.Save)
			cand.DELETE("/proposals/:id/commitment", commitH.Delete)
		}

		admin := v1.Group("/admin")
		admin.Use(JWTMiddleware(secret), AdminMiddleware(db))
		{
			admin.GET("/proposals", adminH.Drafts)
			admin.GET("/proposals/:id", adminH.Draft)
			admin.POST("/proposals", adminH.Publish)
			admin.DELETE("/proposals/:id", adminH.Reject)

			admin.PUT("/features/:feature", adminH.EnableFeature)
			admin.DELETE("/features/:feature", adminH.DisableFeature)
			admin.PUT("/settings/:name", adminH.SetSetting)

			admin.DELETE("/questions/:id", questH.Delete)
		}
	}
}
