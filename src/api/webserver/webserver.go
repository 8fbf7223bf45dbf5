package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/da-upm/participa/src/api/config"
	"github.com/da-upm/participa/src/api/docgen"
	"github.com/da-upm/participa/src/api/proposals"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, notifier proposals.Notifier, booklet docgen.Builder) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb, notifier, booklet)
	return g
}
