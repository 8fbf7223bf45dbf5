package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/da-upm/participa/src/api/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func issueJWT(user types.User, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":      user.ID,
		"username": user.Username,
		"admin":    user.IsAdmin,
		"exp":      time.Now().Add(8 * time.Hour).Unix(),
	})
	return token.SignedString(secret)
}

func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "err": "missing bearer token"})
			return
		}
		tok, err := jwt.Parse(h[7:], func(t *jwt.Token) (interface{}, error) { return secret, nil })
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "err": "invalid token"})
			return
		}
		claims := tok.Claims.(jwt.MapClaims)
		c.Set("uid", claims["uid"])
		c.Set("username", claims["username"])
		c.Next()
	}
}

// AdminMiddleware re-checks the admin flag against the database on each
// request instead of trusting the token claim for its full lifetime.
func AdminMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user types.User
		if err := db.First(&user, "id = ?", c.GetString("uid")).Error; err != nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "limited_user", "err": "admin access required"})
			return
		}
		c.Next()
	}
}

// CandidateMiddleware admits candidates and their surrogate users, setting
// the candidate username the commitment handlers act for.
func CandidateMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString("username")
		var cand types.Candidate
		if err := db.First(&cand, "username = ?", username).Error; err == nil {
			c.Set("candidate", cand.Username)
			c.Next()
			return
		}
		var cands []types.Candidate
		if err := db.Find(&cands).Error; err == nil {
			for _, cd := range cands {
				for _, surrogate := range cd.SurrogateUsers {
					if surrogate == username {
						c.Set("candidate", cd.Username)
						c.Next()
						return
					}
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "limited_user", "err": "candidate access required"})
	}
}
