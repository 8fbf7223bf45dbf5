// Package identity resolves authenticated SSO principals to user records,
// registering them on first login.
package identity

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claims are the verified identity attributes delivered by the SSO gateway.
type Claims struct {
	Name              string   `json:"name"`
	PreferredUsername string   `json:"preferred_username"`
	Email             string   `json:"email"`
	ClassifCodes      []string `json:"classifCodes"`
}

// Resolve returns the user matching the claims' username, registering a new
// one on first login. The affiliation and centre list are derived once, at
// registration, from the classification codes.
func Resolve(db *gorm.DB, claims Claims) (types.User, error) {
	username := strings.TrimSpace(claims.PreferredUsername)
	if username == "" {
		return types.User{}, errs.InvalidInput("missing username in identity claims")
	}

	var user types.User
	err := db.First(&user, "username = ?", username).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return types.User{}, errs.Internal("failed to look up user", err)
	}

	params := data.Params()
	user = types.User{
		ID:           uuid.NewString(),
		Name:         claims.Name,
		Username:     username,
		Email:        claims.Email,
		ClassifCodes: claims.ClassifCodes,
		Affiliation:  DeriveAffiliation(claims.ClassifCodes, params.AffiliationCodes),
		Centres:      deriveCentres(claims.ClassifCodes),
	}
	if err := db.Create(&user).Error; err != nil {
		return types.User{}, errs.Internal("failed to register user", err)
	}
	log.Printf("registered user %s (%s)", user.Username, user.Affiliation)
	return user, nil
}

// DeriveAffiliation matches the profile letter of each classification code
// ("CentroPerfil:<centre>:<letter>") against the configured code map. First
// match wins; users with no matching code are "none".
func DeriveAffiliation(codes []string, codeMap map[string]string) string {
	for _, raw := range codes {
		_, letter, ok := splitClassifCode(raw)
		if !ok {
			continue
		}
		if aff, ok := codeMap[letter]; ok {
			return aff
		}
	}
	return types.AffiliationNone
}

func deriveCentres(codes []string) []int {
	seen := make(map[int]bool)
	var centres []int
	for _, raw := range codes {
		centre, _, ok := splitClassifCode(raw)
		if !ok || seen[centre] {
			continue
		}
		seen[centre] = true
		centres = append(centres, centre)
	}
	return centres
}

func splitClassifCode(raw string) (centre int, letter string, ok bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, "", false
	}
	centre, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, "", false
	}
	letter = strings.ToUpper(strings.TrimSpace(parts[2]))
	if letter == "" {
		return 0, "", false
	}
	return centre, letter, true
}
