// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns an isolated in-memory database with the full schema and a
// seeded parameter store loaded into the cache.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := data.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	SeedParams(t, db)
	return db
}

// SeedParams installs a small parameter store and loads the cache.
func SeedParams(t *testing.T, db *gorm.DB) {
	t.Helper()

	rows := []interface{}{
		&types.Category{Key: "general", Label: "General"},
		&types.Category{Key: "transport", Label: "Transporte"},
		&types.Category{Key: "services", Label: "Servicios"},
		&types.AffiliationCode{Code: "D", Affiliation: types.AffiliationPDI},
		&types.AffiliationCode{Code: "A", Affiliation: types.AffiliationStudent},
		&types.AffiliationCode{Code: "F", Affiliation: types.AffiliationPTGAS},
		&types.Affiliation{Key: types.AffiliationPDI, Label: "PDI"},
		&types.Affiliation{Key: types.AffiliationStudent, Label: "Estudiantes"},
		&types.Affiliation{Key: types.AffiliationPTGAS, Label: "PTGAS"},
		&types.Affiliation{Key: types.AffiliationNone, Label: "Otros"},
		&types.Centre{Code: 9, Name: "ETSIT"},
		&types.Centre{Code: 61, Name: "ETSISI"},
		&types.Feature{Name: "proposals", Enabled: true},
		&types.Feature{Name: "questions", Enabled: true},
		&types.Feature{Name: "timeline", Enabled: false},
		&types.Setting{Name: "page_title", Value: "Participa"},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed params: %v", err)
		}
	}
	if err := data.LoadParams(db); err != nil {
		t.Fatalf("load params: %v", err)
	}
}

// MakeUser inserts a user with the given affiliation.
func MakeUser(t *testing.T, db *gorm.DB, username, affiliation string, centres ...int) types.User {
	t.Helper()

	u := types.User{
		ID:          uuid.NewString(),
		Name:        "Usuario " + username,
		Username:    username,
		Email:       username + "@upm.es",
		Affiliation: affiliation,
		Centres:     centres,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// MakeProposal inserts a proposal credited to the given authors in order.
func MakeProposal(t *testing.T, db *gorm.DB, title string, isDraft bool, categories []string, authorIDs ...string) types.Proposal {
	t.Helper()

	p := types.Proposal{
		ID:          uuid.NewString(),
		Title:       title,
		Description: "<p>Descripción de " + title + "</p>",
		Categories:  categories,
		IsDraft:     isDraft,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create proposal %s: %v", title, err)
	}
	for i, uid := range authorIDs {
		row := types.ProposalAuthor{ProposalID: p.ID, Position: i, UserID: uid}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create author: %v", err)
		}
	}
	return p
}
