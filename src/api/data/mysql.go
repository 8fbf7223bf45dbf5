package data

import (
	"log"

	"github.com/da-upm/participa/src/api/types"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.Proposal{},
		&types.ProposalAuthor{},
		&types.ProposalVersion{},
		&types.Support{},
		&types.Candidate{},
		&types.Commitment{},
		&types.Question{},
		&types.Category{},
		&types.AffiliationCode{},
		&types.Affiliation{},
		&types.Centre{},
		&types.Feature{},
		&types.Setting{},
	)
}
