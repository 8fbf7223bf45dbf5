// Command dbseed creates the schema and loads the initial parameter store:
// categories, affiliation code mapping, centres, feature flags and branding
// settings.
package main

import (
	"log"

	"github.com/da-upm/participa/src/api/config"
	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/types"
	"gorm.io/gorm/clause"
)

var categories = map[string]string{
	"general":          "General",
	"economic":         "Financiación",
	"infraestructures": "Infraestructuras",
	"promotion":        "Comunicación y promoción",
	"transport":        "Transporte",
	"services":         "Servicios",
	"students":         "Estudiantes",
	"unilife":          "Asociaciones y vida universitaria",
	"scolarships":      "Ayudas y becas estudiantes",
	"docentia":         "Docencia - Educación",
	"equality":         "Igualdad y dimensión social",
	"studentcouncil":   "Representación estudiantil",
	"pdi":              "PDI",
	"aid":              "Ayudas a PDI",
	"phd":              "Doctorado",
	"research":         "Investigación",
	"position":         "Plazas PDI",
	"ptgas":            "PTGAS",
	"aidptgas":         "Ayudas a PTGAS",
	"staff":            "Personal Funcionario",
	"laboral":          "Personal Laboral",
	"rpt":              "Plazas y RPT PTGAS",
}

var affiliationCodes = map[string][]string{
	types.AffiliationPDI:     {"D", "M", "U", "P", "R", "B"},
	types.AffiliationStudent: {"A", "W"},
	types.AffiliationPTGAS:   {"F", "L", "S"},
}

var affiliations = map[string]string{
	types.AffiliationPDI:     "PDI",
	types.AffiliationStudent: "Estudiantes",
	types.AffiliationPTGAS:   "PTGAS",
	types.AffiliationNone:    "Otros",
}

var centres = map[int]string{
	1: "ETSIA", 3: "ETSAM", 4: "ETSICCP", 5: "ETSII", 6: "ETSIME",
	8: "ETSIN", 9: "ETSIT", 10: "ETSIINF", 11: "INEF", 12: "ETSITGC",
	13: "ETSIMFMN", 14: "ETSIAE", 20: "ETSIAAB", 30: "EPES", 54: "ETSEM",
	56: "ETSIDI", 58: "ETSIC", 59: "ETSIST", 61: "ETSISI", 81: "CSDMM",
	90: "Rectorado", 91: "ICE", 97: "IDR",
}

var features = map[string]bool{
	"proposals":  true,
	"questions":  true,
	"candidates": true,
	"process":    true,
	"timeline":   true,
}

var settings = map[string]string{
	"page_title":      "Participa DA-UPM",
	"header_title":    "Propuestas para el Rector/a",
	"header_subtitle": "Comparte tus ideas para la mejora de nuestra universidad.",
	"delegation_name": "Delegación de Alumnos UPM",
	"contact_email":   "da@upm.es",
	"elections_email": "da.elecciones@upm.es",
	"color_primary":   "#00509b",
	"color_secondary": "#00509b",
}

func main() {
	cfg := config.Load()
	db := data.MustMySQL(cfg.MySQLDSN)

	if err := data.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	seed := func(model string, rows []interface{}) {
		for _, row := range rows {
			if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error; err != nil {
				log.Fatalf("seed %s: %v", model, err)
			}
		}
		log.Printf("seeded %d %s", len(rows), model)
	}

	var rows []interface{}
	for key, label := range categories {
		rows = append(rows, &types.Category{Key: key, Label: label})
	}
	seed("categories", rows)

	rows = nil
	for aff, codes := range affiliationCodes {
		for _, code := range codes {
			rows = append(rows, &types.AffiliationCode{Code: code, Affiliation: aff})
		}
	}
	seed("affiliation codes", rows)

	rows = nil
	for key, label := range affiliations {
		rows = append(rows, &types.Affiliation{Key: key, Label: label})
	}
	seed("affiliations", rows)

	rows = nil
	for code, name := range centres {
		rows = append(rows, &types.Centre{Code: code, Name: name})
	}
	seed("centres", rows)

	rows = nil
	for name, enabled := range features {
		rows = append(rows, &types.Feature{Name: name, Enabled: enabled})
	}
	seed("features", rows)

	rows = nil
	for name, value := range settings {
		rows = append(rows, &types.Setting{Name: name, Value: value})
	}
	seed("settings", rows)

	log.Printf("done")
}
