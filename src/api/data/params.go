package data

import (
	"sync"

	"github.com/da-upm/participa/src/api/types"
	"gorm.io/gorm"
)

// ParamSet is an immutable snapshot of the parameter store: categories,
// affiliation code mapping, centres, feature flags and free-form settings
// (colors, branding text). Read by nearly every request, mutated only
// through the admin surface followed by RefreshParams.
type ParamSet struct {
	Categories       map[string]string
	AffiliationCodes map[string]string
	Affiliations     map[string]string
	Centres          map[int]string
	Features         map[string]bool
	Settings         map[string]string
}

var (
	paramsCache ParamSet
	paramsMu    sync.RWMutex
)

// LoadParams loads the whole parameter store into the cache.
func LoadParams(db *gorm.DB) error {
	var (
		categories []types.Category
		affCodes   []types.AffiliationCode
		affs       []types.Affiliation
		centres    []types.Centre
		features   []types.Feature
		settings   []types.Setting
	)
	if err := db.Find(&categories).Error; err != nil {
		return err
	}
	if err := db.Find(&affCodes).Error; err != nil {
		return err
	}
	if err := db.Find(&affs).Error; err != nil {
		return err
	}
	if err := db.Find(&centres).Error; err != nil {
		return err
	}
	if err := db.Find(&features).Error; err != nil {
		return err
	}
	if err := db.Find(&settings).Error; err != nil {
		return err
	}

	ps := ParamSet{
		Categories:       make(map[string]string, len(categories)),
		AffiliationCodes: make(map[string]string, len(affCodes)),
		Affiliations:     make(map[string]string, len(affs)),
		Centres:          make(map[int]string, len(centres)),
		Features:         make(map[string]bool, len(features)),
		Settings:         make(map[string]string, len(settings)),
	}
	for _, c := range categories {
		ps.Categories[c.Key] = c.Label
	}
	for _, a := range affCodes {
		ps.AffiliationCodes[a.Code] = a.Affiliation
	}
	for _, a := range affs {
		ps.Affiliations[a.Key] = a.Label
	}
	for _, c := range centres {
		ps.Centres[c.Code] = c.Name
	}
	for _, f := range features {
		ps.Features[f.Name] = f.Enabled
	}
	for _, s := range settings {
		ps.Settings[s.Name] = s.Value
	}

	paramsMu.Lock()
	paramsCache = ps
	paramsMu.Unlock()
	return nil
}

// Params returns the current parameter snapshot. Callers must not mutate it.
func Params() ParamSet {
	paramsMu.RLock()
	defer paramsMu.RUnlock()
	return paramsCache
}

// RefreshParams reloads the cache after an admin write.
func RefreshParams(db *gorm.DB) error {
	return LoadParams(db)
}

// FeatureEnabled reports whether a feature flag is on. Unknown flags are off.
func FeatureEnabled(name string) bool {
	paramsMu.RLock()
	defer paramsMu.RUnlock()
	return paramsCache.Features[name]
}
