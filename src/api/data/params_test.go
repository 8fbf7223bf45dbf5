package data_test

import (
	"testing"

	"github.com/da-upm/participa/src/api/data"
	"github.com/da-upm/participa/src/api/testutil"
	"github.com/da-upm/participa/src/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParamsSnapshot(t *testing.T) {
	testutil.OpenDB(t)

	ps := data.Params()
	assert.Equal(t, "Transporte", ps.Categories["transport"])
	assert.Equal(t, types.AffiliationPDI, ps.AffiliationCodes["D"])
	assert.Equal(t, "ETSIT", ps.Centres[9])
	assert.Equal(t, "Participa", ps.Settings["page_title"])
}

func TestFeatureEnabled(t *testing.T) {
	testutil.OpenDB(t)

	assert.True(t, data.FeatureEnabled("proposals"))
	assert.False(t, data.FeatureEnabled("timeline"))
	// Unknown flags read as off.
	assert.False(t, data.FeatureEnabled("no-such-feature"))
}

func TestRefreshParamsPicksUpWrites(t *testing.T) {
	db := testutil.OpenDB(t)

	require.True(t, data.FeatureEnabled("questions"))
	require.NoError(t, db.Model(&types.Feature{}).
		Where("name = ?", "questions").Update("enabled", false).Error)

	// The cache serves the old value until refreshed.
	assert.True(t, data.FeatureEnabled("questions"))
	require.NoError(t, data.RefreshParams(db))
	assert.False(t, data.FeatureEnabled("questions"))
}
