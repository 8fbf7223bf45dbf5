package proposals_test

import (
	"testing"

	"github.com/da-upm/participa/src/api/proposals"
	"github.com/da-upm/participa/src/api/testutil"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToListItemCommitmentLookup(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	author := testutil.MakeUser(t, db, "autora", types.AffiliationStudent)
	p := testutil.MakeProposal(t, db, "Propuesta", false, []string{"general"}, author.ID)

	// A missing commitment is absence, not an error.
	item, err := engine.ToListItem(p, "", "candidata")
	require.NoError(t, err)
	assert.Empty(t, item.Commitment)

	require.NoError(t, db.Create(&types.Commitment{
		ID:                uuid.NewString(),
		ProposalID:        p.ID,
		CandidateUsername: "candidata",
		Content:           "<p>Compromiso</p>",
	}).Error)

	item, err = engine.ToListItem(p, "", "candidata")
	require.NoError(t, err)
	assert.Equal(t, "<p>Compromiso</p>", item.Commitment)

	// Another candidate still sees no commitment attached.
	item, err = engine.ToListItem(p, "", "otra")
	require.NoError(t, err)
	assert.Empty(t, item.Commitment)
}

func TestSortForCandidate(t *testing.T) {
	items := []proposals.ListItem{
		{ID: "plain"},
		{ID: "committed", Commitment: "<p>x</p>"},
		{ID: "supported", Supported: true},
	}
	proposals.SortForCandidate(items)
	assert.Equal(t, "supported", items[0].ID)
	assert.Equal(t, "committed", items[1].ID)
	assert.Equal(t, "plain", items[2].ID)
}
