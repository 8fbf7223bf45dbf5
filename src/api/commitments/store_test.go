package commitments_test

import (
	"testing"

	"github.com/da-upm/participa/src/api/commitments"
	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/testutil"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertCreatesThenOverwrites(t *testing.T) {
	db := testutil.OpenDB(t)
	store := commitments.NewStore(db)

	u := testutil.MakeUser(t, db, "autora", types.AffiliationStudent)
	p := testutil.MakeProposal(t, db, "Carriles bici", false, []string{"transport"}, u.ID)

	first, err := store.Upsert(p.ID, "candidata", "<p>Lo haré en 2026</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>Lo haré en 2026</p>", first.Content)

	second, err := store.Upsert(p.ID, "candidata", "<p>Lo haré en 2027</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>Lo haré en 2027</p>", second.Content)

	// Overwriting keeps exactly one row for the pair.
	var count int64
	require.NoError(t, db.Model(&types.Commitment{}).
		Where("proposal_id = ? AND candidate_username = ?", p.ID, "candidata").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertSanitizesContent(t *testing.T) {
	db := testutil.OpenDB(t)
	store := commitments.NewStore(db)

	u := testutil.MakeUser(t, db, "autora", types.AffiliationStudent)
	p := testutil.MakeProposal(t, db, "Propuesta", false, []string{"general"}, u.ID)

	c, err := store.Upsert(p.ID, "candidata", `<p onclick="x()">Texto</p><script>evil()</script>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>Texto</p>", c.Content)

	// Markup that strips to nothing is rejected.
	_, err = store.Upsert(p.ID, "candidata", "<script>evil()</script>")
	assert.Equal(t, errs.KindInvalidInput, errs.KindOf(err))
}

func TestUpsertUnknownProposal(t *testing.T) {
	db := testutil.OpenDB(t)
	store := commitments.NewStore(db)

	_, err := store.Upsert(uuid.NewString(), "candidata", "<p>Texto</p>")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestDeleteAbsentCommitment(t *testing.T) {
	db := testutil.OpenDB(t)
	store := commitments.NewStore(db)

	u := testutil.MakeUser(t, db, "autora", types.AffiliationStudent)
	p := testutil.MakeProposal(t, db, "Propuesta", false, []string{"general"}, u.ID)

	_, err := store.Upsert(p.ID, "candidata", "<p>Texto</p>")
	require.NoError(t, err)
	require.NoError(t, store.Delete(p.ID, "candidata"))

	err = store.Delete(p.ID, "candidata")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	_, err = store.Get(p.ID, "candidata")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestBookletEntriesSkipDrafts(t *testing.T) {
	db := testutil.OpenDB(t)
	store := commitments.NewStore(db)

	u := testutil.MakeUser(t, db, "autora", types.AffiliationStudent)
	published := testutil.MakeProposal(t, db, "Publicada", false, []string{"general"}, u.ID)
	draft := testutil.MakeProposal(t, db, "Borrador", true, []string{"general"}, u.ID)

	_, err := store.Upsert(published.ID, "candidata", "<p>Compromiso público</p>")
	require.NoError(t, err)
	_, err = store.Upsert(draft.ID, "candidata", "<p>Compromiso oculto</p>")
	require.NoError(t, err)
	_, err = store.Upsert(published.ID, "otra", "<p>Ajeno</p>")
	require.NoError(t, err)

	entries, err := store.BookletEntries("candidata")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Publicada", entries[0].Title)
	assert.Equal(t, "<p>Compromiso público</p>", entries[0].Content)
}
