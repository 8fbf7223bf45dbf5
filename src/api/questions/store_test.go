package questions_test

import (
	"testing"
	"time"

	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/questions"
	"github.com/da-upm/participa/src/api/testutil"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStampsAffiliation(t *testing.T) {
	db := testutil.OpenDB(t)
	store := questions.NewStore(db)

	u := testutil.MakeUser(t, db, "curiosa", types.AffiliationPTGAS)

	q, err := store.Add(u.ID, "  ¿Habrá más plazas de aparcamiento?  ", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "¿Habrá más plazas de aparcamiento?", q.Question)
	assert.Equal(t, types.AffiliationPTGAS, q.Affiliation)
	assert.False(t, q.Timestamp.IsZero())
}

func TestAddValidation(t *testing.T) {
	db := testutil.OpenDB(t)
	store := questions.NewStore(db)

	u := testutil.MakeUser(t, db, "curiosa", types.AffiliationStudent)

	_, err := store.Add(u.ID, "   ", time.Time{})
	assert.Equal(t, errs.KindInvalidInput, errs.KindOf(err))

	_, err = store.Add(uuid.NewString(), "¿Pregunta?", time.Time{})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestListNewestFirst(t *testing.T) {
	db := testutil.OpenDB(t)
	store := questions.NewStore(db)

	u := testutil.MakeUser(t, db, "curiosa", types.AffiliationStudent)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"Primera", "Segunda", "Tercera"} {
		_, err := store.Add(u.ID, text, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	qs, err := store.List()
	require.NoError(t, err)
	require.Len(t, qs, 3)
	assert.Equal(t, "Tercera", qs[0].Question)
	assert.Equal(t, "Primera", qs[2].Question)
}

func TestDeleteAbsentQuestion(t *testing.T) {
	db := testutil.OpenDB(t)
	store := questions.NewStore(db)

	u := testutil.MakeUser(t, db, "curiosa", types.AffiliationStudent)
	q, err := store.Add(u.ID, "¿Pregunta?", time.Time{})
	require.NoError(t, err)

	require.NoError(t, store.Delete(q.ID))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(store.Delete(q.ID)))
}
