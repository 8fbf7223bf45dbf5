package proposals_test

import (
	"fmt"
	"testing"

	"github.com/da-upm/participa/src/api/errs"
	"github.com/da-upm/participa/src/api/proposals"
	"github.com/da-upm/participa/src/api/testutil"
	"github.com/da-upm/participa/src/api/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportersCountMatchesLedger(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	author := testutil.MakeUser(t, db, "author", types.AffiliationPDI, 9)
	p := testutil.MakeProposal(t, db, "Más taquillas", false, []string{"services"}, author.ID)

	users := make([]types.User, 0, 3)
	for i := 0; i < 3; i++ {
		users = append(users, testutil.MakeUser(t, db, fmt.Sprintf("u%d", i), types.AffiliationStudent, 61))
	}

	for i, u := range users {
		require.NoError(t, engine.AddSupporter(p.ID, u.ID))
		n, err := engine.SupportersCount(p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), n)
	}

	require.NoError(t, engine.RemoveSupporter(p.ID, users[1].ID))
	n, err := engine.SupportersCount(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAddSupporterTwiceConflicts(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	author := testutil.MakeUser(t, db, "author", types.AffiliationPDI)
	u := testutil.MakeUser(t, db, "supporter", types.AffiliationStudent)
	p := testutil.MakeProposal(t, db, "Wifi en el aulario", false, []string{"services"}, author.ID)

	require.NoError(t, engine.AddSupporter(p.ID, u.ID))
	err := engine.AddSupporter(p.ID, u.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	var rows []types.Support
	require.NoError(t, db.Where("user_id = ? AND proposal_id = ?", u.ID, p.ID).Find(&rows).Error)
	assert.Len(t, rows, 1)
}

func TestRemoveSupporterAbsentConflicts(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	author := testutil.MakeUser(t, db, "author", types.AffiliationPDI)
	u := testutil.MakeUser(t, db, "supporter", types.AffiliationStudent)
	p := testutil.MakeProposal(t, db, "Comedores más baratos", false, []string{"services"}, author.ID)

	err := engine.RemoveSupporter(p.ID, u.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	n, err := engine.SupportersCount(p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishedFlagStoredAsWritten(t *testing.T) {
	db := testutil.OpenDB(t)

	// The model must not carry a column default for IsDraft: gorm drops
	// zero-valued fields that have one, which would turn every published
	// proposal back into a draft on insert.
	p := types.Proposal{
		ID:          uuid.NewString(),
		Title:       "Publicada",
		Description: "<p>Texto</p>",
		Categories:  []string{"general"},
		IsDraft:     false,
	}
	require.NoError(t, db.Create(&p).Error)

	var got types.Proposal
	require.NoError(t, db.First(&got, "id = ?", p.ID).Error)
	assert.False(t, got.IsDraft)
}

func TestAddSupporterDraftRejected(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	author := testutil.MakeUser(t, db, "author", types.AffiliationStudent)
	u := testutil.MakeUser(t, db, "supporter", types.AffiliationPDI)
	d := testutil.MakeProposal(t, db, "Borrador pendiente", true, []string{"general"}, author.ID)

	err := engine.AddSupporter(d.ID, u.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	n, err := engine.SupportersCount(d.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddSupporterUnknownProposal(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	u := testutil.MakeUser(t, db, "supporter", types.AffiliationStudent)
	err := engine.AddSupporter("no-such-id", u.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestSupportLevelRankBanding(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	author := testutil.MakeUser(t, db, "author", types.AffiliationPDI)

	// Ten proposals with supporter counts 10..1. With n=10 the banding
	// boundaries sit at rank ceil(10*0.33)=4 and ceil(10*0.66)=7.
	supporters := make([]types.User, 10)
	for i := range supporters {
		supporters[i] = testutil.MakeUser(t, db, fmt.Sprintf("s%d", i), types.AffiliationStudent)
	}

	ids := make([]string, 10)
	for i := 0; i < 10; i++ {
		p := testutil.MakeProposal(t, db, fmt.Sprintf("Propuesta %d", i), false, []string{"general"}, author.ID)
		ids[i] = p.ID
		for j := 0; j < 10-i; j++ {
			require.NoError(t, engine.AddSupporter(p.ID, supporters[j].ID))
		}
	}

	expected := []proposals.Level{
		proposals.LevelHigh, proposals.LevelHigh, proposals.LevelHigh, proposals.LevelHigh,
		proposals.LevelMedium, proposals.LevelMedium, proposals.LevelMedium,
		proposals.LevelLow, proposals.LevelLow, proposals.LevelLow,
	}
	for i, id := range ids {
		level, err := engine.SupportLevel(id)
		require.NoError(t, err)
		assert.Equalf(t, expected[i], level, "proposal with %d supporters", 10-i)
	}
}

func TestSupportLevelTiesShareBand(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	author := testutil.MakeUser(t, db, "author", types.AffiliationPDI)
	supporters := make([]types.User, 5)
	for i := range supporters {
		supporters[i] = testutil.MakeUser(t, db, fmt.Sprintf("s%d", i), types.AffiliationStudent)
	}

	counts := []int{5, 3, 3, 1}
	ids := make([]string, len(counts))
	for i, c := range counts {
		p := testutil.MakeProposal(t, db, fmt.Sprintf("Propuesta %d", i), false, []string{"general"}, author.ID)
		ids[i] = p.ID
		for j := 0; j < c; j++ {
			require.NoError(t, engine.AddSupporter(p.ID, supporters[j].ID))
		}
	}

	// n=4: boundaries at rank ceil(4*0.33)=2 and ceil(4*0.66)=3. The two
	// tied proposals both hold rank 2, so both land in the high band even
	// though only one would fit if ranked by position.
	expected := []proposals.Level{
		proposals.LevelHigh, proposals.LevelHigh, proposals.LevelHigh, proposals.LevelLow,
	}
	for i, id := range ids {
		level, err := engine.SupportLevel(id)
		require.NoError(t, err)
		assert.Equalf(t, expected[i], level, "proposal %d (count %d)", i, counts[i])
	}
}

func TestListFiltersAndSearch(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	pdi := testutil.MakeUser(t, db, "profesor", types.AffiliationPDI, 9)
	student := testutil.MakeUser(t, db, "alumno", types.AffiliationStudent, 61)

	cafe := testutil.MakeProposal(t, db, "Café Central", false, []string{"services"}, pdi.ID)
	testutil.MakeProposal(t, db, "Carril bici", false, []string{"transport"}, student.ID)
	testutil.MakeProposal(t, db, "Borrador pendiente", true, []string{"general"}, student.ID)

	t.Run("draft flag is exact", func(t *testing.T) {
		published, err := engine.List(proposals.Filter{IsDraft: false})
		require.NoError(t, err)
		assert.Len(t, published, 2)

		drafts, err := engine.List(proposals.Filter{IsDraft: true})
		require.NoError(t, err)
		assert.Len(t, drafts, 1)
	})

	t.Run("category narrowing", func(t *testing.T) {
		got, err := engine.List(proposals.Filter{IsDraft: false, Categories: []string{"services"}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, cafe.ID, got[0].ID)
	})

	t.Run("affiliation narrowing", func(t *testing.T) {
		got, err := engine.List(proposals.Filter{IsDraft: false, Affiliations: []string{types.AffiliationPDI}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, cafe.ID, got[0].ID)
	})

	t.Run("diacritic insensitive search", func(t *testing.T) {
		got, err := engine.List(proposals.Filter{IsDraft: false, Search: "cafe"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Café Central", got[0].Title)
	})
}

func TestListPaginatesBeforeTextFilter(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	author := testutil.MakeUser(t, db, "author", types.AffiliationPDI)
	testutil.MakeProposal(t, db, "Aparcamiento norte", false, []string{"general"}, author.ID)
	testutil.MakeProposal(t, db, "Jardines", false, []string{"general"}, author.ID)
	testutil.MakeProposal(t, db, "Aparcamiento sur", false, []string{"general"}, author.ID)

	// The database serves the page first and the text filter runs on it
	// afterwards, so a page may come back under-full.
	got, err := engine.List(proposals.Filter{IsDraft: false, Search: "aparcamiento", Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCreateDraftValidation(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)
	author := testutil.MakeUser(t, db, "author", types.AffiliationStudent)

	t.Run("unknown categories are dropped", func(t *testing.T) {
		p, err := engine.CreateDraft(author.ID, "Título", "<p>Texto</p>", []string{"bogus", "general"})
		require.NoError(t, err)
		assert.Equal(t, []string{"general"}, []string(p.Categories))
		assert.True(t, p.IsDraft)
	})

	t.Run("empty filtered categories fail", func(t *testing.T) {
		_, err := engine.CreateDraft(author.ID, "Título", "<p>Texto</p>", []string{"bogus"})
		require.Error(t, err)
		assert.Equal(t, errs.KindInvalidInput, errs.KindOf(err))
	})

	t.Run("markup is stripped from the title", func(t *testing.T) {
		p, err := engine.CreateDraft(author.ID, "<b>Negrita</b>", "<p>Texto</p><script>x()</script>", []string{"general"})
		require.NoError(t, err)
		assert.Equal(t, "Negrita", p.Title)
		assert.NotContains(t, p.Description, "script")
	})

	t.Run("description that is markup only fails", func(t *testing.T) {
		_, err := engine.CreateDraft(author.ID, "Título", "<p>   </p>", []string{"general"})
		require.Error(t, err)
		assert.Equal(t, errs.KindInvalidInput, errs.KindOf(err))
	})
}

func TestBreakdowns(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := proposals.NewEngine(db)

	pdi := testutil.MakeUser(t, db, "profesor", types.AffiliationPDI, 9)
	student := testutil.MakeUser(t, db, "alumno", types.AffiliationStudent, 61)
	student2 := testutil.MakeUser(t, db, "alumna", types.AffiliationStudent, 61, 9)

	p := testutil.MakeProposal(t, db, "Propuesta conjunta", false, []string{"general"},
		pdi.ID, student.ID, student2.ID)

	affs, err := engine.AffiliationBreakdown(p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{types.AffiliationPDI, types.AffiliationStudent}, affs)

	centres, err := engine.CentreBreakdown(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{9, 61}, centres)
}
