package mysql

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"confrarias/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedDiscovery(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	repo := &DiscoveryRepository{DB: db}
	require.NoError(t, repo.Create(context.Background(), &model.Discovery{
		ID:       id,
		Title:    "Queijo da Serra",
		Category: "Produto",
		AuthorID: "author",
		Status:   model.StatusPendente,
	}))
}

func assertLedgerConsistent(t *testing.T, db *gorm.DB, id string) (int64, []string) {
	t.Helper()
	d, err := (&DiscoveryRepository{DB: db}).FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(len(d.SealGivers)), d.Selos, "selos must equal |sealGivers|")
	return d.Selos, d.SealGivers
}

func TestSealRepository_ToggleIsItsOwnInverse(t *testing.T) {
	db := newTestDB(t)
	seedDiscovery(t, db, "d1")
	repo := &SealRepository{DB: db}
	ctx := context.Background()

	sealed, selos, err := repo.Toggle(ctx, "d1", "u1", true)
	require.NoError(t, err)
	assert.True(t, sealed)
	assert.Equal(t, int64(1), selos)
	n, givers := assertLedgerConsistent(t, db, "d1")
	assert.Equal(t, int64(1), n)
	assert.Equal(t, []string{"u1"}, givers)

	sealed, selos, err = repo.Toggle(ctx, "d1", "u1", true)
	require.NoError(t, err)
	assert.False(t, sealed)
	assert.Equal(t, int64(0), selos)
	n, givers = assertLedgerConsistent(t, db, "d1")
	assert.Equal(t, int64(0), n)
	assert.Empty(t, givers)
}

func TestSealRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, _, err := (&SealRepository{DB: db}).Toggle(context.Background(), "missing", "u1", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSealRepository_ConcurrentTogglesKeepInvariant(t *testing.T) {
	db := newTestDB(t)
	seedDiscovery(t, db, "d1")
	repo := &SealRepository{DB: db}

	const users = 8
	const perUser = 5
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		for i := 0; i < perUser; i++ {
			wg.Add(1)
			go func(uid string) {
				defer wg.Done()
				_, _, err := repo.Toggle(context.Background(), "d1", uid, true)
				assert.NoError(t, err)
			}(fmt.Sprintf("u%d", u))
		}
	}
	wg.Wait()

	// every user toggled an odd number of times, so everyone ends sealed
	n, givers := assertLedgerConsistent(t, db, "d1")
	assert.Equal(t, int64(users), n)
	assert.Len(t, givers, users)

	mismatches, err := repo.CountMismatches(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestSealRepository_SameUserDoubleClick(t *testing.T) {
	db := newTestDB(t)
	seedDiscovery(t, db, "d1")
	repo := &SealRepository{DB: db}

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sealed, _, err := repo.Toggle(context.Background(), "d1", "u1", true)
			assert.NoError(t, err)
			results[i] = sealed
		}(i)
	}
	wg.Wait()

	// exactly two toggles took effect: one sealed, one unsealed
	assert.ElementsMatch(t, []bool{true, false}, results)
	n, _ := assertLedgerConsistent(t, db, "d1")
	assert.Equal(t, int64(0), n)
}

func TestSealRepository_WritesOutboxEvent(t *testing.T) {
	db := newTestDB(t)
	seedDiscovery(t, db, "d1")
	_, _, err := (&SealRepository{DB: db}).Toggle(context.Background(), "d1", "u1", true)
	require.NoError(t, err)

	rows, err := (&OutboxRepository{DB: db}).List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, EventSealToggled, rows[0].EventType)
	assert.Equal(t, "d1", rows[0].AggregateID)
	assert.Contains(t, rows[0].Payload, `"sealed":true`)
}

func TestSealRepository_HiddenDiscoveryLooksMissing(t *testing.T) {
	db := newTestDB(t)
	seedDiscovery(t, db, "d1")
	repo := &SealRepository{DB: db}
	ctx := context.Background()

	_, _, err := repo.Toggle(ctx, "d1", "u1", false)
	assert.ErrorIs(t, err, ErrNotFound)
	n, _ := assertLedgerConsistent(t, db, "d1")
	assert.Zero(t, n)

	// the author still sees their own pending discovery
	sealed, selos, err := repo.Toggle(ctx, "d1", "author", false)
	require.NoError(t, err)
	assert.True(t, sealed)
	assert.Equal(t, int64(1), selos)

	rows, err := (&OutboxRepository{DB: db}).List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDiscoveryRepository_ListLoadsSealGivers(t *testing.T) {
	db := newTestDB(t)
	seedDiscovery(t, db, "d1")
	seedDiscovery(t, db, "d2")
	seals := &SealRepository{DB: db}
	ctx := context.Background()
	for _, uid := range []string{"u1", "u2"} {
		_, _, err := seals.Toggle(ctx, "d1", uid, true)
		require.NoError(t, err)
	}

	list, err := (&DiscoveryRepository{DB: db}).ListByStatus(ctx, "", DiscoveryCursor{}, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	givers := map[string][]string{}
	for _, d := range list {
		require.NotNil(t, d.SealGivers)
		assert.Equal(t, int64(len(d.SealGivers)), d.Selos)
		givers[d.ID] = d.SealGivers
	}
	assert.Equal(t, []string{"u1", "u2"}, givers["d1"])
	assert.Equal(t, []string{}, givers["d2"])
}
