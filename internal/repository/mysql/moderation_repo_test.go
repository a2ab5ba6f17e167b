package mysql

import (
	"context"
	"testing"
	"time"

	"confrarias/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationRepository_SetStatus(t *testing.T) {
	db := newTestDB(t)
	seedDiscovery(t, db, "d1")
	repo := &ModerationRepository{DB: db}
	ctx := context.Background()

	from, changed, err := repo.SetStatus(ctx, model.TargetDiscovery, "d1", model.StatusAprovado, "admin")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.StatusPendente, from)

	d, err := (&DiscoveryRepository{DB: db}).FindByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAprovado, d.Status)

	// same status again is a no-op
	from, changed, err = repo.SetStatus(ctx, model.TargetDiscovery, "d1", model.StatusAprovado, "admin")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, model.StatusAprovado, from)

	actions, err := repo.ListActions(ctx, model.TargetDiscovery, "d1", 10)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, model.StatusPendente, actions[0].FromStatus)
	assert.Equal(t, model.StatusAprovado, actions[0].ToStatus)
	assert.Equal(t, "admin", actions[0].ActorID)
}

func TestModerationRepository_AllTransitionsAllowed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, (&SubmissionRepository{DB: db}).Create(ctx, &model.ConfrariaSubmission{
		ID:              "s1",
		ConfrariaName:   "Confraria do Bacalhau",
		ResponsibleName: "Ana",
		Email:           "ana@example.pt",
		District:        "Porto",
		Council:         "Porto",
		Status:          model.StatusPendente,
		SubmittedAt:     time.Now(),
	}))
	repo := &ModerationRepository{DB: db}

	path := []model.ModerationStatus{
		model.StatusRejeitado, model.StatusAprovado, model.StatusPendente,
		model.StatusAprovado, model.StatusRejeitado, model.StatusPendente,
	}
	for _, to := range path {
		_, changed, err := repo.SetStatus(ctx, model.TargetSubmission, "s1", to, "admin")
		require.NoError(t, err)
		assert.True(t, changed)
		s, err := (&SubmissionRepository{DB: db}).FindByID(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, to, s.Status)
	}
}

func TestModerationRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, _, err := (&ModerationRepository{DB: db}).SetStatus(context.Background(), model.TargetSubmission, "nope", model.StatusAprovado, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModerationRepository_UnknownTarget(t *testing.T) {
	db := newTestDB(t)
	_, _, err := (&ModerationRepository{DB: db}).SetStatus(context.Background(), "post", "x", model.StatusAprovado, "admin")
	assert.Error(t, err)
}
