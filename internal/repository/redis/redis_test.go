package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRepository(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := &SessionRepository{RDB: rdb, TTL: time.Minute}
	ctx := context.Background()

	_, err := repo.GetUserToken(ctx, "u1")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, repo.AddUserToken(ctx, "u1", "tok"))
	got, err := repo.GetUserToken(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	mr.FastForward(50 * time.Second)
	require.NoError(t, repo.ExtendUserToken(ctx, "u1"))
	mr.FastForward(50 * time.Second)
	_, err = repo.GetUserToken(ctx, "u1")
	assert.NoError(t, err, "extend must slide the ttl")

	require.NoError(t, repo.DeleteUserToken(ctx, "u1"))
	_, err = repo.GetUserToken(ctx, "u1")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestEmailRepository_TwoPhaseCode(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := &EmailRepository{RDB: rdb}
	ctx := context.Background()

	// not confirmed yet
	require.NoError(t, repo.SavePending(ctx, ScopeRegister, "a@b.pt", "123456"))
	_, err := repo.Consume(ctx, ScopeRegister, "a@b.pt", "123456")
	assert.ErrorIs(t, err, ErrEmailNotFound)

	require.NoError(t, repo.Confirm(ctx, ScopeRegister, "a@b.pt"))
	assert.ErrorIs(t, repo.Confirm(ctx, ScopeRegister, "a@b.pt"), ErrCodeConfirmedFailed)

	ok, err := repo.Consume(ctx, ScopeRegister, "a@b.pt", "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Consume(ctx, ScopeRegister, "a@b.pt", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	// single use
	_, err = repo.Consume(ctx, ScopeRegister, "a@b.pt", "123456")
	assert.ErrorIs(t, err, ErrEmailNotFound)
}

func TestEmailRepository_ScopesAreSeparate(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := &EmailRepository{RDB: rdb}
	ctx := context.Background()

	require.NoError(t, repo.SavePending(ctx, ScopeReset, "a@b.pt", "111111"))
	require.NoError(t, repo.Confirm(ctx, ScopeReset, "a@b.pt"))

	_, err := repo.Consume(ctx, ScopeRegister, "a@b.pt", "111111")
	assert.ErrorIs(t, err, ErrEmailNotFound)
}
