package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRepositoryRoundTrip(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "")
	ctx := context.Background()

	s := &Session{RefreshToken: "rt-1", Sub: "sub-1", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByRefresh(ctx, "rt-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "sub-1", got.Sub)

	require.NoError(t, repo.DeleteByRefresh(ctx, "rt-1"))
	got, err = repo.GetByRefresh(ctx, "rt-1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepositoryTTLEviction(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "")
	ctx := context.Background()

	s := &Session{RefreshToken: "rt-2", Sub: "sub-2", ExpiresAt: time.Now().UTC().Add(2 * time.Second)}
	require.NoError(t, repo.Create(ctx, s))

	m.FastForward(3 * time.Second)

	got, err := repo.GetByRefresh(ctx, "rt-2")
	require.NoError(t, err)
	require.Nil(t, got)
}
