package analytics

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprise/strength-service/configs"
	"github.com/enterprise/strength-service/internal/cache"
)

func TestStoreOverRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client, err := cache.NewClient(configs.RedisConfig{URL: "redis://" + server.Addr(), KeyPrefix: "strength"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewStore(client, 2)
	ctx := context.Background()

	_, err = store.LoadSnapshot(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	agg := NewAggregator()
	var ids []string
	for _, candidate := range []string{"Secure1!", "aaaaaaaa", ""} {
		e := event(candidate, "api")
		ids = append(ids, e.ID)
		agg.Record(e)
		require.NoError(t, store.AppendRecent(ctx, e))
	}
	require.NoError(t, store.SaveSnapshot(ctx, agg.Snapshot()))

	snap, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, snap.Total)
	assert.EqualValues(t, 1, snap.Valid)
	assert.EqualValues(t, 1, snap.ScoreDistribution["4"])

	list, err := server.List("strength:" + recentEventsKey)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}
