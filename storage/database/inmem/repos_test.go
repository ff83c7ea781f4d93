package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurolearn/neuro/core/emotion"
	"github.com/neurolearn/neuro/core/sentiment"
	"github.com/neurolearn/neuro/tests"
)

func TestKVStore(t *testing.T) {
	store := NewKVStore(Open())
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	_, err := store.Get(ctx, sentiment.ResultKey)
	assert.Equal(t, sentiment.ErrNotFound, err)

	require.NoError(t, store.Set(ctx, sentiment.ResultKey, "happy", sentiment.Retention))
	require.NoError(t, store.Set(ctx, "forever", "x", 0))

	got, err := store.Get(ctx, sentiment.ResultKey)
	require.NoError(t, err)
	assert.Equal(t, "happy", got)

	now = now.Add(sentiment.Retention - time.Second)
	_, err = store.Get(ctx, sentiment.ResultKey)
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, sentiment.ResultKey)
	assert.Equal(t, sentiment.ErrNotFound, err)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err = store.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestEmotionRepository(t *testing.T) {
	repo := NewEmotionRepository(Open())
	ctx := context.Background()

	_, err := repo.LatestEntry(ctx)
	assert.Equal(t, emotion.ErrNotFound, err)

	testutil.CreateEmotion(t, repo, emotion.Happy)
	testutil.CreateEmotion(t, repo, emotion.Confused)

	got, err := repo.LatestEntry(ctx)
	require.NoError(t, err)
	assert.Equal(t, emotion.Confused, got.Emotion)

	entries, err := repo.RecentEntries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, emotion.Confused, entries[0].Emotion)
	assert.Equal(t, emotion.Happy, entries[1].Emotion)

	require.NoError(t, repo.DeleteAllEntries(ctx))
	_, err = repo.LatestEntry(ctx)
	assert.Equal(t, emotion.ErrNotFound, err)
}
