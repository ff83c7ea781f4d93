package sqlxrepos

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
	db := testutil.PrepareDB(t)
	store := NewKVStore(db)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	_, err := store.Get(ctx, sentiment.ResultKey)
	assert.Equal(t, sentiment.ErrNotFound, err)

	require.NoError(t, store.Set(ctx, sentiment.ResultKey, "happy", sentiment.Retention))
	require.NoError(t, store.Set(ctx, sentiment.ResultKey, "sad", sentiment.Retention))
	require.NoError(t, store.Set(ctx, "forever", "x", 0))

	got, err := store.Get(ctx, sentiment.ResultKey)
	require.NoError(t, err)
	assert.Equal(t, "sad", got)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM kv_entries`))
	assert.Equal(t, 2, count)

	// 7 days later
	now = now.Add(sentiment.Retention)
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
	db := testutil.PrepareDB(t)
	repo := NewEmotionRepository(db)
	ctx := context.Background()

	_, err := repo.LatestEntry(ctx)
	assert.Equal(t, emotion.ErrNotFound, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	testutil.CreateEmotion(t, repo, emotion.Sad, now.Add(-2*time.Hour))
	testutil.CreateEmotion(t, repo, emotion.Calm, now.Add(-time.Hour))
	latest := testutil.CreateEmotion(t, repo, emotion.Tired, now)

	got, err := repo.LatestEntry(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)
	assert.Equal(t, emotion.Tired, got.Emotion)
	assert.True(t, latest.CreatedAt.Equal(got.CreatedAt))

	entries, err := repo.RecentEntries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, emotion.Tired, entries[0].Emotion)
	assert.Equal(t, emotion.Calm, entries[1].Emotion)

	require.NoError(t, repo.DeleteAllEntries(ctx))
	entries, err = repo.RecentEntries(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
