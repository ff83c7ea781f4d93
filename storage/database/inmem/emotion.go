package inmemdb

import (
	"context"

	"github.com/neurolearn/neuro/core/emotion"
)

type emotionRepository struct {
	db *emotionTable
}

func NewEmotionRepository(db *DB) emotion.Repository {
	return &emotionRepository{db: db.emotion}
}

func (repo *emotionRepository) CreateEntry(_ context.Context, e emotion.Entry) (emotion.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table = append(repo.db.table, e)
	return e, nil
}

func (repo *emotionRepository) LatestEntry(_ context.Context) (emotion.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n := len(repo.db.table); n > 0 {
		return repo.db.table[n-1], nil
	}
	return emotion.Entry{}, emotion.ErrNotFound
}

func (repo *emotionRepository) RecentEntries(_ context.Context, limit int) ([]emotion.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	n := len(repo.db.table)
	if limit > n {
		limit = n
	}
	entries := make([]emotion.Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		entries = append(entries, repo.db.table[i])
	}
	return entries, nil
}

func (repo *emotionRepository) DeleteAllEntries(_ context.Context) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table = repo.db.table[:0]
	return nil
}
