package inmemdb

import (
	"context"
	"time"

	"github.com/neurolearn/neuro/core/sentiment"
)

// KVStore is an expiring key-value store living in process memory.
type KVStore struct {
	db  *kvTable
	now func() time.Time
}

func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db.kv, now: time.Now}
}

func (s *KVStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.db.table[key] = kvEntry{value: value, expiresAt: exp}
	return nil
}

func (s *KVStore) Get(_ context.Context, key string) (string, error) {
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	e, ok := s.db.table[key]
	if !ok || s.expired(e) {
		return "", sentiment.ErrNotFound
	}
	return e.value, nil
}

// PurgeExpired deletes expired entries and returns how many were removed.
func (s *KVStore) PurgeExpired(context.Context) (int64, error) {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	var n int64
	for k, e := range s.db.table {
		if s.expired(e) {
			delete(s.db.table, k)
			n++
		}
	}
	return n, nil
}

func (s *KVStore) expired(e kvEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
