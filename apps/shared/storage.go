package shared

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/emotion"
	"github.com/neurolearn/neuro/core/sentiment"
	"github.com/neurolearn/neuro/storage/database"
	"github.com/neurolearn/neuro/storage/database/inmem"
	"github.com/neurolearn/neuro/storage/database/sqlxrepos"
	"github.com/neurolearn/neuro/storage/redisstore"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StoreDatabase = "database"
	StoreRedis    = "redis"
)

// Purger deletes expired entries of a key-value store.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Storage holds the persistence layer selected by store.driver:
//
//	memory:   process memory only (nothing survives a restart)
//	database: sqlx key-value table and emotion history
//	redis:    redis key-value store, emotion history in the database
type Storage struct {
	DB          *sqlx.DB // nil with the memory driver
	Store       sentiment.Store
	Purger      Purger // nil when the store expires keys itself
	EmotionRepo emotion.Repository

	closers []func() error
}

// OpenStorage opens (and migrates) the storage configured by conf.
func OpenStorage(ctx context.Context, conf *core.Config) (*Storage, error) {
	s := new(Storage)

	switch conf.Store.Driver {
	case StoreMemory, "":
		mem := inmemdb.Open()
		kv := inmemdb.NewKVStore(mem)
		s.Store, s.Purger = kv, kv
		s.EmotionRepo = inmemdb.NewEmotionRepository(mem)
		return s, nil

	case StoreDatabase, StoreRedis:
		db, err := OpenDB(ctx, conf.Database)
		if err != nil {
			return nil, err
		}
		s.DB = db
		s.closers = append(s.closers, db.Close)
		s.EmotionRepo = sqlxrepos.NewEmotionRepository(db)

		if conf.Store.Driver == StoreRedis {
			rs, err := redisstore.Open(ctx, conf.Store)
			if err != nil {
				_ = s.Close()
				return nil, err
			}
			s.Store = rs
			s.closers = append(s.closers, rs.Close)
			return s, nil
		}

		kv := sqlxrepos.NewKVStore(db)
		s.Store, s.Purger = kv, kv
		return s, nil

	default:
		return nil, errors.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}

// OpenDB creates the database if needed, opens it and applies pending migrations.
func OpenDB(ctx context.Context, conf core.DatabaseConfig) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(ctx, db, conf.Engine); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the storage connections, last opened first.
func (s *Storage) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
