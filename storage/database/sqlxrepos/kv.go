package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/neurolearn/neuro/core/sentiment"
)

type kvRow struct {
	Name      string     `db:"name"`
	Value     string     `db:"value"`
	ExpiresAt null.Int64 `db:"expires_at"` // unix milliseconds
	UpdatedAt time.Time  `db:"updated_at"`
}

// KVStore is the expiring key-value store backed by the kv_entries table.
type KVStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewKVStore(db *sqlx.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

func (s *KVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	now := s.now().UTC()
	row := kvRow{Name: key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		row.ExpiresAt = null.Int64From(now.Add(ttl).UnixMilli())
	}

	q := `INSERT INTO kv_entries (name, value, expires_at, updated_at)
		VALUES (:name, :value, :expires_at, :updated_at)
		ON CONFLICT (name) DO UPDATE
		SET value = excluded.value, expires_at = excluded.expires_at, updated_at = excluded.updated_at`
	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		return errors.Wrapf(err, "setting %q", key)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var row kvRow
	q := s.db.Rebind(`SELECT name, value, expires_at, updated_at FROM kv_entries WHERE name = ?`)
	if err := s.db.GetContext(ctx, &row, q, key); err != nil {
		if err == sql.ErrNoRows {
			return "", sentiment.ErrNotFound
		}
		return "", errors.Wrapf(err, "getting %q", key)
	}
	if row.ExpiresAt.Valid && row.ExpiresAt.Int64 <= s.now().UnixMilli() {
		return "", sentiment.ErrNotFound
	}
	return row.Value, nil
}

// PurgeExpired deletes expired entries and returns how many were removed.
func (s *KVStore) PurgeExpired(ctx context.Context) (int64, error) {
	q := s.db.Rebind(`DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= ?`)
	res, err := s.db.ExecContext(ctx, q, s.now().UnixMilli())
	if err != nil {
		return 0, errors.Wrap(err, "purging expired entries")
	}
	return res.RowsAffected()
}
