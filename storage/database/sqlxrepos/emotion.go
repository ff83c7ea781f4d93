package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/neurolearn/neuro/core/emotion"
)

type emotionRow struct {
	ID        string      `db:"id"`
	Emotion   string      `db:"emotion"`
	Source    string      `db:"source"`
	Note      null.String `db:"note"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r emotionRow) entry() (emotion.Entry, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return emotion.Entry{}, errors.Wrapf(err, "parsing entry id %q", r.ID)
	}
	return emotion.Entry{
		ID:        id,
		Emotion:   r.Emotion,
		Source:    r.Source,
		Note:      r.Note.String,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

type emotionRepository struct {
	db *sqlx.DB
}

func NewEmotionRepository(db *sqlx.DB) emotion.Repository {
	return &emotionRepository{db: db}
}

func (repo *emotionRepository) CreateEntry(ctx context.Context, e emotion.Entry) (emotion.Entry, error) {
	row := emotionRow{
		ID:        e.ID.String(),
		Emotion:   e.Emotion,
		Source:    e.Source,
		Note:      null.NewString(e.Note, e.Note != ""),
		CreatedAt: e.CreatedAt.UTC(),
	}
	q := `INSERT INTO emotion_entries (id, emotion, source, note, created_at)
		VALUES (:id, :emotion, :source, :note, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return emotion.Entry{}, errors.Wrap(err, "inserting emotion entry")
	}
	return e, nil
}

func (repo *emotionRepository) LatestEntry(ctx context.Context) (emotion.Entry, error) {
	var row emotionRow
	q := `SELECT id, emotion, source, note, created_at FROM emotion_entries ORDER BY created_at DESC LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q); err != nil {
		if err == sql.ErrNoRows {
			return emotion.Entry{}, emotion.ErrNotFound
		}
		return emotion.Entry{}, errors.Wrap(err, "selecting latest emotion entry")
	}
	return row.entry()
}

func (repo *emotionRepository) RecentEntries(ctx context.Context, limit int) ([]emotion.Entry, error) {
	var rows []emotionRow
	q := repo.db.Rebind(`SELECT id, emotion, source, note, created_at FROM emotion_entries ORDER BY created_at DESC LIMIT ?`)
	if err := repo.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, errors.Wrap(err, "selecting emotion entries")
	}

	entries := make([]emotion.Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (repo *emotionRepository) DeleteAllEntries(ctx context.Context) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM emotion_entries`); err != nil {
		return errors.Wrap(err, "deleting emotion entries")
	}
	return nil
}
