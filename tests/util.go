package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/emotion"
	"github.com/neurolearn/neuro/storage/database"
)

// PrepareDB opens a migrated in-memory SQLite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(core.DatabaseConfig{Engine: database.SQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db, database.SQLite); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateEmotion(t *testing.T, repo emotion.Repository, emo string, createdAt ...time.Time) emotion.Entry {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	e, err := repo.CreateEntry(context.Background(), emotion.Entry{
		ID:        uuid.New(),
		Emotion:   emo,
		Source:    emotion.SourceManual,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateEmotion() failed: %v", err)
	}
	return e
}
