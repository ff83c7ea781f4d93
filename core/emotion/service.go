package emotion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/neurolearn/neuro/core"
)

const DefaultLimit = 20

var (
	// errors
	ErrNotFound = errors.New("no emotion recorded")
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		// LatestEntry returns ErrNotFound when the history is empty.
		LatestEntry(ctx context.Context) (Entry, error)
		// RecentEntries returns at most limit entries, newest first.
		RecentEntries(ctx context.Context, limit int) ([]Entry, error)
		DeleteAllEntries(ctx context.Context) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Record(ctx context.Context, ne NewEntry) (Entry, error) {
	src := ne.Source
	if src == "" {
		src = SourceManual
	}
	e := Entry{
		ID:        uuid.New(),
		Emotion:   core.CleanString(ne.Emotion, true /* lower */),
		Source:    src,
		Note:      core.CleanString(ne.Note),
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateEntry(ctx, e)
}

func (svc *Service) Latest(ctx context.Context) (Entry, error) {
	return svc.repo.LatestEntry(ctx)
}

// LatestEmotion returns the latest recorded emotion, empty when there is none.
func (svc *Service) LatestEmotion(ctx context.Context) (string, error) {
	e, err := svc.repo.LatestEntry(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return e.Emotion, nil
}

func (svc *Service) Recent(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return svc.repo.RecentEntries(ctx, limit)
}

func (svc *Service) Clear(ctx context.Context) error {
	return svc.repo.DeleteAllEntries(ctx)
}
