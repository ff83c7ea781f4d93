package flashcard

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/sentiment"
)

const (
	minFallbackCards = 3
	maxFallbackCards = 5
)

type Service struct {
	gen     Generator // optional
	results ResultReader
	history EmotionHistory // optional
	logger  core.Logger
	intn    func(n int) int
	shuffle func(n int, swap func(i, j int))
}

// NewService returns a deck service. gen and history may be nil.
func NewService(gen Generator, results ResultReader, history EmotionHistory, logger core.Logger) *Service {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Service{
		gen:     gen,
		results: results,
		history: history,
		logger:  logger,
		intn:    rand.Intn,
		shuffle: rand.Shuffle,
	}
}

// Modules lists the available learning modules.
func (svc *Service) Modules() []Module {
	mods := make([]Module, len(modules))
	copy(mods, modules)
	return mods
}

func (svc *Service) ModuleIDs() []int {
	ids := make([]int, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	return ids
}

func (svc *Service) GetModule(id int) (Module, error) {
	for _, m := range modules {
		if m.ID == id {
			return m, nil
		}
	}
	return Module{}, ErrUnknownModule
}

// Deck returns the cards of a module adapted to the raw sentiment.
// Cards come from the generator when one is configured and returns a valid deck, from the local database otherwise.
func (svc *Service) Deck(ctx context.Context, moduleID int, rawSentiment string) (Deck, error) {
	mod, err := svc.GetModule(moduleID)
	if err != nil {
		return Deck{}, err
	}
	bucket := Bucket(rawSentiment)

	if svc.gen != nil {
		cards, err := svc.gen.Generate(ctx, mod, bucket)
		if err == nil && !ValidDeck(cards) {
			err = ErrInvalidDeck
		}
		if err == nil {
			return newDeck(SourceGenerator, mod.ID, bucket, cards), nil
		}
		svc.logger.Warn("generating deck, using fallback", errors.Wrapf(err, "module %d", mod.ID))
	}

	return newDeck(SourceFallback, mod.ID, bucket, svc.fallback(mod.ID, bucket)), nil
}

// fallback picks min(rand[3,5], n) random cards of the bucket (neutral when the bucket has no cards).
func (svc *Service) fallback(moduleID int, bucket string) []Card {
	byBucket := fallbackCards[moduleID]
	pool, ok := byBucket[bucket]
	if !ok {
		pool = byBucket[Neutral]
	}

	n := minFallbackCards + svc.intn(maxFallbackCards-minFallbackCards+1)
	if n > len(pool) {
		n = len(pool)
	}
	picked := make([]Card, len(pool))
	copy(picked, pool)
	svc.shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked[:n]
}

func newDeck(source string, moduleID int, bucket string, cards []Card) Deck {
	if cards == nil {
		cards = []Card{}
	}
	return Deck{
		Source:     source,
		Module:     moduleID,
		Sentiment:  bucket,
		Cards:      cards,
		TotalCards: len(cards),
	}
}

// ResolveSentiment returns the raw sentiment of the learner:
// the cookie value, then the capture loop result, then the latest picked emotion, then neutral.
func (svc *Service) ResolveSentiment(ctx context.Context, cookie string) string {
	if cookie != "" {
		return cookie
	}

	if svc.results != nil {
		s, err := svc.results.Get(ctx, sentiment.ResultKey)
		switch {
		case err == nil && s != "":
			return s
		case err != nil && !errors.Is(err, sentiment.ErrNotFound):
			svc.logger.Warn("reading latest sentiment", err)
		}
	}

	if svc.history != nil {
		emo, err := svc.history.LatestEmotion(ctx)
		if err != nil {
			svc.logger.Warn("reading latest emotion", err)
		} else if emo != "" {
			return emo
		}
	}

	return sentiment.Neutral
}
