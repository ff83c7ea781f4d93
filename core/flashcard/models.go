package flashcard

import (
	"context"
	"errors"
)

// Buckets the detected sentiment is reduced to.
const (
	Positive = "positive"
	Neutral  = "neutral"
	Negative = "negative"
)

// Deck sources.
const (
	SourceGenerator = "gemini"
	SourceFallback  = "fallback"
)

var (
	// errors
	ErrUnknownModule = errors.New("invalid module number")
	ErrInvalidDeck   = errors.New("generated deck is not valid")
)

type (
	Card struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	}

	Module struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	Deck struct {
		Source     string `json:"source"`
		Module     int    `json:"module"`
		Sentiment  string `json:"sentiment"`
		Cards      []Card `json:"cards"`
		TotalCards int    `json:"total_cards"`
	}

	// Generator produces cards for a module, adapting them to a sentiment bucket.
	Generator interface {
		Generate(ctx context.Context, module Module, bucket string) ([]Card, error)
	}

	// ResultReader reads the latest sentiment handed off by the capture loop.
	ResultReader interface {
		Get(ctx context.Context, key string) (string, error)
	}

	// EmotionHistory returns the latest manually picked emotion, empty when none was recorded.
	EmotionHistory interface {
		LatestEmotion(ctx context.Context) (string, error)
	}
)

// ValidDeck reports whether generated cards are usable: at least one card, each with a front and a back.
func ValidDeck(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	for _, c := range cards {
		if c.Front == "" || c.Back == "" {
			return false
		}
	}
	return true
}
