package echoapi

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core/flashcard"
	"github.com/neurolearn/neuro/core/sentiment"
	"github.com/neurolearn/neuro/services/metrics"
)

const sentimentCookieMaxAge = int(sentiment.Retention / time.Second)

type flashcardApi struct {
	svc     *flashcard.Service
	results flashcard.ResultReader
}

func registerFlashcardAPI(g *echo.Group, svc *flashcard.Service, results flashcard.ResultReader) {
	api := flashcardApi{svc: svc, results: results}

	g.GET("/modules", api.modules)
	g.GET("/flashcards", api.deck)
	g.GET("/sentiment", api.sentiment)
	g.GET("/sentiment-test", api.sentimentTest)
}

// readSentimentCookie returns the unescaped value of the sentiment cookie, and whether it was sent.
func readSentimentCookie(ctx echo.Context) (string, bool) {
	c, err := ctx.Cookie(sentiment.ResultKey)
	if err != nil {
		return "", false
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		v = c.Value
	}
	return v, true
}

// Handlers

func (api *flashcardApi) modules(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Modules())
}

func (api *flashcardApi) deck(ctx echo.Context) error {
	modID, err := strconv.Atoi(ctx.QueryParam("module"))
	if err == nil {
		_, err = api.svc.GetModule(modID)
	}
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, echo.Map{
			"error":             "Invalid module number",
			"available_modules": api.svc.ModuleIDs(),
		})
	}

	raw, _ := readSentimentCookie(ctx)
	raw = api.svc.ResolveSentiment(ctx.Request().Context(), raw)

	deck, err := api.svc.Deck(ctx.Request().Context(), modID, raw)
	if err != nil {
		return errors.Wrap(err, "building deck")
	}
	metrics.DeckServed(deck.Source, deck.Sentiment)
	return ctx.JSON(http.StatusOK, deck)
}

func (api *flashcardApi) sentiment(ctx echo.Context) error {
	if api.results == nil {
		return errHttpNotFound
	}
	s, err := api.results.Get(ctx.Request().Context(), sentiment.ResultKey)
	if err != nil {
		if errors.Is(err, sentiment.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no sentiment detected yet")
		}
		return errors.Wrap(err, "reading latest sentiment")
	}

	ctx.SetCookie(&http.Cookie{
		Name:     sentiment.ResultKey,
		Value:    url.QueryEscape(s),
		Path:     "/",
		MaxAge:   sentimentCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
	return ctx.JSON(http.StatusOK, echo.Map{"sentiment": s})
}

func (api *flashcardApi) sentimentTest(ctx echo.Context) error {
	var rawCookie *string
	raw, ok := readSentimentCookie(ctx)
	if ok {
		rawCookie = &raw
	}
	detected := flashcard.Bucket(api.svc.ResolveSentiment(ctx.Request().Context(), raw))
	return ctx.JSON(http.StatusOK, echo.Map{
		"raw_cookie":         rawCookie,
		"detected_sentiment": detected,
	})
}
