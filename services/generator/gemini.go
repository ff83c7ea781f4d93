package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/flashcard"
)

const deckSize = 5

var fenceRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

type (
	part struct {
		Text string `json:"text"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	generateRequest struct {
		Contents []content `json:"contents"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
)

// Gemini generates flashcards with the Gemini generateContent API.
type Gemini struct {
	model  string
	client *resty.Client
}

var _ flashcard.Generator = (*Gemini)(nil)

// NewGemini returns nil when no API key is configured.
func NewGemini(conf core.GeneratorConfig) *Gemini {
	if conf.APIKey == "" {
		return nil
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(conf.BaseURL, "/")).
		SetQueryParam("key", conf.APIKey).
		SetHeader("Content-Type", "application/json")
	if conf.Timeout > 0 {
		client.SetTimeout(conf.Timeout)
	}
	return &Gemini{model: conf.Model, client: client}
}

func prompt(module flashcard.Module, bucket string) string {
	return fmt.Sprintf("Generate exactly %d flashcards for a student. "+
		"The topic is '%s'. "+
		"The student's current emotional state is '%s', so adjust the difficulty and tone accordingly "+
		"(positive = more challenging, negative = simpler and more supportive, neutral = balanced). "+
		"Each flashcard must have a 'front' and 'back' key only. "+
		"The 'back' side should be no more than 3 sentences. "+
		"Return ONLY a valid JSON array of %d objects with no extra text or formatting.",
		deckSize, module.Name, bucket, deckSize)
}

func (g *Gemini) Generate(ctx context.Context, module flashcard.Module, bucket string) ([]flashcard.Card, error) {
	req := generateRequest{Contents: []content{{Parts: []part{{Text: prompt(module, bucket)}}}}}

	var res generateResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&res).
		Post(fmt.Sprintf("/models/%s:generateContent", g.model))
	if err != nil {
		return nil, errors.Wrap(err, "gemini request failed")
	}
	if resp.IsError() {
		return nil, errors.Errorf("gemini error (%d): %s", resp.StatusCode(), resp.String())
	}
	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini returned no candidates")
	}
	return ParseCards(res.Candidates[0].Content.Parts[0].Text)
}

// ParseCards decodes a JSON array of cards, optionally wrapped in a markdown code fence.
func ParseCards(text string) ([]flashcard.Card, error) {
	if m := fenceRegex.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	var cards []flashcard.Card
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &cards); err != nil {
		return nil, errors.Wrap(err, "parsing generated cards")
	}
	return cards, nil
}
