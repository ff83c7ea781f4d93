package flashcard

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	positiveWords = []string{"positive", "happy", "joy", "excited", "good", "great"}
	negativeWords = []string{"negative", "frustrated", "angry", "sad", "bad", "upset"}

	fuzzyMinRatio = .86
)

// Bucket reduces a raw sentiment (plain text or {"sentiment": "..."}) to positive, neutral or negative.
// Keywords are matched as substrings first, then whole words of a similar length are fuzzy matched
// against them (eg: "hapy").
func Bucket(raw string) string {
	s := strings.ToLower(strings.TrimSpace(sentimentValue(raw)))
	if s == "" {
		return Neutral
	}

	if containsAny(s, positiveWords) {
		return Positive
	}
	if containsAny(s, negativeWords) {
		return Negative
	}

	words := strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if fuzzyMatch(words, positiveWords) {
		return Positive
	}
	if fuzzyMatch(words, negativeWords) {
		return Negative
	}
	return Neutral
}

func sentimentValue(raw string) string {
	var v struct {
		Sentiment *string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	if v.Sentiment == nil {
		return Neutral
	}
	return *v.Sentiment
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func fuzzyMatch(words, keywords []string) bool {
	for _, w := range words {
		for _, kw := range keywords {
			if d := len(w) - len(kw); d < -1 || d > 1 {
				continue
			}
			m := difflib.NewMatcher(strings.Split(w, ""), strings.Split(kw, ""))
			if m.Ratio() >= fuzzyMinRatio {
				return true
			}
		}
	}
	return false
}
