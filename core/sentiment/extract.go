package sentiment

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Extractor pulls a sentiment out of a decoded JSON response.
// Extractors are total: they never panic and report ok=false when the shape does not match.
type Extractor struct {
	Name    string
	Extract func(v interface{}) (sentiment string, ok bool)
}

// Extractors are tried in order, the first match wins.
var Extractors = []Extractor{
	{Name: "sentiment_field", Extract: sentimentField},
	{Name: "provider_text", Extract: providerText},
}

// Extract decodes a classification response body and extracts its sentiment.
// Bodies that are not JSON fail with ErrMalformedResponse. Unrecognized shapes are serialized
// verbatim, unless strict is set in which case they fail with ErrUnrecognizedShape.
func Extract(body []byte, strict bool) (string, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return "", errors.Wrap(ErrMalformedResponse, err.Error())
	}
	for _, ex := range Extractors {
		if s, ok := ex.Extract(v); ok {
			return s, nil
		}
	}
	if strict {
		return "", ErrUnrecognizedShape
	}
	return rawJSON(v), nil
}

// sentimentField matches {"sentiment": "<string>"}; the value is returned as is.
func sentimentField(v interface{}) (string, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return "", false
	}
	s, ok := obj["sentiment"].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// providerText matches {"candidates": [{"content": {"parts": [{"text": "<string>"}]}}]}.
func providerText(v interface{}) (string, bool) {
	next := func(v interface{}, key string) interface{} {
		if obj, ok := v.(map[string]interface{}); ok {
			return obj[key]
		}
		return nil
	}
	first := func(v interface{}) interface{} {
		if arr, ok := v.([]interface{}); ok && len(arr) > 0 {
			return arr[0]
		}
		return nil
	}

	parts := next(next(first(next(v, "candidates")), "content"), "parts")
	text, ok := next(first(parts), "text").(string)
	if !ok {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func rawJSON(v interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return Neutral
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
