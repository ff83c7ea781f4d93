package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/flashcard"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []flashcard.Card
		wantErr bool
	}{
		{name: "plain", text: `[{"front": "Q", "back": "A"}]`, want: []flashcard.Card{{Front: "Q", Back: "A"}}},
		{name: "fenced json", text: "```json\n[{\"front\": \"Q\", \"back\": \"A\"}]\n```", want: []flashcard.Card{{Front: "Q", Back: "A"}}},
		{name: "fenced", text: "Here you go:\n```\n[]\n```", want: []flashcard.Card{}},
		{name: "prose", text: "Sorry, I cannot help with that.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGemini_Generate(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req generateRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "` +
			"```json\\n[{\\\"front\\\": \\\"Q\\\", \\\"back\\\": \\\"A\\\"}]\\n```" + `"}]}}]}`))
	}))
	defer srv.Close()

	gen := NewGemini(core.GeneratorConfig{APIKey: "secret", BaseURL: srv.URL + "/", Model: "gemini-test"})
	require.NotNil(t, gen)

	cards, err := gen.Generate(context.Background(), flashcard.Module{ID: 3, Name: "Human Respiratory System"}, flashcard.Negative)
	require.NoError(t, err)
	assert.Equal(t, []flashcard.Card{{Front: "Q", Back: "A"}}, cards)
	assert.Contains(t, gotPrompt, "'Human Respiratory System'")
	assert.Contains(t, gotPrompt, "'negative'")
}

func TestGemini_errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "quota", status: http.StatusTooManyRequests, body: `{"error": {"message": "quota"}}`},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			gen := NewGemini(core.GeneratorConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
			_, err := gen.Generate(context.Background(), flashcard.Module{ID: 1, Name: "Cell"}, flashcard.Neutral)
			assert.Error(t, err)
		})
	}
}

func TestNewGemini_disabled(t *testing.T) {
	assert.Nil(t, NewGemini(core.GeneratorConfig{}))
}
