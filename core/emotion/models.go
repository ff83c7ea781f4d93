package emotion

import (
	"time"

	"github.com/google/uuid"
)

// Emotions a learner can pick.
const (
	Happy      = "happy"
	Sad        = "sad"
	Calm       = "calm"
	Frustrated = "frustrated"
	Excited    = "excited"
	Tired      = "tired"
	Confused   = "confused"
)

// Entry sources
const (
	SourceManual = "manual"
	SourceCamera = "camera"
)

var AllEmotions = []string{Happy, Sad, Calm, Frustrated, Excited, Tired, Confused}

type (
	Entry struct {
		ID        uuid.UUID `json:"id"`
		Emotion   string    `json:"emotion"`
		Source    string    `json:"source"`
		Note      string    `json:"note,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	NewEntry struct {
		Emotion string `json:"emotion" validate:"required,emotion"`
		Source  string `json:"source" validate:"omitempty,oneof=manual camera"`
		Note    string `json:"note" validate:"max=280"`
	}

	QueryFilter struct {
		Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
	}
)

// IsEmotion reports whether e is one of AllEmotions.
func IsEmotion(e string) bool {
	for _, known := range AllEmotions {
		if e == known {
			return true
		}
	}
	return false
}
