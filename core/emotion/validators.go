package emotion

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/neurolearn/neuro/core"
)

var (
	emotionTag  = "emotion"
	emotionText = fmt.Sprintf("{0} must be one of: %s", strings.Join(AllEmotions, ", "))
)

// InitValidators registers the emotion validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(emotionTag, emotionValidation)
	core.RegisterCustomTranslation(validate, translator, emotionTag, emotionText)
}

func emotionValidation(fl validator.FieldLevel) bool {
	return IsEmotion(core.CleanString(fl.Field().String(), true /* lower */))
}
