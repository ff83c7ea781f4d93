package shared

import (
	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/emotion"
	"github.com/neurolearn/neuro/core/flashcard"
	"github.com/neurolearn/neuro/core/sentiment"
	"github.com/neurolearn/neuro/services/camera"
	"github.com/neurolearn/neuro/services/classifier"
	"github.com/neurolearn/neuro/services/generator"
	"github.com/neurolearn/neuro/services/metrics"
)

// NewCaptureLoop builds the capture-classify loop for the configured camera and classifier.
func NewCaptureLoop(conf *core.Config, store sentiment.Store, logger core.Logger) (*sentiment.Loop, error) {
	cam, err := camera.New(conf.Camera)
	if err != nil {
		return nil, err
	}
	return sentiment.NewLoop(
		sentiment.Deps{
			Camera:     cam,
			Classifier: classifier.NewHTTPClassifier(conf.Classifier),
			Store:      store,
			Logger:     logger,
			Recorder:   metrics.Recorder{},
		},
		sentiment.Options{
			Interval:        conf.Capture.Interval,
			Tick:            conf.Capture.Tick,
			ClassifyTimeout: conf.Capture.ClassifyTimeout,
			WriteTimeout:    conf.Capture.WriteTimeout,
		},
	), nil
}

// NewDeckService builds the flashcard service. Decks are generated with Gemini when an API key is configured.
func NewDeckService(conf *core.Config, results flashcard.ResultReader, emoSvc *emotion.Service, logger core.Logger) *flashcard.Service {
	var gen flashcard.Generator
	if g := generator.NewGemini(conf.Generator); g != nil {
		gen = g
	} else {
		logger.Info("no generator API key configured, serving local decks only")
	}
	return flashcard.NewService(gen, results, emoSvc, logger)
}
