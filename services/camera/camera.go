package camera

import (
	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/sentiment"
)

// Sources
const (
	SourceWebcam = "webcam"
	SourceFile   = "file"
)

// New returns the camera configured by conf.Source.
func New(conf core.CameraConfig) (sentiment.Camera, error) {
	switch conf.Source {
	case SourceWebcam, "":
		return &FFmpegCamera{
			Device:      conf.Device,
			Width:       conf.Width,
			Height:      conf.Height,
			FPS:         conf.FPS,
			OpenTimeout: conf.OpenTimeout,
		}, nil
	case SourceFile:
		if conf.FilePath == "" {
			return nil, errors.New("camera.filePath is required for the file source")
		}
		return &FileCamera{Path: conf.FilePath}, nil
	default:
		return nil, errors.Errorf("unknown camera source %q", conf.Source)
	}
}
