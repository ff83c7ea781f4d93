package camera

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core/sentiment"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// FileCamera serves a still image as the camera frame (demos, kiosks without a webcam, tests).
type FileCamera struct {
	Path string
}

var _ sentiment.Camera = (*FileCamera)(nil)

func (c *FileCamera) Open(context.Context) (sentiment.Device, error) {
	mtype, err := mimetype.DetectFile(c.Path)
	if err != nil {
		return nil, sentiment.NewDeviceError(c.Path, err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, sentiment.NewDeviceError(c.Path, errors.Errorf("unsupported file type %s", mtype.String()))
	}
	return &fileDevice{path: c.Path}, nil
}

type fileDevice struct {
	path   string
	closed int32
}

func (d *fileDevice) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if atomic.LoadInt32(&d.closed) == 1 {
		return nil, errors.New("device closed")
	}

	f, err := os.Open(d.path)
	if err != nil {
		return nil, errors.Wrap(err, "opening frame file")
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding frame file")
	}
	return img, nil
}

func (d *fileDevice) Close() error {
	atomic.StoreInt32(&d.closed, 1)
	return nil
}
