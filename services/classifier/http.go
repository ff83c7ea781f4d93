package classifier

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/sentiment"
)

const (
	formField = "image"
	fileName  = "photo.jpg"
)

// HTTPClassifier posts frames to a sentiment inference service as multipart JPEG uploads.
type HTTPClassifier struct {
	endpoint string
	quality  int
	maxWidth int
	strict   bool
	client   *resty.Client
}

var _ sentiment.Classifier = (*HTTPClassifier)(nil)

func NewHTTPClassifier(conf core.ClassifierConfig) *HTTPClassifier {
	quality := conf.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	client := resty.New().SetHeader("User-Agent", "neuro-capture/1.0")
	if conf.Timeout > 0 {
		client.SetTimeout(conf.Timeout)
	}
	return &HTTPClassifier{
		endpoint: conf.Endpoint,
		quality:  quality,
		maxWidth: conf.MaxWidth,
		strict:   conf.Strict,
		client:   client,
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, frame image.Image) (string, error) {
	body, err := c.encode(frame)
	if err != nil {
		return "", err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetMultipartField(formField, fileName, "image/jpeg", bytes.NewReader(body)).
		Post(c.endpoint)
	if err != nil {
		return "", errors.Wrap(err, "posting frame")
	}
	if resp.IsError() {
		return "", errors.Errorf("classifier error (%d): %s", resp.StatusCode(), resp.String())
	}
	return sentiment.Extract(resp.Body(), c.strict)
}

// encode downscales the frame to maxWidth (keeping the aspect ratio) and encodes it as JPEG.
func (c *HTTPClassifier) encode(frame image.Image) ([]byte, error) {
	if frame == nil {
		return nil, errors.New("nil frame")
	}
	img := Downscale(frame, c.maxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, errors.Wrap(err, "encoding frame")
	}
	return buf.Bytes(), nil
}

// Downscale resizes img to maxWidth when it is wider. maxWidth <= 0 disables it.
func Downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
