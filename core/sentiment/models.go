package sentiment

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

const (
	// ResultKey is the shared store key holding the latest classified sentiment.
	ResultKey = "latestSentiment"
	// Retention is how long the latest sentiment stays readable in the shared store.
	Retention = 7 * 24 * time.Hour
	// Neutral is written whenever a frame cannot be classified.
	Neutral = "neutral"

	DefaultInterval        = 20 * time.Second
	DefaultTick            = time.Second
	DefaultClassifyTimeout = 10 * time.Second
	DefaultWriteTimeout    = 2 * time.Second
)

var (
	// errors
	ErrDeviceUnavailable = errors.New("camera device unavailable")
	ErrAlreadyActive     = errors.New("capture session already active")
	ErrStopped           = errors.New("capture session stopped")
	ErrNotFound          = errors.New("key not found")
	ErrMalformedResponse = errors.New("malformed classification response")
	ErrUnrecognizedShape = errors.New("unrecognized classification response")

	errDiscarded = errors.New("session stopped before the result was written")
)

// DeviceError reports why a camera device could not be acquired.
// It matches ErrDeviceUnavailable with errors.Is.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("%s: %v", ErrDeviceUnavailable, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrDeviceUnavailable, e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func (e *DeviceError) Is(target error) bool { return target == ErrDeviceUnavailable }

// NewDeviceError wraps err as a DeviceError.
func NewDeviceError(device string, err error) error {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &DeviceError{Device: device, Err: err}
}

type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateCounting
	StateCapturing
	StateClassifying
	StateWaiting // cycle settled, next one armed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateCounting:
		return "counting"
	case StateCapturing:
		return "capturing"
	case StateClassifying:
		return "classifying"
	case StateWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a snapshot of the capture loop.
type Status struct {
	State     State     `json:"state"`
	Active    bool      `json:"active"`
	SessionID string    `json:"session_id,omitempty"`
	Countdown int       `json:"countdown"`
	Cycle     int       `json:"cycle"`
	Sentiment string    `json:"sentiment,omitempty"`
	Err       string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result is produced once per capture cycle.
type Result struct {
	Sentiment string `json:"sentiment"`
}

type (
	// Camera opens exclusive handles on a capture device.
	Camera interface {
		// Open acquires the device. Failures should match ErrDeviceUnavailable.
		Open(ctx context.Context) (Device, error)
	}

	// Device is an exclusive handle on an opened camera.
	Device interface {
		Capture(ctx context.Context) (image.Image, error)
		Close() error
	}

	// Classifier infers the sentiment of a frame using an external service.
	Classifier interface {
		Classify(ctx context.Context, frame image.Image) (string, error)
	}

	// Store is the shared, expiring key-value store the latest sentiment is handed off through.
	Store interface {
		Set(ctx context.Context, key, value string, ttl time.Duration) error
		// Get returns ErrNotFound for missing or expired keys.
		Get(ctx context.Context, key string) (string, error)
	}

	// Recorder observes cycle outcomes (metrics).
	Recorder interface {
		CycleSettled(outcome Outcome, classifyDuration time.Duration)
		DeviceFailed()
	}
)

// Outcome of a settled cycle.
type Outcome string

const (
	OutcomeClassified   Outcome = "classified"
	OutcomeFallback     Outcome = "fallback"
	OutcomeCaptureError Outcome = "capture_error"
	OutcomeDiscarded    Outcome = "discarded"
	OutcomeStoreError   Outcome = "store_error"
)

type nopRecorder struct{}

func (nopRecorder) CycleSettled(Outcome, time.Duration) {}
func (nopRecorder) DeviceFailed()                       {}

// Options tune the capture loop. Zero values fall back to the defaults.
type Options struct {
	Interval        time.Duration // countdown length and delay between cycles
	Tick            time.Duration // countdown step
	ClassifyTimeout time.Duration
	WriteTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Tick <= 0 {
		o.Tick = DefaultTick
	}
	if o.Tick > o.Interval {
		o.Tick = o.Interval
	}
	if o.ClassifyTimeout <= 0 {
		o.ClassifyTimeout = DefaultClassifyTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	return o
}

// countdownSteps is the number of ticks in a countdown, eg: 20 for 20s/1s.
func (o Options) countdownSteps() int {
	n := int(o.Interval / o.Tick)
	if n < 1 {
		n = 1
	}
	return n
}
