package sentiment

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core"
)

// Deps are the collaborators of a Loop. Recorder and Clock are optional.
type Deps struct {
	Camera     Camera
	Classifier Classifier
	Store      Store
	Logger     core.Logger
	Recorder   Recorder
	Clock      Clock
}

// Loop periodically captures a frame, classifies its sentiment and hands the result off through the Store.
//
// A cycle is: Acquiring -> Counting(T..0) -> Capturing -> Classifying -> Waiting(T) -> Acquiring...
// Cycles run one at a time on a single goroutine per session. The device is held from Acquiring
// to the end of Capturing only, never across the classification request.
type Loop struct {
	camera     Camera
	classifier Classifier
	store      Store
	logger     core.Logger
	recorder   Recorder
	clock      Clock
	opts       Options

	mu     sync.Mutex
	sess   *session
	status Status
	subs   map[chan Status]struct{}
}

type session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// writeMu orders store writes with cancellation: no write starts once the session is cancelled.
	writeMu sync.Mutex
}

func NewLoop(deps Deps, opts Options) *Loop {
	l := &Loop{
		camera:     deps.Camera,
		classifier: deps.Classifier,
		store:      deps.Store,
		logger:     deps.Logger,
		recorder:   deps.Recorder,
		clock:      deps.Clock,
		opts:       opts.withDefaults(),
		subs:       make(map[chan Status]struct{}),
	}
	if l.logger == nil {
		l.logger = core.NopLogger()
	}
	if l.recorder == nil {
		l.recorder = nopRecorder{}
	}
	if l.clock == nil {
		l.clock = RealClock{}
	}
	l.status = Status{State: StateIdle, UpdatedAt: time.Now().UTC()}
	return l
}

// Start acquires the camera and starts the capture cycles in the background.
// ctx only bounds the device acquisition. A device failure is returned (matching ErrDeviceUnavailable)
// and leaves the loop Idle with nothing scheduled.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.sess != nil {
		l.mu.Unlock()
		return ErrAlreadyActive
	}
	runCtx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:     uuid.NewString(),
		ctx:    runCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	l.sess = sess
	l.status.State = StateAcquiring
	l.status.Active = true
	l.status.SessionID = sess.id
	l.status.Countdown = 0
	l.status.Cycle = 0
	l.status.Err = ""
	l.publishLocked()
	l.mu.Unlock()

	dev, err := l.acquire(ctx, sess)
	if err != nil {
		l.finish(sess, err)
		return err
	}

	l.logger.Info("capture session started", map[string]interface{}{"session": sess.id})
	go l.run(sess, dev)
	return nil
}

// Stop cancels the current session from any state and waits for it to wind down.
// Once Stop returns the device is released, no timer is pending and the store will not be written.
func (l *Loop) Stop() {
	l.mu.Lock()
	sess := l.sess
	l.mu.Unlock()
	if sess == nil {
		return
	}

	sess.writeMu.Lock()
	sess.cancel()
	sess.writeMu.Unlock()

	<-sess.done
}

// Active reports whether a session is running.
func (l *Loop) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sess != nil
}

// Status returns a snapshot of the loop.
func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Subscribe returns a channel receiving the current status, then every status change.
// Slow subscribers miss updates. The returned func unsubscribes and closes the channel.
func (l *Loop) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 16)

	l.mu.Lock()
	l.subs[ch] = struct{}{}
	ch <- l.status
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, ch)
			close(ch)
			l.mu.Unlock()
		})
	}
}

func (l *Loop) run(sess *session, dev Device) {
	for {
		l.cycle(sess, dev)

		l.update(sess, func(st *Status) {
			st.State = StateWaiting
			st.Countdown = 0
		})
		if !l.wait(sess, l.opts.Interval) {
			l.finish(sess, nil)
			return
		}

		l.update(sess, func(st *Status) { st.State = StateAcquiring })
		var err error
		if dev, err = l.acquire(context.Background(), sess); err != nil {
			if !errors.Is(err, ErrStopped) {
				l.logger.Error("re-acquiring camera device, capture stopped", err, map[string]interface{}{"session": sess.id})
			}
			l.finish(sess, err)
			return
		}
	}
}

// cycle counts down, captures one frame, releases the device, then classifies and persists.
func (l *Loop) cycle(sess *session, dev Device) {
	frame, ok := l.countdownAndCapture(sess, dev)
	if !ok {
		return
	}
	l.classifyAndPersist(sess, frame)
}

func (l *Loop) countdownAndCapture(sess *session, dev Device) (image.Image, bool) {
	defer l.release(sess, dev)

	for remaining := l.opts.countdownSteps(); remaining > 0; remaining-- {
		l.update(sess, func(st *Status) {
			st.State = StateCounting
			st.Countdown = remaining
		})
		if !l.wait(sess, l.opts.Tick) {
			return nil, false
		}
	}

	l.update(sess, func(st *Status) {
		st.State = StateCapturing
		st.Countdown = 0
	})
	frame, err := dev.Capture(sess.ctx)
	if err != nil {
		if sess.ctx.Err() == nil {
			l.logger.Warn("capturing frame, skipping cycle", errors.Wrap(err, "device.Capture"), map[string]interface{}{"session": sess.id})
			l.recorder.CycleSettled(OutcomeCaptureError, 0)
		}
		return nil, false
	}
	return frame, true
}

func (l *Loop) classifyAndPersist(sess *session, frame image.Image) {
	l.update(sess, func(st *Status) { st.State = StateClassifying })

	ctx, cancel := context.WithTimeout(sess.ctx, l.opts.ClassifyTimeout)
	start := time.Now()
	sentiment, err := l.classifier.Classify(ctx, frame)
	elapsed := time.Since(start)
	cancel()

	if err == nil && sentiment == "" {
		err = ErrUnrecognizedShape
	}
	outcome := OutcomeClassified
	if err != nil {
		outcome = OutcomeFallback
		sentiment = Neutral
		if sess.ctx.Err() == nil {
			l.logger.Warn("classifying frame, falling back to neutral", errors.Wrap(err, "classifier.Classify"), map[string]interface{}{"session": sess.id})
		}
	}

	if err := l.persist(sess, sentiment); err != nil {
		if errors.Is(err, errDiscarded) {
			l.recorder.CycleSettled(OutcomeDiscarded, elapsed)
			return
		}
		l.logger.Error("writing latest sentiment", err, map[string]interface{}{"session": sess.id})
		l.recorder.CycleSettled(OutcomeStoreError, elapsed)
		l.update(sess, func(st *Status) { st.Err = err.Error() })
		return
	}
	l.recorder.CycleSettled(outcome, elapsed)
	l.update(sess, func(st *Status) {
		st.Sentiment = sentiment
		st.Cycle++
		st.Err = ""
	})
}

// persist writes the sentiment unless the session has been stopped (errDiscarded).
func (l *Loop) persist(sess *session, value string) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	if sess.ctx.Err() != nil {
		return errDiscarded
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.opts.WriteTimeout)
	defer cancel()
	return errors.Wrap(l.store.Set(ctx, ResultKey, value, Retention), "store.Set")
}

func (l *Loop) acquire(ctx context.Context, sess *session) (Device, error) {
	actx, cancel := context.WithCancel(sess.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	dev, err := l.camera.Open(actx)
	if err != nil {
		if sess.ctx.Err() != nil {
			return nil, ErrStopped
		}
		l.recorder.DeviceFailed()
		if !errors.Is(err, ErrDeviceUnavailable) {
			err = NewDeviceError("", err)
		}
		return nil, err
	}
	if sess.ctx.Err() != nil {
		l.release(sess, dev)
		return nil, ErrStopped
	}
	return dev, nil
}

func (l *Loop) release(sess *session, dev Device) {
	if err := dev.Close(); err != nil {
		l.logger.Warn("releasing camera device", errors.Wrap(err, "device.Close"), map[string]interface{}{"session": sess.id})
	}
}

// wait blocks for d, returning false if the session is cancelled first.
func (l *Loop) wait(sess *session, d time.Duration) bool {
	t := l.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-sess.ctx.Done():
		return false
	case <-t.C():
		return sess.ctx.Err() == nil
	}
}

func (l *Loop) update(sess *session, fn func(st *Status)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sess != sess {
		return
	}
	fn(&l.status)
	l.publishLocked()
}

// finish tears the session down and returns the loop to Idle.
func (l *Loop) finish(sess *session, err error) {
	sess.cancel()

	l.mu.Lock()
	if l.sess == sess {
		l.sess = nil
		l.status.State = StateIdle
		l.status.Active = false
		l.status.Countdown = 0
		l.status.SessionID = ""
		if err != nil && !errors.Is(err, ErrStopped) {
			l.status.Err = err.Error()
		}
		l.publishLocked()
	}
	l.mu.Unlock()

	if err == nil || errors.Is(err, ErrStopped) {
		l.logger.Info("capture session stopped", map[string]interface{}{"session": sess.id})
	}
	close(sess.done)
}

func (l *Loop) publishLocked() {
	l.status.UpdatedAt = time.Now().UTC()
	for ch := range l.subs {
		select {
		case ch <- l.status:
		default:
		}
	}
}
