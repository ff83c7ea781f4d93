package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/neurolearn/neuro/core/sentiment"
)

const DefaultOpenTimeout = 5 * time.Second

var (
	execCommand = exec.Command // mockable
	goos        = runtime.GOOS // mockable

	errStreamEnded = errors.New("camera stream ended")
)

// FFmpegCamera reads raw RGBA frames from a webcam through an ffmpeg process.
// An opened device is the running process: the camera is released when it is killed.
type FFmpegCamera struct {
	Device      string
	Width       int
	Height      int
	FPS         int
	OpenTimeout time.Duration
}

var _ sentiment.Camera = (*FFmpegCamera)(nil)

func (c *FFmpegCamera) args() []string {
	var input []string
	switch goos {
	case "windows":
		input = []string{"-f", "dshow", "-i", fmt.Sprintf("video=%s", c.Device)}
	case "darwin":
		input = []string{"-f", "avfoundation", "-framerate", "30", "-i", c.Device}
	default:
		input = []string{"-f", "v4l2", "-i", c.Device}
	}
	return append(append([]string{"-loglevel", "error"}, input...),
		"-vf", fmt.Sprintf("fps=%d,scale=%d:%d", c.FPS, c.Width, c.Height),
		"-f", "image2pipe",
		"-pix_fmt", "rgba",
		"-vcodec", "rawvideo",
		"-",
	)
}

// Open starts ffmpeg and waits for the first frame.
func (c *FFmpegCamera) Open(ctx context.Context) (sentiment.Device, error) {
	if c.Width <= 0 || c.Height <= 0 || c.FPS <= 0 {
		return nil, sentiment.NewDeviceError(c.Device, errors.Errorf("invalid capture size %dx%d@%d", c.Width, c.Height, c.FPS))
	}

	cmd := execCommand("ffmpeg", c.args()...)
	stderr := &tailBuffer{max: 2048}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, sentiment.NewDeviceError(c.Device, err)
	}
	if err = cmd.Start(); err != nil {
		return nil, sentiment.NewDeviceError(c.Device, errors.Wrap(err, "starting ffmpeg"))
	}

	dev := &ffmpegDevice{
		cmd:    cmd,
		stdout: stdout,
		width:  c.Width,
		height: c.Height,
		first:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	go dev.readLoop()

	timeout := c.OpenTimeout
	if timeout <= 0 {
		timeout = DefaultOpenTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-dev.first:
		return dev, nil
	case <-dev.done:
		err = dev.err
	case <-timer.C:
		err = errors.Errorf("no frame after %s", timeout)
	case <-ctx.Done():
		err = ctx.Err()
	}
	_ = dev.Close()
	if details := strings.TrimSpace(stderr.String()); details != "" {
		err = errors.Wrap(err, details)
	}
	return nil, sentiment.NewDeviceError(c.Device, err)
}

type ffmpegDevice struct {
	cmd           *exec.Cmd
	stdout        io.ReadCloser
	width, height int

	mu     sync.Mutex
	latest *image.RGBA

	firstOnce sync.Once
	first     chan struct{}
	done      chan struct{}
	err       error // set before done is closed

	closeOnce sync.Once
}

// readLoop keeps the latest frame only.
func (d *ffmpegDevice) readLoop() {
	defer close(d.done)

	frameSize := d.width * d.height * 4
	for {
		pix := make([]byte, frameSize)
		if _, err := io.ReadFull(d.stdout, pix); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF || errors.Is(err, os.ErrClosed) {
				err = errStreamEnded
			}
			d.err = err
			return
		}

		d.mu.Lock()
		d.latest = &image.RGBA{Pix: pix, Stride: d.width * 4, Rect: image.Rect(0, 0, d.width, d.height)}
		d.mu.Unlock()
		d.firstOnce.Do(func() { close(d.first) })
	}
}

func (d *ffmpegDevice) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-d.done:
		if d.err != nil {
			return nil, d.err
		}
		return nil, errStreamEnded
	default:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latest == nil {
		return nil, errors.New("no frame captured yet")
	}
	return d.latest, nil
}

// Close kills ffmpeg, turning the camera off.
func (d *ffmpegDevice) Close() error {
	d.closeOnce.Do(func() {
		if d.cmd.Process != nil {
			_ = d.cmd.Process.Kill()
			// children of ffmpeg may keep the pipe open
			_ = d.stdout.Close()
			// Wait must not run while readLoop still reads stdout
			<-d.done
			_ = d.cmd.Wait()
		}
	})
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, _ := b.buf.Write(p)
	if over := b.buf.Len() - b.max; over > 0 {
		b.buf.Next(over)
	}
	return n, nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var dshowVideoRegex = regexp.MustCompile(`"([^"]+)"\s+\(video\)`)

// ListCameras returns the capture devices ffmpeg can open.
func ListCameras() ([]string, error) {
	switch goos {
	case "windows":
		cmd := execCommand("ffmpeg", "-list_devices", "true", "-f", "dshow", "-i", "dummy")
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		_ = cmd.Run() // always fails on the dummy input

		var cameras []string
		seen := make(map[string]bool)
		for _, m := range dshowVideoRegex.FindAllStringSubmatch(stderr.String(), -1) {
			if name := m[1]; name != "dummy" && !seen[name] {
				cameras = append(cameras, name)
				seen[name] = true
			}
		}
		return cameras, nil
	case "darwin":
		return []string{"0"}, nil
	default:
		cameras, err := filepath.Glob("/dev/video*")
		if err != nil {
			return nil, errors.Wrap(err, "listing video devices")
		}
		sort.Strings(cameras)
		return cameras, nil
	}
}
