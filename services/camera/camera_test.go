package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/sentiment"
)

// fakeFFmpeg replaces ffmpeg with a shell script.
func fakeFFmpeg(t *testing.T, script string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	execCommand = func(string, ...string) *exec.Cmd {
		return exec.Command("sh", "-c", script)
	}
	t.Cleanup(func() { execCommand = exec.Command })
}

func TestFFmpegCamera_Open(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		wantErr   bool
		errSubstr string
	}{
		// 2x2 RGBA = 16 bytes per frame
		{name: "frames", script: `while :; do printf 'abcdefghijklmnop'; sleep 0.01; done`},
		{name: "device busy", script: `echo 'Device or resource busy' >&2; exit 1`, wantErr: true, errSubstr: "Device or resource busy"},
		{name: "no frame", script: `exec sleep 5`, wantErr: true, errSubstr: "no frame after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeFFmpeg(t, tt.script)
			cam := &FFmpegCamera{Device: "/dev/video0", Width: 2, Height: 2, FPS: 5, OpenTimeout: 200 * time.Millisecond}

			dev, err := cam.Open(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, sentiment.ErrDeviceUnavailable))
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)

			frame, err := dev.Capture(context.Background())
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 2, 2), frame.Bounds())
			assert.Equal(t, color.RGBA{R: 'a', G: 'b', B: 'c', A: 'd'}, frame.At(0, 0))

			require.NoError(t, dev.Close())
			require.NoError(t, dev.Close())
			assert.Eventually(t, func() bool {
				_, err := dev.Capture(context.Background())
				return err != nil
			}, time.Second, 10*time.Millisecond)
		})
	}
}

func TestFFmpegCamera_CloseStopsReader(t *testing.T) {
	// the frames come from a child of the killed process, which keeps the pipe open
	fakeFFmpeg(t, `(while :; do printf 'abcdefghijklmnop'; sleep 0.01; done) & wait`)
	cam := &FFmpegCamera{Device: "/dev/video0", Width: 2, Height: 2, FPS: 5, OpenTimeout: time.Second}

	dev, err := cam.Open(context.Background())
	require.NoError(t, err)
	fd := dev.(*ffmpegDevice)

	closed := make(chan struct{})
	go func() {
		_ = dev.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not return")
	}

	select {
	case <-fd.done:
	default:
		t.Fatal("Close() returned before the frame reader stopped")
	}
	_, err = dev.Capture(context.Background())
	assert.ErrorIs(t, err, errStreamEnded)
}

func TestFFmpegCamera_args(t *testing.T) {
	cam := &FFmpegCamera{Device: "Integrated Camera", Width: 640, Height: 480, FPS: 5}
	tests := []struct {
		goos      string
		wantInput []string
	}{
		{goos: "linux", wantInput: []string{"-f", "v4l2", "-i", "Integrated Camera"}},
		{goos: "windows", wantInput: []string{"-f", "dshow", "-i", "video=Integrated Camera"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			prev := goos
			goos = tt.goos
			defer func() { goos = prev }()

			args := cam.args()
			assert.Subset(t, args, tt.wantInput)
			assert.Contains(t, args, "fps=5,scale=640:480")
			assert.Equal(t, "-", args[len(args)-1])
		})
	}
}

func writePNG(t *testing.T, dir string) string {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "frame.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestFileCamera(t *testing.T) {
	dir := t.TempDir()
	pngPath := writePNG(t, dir)
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("not an image"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "png", path: pngPath},
		{name: "missing", path: filepath.Join(dir, "nope.jpg"), wantErr: true},
		{name: "not an image", path: txtPath, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := (&FileCamera{Path: tt.path}).Open(context.Background())
			if tt.wantErr {
				assert.True(t, errors.Is(err, sentiment.ErrDeviceUnavailable), "Open() error = %v", err)
				return
			}
			require.NoError(t, err)

			frame, err := dev.Capture(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 3, frame.Bounds().Dx())

			require.NoError(t, dev.Close())
			_, err = dev.Capture(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		conf    core.CameraConfig
		want    interface{}
		wantErr bool
	}{
		{name: "webcam", conf: core.CameraConfig{Source: SourceWebcam, Device: "/dev/video0"}, want: &FFmpegCamera{}},
		{name: "file", conf: core.CameraConfig{Source: SourceFile, FilePath: "a.jpg"}, want: &FileCamera{}},
		{name: "file without path", conf: core.CameraConfig{Source: SourceFile}, wantErr: true},
		{name: "unknown", conf: core.CameraConfig{Source: "rtsp"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, err := New(tt.conf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, cam)
		})
	}
}
