package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurolearn/neuro/apps/shared"
	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/sentiment"
	"github.com/neurolearn/neuro/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()

	conf := &core.Config{Env: "TEST", TestMode: true}
	conf.Store.Driver = shared.StoreMemory
	conf.Database.Engine = "sqlite"

	storage, err := shared.OpenStorage(context.Background(), conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	var out bytes.Buffer
	return &commandLine{
		conf:    conf,
		logger:  core.NopLogger(),
		out:     &out,
		db:      testutil.PrepareDB(t),
		storage: storage,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			args := append([]string{"admin"}, tt.args...)

			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, out.String())
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no migrate subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "negative cycles", args: []string{"capture", "-cycles", "-1"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	defer func(orig func(context.Context, *sqlx.DB, string, string, ...string) error) { runMigrationsFunc = orig }(runMigrationsFunc)

	runMigrationsFunc = func(_ context.Context, _ *sqlx.DB, engine, command string, args ...string) error {
		if engine != "sqlite" {
			return fmt.Errorf("unexpected engine %q", engine)
		}
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "status", args: []string{"migrate", "status"}},
	})
}

func Test_commandLine_migrate_sqlite(t *testing.T) {
	cli, _ := setup(t)

	// PrepareDB already applied every migration
	require.NoError(t, cli.run([]string{"admin", "migrate", "down"}))
	require.NoError(t, cli.run([]string{"admin", "migrate", "up"}))

	var n int
	require.NoError(t, cli.db.Get(&n, "SELECT COUNT(*) FROM emotion_entries"))
	assert.Equal(t, 0, n)
}

func Test_commandLine_sentiment(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "sentiment"}))
	assert.Equal(t, "no sentiment detected yet\n", out.String())

	out.Reset()
	require.NoError(t, cli.storage.Store.Set(context.Background(), sentiment.ResultKey, "happy", time.Hour))
	require.NoError(t, cli.run([]string{"admin", "sentiment"}))
	assert.Equal(t, "happy\n", out.String())
}

func Test_commandLine_purge(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.storage.Store.Set(ctx, "stale", "x", time.Millisecond))
	require.NoError(t, cli.storage.Store.Set(ctx, sentiment.ResultKey, "happy", time.Hour))
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, cli.run([]string{"admin", "purge"}))
	assert.Equal(t, "1 expired entries deleted\n", out.String())

	out.Reset()
	cli.storage.Purger = nil
	cli.conf.Store.Driver = shared.StoreRedis
	require.NoError(t, cli.run([]string{"admin", "purge"}))
	assert.Equal(t, "nothing to purge: the redis store expires keys itself\n", out.String())
}

func Test_commandLine_cameras(t *testing.T) {
	defer func(orig func() ([]string, error)) { listCamerasFunc = orig }(listCamerasFunc)

	tests := []struct {
		name    string
		cams    []string
		err     error
		wantOut string
		wantErr bool
	}{
		{name: "none", wantOut: "no camera found\n"},
		{name: "some", cams: []string{"/dev/video0", "/dev/video2"}, wantOut: "/dev/video0\n/dev/video2\n"},
		{name: "ffmpeg missing", err: fmt.Errorf("exec: \"ffmpeg\": executable file not found in $PATH"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			listCamerasFunc = func() ([]string, error) { return tt.cams, tt.err }

			err := cli.run([]string{"admin", "cameras"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, out.String())
		})
	}
}

// fakeLoop replays a scripted sequence of statuses once started.
type fakeLoop struct {
	startErr error
	script   []sentiment.Status
	stopped  bool
}

func (l *fakeLoop) Start(context.Context) error { return l.startErr }

func (l *fakeLoop) Stop() { l.stopped = true }

func (l *fakeLoop) Subscribe() (<-chan sentiment.Status, func()) {
	ch := make(chan sentiment.Status, len(l.script))
	for _, st := range l.script {
		ch <- st
	}
	return ch, func() {}
}

func Test_commandLine_capture(t *testing.T) {
	defer func(orig func(*core.Config, sentiment.Store, core.Logger) (captureLoop, error)) { newLoopFunc = orig }(newLoopFunc)
	defer func(orig func(int) bool) { isTerminalFunc = orig }(isTerminalFunc)
	isTerminalFunc = func(int) bool { return false }

	counting := func(n int) sentiment.Status {
		return sentiment.Status{State: sentiment.StateCounting, Active: true, Countdown: n}
	}
	settled := func(cycle int, s string) sentiment.Status {
		return sentiment.Status{State: sentiment.StateWaiting, Active: true, Cycle: cycle, Sentiment: s}
	}

	tests := []struct {
		name       string
		args       []string
		loop       *fakeLoop
		wantOut    string
		wantErr    error
		wantErrStr string
	}{
		{
			name:    "device unavailable",
			loop:    &fakeLoop{startErr: sentiment.NewDeviceError("/dev/video0", fmt.Errorf("busy"))},
			wantErr: sentiment.ErrDeviceUnavailable,
		},
		{
			name:    "one cycle",
			loop:    &fakeLoop{script: []sentiment.Status{counting(2), counting(1), settled(1, "happy"), counting(2)}},
			wantOut: "cycle 1: happy\n",
		},
		{
			name: "two cycles",
			args: []string{"-cycles", "2"},
			loop: &fakeLoop{script: []sentiment.Status{
				counting(1), settled(1, "happy"), counting(1), settled(2, sentiment.Neutral),
			}},
			wantOut: "cycle 1: happy\ncycle 2: neutral\n",
		},
		{
			name: "session halted",
			args: []string{"-cycles", "0"},
			loop: &fakeLoop{script: []sentiment.Status{
				settled(1, "sad"),
				{State: sentiment.StateIdle, Cycle: 1, Sentiment: "sad", Err: "camera device unavailable: unplugged"},
			}},
			wantOut:    "cycle 1: sad\n",
			wantErrStr: "camera device unavailable: unplugged",
		},
		{
			name:    "timeout",
			args:    []string{"-timeout", "20ms"},
			loop:    &fakeLoop{script: []sentiment.Status{counting(20)}},
			wantErr: context.DeadlineExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			newLoopFunc = func(*core.Config, sentiment.Store, core.Logger) (captureLoop, error) { return tt.loop, nil }

			err := cli.run(append([]string{"admin", "capture"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOut, out.String())
			if tt.loop.startErr == nil {
				assert.True(t, tt.loop.stopped)
			}
		})
	}
}
