package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/neurolearn/neuro/apps/shared"
	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/sentiment"
	"github.com/neurolearn/neuro/services/camera"
	"github.com/neurolearn/neuro/storage/database"
)

type captureLoop interface {
	Start(ctx context.Context) error
	Stop()
	Subscribe() (<-chan sentiment.Status, func())
}

var (
	runMigrationsFunc = database.RunMigrations // mockable
	listCamerasFunc   = camera.ListCameras     // mockable
	isTerminalFunc    = term.IsTerminal        // mockable
	newLoopFunc       = func(conf *core.Config, store sentiment.Store, logger core.Logger) (captureLoop, error) {
		return shared.NewCaptureLoop(conf, store, logger)
	} // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	out     io.Writer
	db      *sqlx.DB        // migrate only
	storage *shared.Storage // every other command
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]            - run database migrations (up, down, status, version, redo, reset, up-to, down-to...)")
	fmt.Fprintln(cli.out, "  capture [-cycles N] [-timeout D]  - run N capture cycles (0: until interrupted) and print the sentiments")
	fmt.Fprintln(cli.out, "  sentiment                         - print the latest sentiment")
	fmt.Fprintln(cli.out, "  cameras                           - list the available cameras")
	fmt.Fprintln(cli.out, "  purge                             - delete expired store entries")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	captureCmd := flag.NewFlagSet("capture", flag.ContinueOnError)
	captureCmd.SetOutput(cli.out)
	captureCycles := captureCmd.Int("cycles", 1, "Number of cycles to run, 0 runs until interrupted.")
	captureTimeout := captureCmd.Duration("timeout", 0, "Give up after this long, 0 waits forever.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "capture":
		if err := captureCmd.Parse(args[2:]); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return errHelp
			}
			return err
		}
		if *captureCycles < 0 {
			captureCmd.Usage()
			return errHelp
		}
		return cli.capture(*captureCycles, *captureTimeout)
	case "sentiment":
		return cli.sentiment()
	case "cameras":
		return cli.cameras()
	case "purge":
		return cli.purge()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	return runMigrationsFunc(context.Background(), cli.db, cli.conf.Database.Engine, args[0], args[1:]...)
}

// capture runs the loop until the wanted number of cycles settled, the session ends or the timeout expires.
func (cli *commandLine) capture(cycles int, timeout time.Duration) error {
	loop, err := newLoopFunc(cli.conf, cli.storage.Store, cli.logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err = loop.Start(ctx); err != nil {
		return err
	}
	defer loop.Stop()

	updates, unsubscribe := loop.Subscribe()
	defer unsubscribe()

	interactive := isTerminalFunc(int(os.Stdout.Fd()))
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st := <-updates:
			if interactive && st.State == sentiment.StateCounting {
				fmt.Fprintf(cli.out, "\rcapturing in %2ds", st.Countdown)
			}
			if st.Cycle > seen {
				seen = st.Cycle
				if interactive {
					fmt.Fprint(cli.out, "\r")
				}
				fmt.Fprintf(cli.out, "cycle %d: %s\n", st.Cycle, st.Sentiment)
				if cycles > 0 && seen >= cycles {
					return nil
				}
			}
			if !st.Active {
				if st.Err != "" {
					return errors.New(st.Err)
				}
				return nil
			}
		}
	}
}

func (cli *commandLine) sentiment() error {
	s, err := cli.storage.Store.Get(context.Background(), sentiment.ResultKey)
	if err != nil {
		if errors.Is(err, sentiment.ErrNotFound) {
			fmt.Fprintln(cli.out, "no sentiment detected yet")
			return nil
		}
		return err
	}
	fmt.Fprintln(cli.out, s)
	return nil
}

func (cli *commandLine) cameras() error {
	cams, err := listCamerasFunc()
	if err != nil {
		return err
	}
	if len(cams) == 0 {
		fmt.Fprintln(cli.out, "no camera found")
		return nil
	}
	for _, c := range cams {
		fmt.Fprintln(cli.out, c)
	}
	return nil
}

func (cli *commandLine) purge() error {
	if cli.storage.Purger == nil {
		fmt.Fprintf(cli.out, "nothing to purge: the %s store expires keys itself\n", cli.conf.Store.Driver)
		return nil
	}
	n, err := cli.storage.Purger.PurgeExpired(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d expired entries deleted\n", n)
	return nil
}
