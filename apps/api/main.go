package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/neurolearn/neuro/apps/api/echo"
	"github.com/neurolearn/neuro/apps/shared"
	"github.com/neurolearn/neuro/core"
	"github.com/neurolearn/neuro/core/emotion"
	logsvc "github.com/neurolearn/neuro/services/logger"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Wait()

	captureLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "CAPTURE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage
	storage, err := shared.OpenStorage(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = storage.Close(); err != nil {
			logger.Error("closing storage", err)
		}
	}()

	// set up services
	emoSvc := emotion.NewService(storage.EmotionRepo)
	deckSvc := shared.NewDeckService(conf, storage.Store, emoSvc, logger)
	loop, err := shared.NewCaptureLoop(conf, storage.Store, captureLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up capture loop: %v", err), err)
	}
	defer loop.Stop()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := shared.NewValidator()

	if conf.Capture.AutoStart {
		if err = loop.Start(context.Background()); err != nil {
			// the API stays up, capture can be started again once the device is back
			logger.Error("auto-starting capture session", err)
		}
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(conf.Store.Driver)
	expvar.Publish("capture", expvar.Func(func() interface{} { return loop.Status() }))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Capture:    loop,
			Results:    storage.Store,
			DeckSvc:    deckSvc,
			EmotionSvc: emoSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		loop.Stop()
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// no store write happens after this returns
		loop.Stop()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
