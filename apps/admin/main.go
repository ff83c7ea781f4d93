package main

import (
	"context"
	"log"
	"os"

	"github.com/neurolearn/neuro/apps/shared"
	"github.com/neurolearn/neuro/core"
	logsvc "github.com/neurolearn/neuro/services/logger"
	"github.com/neurolearn/neuro/storage/database"
)

func main() {
	os.Exit(start())
}

func start() int {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	cli := commandLine{conf: conf, logger: logger, out: os.Stdout}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			// migrations are run by hand, skip the automatic ones
			if err := database.CreateIfNotExist(conf.Database); err != nil {
				logger.Fatal("creating database", err)
			}
			db, err := database.Open(conf.Database)
			if err != nil {
				logger.Fatal("opening database", err)
			}
			defer func() { _ = db.Close() }()
			cli.db = db
		case "capture", "sentiment", "purge":
			storage, err := shared.OpenStorage(context.Background(), conf)
			if err != nil {
				logger.Fatal("setting up storage", err)
			}
			defer func() { _ = storage.Close() }()
			cli.storage = storage
		}
	}

	defer logger.Wait()
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		return 1
	}
	return 0
}
