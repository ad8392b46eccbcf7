package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/entrykeeper/internal/buildinfo"
	"github.com/dmitrijs2005/entrykeeper/internal/cli"
	"github.com/dmitrijs2005/entrykeeper/internal/config"
	"github.com/dmitrijs2005/entrykeeper/internal/logging"
	"golang.org/x/term"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	// The first signal cancels ctx so the App can discard and lock; after
	// that the default handling is restored and a second one kills.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	context.AfterFunc(ctx, stop)

	// A password prompt abandoned on cancel leaves echo off.
	fd := int(os.Stdin.Fd())
	if state, err := term.GetState(fd); err == nil {
		defer func() { _ = term.Restore(fd, state) }()
	}

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)

	app, closeDB, err := cli.Setup(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := closeDB(); err != nil {
			log.Printf("close database: %v", err)
		}
	}()

	app.Run(ctx)

}
