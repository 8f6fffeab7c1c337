package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/driverportal/internal/buildinfo"
	"github.com/dmitrijs2005/driverportal/internal/client/cli"
	"github.com/dmitrijs2005/driverportal/internal/client/config"
	"github.com/dmitrijs2005/driverportal/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	// the REPL owns stdout
	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// stdin reads cannot be interrupted, so a signal exits from here
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		app.Interrupt()
		os.Exit(130)
	}()

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
