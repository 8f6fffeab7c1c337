package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/driverportal/internal/buildinfo"
	"github.com/dmitrijs2005/driverportal/internal/client/config"
	"github.com/dmitrijs2005/driverportal/internal/logging"
	"github.com/dmitrijs2005/driverportal/internal/portal"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger, err := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := portal.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
