package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/driverportal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend API base URL
//	-d string   local database path
//	-l string   portal listen address
//	-t int      request timeout in seconds
//	-s int      draft auto-save interval in seconds
//	-v string   log level
//	-f string   log format (text, json, zap)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], "a", "d", "l", "t", "s", "v", "f")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend API base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.ListenAddr, "l", cfg.ListenAddr, "portal listen address")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text, json, zap)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	autosave := fs.Int("s", int(cfg.AutoSaveInterval.Seconds()), "draft auto-save interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only explicit flags, so sub-second values from files survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "s":
			cfg.AutoSaveInterval = time.Duration(*autosave) * time.Second
		}
	})
}
