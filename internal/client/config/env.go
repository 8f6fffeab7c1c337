package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/driverportal/internal/timex"
)

// parseEnv overlays Config with DRIVERPORTAL_* variables. Values from the
// dotenv file fill in variables that are not set in the process environment.
// A missing dotenv file is not an error; an unreadable one panics.
func parseEnv(cfg *Config, dotenvPath string) {
	fileVars := map[string]string{}
	if dotenvPath != "" {
		vars, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			panic(err)
		}
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			return v, true
		}
		v, ok := fileVars[EnvPrefix+name]
		return v, ok
	}

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	str("API_URL", &cfg.APIBaseURL)
	str("DB_PATH", &cfg.DatabasePath)
	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("SESSION_SECRET", &cfg.SessionSecret)
	str("LANGUAGE", &cfg.Language)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	dur("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur("AUTOSAVE_INTERVAL", &cfg.AutoSaveInterval)
	dur("DISMISS_DELAY", &cfg.DismissDelay)

	if v, ok := lookup("DUE_TIME"); ok && v != "" {
		due, err := timex.ParseTimeOfDay(v)
		if err != nil {
			panic(err)
		}
		cfg.DueTime = due
	}
}
