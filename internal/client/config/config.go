package config

import (
	"time"

	"github.com/dmitrijs2005/driverportal/internal/timex"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "DRIVERPORTAL_"

// Config holds runtime settings for the driver client and portal.
//
// Units: RequestTimeout, AutoSaveInterval and DismissDelay are
// time.Duration values. DueTime is local wall-clock time.
type Config struct {
	APIBaseURL       string
	DatabasePath     string
	RequestTimeout   time.Duration
	AutoSaveInterval time.Duration
	DismissDelay     time.Duration
	DueTime          timex.TimeOfDay
	ListenAddr       string
	SessionSecret    string
	Language         string
	LogLevel         string
	LogFormat        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api/"
	c.DatabasePath = "driverportal.db"
	c.RequestTimeout = 15 * time.Second
	c.AutoSaveInterval = 30 * time.Second
	c.DismissDelay = time.Second
	c.DueTime = timex.TimeOfDay{Hour: 9}
	c.ListenAddr = "127.0.0.1:8080"
	c.SessionSecret = ""
	c.Language = "en"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, the config file (if present) and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, ".env")
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
