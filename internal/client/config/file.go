package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/driverportal/internal/flagx"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

// FileConfig is a DTO used exclusively for config file unmarshalling.
// It relies on timex.Duration so intervals can be strings like "30s" or
// integer nanoseconds. After parsing, set values are copied into the
// runtime Config.
type FileConfig struct {
	APIBaseURL       string          `json:"api_base_url" yaml:"api_base_url"`
	DatabasePath     string          `json:"database_path" yaml:"database_path"`
	RequestTimeout   *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	AutoSaveInterval *timex.Duration `json:"autosave_interval" yaml:"autosave_interval"`
	DismissDelay     *timex.Duration `json:"dismiss_delay" yaml:"dismiss_delay"`
	DueTime          string          `json:"due_time" yaml:"due_time"`
	ListenAddr       string          `json:"listen_addr" yaml:"listen_addr"`
	SessionSecret    string          `json:"session_secret" yaml:"session_secret"`
	Language         string          `json:"language" yaml:"language"`
	LogLevel         string          `json:"log_level" yaml:"log_level"`
	LogFormat        string          `json:"log_format" yaml:"log_format"`
}

// parseFile overlays Config with values loaded from the file named by -c or
// -config. Without the flag nothing happens. Read or decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v *timex.Duration) {
		if v != nil {
			*dst = v.Duration
		}
	}

	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.ListenAddr, fc.ListenAddr)
	setString(&cfg.SessionSecret, fc.SessionSecret)
	setString(&cfg.Language, fc.Language)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	setDuration(&cfg.AutoSaveInterval, fc.AutoSaveInterval)
	setDuration(&cfg.DismissDelay, fc.DismissDelay)

	if fc.DueTime != "" {
		due, err := timex.ParseTimeOfDay(fc.DueTime)
		if err != nil {
			panic(err)
		}
		cfg.DueTime = due
	}
}
