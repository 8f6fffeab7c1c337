package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/driverportal/internal/timex"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"testbin"}, args...)
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8000/api/", c.APIBaseURL)
	assert.Equal(t, "driverportal.db", c.DatabasePath)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, 30*time.Second, c.AutoSaveInterval)
	assert.Equal(t, time.Second, c.DismissDelay)
	assert.Equal(t, timex.TimeOfDay{Hour: 9}, c.DueTime)
	assert.Equal(t, "127.0.0.1:8080", c.ListenAddr)
	assert.Equal(t, "en", c.Language)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
}

func TestLoadConfig_UsesDefaultsWithoutSources(t *testing.T) {
	withArgs(t)
	t.Chdir(t.TempDir())

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectPanic bool
		edit        func(c *Config)
	}{
		{
			name: "all flags",
			args: []string{"-a", "https://fleet.example/api/", "-d", "/tmp/x.db", "-l", ":9000", "-t", "5", "-s", "10", "-v", "debug", "--f", "json"},
			edit: func(c *Config) {
				c.LogFormat = "json"
				c.APIBaseURL = "https://fleet.example/api/"
				c.DatabasePath = "/tmp/x.db"
				c.ListenAddr = ":9000"
				c.RequestTimeout = 5 * time.Second
				c.AutoSaveInterval = 10 * time.Second
				c.LogLevel = "debug"
			},
		},
		{
			name: "unknown flags are ignored",
			args: []string{"-x", "1", "-c", "cfg.json", "-a", "http://h/api/"},
			edit: func(c *Config) { c.APIBaseURL = "http://h/api/" },
		},
		{name: "bad timeout", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)
			cfg := defaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			want := defaults()
			tt.edit(want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestParseFlags_KeepsSubSecondWhenUnset(t *testing.T) {
	withArgs(t, "-v", "warn")
	cfg := defaults()
	cfg.RequestTimeout = 1500 * time.Millisecond

	parseFlags(cfg)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseFile(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "cfg.json", `{"api_base_url":"https://fleet.example/api/","request_timeout":"3s",
			"due_time":"08:30","log_format":"zap"}`)
		withArgs(t, "-config", path)

		cfg := defaults()
		parseFile(cfg)

		assert.Equal(t, "https://fleet.example/api/", cfg.APIBaseURL)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, timex.TimeOfDay{Hour: 8, Minute: 30}, cfg.DueTime)
		assert.Equal(t, "zap", cfg.LogFormat)
		assert.Equal(t, 30*time.Second, cfg.AutoSaveInterval, "missing keys keep defaults")
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "cfg.yml", "listen_addr: \":8181\"\nautosave_interval: 10s\ndismiss_delay: 500000000\nlanguage: lv\n")
		withArgs(t, "-c", path)

		cfg := defaults()
		parseFile(cfg)

		assert.Equal(t, ":8181", cfg.ListenAddr)
		assert.Equal(t, 10*time.Second, cfg.AutoSaveInterval)
		assert.Equal(t, 500*time.Millisecond, cfg.DismissDelay)
		assert.Equal(t, "lv", cfg.Language)
	})

	t.Run("no flag, no changes", func(t *testing.T) {
		withArgs(t)
		cfg := defaults()
		parseFile(cfg)
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("invalid json panics", func(t *testing.T) {
		withArgs(t, "-config", writeFile(t, "bad.json", `{ this is not valid json`))
		require.Panics(t, func() { parseFile(defaults()) })
	})

	t.Run("invalid due time panics", func(t *testing.T) {
		withArgs(t, "-config", writeFile(t, "bad.json", `{"due_time":"25:00"}`))
		require.Panics(t, func() { parseFile(defaults()) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		withArgs(t, "-config", filepath.Join(t.TempDir(), "nope.json"))
		require.Panics(t, func() { parseFile(defaults()) })
	})
}

func TestParseEnv(t *testing.T) {
	dotenv := writeFile(t, ".env", "DRIVERPORTAL_API_URL=http://from-dotenv/api/\nDRIVERPORTAL_LANGUAGE=lv\n")
	t.Setenv("DRIVERPORTAL_LANGUAGE", "ru")
	t.Setenv("DRIVERPORTAL_AUTOSAVE_INTERVAL", "45s")
	t.Setenv("DRIVERPORTAL_DUE_TIME", "10:15")

	cfg := defaults()
	parseEnv(cfg, dotenv)

	assert.Equal(t, "http://from-dotenv/api/", cfg.APIBaseURL)
	assert.Equal(t, "ru", cfg.Language, "process env wins over .env")
	assert.Equal(t, 45*time.Second, cfg.AutoSaveInterval)
	assert.Equal(t, timex.TimeOfDay{Hour: 10, Minute: 15}, cfg.DueTime)
}

func TestParseEnv_MissingDotenvIsFine(t *testing.T) {
	cfg := defaults()
	require.NotPanics(t, func() { parseEnv(cfg, filepath.Join(t.TempDir(), ".env")) })
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv("DRIVERPORTAL_REQUEST_TIMEOUT", "soon")
	require.Panics(t, func() { parseEnv(defaults(), "") })
}
