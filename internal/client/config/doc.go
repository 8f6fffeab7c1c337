// Package config loads runtime configuration for the driver client and the
// local web portal.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory and DRIVERPORTAL_* environment
//     variables (see parseEnv). Real environment variables win over .env.
//  3. Optional config file (see parseFile) selected via flags: -c or -config.
//     Files ending in .yaml or .yml are read as YAML, anything else as JSON.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-d string   path of the local SQLite database
//	-l string   listen address of the web portal
//	-t int      backend request timeout (seconds)
//	-s int      draft auto-save interval (seconds)
//	-v string   log level: debug, info, warn, error
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://fleet.example.com/api/",
//	  "database_path": "driverportal.db",
//	  "request_timeout": "15s",
//	  "autosave_interval": "30s",
//	  "dismiss_delay": "1s",
//	  "due_time": "09:00",
//	  "listen_addr": "127.0.0.1:8080",
//	  "session_secret": "change-me",
//	  "language": "en",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// Keys missing from the file leave the earlier value untouched.
//
// Invalid values in any source panic during loading: a misconfigured client
// should not start.
package config
