// Package config reads the process configuration from the environment
// (and any flags bound to the same keys) through viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys, also the environment variable names.
const (
	KeyPort                     = "PORT"
	KeyDataBackend              = "DATA_BACKEND"
	KeyDataDir                  = "DATA_DIR"
	KeySQLiteDBPath             = "SQLITE_DB_PATH"
	KeyLedgerKey                = "LEDGER_KEY"
	KeyAMQPURL                  = "AMQP_URL"
	KeyAMQPExchange             = "AMQP_EXCHANGE"
	KeyAMQPQueue                = "AMQP_QUEUE"
	KeyGoogleSpreadsheetID      = "GOOGLE_SPREADSHEET_ID"
	KeyGoogleSheetName          = "GOOGLE_SHEET_NAME"
	KeyGoogleSheetYearPrefix    = "GOOGLE_SHEET_YEAR_PREFIX"
	KeyGoogleServiceAccountFile = "GOOGLE_SERVICE_ACCOUNT_FILE"
	KeyGoogleServiceAccountJSON = "GOOGLE_SERVICE_ACCOUNT_JSON"
	KeyNotifyDuration           = "NOTIFY_DURATION"
	KeyLogLevel                 = "LOG_LEVEL"
	KeyLogFormat                = "LOG_FORMAT"
)

type Config struct {
	// HTTP Server
	Port string

	// Persistence
	DataBackend  string
	DataDir      string
	SQLiteDBPath string
	LedgerKey    string

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export, optional
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleSheetYearPrefix    bool
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	NotifyDuration time.Duration

	LogLevel  string
	LogFormat string
}

// ValidBackends lists the accepted DATA_BACKEND values.
var ValidBackends = []string{"memory", "file", "sqlite"}

// NewViper returns a viper instance reading the environment with every default set.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8081")
	v.SetDefault(KeyDataBackend, "file")
	v.SetDefault(KeyDataDir, "./data")
	v.SetDefault(KeySQLiteDBPath, "./data/finanze.db")
	v.SetDefault(KeyLedgerKey, "financeTransactions")
	v.SetDefault(KeyAMQPURL, "")
	v.SetDefault(KeyAMQPExchange, "finanze")
	v.SetDefault(KeyAMQPQueue, "ledger_events")
	v.SetDefault(KeyGoogleSpreadsheetID, "")
	v.SetDefault(KeyGoogleSheetName, "Transazioni")
	v.SetDefault(KeyGoogleSheetYearPrefix, false)
	v.SetDefault(KeyGoogleServiceAccountFile, "")
	v.SetDefault(KeyGoogleServiceAccountJSON, "")
	v.SetDefault(KeyNotifyDuration, 3*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// Load reads the configuration from the environment.
func Load() *Config {
	return LoadFrom(NewViper())
}

// LoadFrom reads the configuration from v.
func LoadFrom(v *viper.Viper) *Config {
	return &Config{
		Port: v.GetString(KeyPort),

		DataBackend:  strings.ToLower(strings.TrimSpace(v.GetString(KeyDataBackend))),
		DataDir:      v.GetString(KeyDataDir),
		SQLiteDBPath: v.GetString(KeySQLiteDBPath),
		LedgerKey:    v.GetString(KeyLedgerKey),

		AMQPURL:      v.GetString(KeyAMQPURL),
		AMQPExchange: v.GetString(KeyAMQPExchange),
		AMQPQueue:    v.GetString(KeyAMQPQueue),

		GoogleSpreadsheetID:      v.GetString(KeyGoogleSpreadsheetID),
		GoogleSheetName:          v.GetString(KeyGoogleSheetName),
		GoogleSheetYearPrefix:    v.GetBool(KeyGoogleSheetYearPrefix),
		GoogleServiceAccountFile: v.GetString(KeyGoogleServiceAccountFile),
		GoogleServiceAccountJSON: v.GetString(KeyGoogleServiceAccountJSON),

		NotifyDuration: v.GetDuration(KeyNotifyDuration),

		LogLevel:  strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat: strings.ToLower(v.GetString(KeyLogFormat)),
	}
}

// AMQPEnabled reports whether ledger events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether a spreadsheet is configured for export.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	if !slices.Contains(ValidBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if msg := ensureDir(filepath.Dir(c.SQLiteDBPath)); msg != "" {
			errors = append(errors, "cannot create SQLite database directory "+msg)
		}
	case "file":
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		} else if msg := ensureDir(c.DataDir); msg != "" {
			errors = append(errors, "cannot create data directory "+msg)
		}
	}

	if strings.TrimSpace(c.LedgerKey) == "" {
		errors = append(errors, "ledger key cannot be empty")
	} else if strings.ContainsAny(c.LedgerKey, `/\`) {
		errors = append(errors, fmt.Sprintf("invalid ledger key '%s': must not contain path separators", c.LedgerKey))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Google Sheets export is optional, but a configured file must exist
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.NotifyDuration <= 0 {
		errors = append(errors, fmt.Sprintf("invalid notify duration %v: must be positive", c.NotifyDuration))
	} else if c.NotifyDuration > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid notify duration %v: must be at most 1 minute", c.NotifyDuration))
	}

	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ensureDir creates dir when missing. It returns a description of the failure, or "".
func ensureDir(dir string) string {
	if dir == "" || dir == "." {
		return ""
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Sprintf("'%s': %v", dir, err)
		}
	}
	return ""
}
