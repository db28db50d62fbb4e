package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP Server
	Port            string
	DashboardToken  string
	WritesPerMinute int
	InitialSection  string

	// Remote API
	RemoteBackend         string
	RemoteURL             string
	RemoteScriptID        string
	RemoteTimeout         time.Duration
	RemoteExpenseDelete   bool
	AppsScriptDevMode     bool
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	MemorySeedFile        string

	// Refresh
	RefreshSpec string

	// Journal
	JournalDBPath    string
	JournalRetention time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string

	// Locale and logging
	Timezone  string
	LogLevel  string
	LogFormat string
}

var (
	validBackends = []string{"webapp", "appsscript", "memory"}
	validSections = []string{"overview", "bookings", "revenue", "pending", "expenses", "users", "settings"}
)

// cronParser accepts what the scheduler accepts: descriptors or six fields.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		DashboardToken:  getEnv("DASHBOARD_TOKEN", ""),
		WritesPerMinute: getEnvInt("WRITES_PER_MINUTE", 60),
		InitialSection:  getEnv("INITIAL_SECTION", "overview"),

		RemoteBackend:         getEnv("REMOTE_BACKEND", "memory"),
		RemoteURL:             getEnv("REMOTE_URL", ""),
		RemoteScriptID:        getEnv("REMOTE_SCRIPT_ID", ""),
		RemoteTimeout:         getEnvDuration("REMOTE_TIMEOUT", 15*time.Second),
		RemoteExpenseDelete:   getEnvBool("REMOTE_EXPENSE_DELETE", false),
		AppsScriptDevMode:     getEnvBool("APPSSCRIPT_DEV_MODE", false),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		MemorySeedFile:        getEnv("MEMORY_SEED_FILE", ""),

		RefreshSpec: getEnv("REFRESH_SPEC", "@every 5m"),

		JournalDBPath:    getEnv("JOURNAL_DB_PATH", ""),
		JournalRetention: getEnvDuration("JOURNAL_RETENTION", 90*24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "bookings.events"),

		Timezone:  getEnv("TIMEZONE", "Asia/Riyadh"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !oneOf(c.RemoteBackend, validBackends) {
		errors = append(errors, fmt.Sprintf("invalid remote backend '%s': must be one of %v", c.RemoteBackend, validBackends))
	}

	switch c.RemoteBackend {
	case "webapp":
		if c.RemoteURL == "" {
			errors = append(errors, "REMOTE_URL is required when using webapp backend")
		} else if u, err := url.Parse(c.RemoteURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid remote URL '%s': %v", c.RemoteURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid remote URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	case "appsscript":
		if c.RemoteScriptID == "" {
			errors = append(errors, "REMOTE_SCRIPT_ID is required when using appsscript backend")
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for appsscript backend")
		}
	case "memory":
		if c.MemorySeedFile != "" {
			if _, err := os.Stat(c.MemorySeedFile); err != nil && !os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("cannot read memory seed file '%s': %v", c.MemorySeedFile, err))
			}
		}
	}

	if c.GoogleCredentialsFile != "" {
		if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
		}
	}

	if c.RemoteTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid remote timeout %v: must be at least 1 second", c.RemoteTimeout))
	} else if c.RemoteTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid remote timeout %v: must be at most 2 minutes", c.RemoteTimeout))
	}

	if _, err := cronParser.Parse(c.RefreshSpec); err != nil {
		errors = append(errors, fmt.Sprintf("invalid refresh spec '%s': %v", c.RefreshSpec, err))
	}

	if !oneOf(c.InitialSection, validSections) {
		errors = append(errors, fmt.Sprintf("invalid initial section '%s': must be one of %v", c.InitialSection, validSections))
	}

	if c.WritesPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid writes per minute %d: must not be negative", c.WritesPerMinute))
	}

	if c.JournalDBPath != "" && c.JournalRetention < time.Hour {
		errors = append(errors, fmt.Sprintf("invalid journal retention %v: must be at least 1 hour", c.JournalRetention))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if !oneOf(strings.ToLower(c.LogFormat), []string{"text", "json"}) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location loads the configured zone, falling back to local time.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
