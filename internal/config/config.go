// Package config loads process configuration from environment variables,
// with a local .env file honored for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string

	// Jira connection
	JiraDomain   string
	JiraEmail    string
	JiraAPIToken string

	// Reference timezone and query shape
	TZOffsetHours  int
	HTTPTimeout    time.Duration
	SearchMax      int
	PlanStartField string
	PlanEndField   string

	// Schedule override
	ScheduleFile string

	// Dispatcher
	DispatchLead time.Duration
	HTTPBind     string
	HTTPPort     int

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Slot lock (multi-instance) configuration
	SlotLockEnabled bool
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	InstanceID      string
}

// Load reads environment variables, applies defaults, and validates the
// result. A present .env file is loaded first, matching local development
// usage; a missing one is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("JIRATASK_ENV", "development"),

		JiraDomain:   getEnv("JIRA_DOMAIN", "https://mufpm.atlassian.net"),
		JiraEmail:    os.Getenv("JIRA_EMAIL"),
		JiraAPIToken: os.Getenv("JIRA_API_TOKEN"),

		TZOffsetHours:  getEnvInt("JIRATASK_TZ_OFFSET_HOURS", 7),
		HTTPTimeout:    time.Duration(getEnvInt("JIRATASK_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		SearchMax:      getEnvInt("JIRATASK_SEARCH_MAX_RESULTS", 10),
		PlanStartField: getEnv("JIRATASK_PLAN_START_FIELD", "customfield_10093"),
		PlanEndField:   getEnv("JIRATASK_PLAN_END_FIELD", "customfield_10094"),

		ScheduleFile: getEnv("JIRATASK_SCHEDULE_FILE", ""),

		DispatchLead: time.Duration(getEnvInt("JIRATASK_DISPATCH_LEAD_SECONDS", 60)) * time.Second,
		HTTPBind:     getEnv("JIRATASK_HTTP_BIND", "127.0.0.1"),
		HTTPPort:     getEnvInt("JIRATASK_HTTP_PORT", 9090),

		TracingEnabled:    getEnvBool("JIRATASK_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("JIRATASK_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("JIRATASK_TRACING_SAMPLE_RATE", 1.0),

		SlotLockEnabled: getEnvBool("JIRATASK_SLOT_LOCK_ENABLED", false),
		RedisAddr:       getEnv("JIRATASK_REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("JIRATASK_REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("JIRATASK_REDIS_DB", 0),
		InstanceID:      getEnv("JIRATASK_INSTANCE_ID", ""),
	}

	if cfg.TZOffsetHours < -12 || cfg.TZOffsetHours > 14 {
		return nil, fmt.Errorf("JIRATASK_TZ_OFFSET_HOURS %d is not a valid UTC offset", cfg.TZOffsetHours)
	}

	if !strings.HasPrefix(cfg.PlanStartField, "customfield_") {
		return nil, fmt.Errorf("JIRATASK_PLAN_START_FIELD must be a customfield_* id, got %q", cfg.PlanStartField)
	}
	if !strings.HasPrefix(cfg.PlanEndField, "customfield_") {
		return nil, fmt.Errorf("JIRATASK_PLAN_END_FIELD must be a customfield_* id, got %q", cfg.PlanEndField)
	}

	return cfg, nil
}

// RequireCredentials verifies the authentication material is present.
// Missing credentials are fatal to the whole invocation.
func (c *Config) RequireCredentials() error {
	if c.JiraAPIToken == "" {
		return fmt.Errorf("JIRA_API_TOKEN environment variable is not set")
	}
	if c.JiraEmail == "" {
		return fmt.Errorf("JIRA_EMAIL environment variable is not set")
	}
	return nil
}

// HTTPAddr returns the ops server bind address.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		if val == "true" || val == "1" || val == "yes" {
			return true
		}
		if val == "false" || val == "0" || val == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}
