package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so host environment cannot
// leak into assertions. Empty values fall through to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"JIRATASK_ENV",
		"JIRA_DOMAIN", "JIRA_EMAIL", "JIRA_API_TOKEN",
		"JIRATASK_TZ_OFFSET_HOURS", "JIRATASK_HTTP_TIMEOUT_SECONDS",
		"JIRATASK_SEARCH_MAX_RESULTS", "JIRATASK_PLAN_START_FIELD",
		"JIRATASK_PLAN_END_FIELD", "JIRATASK_SCHEDULE_FILE",
		"JIRATASK_DISPATCH_LEAD_SECONDS", "JIRATASK_HTTP_BIND", "JIRATASK_HTTP_PORT",
		"JIRATASK_TRACING_ENABLED", "JIRATASK_OTLP_ENDPOINT", "JIRATASK_TRACING_SAMPLE_RATE",
		"JIRATASK_SLOT_LOCK_ENABLED", "JIRATASK_REDIS_ADDR", "JIRATASK_REDIS_PASSWORD",
		"JIRATASK_REDIS_DB", "JIRATASK_INSTANCE_ID",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.JiraDomain != "https://mufpm.atlassian.net" {
		t.Errorf("JiraDomain = %q", cfg.JiraDomain)
	}
	if cfg.TZOffsetHours != 7 {
		t.Errorf("TZOffsetHours = %d", cfg.TZOffsetHours)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.SearchMax != 10 {
		t.Errorf("SearchMax = %d", cfg.SearchMax)
	}
	if cfg.PlanStartField != "customfield_10093" || cfg.PlanEndField != "customfield_10094" {
		t.Errorf("plan fields = %q, %q", cfg.PlanStartField, cfg.PlanEndField)
	}
	if cfg.DispatchLead != time.Minute {
		t.Errorf("DispatchLead = %v", cfg.DispatchLead)
	}
	if cfg.HTTPAddr() != "127.0.0.1:9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr())
	}
	if cfg.TracingEnabled || cfg.SlotLockEnabled {
		t.Error("tracing and slot lock must default off")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JIRA_DOMAIN", "https://example.atlassian.net")
	t.Setenv("JIRATASK_TZ_OFFSET_HOURS", "9")
	t.Setenv("JIRATASK_SEARCH_MAX_RESULTS", "25")
	t.Setenv("JIRATASK_PLAN_START_FIELD", "customfield_20001")
	t.Setenv("JIRATASK_TRACING_ENABLED", "true")
	t.Setenv("JIRATASK_TRACING_SAMPLE_RATE", "0.25")
	t.Setenv("JIRATASK_HTTP_PORT", "8088")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.JiraDomain != "https://example.atlassian.net" {
		t.Errorf("JiraDomain = %q", cfg.JiraDomain)
	}
	if cfg.TZOffsetHours != 9 {
		t.Errorf("TZOffsetHours = %d", cfg.TZOffsetHours)
	}
	if cfg.SearchMax != 25 {
		t.Errorf("SearchMax = %d", cfg.SearchMax)
	}
	if cfg.PlanStartField != "customfield_20001" {
		t.Errorf("PlanStartField = %q", cfg.PlanStartField)
	}
	if !cfg.TracingEnabled || cfg.TracingSampleRate != 0.25 {
		t.Errorf("tracing = %v rate %v", cfg.TracingEnabled, cfg.TracingSampleRate)
	}
	if cfg.HTTPAddr() != "127.0.0.1:8088" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "offset too large", key: "JIRATASK_TZ_OFFSET_HOURS", value: "15"},
		{name: "offset too small", key: "JIRATASK_TZ_OFFSET_HOURS", value: "-13"},
		{name: "plan start not a custom field", key: "JIRATASK_PLAN_START_FIELD", value: "duedate"},
		{name: "plan end not a custom field", key: "JIRATASK_PLAN_END_FIELD", value: "10094"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s should be rejected", tt.key, tt.value)
			}
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		token   string
		wantErr bool
	}{
		{name: "both present", email: "bot@example.com", token: "secret"},
		{name: "missing token", email: "bot@example.com", wantErr: true},
		{name: "missing email", token: "secret", wantErr: true},
		{name: "missing both", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{JiraEmail: tt.email, JiraAPIToken: tt.token}
			err := cfg.RequireCredentials()
			if (err != nil) != tt.wantErr {
				t.Errorf("RequireCredentials = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
