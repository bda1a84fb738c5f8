// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// TencentConfig provides credentials and endpoint settings for the
// upstream meeting API.
type TencentConfig interface {
	GetTencentAppID() string
	GetTencentSecretID() string
	GetTencentSecretKey() string
	GetTencentAPIEndpoint() string
	GetTencentSdkID() string
}

// RoutingConfig provides the form-submission routing surface: which form
// field carries the operator name, the operator registry string, and the
// form_name-to-room-id table.
type RoutingConfig interface {
	GetOperatorRegistry() string
	GetFormUserFieldName() string
	GetFormDeptFieldName() string
	GetXAMeetingRoomID() string
	GetCDMeetingRoomID() string
}

// SimulationConfig provides the two independent simulation toggles.
type SimulationConfig interface {
	GetSkipMeetingCreation() bool
	GetSkipRoomBooking() bool
}

// WebhookConfig provides the shared-secret webhook auth setting.
type WebhookConfig interface {
	GetWebhookAuthToken() string
}

// RedisConfig provides settings for the Redis-backed job queue and cache.
type RedisConfig interface {
	GetRedisURL() string
}

// ManagementConfig reports whether the environment permits the dev
// passthrough endpoints.
type ManagementConfig interface {
	IsProduction() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string
	RedisURL    string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	TencentAppID        string
	TencentSecretID     string
	TencentSecretKey    string
	TencentAPIEndpoint  string
	TencentSdkID        string

	OperatorRegistry   string
	FormUserFieldName  string
	FormDeptFieldName  string
	XAMeetingRoomID    string
	CDMeetingRoomID    string

	SkipMeetingCreation bool
	SkipRoomBooking     bool

	WebhookAuthToken string
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }
func (c *Config) GetRedisURL() string    { return c.RedisURL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetTencentAppID() string       { return c.TencentAppID }
func (c *Config) GetTencentSecretID() string    { return c.TencentSecretID }
func (c *Config) GetTencentSecretKey() string   { return c.TencentSecretKey }
func (c *Config) GetTencentAPIEndpoint() string { return c.TencentAPIEndpoint }
func (c *Config) GetTencentSdkID() string       { return c.TencentSdkID }

func (c *Config) GetOperatorRegistry() string  { return c.OperatorRegistry }
func (c *Config) GetFormUserFieldName() string { return c.FormUserFieldName }
func (c *Config) GetFormDeptFieldName() string { return c.FormDeptFieldName }
func (c *Config) GetXAMeetingRoomID() string   { return c.XAMeetingRoomID }
func (c *Config) GetCDMeetingRoomID() string   { return c.CDMeetingRoomID }

func (c *Config) GetSkipMeetingCreation() bool { return c.SkipMeetingCreation }
func (c *Config) GetSkipRoomBooking() bool     { return c.SkipRoomBooking }

func (c *Config) GetWebhookAuthToken() string { return c.WebhookAuthToken }

func (c *Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:      getEnv("ENVIRONMENT", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),

		TencentAppID:       getEnv("TENCENT_MEETING_APP_ID", ""),
		TencentSecretID:    getEnv("TENCENT_MEETING_SECRET_ID", ""),
		TencentSecretKey:   getEnv("TENCENT_MEETING_SECRET_KEY", ""),
		TencentAPIEndpoint: getEnv("TENCENT_MEETING_API_ENDPOINT", "https://api.meeting.qq.com"),
		TencentSdkID:       getEnv("TENCENT_MEETING_SDK_ID", ""),

		OperatorRegistry:  getEnv("TENCENT_MEETING_OPERATOR_ID", ""),
		FormUserFieldName: getEnv("FORM_USER_FIELD_NAME", "姓名"),
		FormDeptFieldName: getEnv("FORM_DEPT_FIELD_NAME", "部门"),
		XAMeetingRoomID:   getEnv("XA_MEETING_ROOM_ID", ""),
		CDMeetingRoomID:   getEnv("CD_MEETING_ROOM_ID", ""),

		SkipMeetingCreation: strings.EqualFold(getEnv("SKIP_MEETING_CREATION", "false"), "true"),
		SkipRoomBooking:     strings.EqualFold(getEnv("SKIP_ROOM_BOOKING", "false"), "true"),

		WebhookAuthToken: getEnv("WEBHOOK_AUTH_TOKEN", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.TencentAppID == "" || cfg.TencentSecretID == "" || cfg.TencentSecretKey == "" {
		if !cfg.SkipMeetingCreation {
			return nil, fmt.Errorf("TENCENT_MEETING_APP_ID, TENCENT_MEETING_SECRET_ID, and TENCENT_MEETING_SECRET_KEY are required unless SKIP_MEETING_CREATION is true")
		}
	}
	if cfg.XAMeetingRoomID == "" && cfg.CDMeetingRoomID == "" && !cfg.SkipMeetingCreation {
		return nil, fmt.Errorf("at least one of XA_MEETING_ROOM_ID or CD_MEETING_ROOM_ID is required unless SKIP_MEETING_CREATION is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
